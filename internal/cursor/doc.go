// Package cursor provides a line-addressable, position-markable view over a
// settlement report.
//
// The scanner marks the position before each speculative decode and resets
// to the mark when the line turns out not to belong to the current section,
// so the next header search re-reads exactly that line:
//
//	m := c.Mark()
//	line, _ := c.Next()
//	if !belongs(line) {
//	    c.Reset(m)
//	}
//
// A Cursor must not be shared between goroutines.
package cursor
