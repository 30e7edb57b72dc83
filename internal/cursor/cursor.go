package cursor

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxLineBytes bounds a single report line.
const maxLineBytes = 1 << 20

// Mark is an opaque position returned by Cursor.Mark.
type Mark struct {
	pos int
}

// Cursor iterates over report lines.
type Cursor struct {
	lines []string
	pos   int // index of the next line to return
}

// New creates a cursor over lines that have already been split.
func New(lines []string) *Cursor {
	return &Cursor{lines: lines}
}

// FromString splits text on newlines. Carriage returns before the newline
// are removed; all other whitespace is preserved since columns are positional.
func FromString(text string) *Cursor {
	if text == "" {
		return New(nil)
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return New(lines)
}

// FromReader reads the whole stream and splits it into lines.
func FromReader(r io.Reader) (*Cursor, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return New(lines), nil
}

// Next returns the next line and advances. It returns false at end of stream.
func (c *Cursor) Next() (string, bool) {
	if c.pos >= len(c.lines) {
		return "", false
	}
	line := c.lines[c.pos]
	c.pos++
	return line, true
}

// Peek returns the next line without advancing.
func (c *Cursor) Peek() (string, bool) {
	if c.pos >= len(c.lines) {
		return "", false
	}
	return c.lines[c.pos], true
}

// Mark records the current position.
func (c *Cursor) Mark() Mark {
	return Mark{pos: c.pos}
}

// Reset moves the cursor back (or forward) to a mark taken on this cursor.
func (c *Cursor) Reset(m Mark) {
	if m.pos < 0 {
		m.pos = 0
	}
	if m.pos > len(c.lines) {
		m.pos = len(c.lines)
	}
	c.pos = m.pos
}

// Line returns the 1-based number of the line most recently returned by
// Next, or 0 before the first call.
func (c *Cursor) Line() int {
	return c.pos
}

// Len returns the total number of lines.
func (c *Cursor) Len() int {
	return len(c.lines)
}
