// Package scanner splits a settlement report into product sections.
//
// A section opens at a header line naming the product code (and, for option
// chains, the contract month and PUT or CALL) and runs until the first line
// that does not decode as a settlement row. That line is handed back to the
// cursor so the next header search sees it.
//
// Usage:
//
//	c, _ := cursor.FromReader(f)
//	s := scanner.New(c, convention.Default())
//	for {
//	    sec, err := s.Next()
//	    if err != nil {
//	        return err
//	    }
//	    if sec == nil {
//	        break
//	    }
//	    // use sec
//	}
package scanner
