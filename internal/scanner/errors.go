package scanner

import (
	"errors"
	"fmt"
)

// ErrMalformedHeader reports an option header without a contract month.
var ErrMalformedHeader = errors.New("malformed option header")

// HeaderError carries the offending header line.
type HeaderError struct {
	Line int // 1-based line number
	Text string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("%s at line %d: %q", ErrMalformedHeader, e.Line, e.Text)
}

func (e *HeaderError) Unwrap() error {
	return ErrMalformedHeader
}
