package chain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingColumn = errors.New("missing column in header")
	ErrNoHeader      = errors.New("no header row found")
)

// ParseError reports a field that could not be converted to its typed value.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: column %q: cannot parse %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
