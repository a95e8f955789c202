package gex

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidSpot   = errors.New("spot price must be finite and greater than zero")
	ErrInvalidWindow = errors.New("strike window half-width must be finite and non-negative")
	ErrEmptyWindow   = errors.New("no strikes in window")
)

// MalformedRowError describes a single bad field on an input row.
type MalformedRowError struct {
	Index  int // position in the input slice
	Strike float64
	Field  string
	Reason string
}

func (e MalformedRowError) Error() string {
	return fmt.Sprintf("row %d (strike %g): %s %s", e.Index, e.Strike, e.Field, e.Reason)
}

// RowErrors collects every malformed row found in a batch.
// A batch with any malformed row is rejected as a whole.
type RowErrors struct {
	Rows []MalformedRowError
}

// HasErrors returns true if any malformed rows were recorded
func (e *RowErrors) HasErrors() bool {
	return len(e.Rows) > 0
}

func (e *RowErrors) add(index int, strike float64, field, reason string) {
	e.Rows = append(e.Rows, MalformedRowError{
		Index:  index,
		Strike: strike,
		Field:  field,
		Reason: reason,
	})
}

// Error formats all malformed rows into one message
func (e *RowErrors) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d malformed row field(s):", len(e.Rows)))
	for _, r := range e.Rows {
		sb.WriteString("\n  - ")
		sb.WriteString(r.Error())
	}
	return sb.String()
}
