package csvio

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoHeader is returned for a feed without a header row.
	ErrNoHeader = errors.New("records reading failed: no header row")

	// ErrUnknownEncoding is returned for a charset label that cannot be resolved.
	ErrUnknownEncoding = errors.New("unknown encoding")

	// ErrMissingValue marks an empty cell in a required column.
	ErrMissingValue = errors.New("value is required but missing")

	// ErrInvalidValue marks a cell that could not be parsed.
	ErrInvalidValue = errors.New("value parsing failed")
)

// RowError reports a record that could not be read.
type RowError struct {
	Line   int    // 1-based line in the file
	Column string // header name, empty when the row itself is malformed
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("records reading failed: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("records reading failed: line %d: column %q %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// HeaderError lists required columns absent from the header row.
type HeaderError struct {
	Missing []string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("records reading failed: header is missing required columns: %s", strings.Join(e.Missing, ", "))
}
