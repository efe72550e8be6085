package storage

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/wwweather/internal/weather"
)

var (
	// ErrValidation marks bad input: a malformed record or a bad argument.
	ErrValidation = weather.ErrInvalid

	// ErrDuplicate is returned when a record is already stored and the
	// import runs with DuplicateRaise.
	ErrDuplicate = errors.New("records duplication detected")

	// ErrUnsupported is returned when a backend lacks a requested option.
	ErrUnsupported = errors.New("option not supported by backend")

	// ErrOperationFailed wraps backend faults. The original cause stays
	// reachable through errors.Is and errors.As.
	ErrOperationFailed = errors.New("storage operation failed")

	// ErrReleased is returned by calls on a released session.
	ErrReleased = errors.New("repository session already released")
)

// BlockError identifies the import block that failed.
type BlockError struct {
	Block int // 0-based block number
	Err   error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("block %d: %v", e.Block, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

// RecordError identifies the record inside a block that failed validation.
type RecordError struct {
	Index int // position within the block
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Failed wraps a backend fault with a description of what was attempted.
func Failed(what string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrOperationFailed, what, cause)
}
