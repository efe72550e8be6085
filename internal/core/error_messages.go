package core

// error_messages.go maps technical errors to user-friendly messages with
// codes for support reference.
//
// Errors are first classified by the sentinel they wrap, then by
// a case-insensitive pattern on their text.
//
// # Validation (VAL001-VAL099)
//
//	VAL001 - Invalid input: a record or an argument failed validation
//	         Action: Check the reported field and value
//
// # Import (DUP001, UNS001, IMP001)
//
//	DUP001 - Duplicate: the record is already stored
//	         Action: Re-run with --on-duplicate ignore to skip duplicates
//
//	UNS001 - Unsupported: the backend cannot perform the requested option
//	         Action: Use --on-duplicate raise or ignore
//
//	IMP001 - System busy: too many imports in progress
//	         Action: Please wait a moment and try again
//
// # Database (DB001-DB099)
//
//	DB001 - Storage failure: the backend rejected the operation
//	DB002 - Connection refused: unable to connect to database
//	DB003 - Connection reset: database connection was interrupted
//	DB004 - Session released: the repository session is no longer usable
//	DB005 - Not configured: no database URL was given
//
// # CSV feed (CSV001-CSV099)
//
//	CSV001 - No header: the file is empty or has no header row
//	CSV002 - Missing columns: required columns are absent from the header
//	CSV003 - Missing value: a required cell is empty
//	CSV004 - Invalid value: a cell could not be parsed
//	CSV005 - Unknown encoding: the charset name is not recognised
//	CSV006 - Unreadable file: the file could not be read
//
// # Pagination (PAG001-PAG099)
//
//	PAG001 - Page navigation: no pages ahead, or backward navigation
//	PAG002 - Cursor closed: the result chain was abandoned by a newer query
//
// # Request (REQ001-REQ099)
//
//	REQ001 - Cancelled: the operation was cancelled
//	REQ002 - Timed out: the operation timed out
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: an unexpected error occurred
//	         Action: check application logs for the original error

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/wwweather/internal/config"
	"github.com/JonMunkholm/wwweather/internal/csvio"
	"github.com/JonMunkholm/wwweather/internal/pagination"
	"github.com/JonMunkholm/wwweather/internal/storage"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorRule maps an error to a user message. A rule matches when err wraps
// target, or when target is nil and the lowercased error text contains
// pattern.
type errorRule struct {
	target  error
	pattern string
	msg     UserMessage
}

// errorRules are checked in order; the first match wins. Context errors come
// first so that a cancelled import is not reported as a storage failure.
var errorRules = []errorRule{
	// Request
	{
		target: context.Canceled,
		msg:    UserMessage{Message: "Operation was cancelled", Action: "Start the operation again when ready", Code: "REQ001"},
	},
	{
		target: context.DeadlineExceeded,
		msg:    UserMessage{Message: "Operation timed out", Action: "Try a smaller file or a narrower search", Code: "REQ002"},
	},

	// Import
	{
		target: storage.ErrDuplicate,
		msg:    UserMessage{Message: "Records duplication detected", Action: "Re-run with --on-duplicate ignore to skip duplicates", Code: "DUP001"},
	},
	{
		target: storage.ErrUnsupported,
		msg:    UserMessage{Message: "Option is not supported by the database backend", Action: "Use --on-duplicate raise or ignore", Code: "UNS001"},
	},
	{
		target: ErrTooManyImports,
		msg:    UserMessage{Message: "System is busy processing other imports", Action: "Please wait a moment and try again", Code: "IMP001"},
	},

	// CSV feed
	{
		target: csvio.ErrNoHeader,
		msg:    UserMessage{Message: "The file has no header row", Action: "Add a header row naming the columns", Code: "CSV001"},
	},
	{
		pattern: "header is missing required columns",
		msg:     UserMessage{Message: "Required columns are missing from the header", Action: "Check that all required columns are present in your file", Code: "CSV002"},
	},
	{
		target: csvio.ErrMissingValue,
		msg:    UserMessage{Message: "A required value is missing", Action: "Fill in the reported cell or remove the row", Code: "CSV003"},
	},
	{
		target: csvio.ErrInvalidValue,
		msg:    UserMessage{Message: "A value could not be parsed", Action: "Fix the reported cell; check the delimiter and datetime format", Code: "CSV004"},
	},
	{
		target: csvio.ErrUnknownEncoding,
		msg:    UserMessage{Message: "Unknown file encoding", Action: "Use an encoding name such as utf-8 or windows-1251", Code: "CSV005"},
	},
	{
		pattern: "records reading failed",
		msg:     UserMessage{Message: "The file could not be read", Action: "Check that the file is a readable CSV", Code: "CSV006"},
	},

	// Validation
	{
		target: storage.ErrValidation,
		msg:    UserMessage{Message: "Validation failed", Action: "Check the reported field and value", Code: "VAL001"},
	},

	// Pagination
	{
		target: pagination.ErrNoPagesAhead,
		msg:    UserMessage{Message: "There are no pages ahead", Action: "Stop paging at the last page", Code: "PAG001"},
	},
	{
		target: pagination.ErrNotSupported,
		msg:    UserMessage{Message: "Page navigation is not supported", Action: "Results can only be read forward", Code: "PAG001"},
	},
	{
		pattern: "cursor closed",
		msg:     UserMessage{Message: "The result set was closed by a newer query", Action: "Finish reading results before starting another query", Code: "PAG002"},
	},

	// Database
	{
		target: config.ErrNoDatabase,
		msg:    UserMessage{Message: "No database configured", Action: "Set DATABASE_URL or pass --db-url", Code: "DB005"},
	},
	{
		target: storage.ErrReleased,
		msg:    UserMessage{Message: "The database session was already closed", Action: "Please try again", Code: "DB004"},
	},
	{
		pattern: "connection refused",
		msg:     UserMessage{Message: "Unable to connect to database", Action: "Please try again in a few moments", Code: "DB002"},
	},
	{
		pattern: "connection reset",
		msg:     UserMessage{Message: "Database connection was interrupted", Action: "Please try again", Code: "DB003"},
	},
	{
		target: storage.ErrOperationFailed,
		msg:    UserMessage{Message: "The database rejected the operation", Action: "Check the application logs for details", Code: "DB001"},
	},
}

// defaultMessage is returned when no rule matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the application logs",
	Code:    "ERR000",
}

func (r errorRule) matches(err error, text string) bool {
	if r.target != nil {
		return errors.Is(err, r.target)
	}
	return strings.Contains(text, r.pattern)
}

// MapError converts a technical error to a user-friendly message. If no
// rule matches, a generic fallback message with code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	text := strings.ToLower(err.Error())
	for _, r := range errorRules {
		if r.matches(err, text) {
			return r.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
