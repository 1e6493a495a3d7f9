// Package core holds the error taxonomy shared by the range parser and the archive codec.
package core

import (
	"fmt"
	"sort"
	"strings"
)

// Error represents a structured error with code, optional cause and debug details.
type Error struct {
	Code    string
	Message string
	Cause   error
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Details[k])
		}
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// With attaches a debug detail and returns the receiver for chaining.
// Only call it on values built by NewError or WrapError, never on the
// predefined errors below.
func (e *Error) With(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Detail returns a debug detail by key.
func (e *Error) Detail(key string) (any, bool) {
	v, ok := e.Details[key]
	return v, ok
}

// NewError creates a fresh error with the same code as base and a custom message.
func NewError(base *Error, message string) *Error {
	return &Error{
		Code:    base.Code,
		Message: message,
	}
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors. These are comparison targets for errors.Is; call
// sites always return a fresh value built from them.
var (
	// Range errors
	ErrInvalidRangeSpec = &Error{Code: "INVALID_RANGE_SPEC", Message: "invalid range specification"}

	// File errors
	ErrFileNotFound   = &Error{Code: "FILE_NOT_FOUND", Message: "file not found"}
	ErrFileUnreadable = &Error{Code: "FILE_UNREADABLE", Message: "file unreadable"}

	// Archive errors
	ErrInsufficientMemory     = &Error{Code: "INSUFFICIENT_MEMORY", Message: "insufficient memory"}
	ErrArchiveOpenFailed      = &Error{Code: "ARCHIVE_OPEN_FAILED", Message: "unable to open archive"}
	ErrArchiveWriteFailed     = &Error{Code: "ARCHIVE_WRITE_FAILED", Message: "unable to write archive"}
	ErrDecompressionFailed    = &Error{Code: "DECOMPRESSION_FAILED", Message: "decompression failed"}
	ErrDestinationWriteFailed = &Error{Code: "DESTINATION_WRITE_FAILED", Message: "unable to write destination file"}
	ErrOutputNotReadable      = &Error{Code: "OUTPUT_NOT_READABLE", Message: "output file did not become readable"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
