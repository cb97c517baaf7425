// Package errors provides structured error types for labelmap.
//
// Every failure that aborts a layout run carries a machine-readable [Code] so
// the CLI and the HTTP server can report it consistently:
//
//   - INVALID_CONFIGURATION: a numeric option is missing, non-numeric or not
//     finite. Detected before any placement work starts.
//   - PLACEMENT_EXHAUSTED: the candidate search ran out of positions for a
//     label that is not allowed to be discarded. The whole run is aborted.
//   - INVALID_INPUT / FILE_NOT_FOUND: unreadable or malformed input documents.
//   - NETWORK_ERROR: fetching image metrics from a remote source failed.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfiguration, "option %q is not a number", key)
//	if errors.Is(err, errors.ErrCodeInvalidConfiguration) {
//	    // Handle bad configuration
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "fetch %s", url)
//
// Failures worth another attempt are marked with [Transient] and retried by
// [Retry] under a [Backoff] policy.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Fatal layout errors
	ErrCodeInvalidConfiguration Code = "INVALID_CONFIGURATION"
	ErrCodePlacementExhausted   Code = "PLACEMENT_EXHAUSTED"

	// Input errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsFatal reports whether err is one of the two error kinds that abort a
// layout run without producing any output.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidConfiguration, ErrCodePlacementExhausted:
		return true
	}
	return false
}

// InvalidConfiguration is shorthand for New(ErrCodeInvalidConfiguration, ...).
func InvalidConfiguration(format string, args ...any) *Error {
	return New(ErrCodeInvalidConfiguration, format, args...)
}

// PlacementExhausted reports that no collision-free position exists for id.
func PlacementExhausted(id string) *Error {
	return New(ErrCodePlacementExhausted, "could not position %s", id)
}
