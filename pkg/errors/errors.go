// Package errors provides structured error types for stagger.
//
// Errors carry a machine-readable [Code] so callers (the CLI, hosts embedding
// the layout engine) can tell a caller bug from bad input or a failing
// measurement without matching on message text.
//
// # Error Codes
//
//   - INVALID_*: configuration, input and snapshot validation failures
//   - OUT_OF_RANGE: a position outside the dataset
//   - MEASURE_FAILED: the item measurement collaborator failed
//   - NOT_FOUND / FILE_NOT_FOUND: missing resources
//   - INTERNAL_ERROR / UNSUPPORTED: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeOutOfRange, "position %d outside [0, %d)", p, n)
//	if errors.Is(err, errors.ErrCodeOutOfRange) {
//	    // caller indexing bug
//	}
//
//	err := errors.Wrap(errors.ErrCodeMeasure, cause, "measure position %d", p)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidSnapshot Code = "INVALID_SNAPSHOT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"

	// Caller contract violations
	ErrCodeOutOfRange Code = "OUT_OF_RANGE"

	// Collaborator failures
	ErrCodeMeasure Code = "MEASURE_FAILED"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

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

// Is reports whether err carries the given code anywhere in its chain.
// Codes of wrapped *Error causes are checked too, so a MEASURE_FAILED error
// wrapped by a caller with its own code is still found.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
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

// OutOfRange reports a position outside [0, count).
func OutOfRange(position, count int) *Error {
	return New(ErrCodeOutOfRange, "position %d outside [0, %d)", position, count)
}
