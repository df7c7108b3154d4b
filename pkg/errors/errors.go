// Package errors provides coded errors shared by the importer, the store,
// the display pipeline and the HTTP API.
//
// Every failure a caller may act on carries a [Code]. Import code uses the
// code to decide whether a row is skipped (INVALID_*, LOOKUP_FAILED,
// DUPLICATE) or the run must stop (PERSISTENCE_*). The HTTP API maps codes
// to status codes and echoes them in the error body.
//
//	err := errors.New(errors.ErrCodeInvalidHandle, "empty handle for %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidHandle) {
//	    // skip the row
//	}
//
//	err = errors.Wrap(errors.ErrCodeLookupFailed, cause, "resolve %s", handle)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Rejected input. The row or request is skipped.
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidHandle  Code = "INVALID_HANDLE"
	ErrCodeInvalidName    Code = "INVALID_NAME"
	ErrCodeInvalidOptions Code = "INVALID_OPTIONS"

	// Missing resources.
	ErrCodeProjectNotFound Code = "PROJECT_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

	// Provider lookups and deadlines.
	ErrCodeLookupFailed Code = "LOOKUP_FAILED"
	ErrCodeRateLimited  Code = "RATE_LIMITED"
	ErrCodeTimeout      Code = "TIMEOUT"

	// ErrCodeDuplicate marks a handle whose identity is already stored.
	// Re-importing the same file produces only these.
	ErrCodeDuplicate Code = "DUPLICATE"

	// The stored record set cannot be read or written.
	ErrCodePersistenceCorrupt Code = "PERSISTENCE_CORRUPT"
	ErrCodePersistenceWrite   Code = "PERSISTENCE_WRITE"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
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

// Is reports whether the first *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the first *Error in the chain without
// its code prefix, or err.Error() for uncoded errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
