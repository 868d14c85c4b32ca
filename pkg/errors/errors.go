// Package errors provides structured error types for the minorminer engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and API
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: usage errors detected before any heuristic work
//   - UNKNOWN_*: references to labels or options that don't exist
//   - INTERNAL_*: invariant breaches inside the engine
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidOption, "threads must be >= 1, got %d", n)
//	if errors.Is(err, errors.ErrCodeInvalidOption) {
//	    // Handle usage error
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Usage errors, raised eagerly before any heuristic work.
	ErrCodeInvalidOption Code = "INVALID_OPTION"
	ErrCodeUnknownOption Code = "UNKNOWN_OPTION"
	ErrCodeUnknownNode   Code = "UNKNOWN_NODE"
	ErrCodeFixedOverlap  Code = "FIXED_OVERLAP"
	ErrCodePinCollision  Code = "PIN_COLLISION"
	ErrCodeInvalidChain  Code = "INVALID_CHAIN"
	ErrCodeInvalidInput  Code = "INVALID_INPUT"

	// Resource errors surfaced by the CLI and API.
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors: invariant breaches that terminate the call.
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// IsUsage reports whether err is a pre-run usage error, as opposed to an
// internal failure. Usage errors are safe to report verbatim to callers.
func IsUsage(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidOption, ErrCodeUnknownOption, ErrCodeUnknownNode,
		ErrCodeFixedOverlap, ErrCodePinCollision, ErrCodeInvalidChain,
		ErrCodeInvalidInput:
		return true
	}
	return false
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
