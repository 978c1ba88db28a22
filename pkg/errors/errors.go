// Package errors provides structured error types for hierkit.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI, HTTP API, and library callers
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes map one-to-one onto the failure taxonomy of the converters and the
// robustness engine:
//   - FORMAT_PARSE: malformed or structurally invalid input file
//   - MALFORMED_HIERARCHY: structural invariant violation (cycle, no root,
//     member set inconsistent with descendants)
//   - LINKAGE_AMBIGUITY: both or neither of remote/local interactome linkage
//   - NOT_FOUND / NETWORK_ERROR: network-locator resolution failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeParse, "%s:%d: expected 3 columns, got %d", path, line, n)
//	if errors.Is(err, errors.ErrCodeParse) {
//	    // handle malformed input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMalformedHierarchy, cause, "validate %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input file errors
	ErrCodeParse         Code = "FORMAT_PARSE"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Structural errors
	ErrCodeMalformedHierarchy Code = "MALFORMED_HIERARCHY"
	ErrCodeLinkage            Code = "LINKAGE_AMBIGUITY"

	// Network-locator errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeNetwork  Code = "NETWORK_ERROR"

	// Internal errors
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
