package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for TwigSlot errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// TwigError represents a structured error with error code, message, and optional cause.
// It supports error wrapping and retryability hints for error handling logic.
type TwigError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *TwigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
// This enables using errors.Is() and errors.As() with wrapped errors.
func (e *TwigError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is a TwigError with the same Code.
func (e *TwigError) Is(target error) bool {
	var twigErr *TwigError
	if errors.As(target, &twigErr) {
		return e.Code == twigErr.Code
	}
	return false
}

// NewError creates a new non-retryable TwigError with the given code and message.
func NewError(code ErrorCode, message string) *TwigError {
	return &TwigError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     nil,
	}
}

// NewRetryableError creates a new retryable TwigError with the given code and message.
// Use this for transient errors that may succeed on retry (e.g., network timeouts).
func NewRetryableError(code ErrorCode, message string) *TwigError {
	return &TwigError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     nil,
	}
}

// WrapError creates a new non-retryable TwigError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *TwigError {
	return &TwigError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}

// HasCode reports whether err or any error in its chain is a TwigError
// carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	var twigErr *TwigError
	if errors.As(err, &twigErr) {
		return twigErr.Code == code
	}
	return false
}
