package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for cardlore errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// Request error codes
const (
	ARGUMENT_MISSING  ErrorCode = "ARGUMENT_MISSING"
	ARGUMENT_INVALID  ErrorCode = "ARGUMENT_INVALID"
	OPERATION_UNKNOWN ErrorCode = "OPERATION_UNKNOWN"
)

// ErrorKind classifies an error for callers that must map failures to
// different responses (exit codes, GraphQL extension codes, HTTP status).
type ErrorKind string

const (
	// KindValidation marks a request rejected before it touched the store.
	KindValidation ErrorKind = "validation"
	// KindNotFound marks an absent anchor entity where absence is exceptional.
	KindNotFound ErrorKind = "not_found"
	// KindInfrastructure marks store, session or query failures.
	KindInfrastructure ErrorKind = "infrastructure"
)

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	return string(k)
}

// LoreError represents a structured error with error code, kind, message, and optional cause.
type LoreError struct {
	Code      ErrorCode
	Kind      ErrorKind
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *LoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
func (e *LoreError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a LoreError with the same Code.
func (e *LoreError) Is(target error) bool {
	var loreErr *LoreError
	if errors.As(target, &loreErr) {
		return e.Code == loreErr.Code
	}
	return false
}

// NewError creates a new infrastructure LoreError with the given code and message.
func NewError(code ErrorCode, message string) *LoreError {
	return &LoreError{
		Code:    code,
		Kind:    KindInfrastructure,
		Message: message,
	}
}

// WrapError creates a new infrastructure LoreError that wraps an existing error.
func WrapError(code ErrorCode, message string, cause error) *LoreError {
	return &LoreError{
		Code:    code,
		Kind:    KindInfrastructure,
		Message: message,
		Cause:   cause,
	}
}

// NewValidationError creates a LoreError for a request that is malformed or
// missing a required argument.
func NewValidationError(code ErrorCode, message string) *LoreError {
	return &LoreError{
		Code:    code,
		Kind:    KindValidation,
		Message: message,
	}
}

// NewNotFoundError creates a LoreError for an absent anchor entity.
func NewNotFoundError(code ErrorCode, message string) *LoreError {
	return &LoreError{
		Code:    code,
		Kind:    KindNotFound,
		Message: message,
	}
}

// KindOf returns the kind of the first LoreError in err's chain.
// Errors that carry no LoreError are infrastructure errors.
func KindOf(err error) ErrorKind {
	var loreErr *LoreError
	if errors.As(err, &loreErr) && loreErr.Kind != "" {
		return loreErr.Kind
	}
	return KindInfrastructure
}

// IsNotFound reports whether err is a not-found domain error.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return err != nil && KindOf(err) == KindValidation
}

// IsInfrastructure reports whether err is an infrastructure error.
func IsInfrastructure(err error) bool {
	return err != nil && KindOf(err) == KindInfrastructure
}
