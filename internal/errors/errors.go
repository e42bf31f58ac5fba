package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a courtbot error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrConflict       ErrorCode = "CONFLICT"
	ErrPlatform       ErrorCode = "PLATFORM" // chat platform call failed
	ErrInternal       ErrorCode = "INTERNAL"
)

// CourtError is a hard failure: a store or platform call that did not succeed.
// Expected user-facing outcomes are court.Response values, never CourtErrors.
type CourtError struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *CourtError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *CourtError) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates an error for malformed input.
func NewInvalidRequest(msg string) *CourtError {
	return &CourtError{
		Code:    ErrInvalidRequest,
		Message: msg,
	}
}

// NewNotFound creates an error for a record that was assumed to exist.
func NewNotFound(kind, identifier string) *CourtError {
	return &CourtError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewConflict creates an error for a write that collided with existing state.
func NewConflict(msg string) *CourtError {
	return &CourtError{
		Code:    ErrConflict,
		Message: msg,
	}
}

// NewPlatform wraps a failed chat platform call. op names the call, e.g. "create role".
func NewPlatform(op string, err error) *CourtError {
	msg := op
	if err != nil {
		msg = fmt.Sprintf("%s: %v", op, err)
	}
	return &CourtError{
		Code:    ErrPlatform,
		Message: msg,
		Details: map[string]any{"op": op},
		Err:     err,
	}
}

// NewInternal creates an error for unexpected internal failures.
func NewInternal(err error) *CourtError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &CourtError{
		Code:    ErrInternal,
		Message: msg,
		Err:     err,
	}
}

// Is reports whether err, or any error it wraps, is a CourtError with the given code.
func Is(err error, code ErrorCode) bool {
	var cErr *CourtError
	if stderrors.As(err, &cErr) {
		return cErr.Code == code
	}
	return false
}
