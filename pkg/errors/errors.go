package errors

import (
	"errors"
	"fmt"
)

// Error represents a typed domain error carrying a machine reason code.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New("NOT_FOUND", "resource not found")
	ErrDuplicate          = New("DUPLICATE", "resource already exists")
	ErrValidation         = New("VALIDATION_ERROR", "validation failed")
	ErrInvalidState       = New("INVALID_STATE", "invalid state value")
	ErrInvalidEdge        = New("INVALID_EDGE", "invalid prerequisite edge")
	ErrCycle              = New("CYCLE", "operation would create a cycle")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", "precondition failed")
	ErrConflict           = New("CONFLICT", "conflict")
	ErrInternal           = New("INTERNAL_ERROR", "internal error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Message)
}

// HasCode reports whether err carries the given reason code.
func HasCode(err error, code string) bool {
	e := FromError(err)
	return e != nil && e.Code == code
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
