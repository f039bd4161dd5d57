package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	// ErrMissingIndex marks an ordered read rejected by the backing store
	// because the composite index it needs was never provisioned.
	ErrMissingIndex
	// ErrReadDegraded marks a read that was swallowed and answered with its
	// safe default instead of being surfaced to the caller.
	ErrReadDegraded
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func NewUnauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func NewForbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

// NewMissingIndex wraps a store error that identifies an unprovisioned index.
func NewMissingIndex(collection string, err error) *AppError {
	return &AppError{
		Code:    ErrMissingIndex,
		Message: fmt.Sprintf("ordered read on %s requires a missing index", collection),
		Err:     err,
	}
}

// NewReadDegraded wraps the error behind a read answered with its safe default.
func NewReadDegraded(op string, err error) *AppError {
	return &AppError{
		Code:    ErrReadDegraded,
		Message: fmt.Sprintf("%s degraded to safe default", op),
		Err:     err,
	}
}

// IsMissingIndex reports whether err, anywhere in its chain, is a
// missing-index rejection from the store.
func IsMissingIndex(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == ErrMissingIndex
	}
	return false
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == ErrNotFound
	}
	return false
}
