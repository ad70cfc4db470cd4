package apperrors

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Codes
// =============================================================================

type ErrorCode string

const (
	ErrorCodeInternalError   ErrorCode = "INTERNAL_ERROR"
	ErrorCodeValidationError ErrorCode = "VALIDATION_ERROR"
	ErrorCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrorCodeIntegrityError  ErrorCode = "INTEGRITY_ERROR"
)

// Sentinels for errors.Is. Any AppError with the same code matches.
var (
	ErrNotFound   = &AppError{Code: ErrorCodeNotFound, Message: "not found", StatusCode: 404}
	ErrIntegrity  = &AppError{Code: ErrorCodeIntegrityError, Message: "integrity violation", StatusCode: 409}
	ErrValidation = &AppError{Code: ErrorCodeValidationError, Message: "validation failed", StatusCode: 400}
)

// AppError is the base error type returned by the store.
// StatusCode is the HTTP status a request layer should map the error to.
type AppError struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Details    map[string]any
	Err        error // underlying driver error, if any
}

func (err *AppError) Error() string {
	if err.Err != nil {
		return err.Message + ": " + err.Err.Error()
	}
	return err.Message
}

// Unwrap exposes the underlying driver error.
func (err *AppError) Unwrap() error {
	return err.Err
}

// Is reports whether target is an AppError with the same code.
func (err *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == err.Code
}

func NewAppError(code ErrorCode, message string, statusCode int, details map[string]any) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

func NewValidationError(message string, details map[string]any) *AppError {
	return NewAppError(ErrorCodeValidationError, message, 400, details)
}

// NewNotFoundResource builds a NotFound error for a lookup by key.
// Example: NewNotFoundResource("device", 7) -> "device not found: 7"
func NewNotFoundResource(resource string, id any) *AppError {
	message := resource + " not found"
	details := map[string]any{
		"resource": resource,
	}
	if id != nil {
		message = fmt.Sprintf("%s not found: %v", resource, id)
		details["id"] = id
	}
	return NewAppError(ErrorCodeNotFound, message, 404, details)
}

// NewIntegrityError wraps a constraint violation reported by the storage engine.
func NewIntegrityError(resource string, cause error) *AppError {
	err := NewAppError(ErrorCodeIntegrityError, resource+" violates a storage constraint", 409, map[string]any{
		"resource": resource,
	})
	err.Err = cause
	return err
}

func NewInternalError(message string) *AppError {
	return NewAppError(ErrorCodeInternalError, message, 500, nil)
}

// EnsureAppError converts an arbitrary error into an AppError.
func EnsureAppError(err error) *AppError {
	if err == nil {
		return NewInternalError("Unknown error")
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	internal := NewInternalError("Internal error")
	internal.Err = err
	return internal
}
