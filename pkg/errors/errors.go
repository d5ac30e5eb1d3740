package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common application errors
var (
	ErrInvalidID    = NewValidationError("id", "must be a valid identifier")
	ErrUnauthorized = NewUnauthorizedError("unauthorized access")
)

// HTTPStatuser is implemented by errors that map onto an HTTP status code.
type HTTPStatuser interface {
	HTTPStatus() int
	Code() string
}

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// HTTPStatus returns the HTTP status for this error
func (e *ValidationError) HTTPStatus() int { return http.StatusBadRequest }

// Code returns the machine-readable error code
func (e *ValidationError) Code() string {
	if e.Field == "id" {
		return "invalid_id"
	}
	return "validation_error"
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// HTTPStatus returns the HTTP status for this error
func (e *NotFoundError) HTTPStatus() int { return http.StatusNotFound }

// Code returns the machine-readable error code
func (e *NotFoundError) Code() string { return "not_found" }

// AlreadyExistsError represents a resource already exists error
type AlreadyExistsError struct {
	Resource string
	Message  string
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(resource, message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

// HTTPStatus returns the HTTP status for this error
func (e *AlreadyExistsError) HTTPStatus() int { return http.StatusConflict }

// Code returns the machine-readable error code
func (e *AlreadyExistsError) Code() string { return "already_exists" }

// UnauthorizedError represents a failed authentication. The cause is kept
// for logging only and is never rendered to the caller.
type UnauthorizedError struct {
	Message string
	Err     error
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

// Error implements the error interface
func (e *UnauthorizedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *UnauthorizedError) Unwrap() error { return e.Err }

// HTTPStatus returns the HTTP status for this error
func (e *UnauthorizedError) HTTPStatus() int { return http.StatusUnauthorized }

// Code returns the machine-readable error code
func (e *UnauthorizedError) Code() string { return "unauthorized" }

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for this error
func (e *InternalError) HTTPStatus() int { return http.StatusInternalServerError }

// Code returns the machine-readable error code
func (e *InternalError) Code() string { return "internal_error" }

// StatusOf resolves the HTTP status and code for any error. Unclassified
// errors are reported as internal.
func StatusOf(err error) (int, string) {
	var s HTTPStatuser
	if errors.As(err, &s) {
		return s.HTTPStatus(), s.Code()
	}
	return http.StatusInternalServerError, "internal_error"
}
