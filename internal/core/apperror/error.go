// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Gateway failures (5xx)
	CodeInternal    = "INTERNAL_ERROR"
	CodeUnavailable = "BACKEND_UNAVAILABLE"

	// Validation errors (400)
	CodeValidation = "VALIDATION_ERROR"

	// Backend rejected the request; status mirrors the backend's
	CodeUpstream = "BACKEND_ERROR"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict = "CONFLICT"
)

// GenericUpstreamMessage is shown when the backend gives no usable message.
const GenericUpstreamMessage = "Something went wrong. Please try again."

// AppError is the standard error type for the gateway.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewFieldValidation creates a validation error bound to a form field.
func NewFieldValidation(field, message string) *AppError {
	return NewValidation(message).WithDetail("field", field)
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewUpstream creates an error for a backend response outside 2xx.
// An empty message falls back to GenericUpstreamMessage. 5xx statuses are
// reported to the browser as 502.
func NewUpstream(status int, message string) *AppError {
	if message == "" {
		message = GenericUpstreamMessage
	}
	httpStatus := status
	if status >= 500 || status < 400 {
		httpStatus = http.StatusBadGateway
	}
	return &AppError{
		Code:       CodeUpstream,
		Message:    message,
		HTTPStatus: httpStatus,
		Details:    map[string]any{"backend_status": status},
	}
}

// NewUnavailable creates an error for a backend that could not be reached (503).
func NewUnavailable(err error) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    GenericUpstreamMessage,
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// --- Helper functions ---

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func hasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsValidation checks if error is CodeValidation
func IsValidation(err error) bool { return hasCode(err, CodeValidation) }

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool { return hasCode(err, CodeNotFound) }

// IsUnauthorized checks if error is CodeUnauthorized
func IsUnauthorized(err error) bool { return hasCode(err, CodeUnauthorized) }
