package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Limit   int       `json:"limit,omitempty"`
	Details string    `json:"details,omitempty"`
	Status  int       `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetails adds additional details to an error
func (e *APIError) WithDetails(details string) *APIError {
	e.Details = details
	return e
}

// As unwraps err into an *APIError if it is one.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsCode reports whether err is an APIError with the given code.
func IsCode(err error, code ErrorCode) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Code == code
}

// NotFound creates a NOT_FOUND error
func NotFound(resource string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
	}
}

// Unauthorized creates an UNAUTHORIZED error
func Unauthorized(message string) *APIError {
	return &APIError{
		Code:    ErrUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

// AuthenticationRequired creates an AUTHENTICATION_REQUIRED error. Guests
// (session-only identities) hit this on any write that requires a verified
// account.
func AuthenticationRequired(action string) *APIError {
	return &APIError{
		Code:    ErrAuthRequired,
		Message: fmt.Sprintf("sign in required to %s", action),
		Status:  http.StatusUnauthorized,
	}
}

// Forbidden creates a FORBIDDEN error
func Forbidden(message string) *APIError {
	return &APIError{
		Code:    ErrForbidden,
		Message: message,
		Status:  http.StatusForbidden,
	}
}

// SelfBlock creates a SELF_BLOCK error
func SelfBlock() *APIError {
	return &APIError{
		Code:    ErrSelfBlock,
		Message: "cannot block yourself",
		Status:  http.StatusBadRequest,
	}
}

// SelfInterest creates a SELF_INTEREST error
func SelfInterest() *APIError {
	return &APIError{
		Code:    ErrSelfInterest,
		Message: "cannot express interest in your own request",
		Status:  http.StatusForbidden,
	}
}

// AlreadyBlocked creates an ALREADY_BLOCKED error
func AlreadyBlocked() *APIError {
	return &APIError{
		Code:    ErrAlreadyBlocked,
		Message: "user is already blocked",
		Status:  http.StatusConflict,
	}
}

// Conflict creates a CONFLICT error
func Conflict(resource string) *APIError {
	return &APIError{
		Code:    ErrConflict,
		Message: fmt.Sprintf("%s already exists or is in an invalid state", resource),
		Status:  http.StatusConflict,
	}
}

// ValidationError creates a VALIDATION_ERROR
func ValidationError(field, message string) *APIError {
	return &APIError{
		Code:    ErrValidation,
		Message: message,
		Field:   field,
		Status:  http.StatusUnprocessableEntity,
	}
}

// ValidationTooLong creates a VALIDATION_ERROR for an over-limit field,
// recording the limit and the actual length.
func ValidationTooLong(field string, limit, actual int) *APIError {
	return &APIError{
		Code:    ErrValidation,
		Message: fmt.Sprintf("%s must be at most %d characters (got %d)", field, limit, actual),
		Field:   field,
		Limit:   limit,
		Details: fmt.Sprintf("actual length %d", actual),
		Status:  http.StatusUnprocessableEntity,
	}
}

// ValidationRequired creates a VALIDATION_ERROR for an empty required field.
func ValidationRequired(field string) *APIError {
	return &APIError{
		Code:    ErrValidation,
		Message: fmt.Sprintf("%s must not be empty", field),
		Field:   field,
		Status:  http.StatusUnprocessableEntity,
	}
}

// BadRequest creates a BAD_REQUEST error
func BadRequest(message string) *APIError {
	return &APIError{
		Code:    ErrBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// InternalError creates an INTERNAL_ERROR
func InternalError(message string) *APIError {
	return &APIError{
		Code:    ErrInternalError,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}

// RateLimited creates a RATE_LIMITED error
func RateLimited(message string) *APIError {
	if message == "" {
		message = "rate limit exceeded"
	}
	return &APIError{
		Code:    ErrRateLimited,
		Message: message,
		Status:  http.StatusTooManyRequests,
	}
}
