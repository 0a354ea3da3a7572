package errors

import "net/http"

// ErrorCode represents the type of error
type ErrorCode string

const (
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrAuthRequired   ErrorCode = "AUTHENTICATION_REQUIRED"
	ErrForbidden      ErrorCode = "FORBIDDEN"
	ErrSelfBlock      ErrorCode = "SELF_BLOCK"
	ErrSelfInterest   ErrorCode = "SELF_INTEREST"
	ErrAlreadyBlocked ErrorCode = "ALREADY_BLOCKED"
	ErrConflict       ErrorCode = "CONFLICT"
	ErrValidation     ErrorCode = "VALIDATION_ERROR"
	ErrBadRequest     ErrorCode = "BAD_REQUEST"
	ErrInternalError  ErrorCode = "INTERNAL_ERROR"
	ErrRateLimited    ErrorCode = "RATE_LIMITED"
)

// StatusCodeMap maps ErrorCode to HTTP status code
var StatusCodeMap = map[ErrorCode]int{
	ErrNotFound:       http.StatusNotFound,
	ErrUnauthorized:   http.StatusUnauthorized,
	ErrAuthRequired:   http.StatusUnauthorized,
	ErrForbidden:      http.StatusForbidden,
	ErrSelfBlock:      http.StatusBadRequest,
	ErrSelfInterest:   http.StatusForbidden,
	ErrAlreadyBlocked: http.StatusConflict,
	ErrConflict:       http.StatusConflict,
	ErrValidation:     http.StatusUnprocessableEntity,
	ErrBadRequest:     http.StatusBadRequest,
	ErrInternalError:  http.StatusInternalServerError,
	ErrRateLimited:    http.StatusTooManyRequests,
}

// StatusCode returns the HTTP status code for this error code
func (e ErrorCode) StatusCode() int {
	if code, ok := StatusCodeMap[e]; ok {
		return code
	}
	return http.StatusInternalServerError
}
