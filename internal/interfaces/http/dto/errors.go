package dto

import (
	"errors"
	"net/http"

	"github.com/shopbill/backend/internal/domain/shared"
)

// Transport-level error codes. Domain failures keep their domain code.
const (
	// ErrCodeInternal is used for unexpected server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeUnauthorized is used when the caller cannot be identified
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeRouteNotFound is used for unknown routes
	ErrCodeRouteNotFound = "ERR_ROUTE_NOT_FOUND"
	ErrCodeRateLimited   = "ERR_RATE_LIMITED"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeValidation:                http.StatusBadRequest,
	shared.CodeNotFound:                  http.StatusNotFound,
	shared.CodeAlreadyExists:             http.StatusConflict,
	shared.CodeAlreadyFinalized:          http.StatusConflict,
	shared.CodeAlreadyPaid:               http.StatusConflict,
	shared.CodeDuplicateRequest:          http.StatusConflict,
	shared.CodeInsufficientStock:         http.StatusUnprocessableEntity,
	shared.CodeFinalizedInvoiceImmutable: http.StatusUnprocessableEntity,
	shared.CodeInvalidState:              http.StatusUnprocessableEntity,
	shared.CodeUnauthorized:              http.StatusForbidden,

	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeRouteNotFound:   http.StatusNotFound,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are internal errors.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorFromError converts err to the status and error body sent to the
// client. Anything that is not a domain error is reported as an internal
// error without its message.
func ErrorFromError(err error) (int, *ErrorInfo) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return GetHTTPStatus(domainErr.Code), &ErrorInfo{Code: domainErr.Code, Message: domainErr.Message}
	}
	return http.StatusInternalServerError, &ErrorInfo{Code: ErrCodeInternal, Message: "An unexpected error occurred"}
}
