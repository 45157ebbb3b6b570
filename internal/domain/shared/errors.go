package shared

import "fmt"

// Error codes used across the billing and inventory domains
const (
	CodeValidation                = "VALIDATION_ERROR"
	CodeNotFound                  = "NOT_FOUND"
	CodeAlreadyExists             = "ALREADY_EXISTS"
	CodeInvalidState              = "INVALID_STATE"
	CodeInsufficientStock         = "INSUFFICIENT_STOCK"
	CodeFinalizedInvoiceImmutable = "FINALIZED_INVOICE_IMMUTABLE"
	CodeAlreadyFinalized          = "ALREADY_FINALIZED"
	CodeAlreadyPaid               = "ALREADY_PAID"
	CodeDuplicateRequest          = "DUPLICATE_REQUEST"
	CodeUnauthorized              = "UNAUTHORIZED"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so that errors.Is
// matches a specific error against the package sentinels.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a VALIDATION_ERROR with a formatted message
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// NewNotFoundError creates a NOT_FOUND error naming the missing resource
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// Common domain errors
var (
	ErrValidation                = NewDomainError(CodeValidation, "Invalid input provided")
	ErrNotFound                  = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists             = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidState              = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInsufficientStock         = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrFinalizedInvoiceImmutable = NewDomainError(CodeFinalizedInvoiceImmutable, "Invoice is finalized and cannot be modified")
	ErrAlreadyFinalized          = NewDomainError(CodeAlreadyFinalized, "Invoice has already been finalized")
	ErrAlreadyPaid               = NewDomainError(CodeAlreadyPaid, "Invoice is already fully paid")
	ErrDuplicateRequest          = NewDomainError(CodeDuplicateRequest, "Request has already been processed")
	ErrUnauthorized              = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
)
