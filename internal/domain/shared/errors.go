package shared

import "errors"

// DomainError represents a business-rule violation that callers are expected
// to handle. The Code is machine readable; Message carries the offending
// values so the UI never has to re-derive them.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound             = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists        = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput         = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict  = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthenticated      = NewDomainError("UNAUTHENTICATED", "Acting user identity is required")
	ErrInvalidState         = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientBalance  = NewDomainError("INSUFFICIENT_BALANCE", "Insufficient account balance")
	ErrUnavailable          = NewDomainError("UNAVAILABLE", "Ledger store is unavailable")
	ErrValidationSuperseded = NewDomainError("VALIDATION_SUPERSEDED", "Validation was superseded by a newer request")
)

// AsDomainError unwraps err into a DomainError if one is present in its chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
