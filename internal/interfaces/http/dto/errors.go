package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed here fall back to 500.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	// Input errors -> 400 Bad Request
	"INVALID_INPUT":         http.StatusBadRequest,
	"INVALID_AMOUNT":        http.StatusBadRequest,
	"INVALID_ACCOUNT":       http.StatusBadRequest,
	"INVALID_ACCOUNT_NAME":  http.StatusBadRequest,
	"INVALID_SUPPLIER":      http.StatusBadRequest,
	"INVALID_SUPPLIER_NAME": http.StatusBadRequest,
	"INVALID_SUPPLIER_CODE": http.StatusBadRequest,
	"INVALID_DESCRIPTION":   http.StatusBadRequest,

	// Auth errors
	"UNAUTHENTICATED": http.StatusUnauthorized,

	// Resource errors
	"NOT_FOUND":      http.StatusNotFound,
	"ALREADY_EXISTS": http.StatusConflict,

	// Concurrency: the client can retry the same request
	"CONCURRENCY_CONFLICT":  http.StatusConflict,
	"VALIDATION_SUPERSEDED": http.StatusConflict,

	// Business rule violations -> 422 Unprocessable Entity
	"INVALID_STATE":        http.StatusUnprocessableEntity,
	"EXCEEDS_OPEN_BALANCE": http.StatusUnprocessableEntity,
	"INSUFFICIENT_BALANCE": http.StatusUnprocessableEntity,
	"NO_ACTIVE_PAYMENTS":   http.StatusUnprocessableEntity,
	"NO_OPEN_PURCHASES":    http.StatusUnprocessableEntity,
	"SUPPLIER_INACTIVE":    http.StatusUnprocessableEntity,
	"PAYMENT_MISMATCH":     http.StatusUnprocessableEntity,

	// Store unavailable
	"UNAVAILABLE": http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
