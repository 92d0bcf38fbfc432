package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeExceedsRemaining is used when a payment overshoots the open balance
	ErrCodeExceedsRemaining = "ERR_EXCEEDS_REMAINING"
	// ErrCodeInsufficientRemaining is used when a delivery line is over-consumed
	ErrCodeInsufficientRemaining = "ERR_INSUFFICIENT_REMAINING"
	// ErrCodeCorruptBalance is used when an outstanding balance is negative
	ErrCodeCorruptBalance = "ERR_CORRUPT_BALANCE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation: http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:          http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:          http.StatusUnprocessableEntity,
	ErrCodeExceedsRemaining:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientRemaining: http.StatusUnprocessableEntity,
	ErrCodeCorruptBalance:        http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps raw domain error codes to standardized API codes.
// Codes not listed here are treated as business rule violations when they
// start with a recognized prefix, otherwise as internal errors.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":          ErrCodeNotFound,
	"ALREADY_EXISTS":     ErrCodeAlreadyExists,
	"CONCURRENT_UPDATE":  ErrCodeConcurrencyConflict,
	"INVALID_STATE":      ErrCodeInvalidState,
	"INVALID_TRANSITION": ErrCodeInvalidState,
	"HAS_PAYMENTS":       ErrCodeInvalidState,

	"EXCEEDS_REMAINING":      ErrCodeExceedsRemaining,
	"INSUFFICIENT_REMAINING": ErrCodeInsufficientRemaining,
	"CORRUPT_BALANCE":        ErrCodeCorruptBalance,
	"NOTHING_OUTSTANDING":    ErrCodeBusinessRule,

	"NO_LINES":                  ErrCodeInvalidInput,
	"INVALID_AMOUNT":            ErrCodeInvalidInput,
	"INVALID_QUANTITY":          ErrCodeInvalidInput,
	"INVALID_PAYMENT_KIND":      ErrCodeInvalidInput,
	"INVALID_ORDER_DISCOUNT":    ErrCodeInvalidInput,
	"INVALID_LINE_DISCOUNT":     ErrCodeInvalidInput,
	"DISCOUNT_EXCEEDS_SUBTOTAL": ErrCodeInvalidInput,
	"INVALID_TAX_RATE":          ErrCodeInvalidInput,
	"INVALID_STATUS":            ErrCodeInvalidInput,
	"INVALID_KIND":              ErrCodeInvalidInput,
	"INVALID_REASON":            ErrCodeInvalidInput,
	"INVALID_CUSTOMER":          ErrCodeInvalidInput,
	"INVALID_CUSTOMER_NAME":     ErrCodeInvalidInput,
	"INVALID_COUNTERPARTY":      ErrCodeInvalidInput,
	"INVALID_INVOICE_NUMBER":    ErrCodeInvalidInput,
	"INVALID_ISSUE_DATE":        ErrCodeInvalidInput,
	"INVALID_VOUCHER_DATE":      ErrCodeInvalidInput,
	"INVALID_DOCUMENT":          ErrCodeInvalidInput,
	"INVALID_CODE":              ErrCodeInvalidInput,
	"INVALID_INPUT":             ErrCodeInvalidInput,
	"INVALID_USER":              ErrCodeInvalidInput,
	"DUPLICATE_LINE":            ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a raw domain error code to the standardized format.
// If the code is already in the new format or unknown, returns it as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
