package dto

import (
	"net/http"

	"github.com/erp/treasury/internal/domain/shared"
)

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
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidAmount is used for zero, negative or malformed amounts
	ErrCodeInvalidAmount = "ERR_INVALID_AMOUNT"
	// ErrCodeCounterpartAccountInvalid is used when a transfer names a bad counterpart
	ErrCodeCounterpartAccountInvalid = "ERR_COUNTERPART_ACCOUNT_INVALID"
)

// Identity error codes
const (
	// ErrCodeUnauthorized is used when tenant or user identification is missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when a conditional update lost the race
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeSessionAlreadyOpen is used when a register already has an open session
	ErrCodeSessionAlreadyOpen = "ERR_SESSION_ALREADY_OPEN"
	// ErrCodeMovementReconciled is used when deleting a reconciled movement
	ErrCodeMovementReconciled = "ERR_MOVEMENT_RECONCILED"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeAlreadyConfirmed is used when confirming a confirmed payment order
	ErrCodeAlreadyConfirmed = "ERR_ALREADY_CONFIRMED"
	// ErrCodeInvalidVoucherState is used when a voucher cannot take part in an operation
	ErrCodeInvalidVoucherState = "ERR_INVALID_VOUCHER_STATE"
	// ErrCodeNoOpenSession is used when a cash payment finds no open session
	ErrCodeNoOpenSession = "ERR_NO_OPEN_SESSION"
	// ErrCodeAccountInactive is used when a bank account does not accept movements
	ErrCodeAccountInactive = "ERR_ACCOUNT_INACTIVE"
	// ErrCodeRegisterInactive is used when a cash register is not active
	ErrCodeRegisterInactive = "ERR_REGISTER_INACTIVE"
	// ErrCodeAmountExceedsAvailable is used when an amount is above what a document has left
	ErrCodeAmountExceedsAvailable = "ERR_AMOUNT_EXCEEDS_AVAILABLE"
	// ErrCodeAmountExceedsRemaining is used when a projection link is above the remainder
	ErrCodeAmountExceedsRemaining = "ERR_AMOUNT_EXCEEDS_REMAINING"
)

// Dependency error codes
const (
	// ErrCodeExternalDependency is used when a downstream system failed
	ErrCodeExternalDependency = "ERR_EXTERNAL_DEPENDENCY_FAILURE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:                http.StatusBadRequest,
	ErrCodeBadRequest:                http.StatusBadRequest,
	ErrCodeInvalidInput:              http.StatusBadRequest,
	ErrCodeInvalidAmount:             http.StatusBadRequest,
	ErrCodeCounterpartAccountInvalid: http.StatusBadRequest,

	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeSessionAlreadyOpen:  http.StatusConflict,
	ErrCodeMovementReconciled:  http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:           http.StatusUnprocessableEntity,
	ErrCodeAlreadyConfirmed:       http.StatusUnprocessableEntity,
	ErrCodeInvalidVoucherState:    http.StatusUnprocessableEntity,
	ErrCodeNoOpenSession:          http.StatusUnprocessableEntity,
	ErrCodeAccountInactive:        http.StatusUnprocessableEntity,
	ErrCodeRegisterInactive:       http.StatusUnprocessableEntity,
	ErrCodeAmountExceedsAvailable: http.StatusUnprocessableEntity,
	ErrCodeAmountExceedsRemaining: http.StatusUnprocessableEntity,

	ErrCodeExternalDependency: http.StatusBadGateway,
}

// kindHTTPStatus is the fallback for domain codes without an explicit entry
var kindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindNotFound:               http.StatusNotFound,
	shared.KindInvalidInput:           http.StatusBadRequest,
	shared.KindInvalidState:           http.StatusUnprocessableEntity,
	shared.KindAmountExceedsAvailable: http.StatusUnprocessableEntity,
	shared.KindResourceConflict:       http.StatusConflict,
	shared.KindExternalDependency:     http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorStatus resolves the status of a domain error, first by its
// normalized code and then by its kind.
func DomainErrorStatus(err *shared.DomainError) (string, int) {
	code := NormalizeErrorCode(err.Code)
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return code, status
	}
	if status, ok := kindHTTPStatus[err.Kind]; ok {
		return code, status
	}
	return code, http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                   ErrCodeNotFound,
	"ALREADY_EXISTS":              ErrCodeAlreadyExists,
	"INVALID_INPUT":               ErrCodeInvalidInput,
	"INVALID_AMOUNT":              ErrCodeInvalidAmount,
	"INVALID_STATE":               ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT":        ErrCodeConcurrencyConflict,
	"RESOURCE_CONFLICT":           ErrCodeConflict,
	"ALREADY_CONFIRMED":           ErrCodeAlreadyConfirmed,
	"INVALID_VOUCHER_STATE":       ErrCodeInvalidVoucherState,
	"NO_OPEN_SESSION":             ErrCodeNoOpenSession,
	"ACCOUNT_INACTIVE":            ErrCodeAccountInactive,
	"REGISTER_INACTIVE":           ErrCodeRegisterInactive,
	"COUNTERPART_ACCOUNT_INVALID": ErrCodeCounterpartAccountInvalid,
	"AMOUNT_EXCEEDS_AVAILABLE":    ErrCodeAmountExceedsAvailable,
	"AMOUNT_EXCEEDS_REMAINING":    ErrCodeAmountExceedsRemaining,
	"SESSION_ALREADY_OPEN":        ErrCodeSessionAlreadyOpen,
	"MOVEMENT_RECONCILED":         ErrCodeMovementReconciled,
	"EXTERNAL_DEPENDENCY_FAILURE": ErrCodeExternalDependency,
	"VALIDATION_ERROR":            ErrCodeValidation,
	"BAD_REQUEST":                 ErrCodeBadRequest,
	"INTERNAL_ERROR":              ErrCodeInternal,
	"UNAUTHORIZED":                ErrCodeUnauthorized,
}

// NormalizeErrorCode converts a domain error code to the API format
// If the code is already in the API format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
