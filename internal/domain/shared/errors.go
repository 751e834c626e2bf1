package shared

import "errors"

// ErrorKind classifies domain errors so callers can react to the category
// without matching every specific code.
type ErrorKind string

const (
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindInvalidInput           ErrorKind = "INVALID_INPUT"
	KindInvalidState           ErrorKind = "INVALID_STATE"
	KindAmountExceedsAvailable ErrorKind = "AMOUNT_EXCEEDS_AVAILABLE"
	KindResourceConflict       ErrorKind = "RESOURCE_CONFLICT"
	KindExternalDependency     ErrorKind = "EXTERNAL_DEPENDENCY_FAILURE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Kind    ErrorKind `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so that errors.Is works
// against the sentinel values below even when the message was customised.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of the error with a more specific message
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{Code: e.Code, Message: message, Kind: e.Kind}
}

// NewDomainError creates a new domain error. The kind is derived from the code.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    KindOf(code),
	}
}

// codeKinds maps specific codes onto the error taxonomy.
var codeKinds = map[string]ErrorKind{
	"NOT_FOUND":                   KindNotFound,
	"INVALID_INPUT":               KindInvalidInput,
	"INVALID_AMOUNT":              KindInvalidInput,
	"INVALID_STATE":               KindInvalidState,
	"ALREADY_CONFIRMED":           KindInvalidState,
	"INVALID_VOUCHER_STATE":       KindInvalidState,
	"NO_OPEN_SESSION":             KindInvalidState,
	"ACCOUNT_INACTIVE":            KindInvalidState,
	"REGISTER_INACTIVE":           KindInvalidState,
	"COUNTERPART_ACCOUNT_INVALID": KindInvalidInput,
	"AMOUNT_EXCEEDS_AVAILABLE":    KindAmountExceedsAvailable,
	"AMOUNT_EXCEEDS_REMAINING":    KindAmountExceedsAvailable,
	"RESOURCE_CONFLICT":           KindResourceConflict,
	"ALREADY_EXISTS":              KindResourceConflict,
	"SESSION_ALREADY_OPEN":        KindResourceConflict,
	"MOVEMENT_RECONCILED":         KindResourceConflict,
	"CONCURRENCY_CONFLICT":        KindResourceConflict,
	"EXTERNAL_DEPENDENCY_FAILURE": KindExternalDependency,
}

// KindOf returns the taxonomy kind of an error code. Unknown codes are
// treated as invalid input.
func KindOf(code string) ErrorKind {
	if kind, ok := codeKinds[code]; ok {
		return kind
	}
	return KindInvalidInput
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidAmount       = NewDomainError("INVALID_AMOUNT", "Invalid amount")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrResourceConflict    = NewDomainError("RESOURCE_CONFLICT", "Resource is in conflict with the requested operation")
	ErrExternalDependency  = NewDomainError("EXTERNAL_DEPENDENCY_FAILURE", "External dependency failed")
)

// Treasury specific errors
var (
	ErrAlreadyConfirmed          = NewDomainError("ALREADY_CONFIRMED", "Payment order is already confirmed")
	ErrNoOpenSession             = NewDomainError("NO_OPEN_SESSION", "Cash register has no open session")
	ErrAccountInactive           = NewDomainError("ACCOUNT_INACTIVE", "Bank account is not active")
	ErrCounterpartAccountInvalid = NewDomainError("COUNTERPART_ACCOUNT_INVALID", "Counterpart account is not valid for this movement")
	ErrMovementReconciled        = NewDomainError("MOVEMENT_RECONCILED", "Reconciled movements cannot be deleted")
	ErrAmountExceedsAvailable    = NewDomainError("AMOUNT_EXCEEDS_AVAILABLE", "Amount exceeds the available balance")
	ErrAmountExceedsRemaining    = NewDomainError("AMOUNT_EXCEEDS_REMAINING", "Amount exceeds the remaining projected amount")
	ErrInvalidVoucherState       = NewDomainError("INVALID_VOUCHER_STATE", "Voucher is not in a state that allows this operation")
	ErrRegisterInactive          = NewDomainError("REGISTER_INACTIVE", "Cash register is not active")
	ErrSessionAlreadyOpen        = NewDomainError("SESSION_ALREADY_OPEN", "Cash register already has an open session")
)

// KindOfError extracts the kind of a domain error, or "" for other errors
func KindOfError(err error) ErrorKind {
	var de *DomainError
	if !errors.As(err, &de) {
		return ""
	}
	return de.Kind
}
