package purchasing

import (
	"fmt"
	"time"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle of a purchase invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft       InvoiceStatus = "DRAFT"
	InvoiceStatusConfirmed   InvoiceStatus = "CONFIRMED"
	InvoiceStatusPartialPaid InvoiceStatus = "PARTIAL_PAID"
	InvoiceStatusPaid        InvoiceStatus = "PAID"
	InvoiceStatusCancelled   InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a known InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusConfirmed, InvoiceStatusPartialPaid,
		InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true for PAID and CANCELLED
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// IsPayable returns true when payments or compensations may be allocated
func (s InvoiceStatus) IsPayable() bool {
	return s == InvoiceStatusConfirmed || s == InvoiceStatusPartialPaid
}

// IsSettlementSource reports whether a credit note in this status may
// compensate other invoices
func (s InvoiceStatus) IsSettlementSource() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusCancelled:
		return false
	case InvoiceStatusConfirmed, InvoiceStatusPartialPaid, InvoiceStatusPaid:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
// Statuses only move forward; CANCELLED is reachable from any pre-PAID state.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return next == InvoiceStatusConfirmed || next == InvoiceStatusCancelled
	case InvoiceStatusConfirmed:
		return next == InvoiceStatusPartialPaid || next == InvoiceStatusPaid || next == InvoiceStatusCancelled
	case InvoiceStatusPartialPaid:
		return next == InvoiceStatusPaid || next == InvoiceStatusCancelled
	case InvoiceStatusPaid, InvoiceStatusCancelled:
		return false
	}
	return false
}

// VoucherType is the fiscal document type of a purchase voucher
type VoucherType string

const (
	VoucherInvoiceA    VoucherType = "INVOICE_A"
	VoucherInvoiceB    VoucherType = "INVOICE_B"
	VoucherInvoiceC    VoucherType = "INVOICE_C"
	VoucherDebitNoteA  VoucherType = "DEBIT_NOTE_A"
	VoucherDebitNoteB  VoucherType = "DEBIT_NOTE_B"
	VoucherDebitNoteC  VoucherType = "DEBIT_NOTE_C"
	VoucherCreditNoteA VoucherType = "CREDIT_NOTE_A"
	VoucherCreditNoteB VoucherType = "CREDIT_NOTE_B"
	VoucherCreditNoteC VoucherType = "CREDIT_NOTE_C"
)

// IsValid checks if the voucher type is known
func (v VoucherType) IsValid() bool {
	switch v {
	case VoucherInvoiceA, VoucherInvoiceB, VoucherInvoiceC,
		VoucherDebitNoteA, VoucherDebitNoteB, VoucherDebitNoteC,
		VoucherCreditNoteA, VoucherCreditNoteB, VoucherCreditNoteC:
		return true
	}
	return false
}

// IsCreditNote returns true for the credit note variants
func (v VoucherType) IsCreditNote() bool {
	switch v {
	case VoucherCreditNoteA, VoucherCreditNoteB, VoucherCreditNoteC:
		return true
	}
	return false
}

// IsDebitNote returns true for the debit note variants
func (v VoucherType) IsDebitNote() bool {
	switch v {
	case VoucherDebitNoteA, VoucherDebitNoteB, VoucherDebitNoteC:
		return true
	}
	return false
}

// PurchaseInvoice is a supplier voucher (invoice, debit note or credit note).
// Credit notes may point at the invoice they were issued against through
// OriginalInvoiceID.
type PurchaseInvoice struct {
	shared.TenantAggregateRoot
	FullNumber        string
	VoucherType       VoucherType
	SupplierID        uuid.UUID
	PurchaseOrderID   *uuid.UUID
	OriginalInvoiceID *uuid.UUID
	IssueDate         time.Time
	DueDate           *time.Time
	Total             decimal.Decimal
	Status            InvoiceStatus
}

// NewPurchaseInvoice creates a DRAFT voucher
func NewPurchaseInvoice(
	tenantID uuid.UUID,
	fullNumber string,
	voucherType VoucherType,
	supplierID uuid.UUID,
	total decimal.Decimal,
	issueDate time.Time,
) (*PurchaseInvoice, error) {
	if fullNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Voucher number cannot be empty")
	}
	if !voucherType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown voucher type %q", voucherType))
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier is required")
	}
	if !total.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Voucher total must be positive")
	}
	if err := shared.CheckCurrencyAmount("Voucher total", total); err != nil {
		return nil, err
	}
	return &PurchaseInvoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		FullNumber:          fullNumber,
		VoucherType:         voucherType,
		SupplierID:          supplierID,
		IssueDate:           issueDate,
		Total:               total,
		Status:              InvoiceStatusDraft,
	}, nil
}

// Confirm moves a draft voucher to CONFIRMED
func (i *PurchaseInvoice) Confirm() error {
	return i.transition(InvoiceStatusConfirmed)
}

// Cancel cancels the voucher if no payment has settled it yet
func (i *PurchaseInvoice) Cancel() error {
	return i.transition(InvoiceStatusCancelled)
}

// LinkToOriginal records the invoice a credit or debit note was issued against
func (i *PurchaseInvoice) LinkToOriginal(originalID uuid.UUID) error {
	if i.VoucherType.IsCreditNote() || i.VoucherType.IsDebitNote() {
		i.OriginalInvoiceID = &originalID
		return nil
	}
	return shared.NewDomainError("INVALID_INPUT", "Only credit and debit notes reference an original invoice")
}

// ApplySummary sets the status derived from a payment summary. It returns
// true if the status changed. A derived status the lifecycle does not allow
// (for example moving back from PAID) leaves the invoice untouched.
func (i *PurchaseInvoice) ApplySummary(summary PaymentSummary) bool {
	next := summary.DeriveStatus(i.Status)
	if next == i.Status || !i.Status.CanTransitionTo(next) {
		return false
	}
	i.Status = next
	i.IncrementVersion()
	return true
}

func (i *PurchaseInvoice) transition(next InvoiceStatus) error {
	if !i.Status.CanTransitionTo(next) {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Cannot move voucher %s from %s to %s", i.FullNumber, i.Status, next))
	}
	i.Status = next
	i.IncrementVersion()
	return nil
}
