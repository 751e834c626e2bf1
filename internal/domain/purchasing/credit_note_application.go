package purchasing

import (
	"time"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditNoteApplication is an explicit compensation of a credit note against
// an invoice. Applications are created once and never mutated.
type CreditNoteApplication struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	CreditNoteID uuid.UUID
	InvoiceID    uuid.UUID
	Amount       decimal.Decimal
	AppliedBy    *uuid.UUID
	AppliedAt    time.Time
	Backfilled   bool
}

// NewCreditNoteApplication validates and builds an application record
func NewCreditNoteApplication(tenantID, creditNoteID, invoiceID uuid.UUID, amount decimal.Decimal, appliedBy *uuid.UUID) (*CreditNoteApplication, error) {
	if creditNoteID == invoiceID {
		return nil, shared.NewDomainError("INVALID_INPUT", "A credit note cannot be applied to itself")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Applied amount must be positive")
	}
	if err := shared.CheckCurrencyAmount("Applied amount", amount); err != nil {
		return nil, err
	}
	return &CreditNoteApplication{
		ID:           uuid.New(),
		TenantID:     tenantID,
		CreditNoteID: creditNoteID,
		InvoiceID:    invoiceID,
		Amount:       amount,
		AppliedBy:    appliedBy,
		AppliedAt:    time.Now(),
	}, nil
}

// CreditNoteRemainder is the part of a credit note still free to compensate:
// neither applied explicitly nor backing the implicit fallback of its
// original invoice
func CreditNoteRemainder(note *PurchaseInvoice, applied, implicit decimal.Decimal) decimal.Decimal {
	return note.Total.Sub(applied).Sub(implicit)
}

// ValidateCompensation checks the preconditions for compensating invoice with
// note for amount. notApplied is the note's current unapplied remainder and
// pending is the invoice's pending amount.
func ValidateCompensation(note, invoice *PurchaseInvoice, amount, notApplied, pending decimal.Decimal) error {
	if !note.VoucherType.IsCreditNote() {
		return shared.ErrInvalidVoucherState.WithMessage("Only credit notes can compensate an invoice")
	}
	if !note.Status.IsSettlementSource() {
		return shared.ErrInvalidVoucherState.WithMessage("Credit note must be confirmed before it can be applied")
	}
	if invoice.VoucherType.IsCreditNote() {
		return shared.ErrInvalidVoucherState.WithMessage("A credit note cannot be compensated by another credit note")
	}
	if !invoice.Status.IsPayable() && invoice.Status != InvoiceStatusPaid {
		return shared.ErrInvalidVoucherState.WithMessage("Invoice is not in a state that accepts compensations")
	}
	if note.SupplierID != invoice.SupplierID {
		return shared.NewDomainError("INVALID_INPUT", "Credit note and invoice belong to different suppliers")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Applied amount must be positive")
	}
	if err := shared.CheckCurrencyAmount("Applied amount", amount); err != nil {
		return err
	}
	if amount.GreaterThan(notApplied) {
		return shared.ErrAmountExceedsAvailable.WithMessage(
			"Amount " + amount.StringFixed(2) + " exceeds the credit note remainder " + notApplied.StringFixed(2))
	}
	if amount.GreaterThan(pending) {
		return shared.ErrAmountExceedsAvailable.WithMessage(
			"Amount " + amount.StringFixed(2) + " exceeds the invoice pending amount " + pending.StringFixed(2))
	}
	return nil
}
