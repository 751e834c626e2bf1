package purchasing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseInvoiceRepository persists purchase vouchers. Finders return
// (nil, nil) when the voucher does not exist in the tenant.
type PurchaseInvoiceRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseInvoice, error)
	// FindByIDForUpdate loads the voucher and locks its row until the
	// enclosing transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseInvoice, error)
	// FindLinkedCreditNotes returns credit notes whose OriginalInvoiceID is invoiceID
	FindLinkedCreditNotes(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]PurchaseInvoice, error)
	// FindCreditNotesWithoutApplications returns credit notes linked to an
	// original invoice that have no explicit application yet
	FindCreditNotesWithoutApplications(ctx context.Context, tenantID uuid.UUID) ([]PurchaseInvoice, error)
	// FindPayable returns CONFIRMED and PARTIAL_PAID vouchers
	FindPayable(ctx context.Context, tenantID uuid.UUID) ([]PurchaseInvoice, error)
	Save(ctx context.Context, invoice *PurchaseInvoice) error
}

// CreditNoteApplicationRepository is append-only
type CreditNoteApplicationRepository interface {
	Create(ctx context.Context, app *CreditNoteApplication) error
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]CreditNoteApplication, error)
	// SumByCreditNote returns the total already applied from a credit note
	SumByCreditNote(ctx context.Context, tenantID, creditNoteID uuid.UUID) (decimal.Decimal, error)
}

// ExpenseRepository persists expenses
type ExpenseRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Expense, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Expense, error)
	Save(ctx context.Context, expense *Expense) error
}
