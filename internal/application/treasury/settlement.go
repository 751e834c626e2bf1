package treasury

import (
	"context"
	"fmt"
	"slices"

	"github.com/erp/treasury/internal/domain/purchasing"
	"github.com/erp/treasury/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Options configures how invoice settlement is computed
type Options struct {
	// IncludeImplicitCreditNotes enables the capped fallback for credit notes
	// linked through OriginalInvoiceID without an explicit application
	IncludeImplicitCreditNotes bool
}

// DefaultOptions returns the settlement options used when none are configured
func DefaultOptions() Options {
	return Options{IncludeImplicitCreditNotes: true}
}

// summarizeInvoice gathers the payment inputs of an invoice inside the current
// transaction. Credit notes listed in exclude are left out of the implicit
// fallback, which lets a caller about to make a link explicit see the pending
// amount without that note's fallback contribution. A linked note backs the
// fallback only with what it has not applied explicitly elsewhere.
func summarizeInvoice(
	ctx context.Context,
	repos TransactionalRepositories,
	invoice *purchasing.PurchaseInvoice,
	opts Options,
	exclude ...uuid.UUID,
) (purchasing.PaymentSummary, error) {
	direct, err := repos.PaymentOrderRepo().ConfirmedAmountsByInvoice(ctx, invoice.TenantID, invoice.ID)
	if err != nil {
		return purchasing.PaymentSummary{}, fmt.Errorf("failed to load payments of invoice: %w", err)
	}
	apps, err := repos.CreditNoteApplicationRepo().FindByInvoice(ctx, invoice.TenantID, invoice.ID)
	if err != nil {
		return purchasing.PaymentSummary{}, fmt.Errorf("failed to load credit note applications: %w", err)
	}

	var linked []purchasing.LinkedCreditNote
	if opts.IncludeImplicitCreditNotes {
		notes, err := repos.InvoiceRepo().FindLinkedCreditNotes(ctx, invoice.TenantID, invoice.ID)
		if err != nil {
			return purchasing.PaymentSummary{}, fmt.Errorf("failed to load linked credit notes: %w", err)
		}
		for _, n := range notes {
			if slices.Contains(exclude, n.ID) {
				continue
			}
			applied, err := repos.CreditNoteApplicationRepo().SumByCreditNote(ctx, invoice.TenantID, n.ID)
			if err != nil {
				return purchasing.PaymentSummary{}, fmt.Errorf("failed to sum applications of credit note: %w", err)
			}
			linked = append(linked, purchasing.LinkedCreditNote{ID: n.ID, Status: n.Status, Total: n.Total, Applied: applied})
		}
	}

	return purchasing.ComputePaymentSummary(purchasing.PaymentInputs{
		Total:             invoice.Total,
		DirectPayments:    direct,
		Applications:      apps,
		LinkedCreditNotes: linked,
		IncludeImplicit:   opts.IncludeImplicitCreditNotes,
	}), nil
}

// settleInvoice recomputes the invoice summary and persists the derived
// status when it changed. The invoice must already be locked by the caller.
func settleInvoice(
	ctx context.Context,
	repos TransactionalRepositories,
	invoice *purchasing.PurchaseInvoice,
	opts Options,
) (purchasing.PaymentSummary, bool, error) {
	summary, err := summarizeInvoice(ctx, repos, invoice, opts)
	if err != nil {
		return summary, false, err
	}
	if !invoice.ApplySummary(summary) {
		return summary, false, nil
	}
	if err := repos.InvoiceRepo().Save(ctx, invoice); err != nil {
		return summary, false, fmt.Errorf("failed to save invoice status: %w", err)
	}
	return summary, true, nil
}

// implicitShare is how much of note currently backs the fallback of its
// original invoice. It is zero when the fallback is off, the note has no
// original invoice or target is that invoice, since applying a note to its own
// original invoice replaces the fallback.
func implicitShare(
	ctx context.Context,
	repos TransactionalRepositories,
	note *purchasing.PurchaseInvoice,
	target uuid.UUID,
	opts Options,
) (decimal.Decimal, error) {
	if !opts.IncludeImplicitCreditNotes || note.OriginalInvoiceID == nil || *note.OriginalInvoiceID == target {
		return decimal.Zero, nil
	}
	original, err := repos.InvoiceRepo().FindByIDForTenant(ctx, note.TenantID, *note.OriginalInvoiceID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load original invoice of credit note: %w", err)
	}
	if original == nil {
		return decimal.Zero, nil
	}
	summary, err := summarizeInvoice(ctx, repos, original, opts)
	if err != nil {
		return decimal.Zero, err
	}
	return summary.FallbackOf(note.ID), nil
}

// loadInvoiceForUpdate locks an invoice or fails with NOT_FOUND
func loadInvoiceForUpdate(ctx context.Context, repos TransactionalRepositories, tenantID, id uuid.UUID) (*purchasing.PurchaseInvoice, error) {
	invoice, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return nil, shared.ErrNotFound.WithMessage(fmt.Sprintf("Purchase invoice %s not found", id))
	}
	return invoice, nil
}
