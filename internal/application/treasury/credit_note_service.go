package treasury

import (
	"context"
	"fmt"

	"github.com/erp/treasury/internal/domain/purchasing"
	"github.com/erp/treasury/internal/domain/shared"
	"github.com/erp/treasury/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreditNoteService compensates invoices with credit notes and exposes the
// invoice payment position
type CreditNoteService struct {
	scope   TransactionScope
	opts    Options
	metrics *telemetry.TreasuryMetrics
	logger  *zap.Logger
}

// NewCreditNoteService creates a new CreditNoteService
func NewCreditNoteService(scope TransactionScope, opts Options, metrics *telemetry.TreasuryMetrics, logger *zap.Logger) *CreditNoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreditNoteService{
		scope:   scope,
		opts:    opts,
		metrics: metrics,
		logger:  logger,
	}
}

// ApplyCreditNoteRequest is the input of ApplyCreditNote
type ApplyCreditNoteRequest struct {
	TenantID     uuid.UUID
	CreditNoteID uuid.UUID
	InvoiceID    uuid.UUID
	Amount       decimal.Decimal
	UserID       *uuid.UUID
}

// ApplyCreditNoteResult reports the application and the resulting invoice state
type ApplyCreditNoteResult struct {
	ApplicationID uuid.UUID                 `json:"application_id"`
	AppliedAmount decimal.Decimal           `json:"applied_amount"`
	InvoiceStatus purchasing.InvoiceStatus  `json:"invoice_status"`
	Summary       purchasing.PaymentSummary `json:"summary"`
}

// ApplyCreditNote records an explicit application of a credit note against an
// invoice. The whole operation is rejected if the amount exceeds either the
// note's unapplied remainder or the invoice's pending amount. While the
// fallback is on, a note linked to another invoice keeps the part that
// settles that invoice out of its remainder.
func (s *CreditNoteService) ApplyCreditNote(ctx context.Context, req ApplyCreditNoteRequest) (*ApplyCreditNoteResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit_note", "apply")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrCreditNoteID, req.CreditNoteID.String(),
		telemetry.SpanAttrInvoiceID, req.InvoiceID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	var result *ApplyCreditNoteResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		result, err = s.apply(ctx, repos, req, false)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordCreditNoteApplied(ctx, req.TenantID, false)
	s.logger.Info("credit note applied",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("credit_note_id", req.CreditNoteID.String()),
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("invoice_status", string(result.InvoiceStatus)),
	)
	return result, nil
}

func (s *CreditNoteService) apply(ctx context.Context, repos TransactionalRepositories, req ApplyCreditNoteRequest, backfilled bool) (*ApplyCreditNoteResult, error) {
	peek, err := repos.InvoiceRepo().FindByIDForTenant(ctx, req.TenantID, req.CreditNoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credit note: %w", err)
	}
	if peek == nil {
		return nil, shared.ErrNotFound.WithMessage(fmt.Sprintf("Credit note %s not found", req.CreditNoteID))
	}

	// the invoice, the note and, when the note backs a fallback elsewhere,
	// its original invoice
	ids := []uuid.UUID{req.InvoiceID, req.CreditNoteID}
	if s.opts.IncludeImplicitCreditNotes && peek.OriginalInvoiceID != nil {
		ids = append(ids, *peek.OriginalInvoiceID)
	}
	locked := make(map[uuid.UUID]*purchasing.PurchaseInvoice, len(ids))
	for _, id := range lockOrder(ids...) {
		voucher, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, req.TenantID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load voucher: %w", err)
		}
		locked[id] = voucher
	}
	invoice := locked[req.InvoiceID]
	if invoice == nil {
		return nil, shared.ErrNotFound.WithMessage(fmt.Sprintf("Purchase invoice %s not found", req.InvoiceID))
	}
	note := locked[req.CreditNoteID]
	if note == nil {
		return nil, shared.ErrNotFound.WithMessage(fmt.Sprintf("Credit note %s not found", req.CreditNoteID))
	}

	applied, err := repos.CreditNoteApplicationRepo().SumByCreditNote(ctx, req.TenantID, note.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum credit note applications: %w", err)
	}
	implicit, err := implicitShare(ctx, repos, note, invoice.ID, s.opts)
	if err != nil {
		return nil, err
	}
	before, err := summarizeInvoice(ctx, repos, invoice, s.opts, note.ID)
	if err != nil {
		return nil, err
	}
	if err := purchasing.ValidateCompensation(note, invoice, req.Amount,
		purchasing.CreditNoteRemainder(note, applied, implicit), before.Pending); err != nil {
		return nil, err
	}

	app, err := purchasing.NewCreditNoteApplication(req.TenantID, note.ID, invoice.ID, req.Amount, req.UserID)
	if err != nil {
		return nil, err
	}
	app.Backfilled = backfilled
	if err := repos.CreditNoteApplicationRepo().Create(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to create credit note application: %w", err)
	}

	after, _, err := settleInvoice(ctx, repos, invoice, s.opts)
	if err != nil {
		return nil, err
	}
	return &ApplyCreditNoteResult{
		ApplicationID: app.ID,
		AppliedAmount: app.Amount,
		InvoiceStatus: invoice.Status,
		Summary:       after,
	}, nil
}

// InvoicePaymentView is the read model of an invoice's settlement
type InvoicePaymentView struct {
	InvoiceID  uuid.UUID                 `json:"invoice_id"`
	FullNumber string                    `json:"full_number"`
	Status     purchasing.InvoiceStatus  `json:"status"`
	Summary    purchasing.PaymentSummary `json:"summary"`
}

// GetInvoicePaymentSummary returns the current payment position of an invoice
func (s *CreditNoteService) GetInvoicePaymentSummary(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoicePaymentView, error) {
	var view *InvoicePaymentView
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByIDForTenant(ctx, tenantID, invoiceID)
		if err != nil {
			return fmt.Errorf("failed to load invoice: %w", err)
		}
		if invoice == nil {
			return shared.ErrNotFound.WithMessage(fmt.Sprintf("Purchase invoice %s not found", invoiceID))
		}
		summary, err := summarizeInvoice(ctx, repos, invoice, s.opts)
		if err != nil {
			return err
		}
		view = &InvoicePaymentView{
			InvoiceID:  invoice.ID,
			FullNumber: invoice.FullNumber,
			Status:     invoice.Status,
			Summary:    summary,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// BackfillItem is the outcome for one credit note of a backfill run
type BackfillItem struct {
	CreditNoteID uuid.UUID       `json:"credit_note_id"`
	InvoiceID    uuid.UUID       `json:"invoice_id"`
	Amount       decimal.Decimal `json:"amount"`
	Skipped      string          `json:"skipped,omitempty"`
}

// BackfillReport summarizes a backfill run
type BackfillReport struct {
	DryRun  bool           `json:"dry_run"`
	Applied int            `json:"applied"`
	Skipped int            `json:"skipped"`
	Items   []BackfillItem `json:"items"`
}

// BackfillImplicitCreditNotes turns implicit OriginalInvoiceID links into
// explicit applications for min(note remainder, invoice pending). Each note
// runs in its own transaction so one failure does not undo the others. Once a
// tenant has been backfilled the implicit fallback can be switched off.
func (s *CreditNoteService) BackfillImplicitCreditNotes(ctx context.Context, tenantID uuid.UUID, dryRun bool) (*BackfillReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit_note", "backfill")
	defer span.End()

	var notes []purchasing.PurchaseInvoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		notes, err = repos.InvoiceRepo().FindCreditNotesWithoutApplications(ctx, tenantID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to list credit notes to backfill: %w", err)
	}

	report := &BackfillReport{DryRun: dryRun, Items: make([]BackfillItem, 0, len(notes))}
	for _, note := range notes {
		if note.OriginalInvoiceID == nil {
			continue
		}
		item := BackfillItem{CreditNoteID: note.ID, InvoiceID: *note.OriginalInvoiceID}
		err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			amount, reason, err := s.backfillAmount(ctx, repos, tenantID, note.ID, *note.OriginalInvoiceID)
			if err != nil {
				return err
			}
			if reason != "" {
				item.Skipped = reason
				return nil
			}
			item.Amount = amount
			if dryRun {
				return nil
			}
			_, err = s.apply(ctx, repos, ApplyCreditNoteRequest{
				TenantID:     tenantID,
				CreditNoteID: note.ID,
				InvoiceID:    *note.OriginalInvoiceID,
				Amount:       amount,
			}, true)
			return err
		})
		if err != nil {
			s.logger.Warn("credit note backfill failed",
				zap.String("credit_note_id", note.ID.String()),
				zap.Error(err),
			)
			item.Skipped = err.Error()
		}
		if item.Skipped != "" {
			report.Skipped++
		} else {
			report.Applied++
			if !dryRun {
				s.metrics.RecordCreditNoteApplied(ctx, tenantID, true)
			}
		}
		report.Items = append(report.Items, item)
	}

	s.logger.Info("credit note backfill finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Bool("dry_run", dryRun),
		zap.Int("applied", report.Applied),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}

// backfillAmount computes the amount an implicit link stands for. A non-empty
// reason means there is nothing to apply.
func (s *CreditNoteService) backfillAmount(ctx context.Context, repos TransactionalRepositories, tenantID, noteID, invoiceID uuid.UUID) (decimal.Decimal, string, error) {
	invoice, err := repos.InvoiceRepo().FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return decimal.Zero, "original invoice not found", nil
	}
	note, err := repos.InvoiceRepo().FindByIDForTenant(ctx, tenantID, noteID)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("failed to load credit note: %w", err)
	}
	if note == nil || !note.Status.IsSettlementSource() {
		return decimal.Zero, "credit note is not confirmed", nil
	}
	applied, err := repos.CreditNoteApplicationRepo().SumByCreditNote(ctx, tenantID, noteID)
	if err != nil {
		return decimal.Zero, "", err
	}
	summary, err := summarizeInvoice(ctx, repos, invoice, s.opts, noteID)
	if err != nil {
		return decimal.Zero, "", err
	}
	amount := decimal.Min(purchasing.CreditNoteRemainder(note, applied, decimal.Zero), summary.Pending)
	if !amount.IsPositive() {
		return decimal.Zero, "nothing left to apply", nil
	}
	return amount, "", nil
}

// RecomputeReport summarizes a status recompute run
type RecomputeReport struct {
	Checked int `json:"checked"`
	Changed int `json:"changed"`
}

// RecomputeInvoiceStatuses re-derives the status of every payable invoice
// from its payments. It repairs statuses after data fixes or after the
// implicit fallback is switched off.
func (s *CreditNoteService) RecomputeInvoiceStatuses(ctx context.Context, tenantID uuid.UUID) (*RecomputeReport, error) {
	var invoices []purchasing.PurchaseInvoice
	if err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoices, err = repos.InvoiceRepo().FindPayable(ctx, tenantID)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list payable invoices: %w", err)
	}

	report := &RecomputeReport{}
	for _, candidate := range invoices {
		report.Checked++
		var changed bool
		err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			invoice, err := loadInvoiceForUpdate(ctx, repos, tenantID, candidate.ID)
			if err != nil {
				return err
			}
			_, changed, err = settleInvoice(ctx, repos, invoice, s.opts)
			return err
		})
		if err != nil {
			return report, fmt.Errorf("failed to recompute invoice %s: %w", candidate.FullNumber, err)
		}
		if changed {
			report.Changed++
		}
	}
	return report, nil
}
