package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// TreasuryMetrics records the business counters of the treasury services.
// A nil *TreasuryMetrics is valid and records nothing.
type TreasuryMetrics struct {
	logger *zap.Logger

	paymentOrdersConfirmed *Counter
	journalPostingFailures *Counter
	bankMovementsCreated   *Counter
	confirmationDuration   *Histogram
	creditNotesApplied     *Counter
	projectionLinksCreated *Counter
}

// TreasuryMetricsConfig holds configuration for treasury metrics.
type TreasuryMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewTreasuryMetrics creates the treasury counters on the given meter.
func NewTreasuryMetrics(cfg TreasuryMetricsConfig) (*TreasuryMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tm := &TreasuryMetrics{logger: logger}
	var err error

	if tm.paymentOrdersConfirmed, err = NewCounter(cfg.Meter,
		"treasury.payment_orders.confirmed",
		"Total number of payment orders confirmed",
		"{orders}",
	); err != nil {
		return nil, err
	}
	if tm.journalPostingFailures, err = NewCounter(cfg.Meter,
		"treasury.journal_posting.failures",
		"Journal entries that could not be posted for confirmed payment orders",
		"{entries}",
	); err != nil {
		return nil, err
	}
	if tm.bankMovementsCreated, err = NewCounter(cfg.Meter,
		"treasury.bank_movements.created",
		"Total number of bank movements created",
		"{movements}",
	); err != nil {
		return nil, err
	}
	if tm.creditNotesApplied, err = NewCounter(cfg.Meter,
		"treasury.credit_notes.applied",
		"Total number of explicit credit note applications",
		"{applications}",
	); err != nil {
		return nil, err
	}
	if tm.projectionLinksCreated, err = NewCounter(cfg.Meter,
		"treasury.projection_links.created",
		"Total number of documents linked to cashflow projections",
		"{links}",
	); err != nil {
		return nil, err
	}
	if tm.confirmationDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "treasury.payment_orders.confirm_duration",
		Description: "Duration of the payment order confirmation transaction",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}

	return tm, nil
}

// RecordPaymentOrderConfirmed counts a committed confirmation and its duration.
func (tm *TreasuryMetrics) RecordPaymentOrderConfirmed(ctx context.Context, tenantID uuid.UUID, took time.Duration) {
	if tm == nil {
		return
	}
	tm.paymentOrdersConfirmed.Inc(ctx, AttrTenantID.String(tenantID.String()))
	tm.confirmationDuration.RecordDuration(ctx, took, AttrTenantID.String(tenantID.String()))
}

// RecordJournalPostingFailure counts a journal entry that could not be posted.
func (tm *TreasuryMetrics) RecordJournalPostingFailure(ctx context.Context, tenantID uuid.UUID) {
	if tm == nil {
		return
	}
	tm.journalPostingFailures.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordBankMovementCreated counts a bank movement by type.
func (tm *TreasuryMetrics) RecordBankMovementCreated(ctx context.Context, tenantID uuid.UUID, movementType string) {
	if tm == nil {
		return
	}
	tm.bankMovementsCreated.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrMovementType.String(movementType),
	)
}

// RecordCreditNoteApplied counts an explicit credit note application.
func (tm *TreasuryMetrics) RecordCreditNoteApplied(ctx context.Context, tenantID uuid.UUID, backfilled bool) {
	if tm == nil {
		return
	}
	tm.creditNotesApplied.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		attribute.Bool("backfilled", backfilled),
	)
}

// RecordProjectionLinked counts a document linked to a projection.
func (tm *TreasuryMetrics) RecordProjectionLinked(ctx context.Context, tenantID uuid.UUID, documentKind string) {
	if tm == nil {
		return
	}
	tm.projectionLinksCreated.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrDocumentKind.String(documentKind),
	)
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewTreasuryMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
