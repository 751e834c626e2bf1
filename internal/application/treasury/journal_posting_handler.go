package treasury

import (
	"context"
	"fmt"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/erp/treasury/internal/domain/treasury"
	"github.com/erp/treasury/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JournalPoster is the accounting collaborator that turns a confirmed payment
// order into a journal entry. A nil id with a nil error means the accounting
// side accepted the request without creating an entry.
type JournalPoster interface {
	PostPaymentOrder(ctx context.Context, event *treasury.PaymentOrderConfirmedEvent) (*uuid.UUID, error)
}

// NoopJournalPoster accepts every request and creates no entry. It is used
// when no accounting collaborator is configured.
type NoopJournalPoster struct{}

// PostPaymentOrder implements JournalPoster
func (NoopJournalPoster) PostPaymentOrder(context.Context, *treasury.PaymentOrderConfirmedEvent) (*uuid.UUID, error) {
	return nil, nil
}

// JournalPostingHandler posts the journal entry of a confirmed payment order.
// It runs after the confirmation committed; its errors never affect the
// confirmation itself.
type JournalPostingHandler struct {
	poster  JournalPoster
	scope   TransactionScope
	metrics *telemetry.TreasuryMetrics
	logger  *zap.Logger
}

// NewJournalPostingHandler creates a new handler for payment order confirmed events
func NewJournalPostingHandler(poster JournalPoster, scope TransactionScope, metrics *telemetry.TreasuryMetrics, logger *zap.Logger) *JournalPostingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalPostingHandler{
		poster:  poster,
		scope:   scope,
		metrics: metrics,
		logger:  logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *JournalPostingHandler) EventTypes() []string {
	return []string{treasury.EventTypePaymentOrderConfirmed}
}

// Handle posts the entry and stores its id on the order
func (h *JournalPostingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	confirmed, ok := event.(*treasury.PaymentOrderConfirmedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			treasury.EventTypePaymentOrderConfirmed, event.EventType())
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "journal_posting", "post_payment_order")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentOrderID, confirmed.PaymentOrderID.String(),
		telemetry.SpanAttrPaymentOrderNumber, confirmed.FullNumber,
	)

	entryID, err := h.poster.PostPaymentOrder(ctx, confirmed)
	if err != nil {
		telemetry.RecordError(span, err)
		h.metrics.RecordJournalPostingFailure(ctx, confirmed.TenantID())
		h.logger.Warn("journal entry posting failed",
			zap.String("payment_order_id", confirmed.PaymentOrderID.String()),
			zap.String("payment_order_number", confirmed.FullNumber),
			zap.Error(err),
		)
		return shared.ErrExternalDependency.WithMessage(
			fmt.Sprintf("Journal entry for payment order %s could not be posted: %v", confirmed.FullNumber, err))
	}
	if entryID == nil {
		return nil
	}

	err = h.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.PaymentOrderRepo().SetJournalEntry(ctx, confirmed.TenantID(), confirmed.PaymentOrderID, *entryID)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to store journal entry id: %w", err)
	}

	h.logger.Info("journal entry posted",
		zap.String("payment_order_id", confirmed.PaymentOrderID.String()),
		zap.String("journal_entry_id", entryID.String()),
	)
	return nil
}

// Ensure JournalPostingHandler implements shared.EventHandler
var _ shared.EventHandler = (*JournalPostingHandler)(nil)
