// Package messaging connects treasury to the accounting service over NATS.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/treasury/internal/domain/treasury"
	"github.com/erp/treasury/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Requester is the part of *nats.Conn the poster needs
type Requester interface {
	RequestWithContext(ctx context.Context, subject string, data []byte) (*nats.Msg, error)
}

// JournalRequest is the payload sent to the accounting service
type JournalRequest struct {
	EventID          uuid.UUID       `json:"event_id"`
	TenantID         uuid.UUID       `json:"tenant_id"`
	PaymentOrderID   uuid.UUID       `json:"payment_order_id"`
	FullNumber       string          `json:"full_number"`
	SupplierID       *uuid.UUID      `json:"supplier_id,omitempty"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	WithholdingTotal decimal.Decimal `json:"withholding_total"`
	ConfirmedBy      *uuid.UUID      `json:"confirmed_by,omitempty"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

// JournalReply is what the accounting service answers. Both fields empty
// means the request was accepted without creating an entry.
type JournalReply struct {
	JournalEntryID *uuid.UUID `json:"journal_entry_id,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// ErrAccountingRejected wraps a rejection reported in the reply body
var ErrAccountingRejected = errors.New("accounting rejected journal entry")

// JournalPoster posts confirmed payment orders with NATS request/reply
type JournalPoster struct {
	conn    Requester
	subject string
	timeout time.Duration
	logger  *zap.Logger
}

// NewJournalPoster creates a poster on an established connection
func NewJournalPoster(conn Requester, cfg config.NATSConfig, logger *zap.Logger) *JournalPoster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalPoster{
		conn:    conn,
		subject: cfg.JournalSubject,
		timeout: cfg.RequestTimeout,
		logger:  logger,
	}
}

// PostPaymentOrder implements the application's JournalPoster
func (p *JournalPoster) PostPaymentOrder(ctx context.Context, event *treasury.PaymentOrderConfirmedEvent) (*uuid.UUID, error) {
	data, err := json.Marshal(NewJournalRequest(event))
	if err != nil {
		return nil, fmt.Errorf("encode journal request: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	msg, err := p.conn.RequestWithContext(ctx, p.subject, data)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", p.subject, err)
	}

	entryID, err := DecodeJournalReply(msg.Data)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("journal entry posted",
		zap.String("payment_order", event.FullNumber),
		zap.Bool("entry_created", entryID != nil),
	)
	return entryID, nil
}

// NewJournalRequest builds the wire payload for a confirmation event
func NewJournalRequest(event *treasury.PaymentOrderConfirmedEvent) JournalRequest {
	return JournalRequest{
		EventID:          event.EventID(),
		TenantID:         event.TenantID(),
		PaymentOrderID:   event.PaymentOrderID,
		FullNumber:       event.FullNumber,
		SupplierID:       event.SupplierID,
		TotalAmount:      event.TotalAmount,
		WithholdingTotal: event.WithholdingTotal,
		ConfirmedBy:      event.ConfirmedBy,
		OccurredAt:       event.OccurredAt(),
	}
}

// DecodeJournalReply extracts the entry id from a reply body
func DecodeJournalReply(body []byte) (*uuid.UUID, error) {
	var reply JournalReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("decode journal reply: %w", err)
	}
	if reply.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrAccountingRejected, reply.Error)
	}
	return reply.JournalEntryID, nil
}

// Connect dials NATS with reconnect settings suited to a long-running server
func Connect(cfg config.NATSConfig, logger *zap.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("treasury"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", cfg.URL, err)
	}
	return nc, nil
}
