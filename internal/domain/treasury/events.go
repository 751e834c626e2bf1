package treasury

import (
	"github.com/erp/treasury/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// AggregateTypePaymentOrder is the aggregate type of payment order events
	AggregateTypePaymentOrder = "PaymentOrder"

	// EventTypePaymentOrderConfirmed is published after a confirmation commits
	EventTypePaymentOrderConfirmed = "PaymentOrderConfirmed"
)

// PaymentOrderConfirmedEvent carries what the accounting side needs to post
// the journal entry of a confirmed order
type PaymentOrderConfirmedEvent struct {
	shared.BaseDomainEvent
	PaymentOrderID   uuid.UUID       `json:"payment_order_id"`
	FullNumber       string          `json:"full_number"`
	SupplierID       *uuid.UUID      `json:"supplier_id,omitempty"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	WithholdingTotal decimal.Decimal `json:"withholding_total"`
	ConfirmedBy      *uuid.UUID      `json:"confirmed_by,omitempty"`
}

// NewPaymentOrderConfirmedEvent creates the event from a confirmed order
func NewPaymentOrderConfirmedEvent(o *PaymentOrder) *PaymentOrderConfirmedEvent {
	return &PaymentOrderConfirmedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypePaymentOrderConfirmed, AggregateTypePaymentOrder, o.ID, o.TenantID),
		PaymentOrderID:   o.ID,
		FullNumber:       o.FullNumber,
		SupplierID:       o.SupplierID,
		TotalAmount:      o.TotalAmount,
		WithholdingTotal: o.WithholdingTotal(),
		ConfirmedBy:      o.ConfirmedBy,
	}
}
