package cashflow

import (
	"fmt"
	"time"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultTolerance absorbs rounding when a link closes a projection
var DefaultTolerance = decimal.New(1, -2)

// ProjectionType is the direction of a forecast line
type ProjectionType string

const (
	ProjectionIncome  ProjectionType = "INCOME"
	ProjectionExpense ProjectionType = "EXPENSE"
)

// IsValid checks if the type is known
func (t ProjectionType) IsValid() bool {
	return t == ProjectionIncome || t == ProjectionExpense
}

// Accepts reports whether a document kind can confirm a projection of this type
func (t ProjectionType) Accepts(kind DocumentKind) bool {
	switch t {
	case ProjectionIncome:
		return kind == DocumentSalesInvoice
	case ProjectionExpense:
		return kind == DocumentPurchaseInvoice || kind == DocumentExpense
	}
	return false
}

// ProjectionStatus tracks how much of a forecast is backed by documents
type ProjectionStatus string

const (
	ProjectionPending   ProjectionStatus = "PENDING"
	ProjectionPartial   ProjectionStatus = "PARTIAL"
	ProjectionConfirmed ProjectionStatus = "CONFIRMED"
)

// DeriveProjectionStatus is a pure function of the confirmed amount against
// the projected amount
func DeriveProjectionStatus(amount, confirmed decimal.Decimal) ProjectionStatus {
	switch {
	case !confirmed.IsPositive():
		return ProjectionPending
	case confirmed.GreaterThanOrEqual(amount):
		return ProjectionConfirmed
	default:
		return ProjectionPartial
	}
}

// CashflowProjection is a forecast income or expense line
type CashflowProjection struct {
	shared.TenantAggregateRoot
	Type            ProjectionType
	Category        string
	Description     string
	DueDate         time.Time
	Amount          decimal.Decimal
	ConfirmedAmount decimal.Decimal
	Status          ProjectionStatus
}

// NewCashflowProjection creates a PENDING projection
func NewCashflowProjection(tenantID uuid.UUID, projectionType ProjectionType, category, description string, dueDate time.Time, amount decimal.Decimal) (*CashflowProjection, error) {
	if !projectionType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown projection type %q", projectionType))
	}
	if category == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Category cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Projected amount must be positive")
	}
	if err := shared.CheckCurrencyAmount("Projected amount", amount); err != nil {
		return nil, err
	}
	return &CashflowProjection{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Type:                projectionType,
		Category:            category,
		Description:         description,
		DueDate:             dueDate,
		Amount:              amount,
		ConfirmedAmount:     decimal.Zero,
		Status:              ProjectionPending,
	}, nil
}

// Remaining is the part of the projection not yet backed by documents
func (p *CashflowProjection) Remaining() decimal.Decimal {
	return p.Amount.Sub(p.ConfirmedAmount)
}

// CanAccept validates a new link of amount for a document of kind
func (p *CashflowProjection) CanAccept(kind DocumentKind, amount, tolerance decimal.Decimal) error {
	if !p.Type.Accepts(kind) {
		return shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("%s projections cannot be matched with a %s", p.Type, kind))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Link amount must be positive")
	}
	if err := shared.CheckCurrencyAmount("Link amount", amount); err != nil {
		return err
	}
	if amount.GreaterThan(p.Remaining().Add(tolerance)) {
		return shared.ErrAmountExceedsRemaining.WithMessage(fmt.Sprintf(
			"Amount %s exceeds the remaining %s of the projection",
			amount.StringFixed(2), p.Remaining().StringFixed(2)))
	}
	return nil
}

// Recompute sets the confirmed amount to the sum of the links and re-derives
// the status. It reports whether the status changed.
func (p *CashflowProjection) Recompute(linkAmounts []decimal.Decimal) bool {
	confirmed := decimal.Zero
	for _, a := range linkAmounts {
		confirmed = confirmed.Add(a)
	}
	previous := p.Status
	p.ConfirmedAmount = confirmed
	p.Status = DeriveProjectionStatus(p.Amount, confirmed)
	p.IncrementVersion()
	return previous != p.Status
}
