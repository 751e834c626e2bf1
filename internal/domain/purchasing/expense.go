package purchasing

import (
	"fmt"
	"time"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseStatus is the payment lifecycle of an expense
type ExpenseStatus string

const (
	ExpenseStatusPending     ExpenseStatus = "PENDING"
	ExpenseStatusPartialPaid ExpenseStatus = "PARTIAL_PAID"
	ExpenseStatusPaid        ExpenseStatus = "PAID"
	ExpenseStatusCancelled   ExpenseStatus = "CANCELLED"
)

// IsValid checks if the status is known
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case ExpenseStatusPending, ExpenseStatusPartialPaid, ExpenseStatusPaid, ExpenseStatusCancelled:
		return true
	}
	return false
}

// IsPayable returns true when a payment order may settle the expense
func (s ExpenseStatus) IsPayable() bool {
	return s == ExpenseStatusPending || s == ExpenseStatusPartialPaid
}

// CanTransitionTo reports whether the lifecycle allows moving to next
func (s ExpenseStatus) CanTransitionTo(next ExpenseStatus) bool {
	switch s {
	case ExpenseStatusPending:
		return next == ExpenseStatusPartialPaid || next == ExpenseStatusPaid || next == ExpenseStatusCancelled
	case ExpenseStatusPartialPaid:
		return next == ExpenseStatusPaid || next == ExpenseStatusCancelled
	case ExpenseStatusPaid, ExpenseStatusCancelled:
		return false
	}
	return false
}

// Expense is a non-invoiced payable (rent, services, petty expenses)
type Expense struct {
	shared.TenantAggregateRoot
	Number      string
	Description string
	SupplierID  *uuid.UUID
	Date        time.Time
	Total       decimal.Decimal
	Status      ExpenseStatus
}

// NewExpense creates a PENDING expense
func NewExpense(tenantID uuid.UUID, number, description string, total decimal.Decimal, date time.Time) (*Expense, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Expense number cannot be empty")
	}
	if !total.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense total must be positive")
	}
	if err := shared.CheckCurrencyAmount("Expense total", total); err != nil {
		return nil, err
	}
	return &Expense{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		Description:         description,
		Date:                date,
		Total:               total,
		Status:              ExpenseStatusPending,
	}, nil
}

// Pending returns the amount still owed given what has been paid
func (e *Expense) Pending(paid decimal.Decimal) decimal.Decimal {
	return e.Total.Sub(paid)
}

// ApplyPaid derives PAID / PARTIAL_PAID from the paid amount. It returns true
// if the status changed.
func (e *Expense) ApplyPaid(paid decimal.Decimal) (bool, error) {
	var next ExpenseStatus
	switch {
	case e.Total.Sub(paid).LessThanOrEqual(decimal.Zero):
		next = ExpenseStatusPaid
	case paid.IsPositive():
		next = ExpenseStatusPartialPaid
	default:
		return false, nil
	}
	if next == e.Status {
		return false, nil
	}
	if !e.Status.CanTransitionTo(next) {
		return false, shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Cannot move expense %s from %s to %s", e.Number, e.Status, next))
	}
	e.Status = next
	e.IncrementVersion()
	return true, nil
}
