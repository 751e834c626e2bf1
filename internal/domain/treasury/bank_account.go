package treasury

import (
	"fmt"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/erp/treasury/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccountStatus is the lifecycle of a bank account
type BankAccountStatus string

const (
	BankAccountActive   BankAccountStatus = "ACTIVE"
	BankAccountInactive BankAccountStatus = "INACTIVE"
	BankAccountClosed   BankAccountStatus = "CLOSED"
)

// IsValid checks if the status is known
func (s BankAccountStatus) IsValid() bool {
	switch s {
	case BankAccountActive, BankAccountInactive, BankAccountClosed:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving to next
func (s BankAccountStatus) CanTransitionTo(next BankAccountStatus) bool {
	switch s {
	case BankAccountActive:
		return next == BankAccountInactive || next == BankAccountClosed
	case BankAccountInactive:
		return next == BankAccountActive || next == BankAccountClosed
	case BankAccountClosed:
		return false
	}
	return false
}

// BankAccount holds a running balance that is the fold of its movements over
// the opening balance
type BankAccount struct {
	shared.TenantAggregateRoot
	Name           string
	BankName       string
	AccountNumber  string
	Currency       valueobject.Currency
	OpeningBalance decimal.Decimal
	Balance        decimal.Decimal
	Status         BankAccountStatus
}

// NewBankAccount creates an ACTIVE account
func NewBankAccount(tenantID uuid.UUID, name, bankName, accountNumber string, openingBalance decimal.Decimal) (*BankAccount, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account name cannot be empty")
	}
	if accountNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account number cannot be empty")
	}
	if err := shared.CheckCurrencyAmount("Opening balance", openingBalance); err != nil {
		return nil, err
	}
	return &BankAccount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		BankName:            bankName,
		AccountNumber:       accountNumber,
		Currency:            valueobject.DefaultCurrency,
		OpeningBalance:      openingBalance,
		Balance:             openingBalance,
		Status:              BankAccountActive,
	}, nil
}

// EnsureActive fails with ACCOUNT_INACTIVE unless movements may be posted
func (a *BankAccount) EnsureActive() error {
	if a.Status != BankAccountActive {
		return shared.ErrAccountInactive.WithMessage(
			fmt.Sprintf("Bank account %s is %s", a.Name, a.Status))
	}
	return nil
}

// ApplyDelta moves the running balance by a signed delta
func (a *BankAccount) ApplyDelta(delta decimal.Decimal) {
	a.Balance = a.Balance.Add(delta)
	a.IncrementVersion()
}

// Deactivate blocks new movements without closing the account
func (a *BankAccount) Deactivate() error {
	return a.transition(BankAccountInactive)
}

// Activate re-enables an inactive account
func (a *BankAccount) Activate() error {
	return a.transition(BankAccountActive)
}

// Close closes the account; the balance must be exactly zero
func (a *BankAccount) Close() error {
	if !a.Balance.IsZero() {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Bank account %s cannot be closed with balance %s", a.Name, a.Balance.StringFixed(2)))
	}
	return a.transition(BankAccountClosed)
}

func (a *BankAccount) transition(next BankAccountStatus) error {
	if !a.Status.CanTransitionTo(next) {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Cannot move bank account from %s to %s", a.Status, next))
	}
	a.Status = next
	a.IncrementVersion()
	return nil
}
