package treasury

import (
	"fmt"
	"time"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankMovementType classifies a bank movement; the class decides the sign
type BankMovementType string

const (
	BankMovementDeposit     BankMovementType = "DEPOSIT"
	BankMovementTransferIn  BankMovementType = "TRANSFER_IN"
	BankMovementInterest    BankMovementType = "INTEREST"
	BankMovementWithdrawal  BankMovementType = "WITHDRAWAL"
	BankMovementTransferOut BankMovementType = "TRANSFER_OUT"
	BankMovementCheck       BankMovementType = "CHECK"
	BankMovementDebit       BankMovementType = "DEBIT"
	BankMovementFee         BankMovementType = "FEE"
)

// IsValid checks if the type is known
func (t BankMovementType) IsValid() bool {
	switch t {
	case BankMovementDeposit, BankMovementTransferIn, BankMovementInterest,
		BankMovementWithdrawal, BankMovementTransferOut, BankMovementCheck,
		BankMovementDebit, BankMovementFee:
		return true
	}
	return false
}

// IsIncome returns true for types that increase the balance
func (t BankMovementType) IsIncome() bool {
	switch t {
	case BankMovementDeposit, BankMovementTransferIn, BankMovementInterest:
		return true
	case BankMovementWithdrawal, BankMovementTransferOut, BankMovementCheck,
		BankMovementDebit, BankMovementFee:
		return false
	}
	return false
}

// IsTransfer returns true for movements that need a counterpart account
func (t BankMovementType) IsTransfer() bool {
	return t == BankMovementTransferIn || t == BankMovementTransferOut
}

// Mirror returns the type recorded on the counterpart side of a transfer
func (t BankMovementType) Mirror() BankMovementType {
	switch t {
	case BankMovementTransferIn:
		return BankMovementTransferOut
	case BankMovementTransferOut:
		return BankMovementTransferIn
	}
	return t
}

// SignedDelta returns the balance change a movement of this type applies
func (t BankMovementType) SignedDelta(amount decimal.Decimal) decimal.Decimal {
	if t.IsIncome() {
		return amount
	}
	return amount.Neg()
}

// BankMovement is a record in an account's ledger. Amount is always a
// non-negative magnitude; the type carries the sign.
type BankMovement struct {
	shared.BaseEntity
	TenantID             uuid.UUID
	BankAccountID        uuid.UUID
	Type                 BankMovementType
	Amount               decimal.Decimal
	Date                 time.Time
	Description          string
	Reference            string
	CounterpartAccountID *uuid.UUID
	LinkedMovementID     *uuid.UUID
	PaymentOrderID       *uuid.UUID
	Reconciled           bool
	ReconciledAt         *time.Time
	ReconciledBy         *uuid.UUID
}

// NewBankMovement validates and builds an unreconciled movement
func NewBankMovement(tenantID, accountID uuid.UUID, movementType BankMovementType, amount decimal.Decimal, date time.Time, description string) (*BankMovement, error) {
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown bank movement type %q", movementType))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Movement amount must be positive")
	}
	if err := shared.CheckCurrencyAmount("Movement amount", amount); err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &BankMovement{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		BankAccountID: accountID,
		Type:          movementType,
		Amount:        amount,
		Date:          date,
		Description:   description,
	}, nil
}

// Delta is the signed balance effect of the movement
func (m *BankMovement) Delta() decimal.Decimal {
	return m.Type.SignedDelta(m.Amount)
}

// ReversalDelta is the exact inverse of Delta, applied on deletion
func (m *BankMovement) ReversalDelta() decimal.Decimal {
	return m.Delta().Neg()
}

// EnsureDeletable rejects deletion of reconciled movements
func (m *BankMovement) EnsureDeletable() error {
	if m.Reconciled {
		return shared.ErrMovementReconciled
	}
	return nil
}

// SetReconciled moves the reconciliation flag. It returns false and leaves
// the movement untouched when it is already in the requested state.
func (m *BankMovement) SetReconciled(reconciled bool, by *uuid.UUID, at time.Time) bool {
	if m.Reconciled == reconciled {
		return false
	}
	m.Reconciled = reconciled
	if reconciled {
		m.ReconciledAt = &at
		m.ReconciledBy = by
	} else {
		m.ReconciledAt = nil
		m.ReconciledBy = nil
	}
	m.Touch()
	return true
}

// ValidateCounterpart checks the counterpart rules for the movement type
func ValidateCounterpart(movementType BankMovementType, account *BankAccount, counterpart *BankAccount, counterpartID *uuid.UUID) error {
	if !movementType.IsTransfer() {
		if counterpartID != nil {
			return shared.ErrCounterpartAccountInvalid.WithMessage("Only transfers may reference a counterpart account")
		}
		return nil
	}
	if counterpartID == nil || counterpart == nil {
		return shared.ErrCounterpartAccountInvalid.WithMessage("Transfers require an existing counterpart account")
	}
	if counterpart.ID == account.ID {
		return shared.ErrCounterpartAccountInvalid.WithMessage("Counterpart account must differ from the account")
	}
	if counterpart.Status != BankAccountActive {
		return shared.ErrCounterpartAccountInvalid.WithMessage("Counterpart account is not active")
	}
	return nil
}
