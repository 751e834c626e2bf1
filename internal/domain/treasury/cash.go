package treasury

import (
	"fmt"
	"time"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashRegisterStatus is whether a register can be operated
type CashRegisterStatus string

const (
	CashRegisterActive   CashRegisterStatus = "ACTIVE"
	CashRegisterInactive CashRegisterStatus = "INACTIVE"
)

// CashRegister is a physical or logical till
type CashRegister struct {
	shared.TenantAggregateRoot
	Name   string
	Status CashRegisterStatus
}

// NewCashRegister creates an active register
func NewCashRegister(tenantID uuid.UUID, name string) (*CashRegister, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Register name cannot be empty")
	}
	return &CashRegister{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Status:              CashRegisterActive,
	}, nil
}

// EnsureActive fails with REGISTER_INACTIVE for inactive registers
func (r *CashRegister) EnsureActive() error {
	if r.Status != CashRegisterActive {
		return shared.ErrRegisterInactive.WithMessage(fmt.Sprintf("Cash register %s is inactive", r.Name))
	}
	return nil
}

// CashSessionStatus is the state of a register session
type CashSessionStatus string

const (
	CashSessionOpen   CashSessionStatus = "OPEN"
	CashSessionClosed CashSessionStatus = "CLOSED"
)

// CashSession tracks the expected cash in a register between opening and closing
type CashSession struct {
	shared.TenantAggregateRoot
	RegisterID      uuid.UUID
	Status          CashSessionStatus
	OpeningBalance  decimal.Decimal
	ExpectedBalance decimal.Decimal
	ActualBalance   *decimal.Decimal
	Difference      *decimal.Decimal
	OpenedBy        *uuid.UUID
	OpenedAt        time.Time
	ClosedBy        *uuid.UUID
	ClosedAt        *time.Time
	Notes           string
}

// OpenCashSession starts a session for an active register
func OpenCashSession(register *CashRegister, openingBalance decimal.Decimal, notes string, openedBy *uuid.UUID) (*CashSession, error) {
	if err := register.EnsureActive(); err != nil {
		return nil, err
	}
	if openingBalance.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Opening balance cannot be negative")
	}
	if err := shared.CheckCurrencyAmount("Opening balance", openingBalance); err != nil {
		return nil, err
	}
	return &CashSession{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(register.TenantID),
		RegisterID:          register.ID,
		Status:              CashSessionOpen,
		OpeningBalance:      openingBalance,
		ExpectedBalance:     openingBalance,
		OpenedBy:            openedBy,
		OpenedAt:            time.Now(),
		Notes:               notes,
	}, nil
}

// EnsureOpen fails with INVALID_STATE once the session is closed
func (s *CashSession) EnsureOpen() error {
	if s.Status != CashSessionOpen {
		return shared.ErrInvalidState.WithMessage("Cash session is closed")
	}
	return nil
}

// ApplyDelta moves the expected balance
func (s *CashSession) ApplyDelta(delta decimal.Decimal) {
	s.ExpectedBalance = s.ExpectedBalance.Add(delta)
	s.IncrementVersion()
}

// Close records the counted balance and the difference against expected
func (s *CashSession) Close(actual decimal.Decimal, notes string, closedBy *uuid.UUID) error {
	if err := s.EnsureOpen(); err != nil {
		return err
	}
	if actual.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Actual balance cannot be negative")
	}
	if err := shared.CheckCurrencyAmount("Actual balance", actual); err != nil {
		return err
	}
	diff := actual.Sub(s.ExpectedBalance)
	now := time.Now()
	s.Status = CashSessionClosed
	s.ActualBalance = &actual
	s.Difference = &diff
	s.ClosedBy = closedBy
	s.ClosedAt = &now
	if notes != "" {
		s.Notes = notes
	}
	s.IncrementVersion()
	return nil
}

// CashMovementType classifies a cash movement
type CashMovementType string

const (
	CashMovementOpening    CashMovementType = "OPENING"
	CashMovementIncome     CashMovementType = "INCOME"
	CashMovementExpense    CashMovementType = "EXPENSE"
	CashMovementAdjustment CashMovementType = "ADJUSTMENT"
	CashMovementClosing    CashMovementType = "CLOSING"
)

// IsValid checks if the type is known
func (t CashMovementType) IsValid() bool {
	switch t {
	case CashMovementOpening, CashMovementIncome, CashMovementExpense,
		CashMovementAdjustment, CashMovementClosing:
		return true
	}
	return false
}

// IsUserManaged reports whether users may create or delete movements of this type
func (t CashMovementType) IsUserManaged() bool {
	switch t {
	case CashMovementIncome, CashMovementExpense, CashMovementAdjustment:
		return true
	case CashMovementOpening, CashMovementClosing:
		return false
	}
	return false
}

// CashDirection is the polarity of a cash movement
type CashDirection string

const (
	CashIn  CashDirection = "IN"
	CashOut CashDirection = "OUT"
)

// IsValid checks if the direction is known
func (d CashDirection) IsValid() bool {
	return d == CashIn || d == CashOut
}

// ResolveDirection returns the direction implied by a movement type. INCOME
// and EXPENSE have a fixed direction; ADJUSTMENT must state one explicitly.
func ResolveDirection(t CashMovementType, requested CashDirection) (CashDirection, error) {
	switch t {
	case CashMovementIncome, CashMovementOpening:
		if requested != "" && requested != CashIn {
			return "", shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("%s movements always enter the register", t))
		}
		return CashIn, nil
	case CashMovementExpense:
		if requested != "" && requested != CashOut {
			return "", shared.NewDomainError("INVALID_INPUT", "EXPENSE movements always leave the register")
		}
		return CashOut, nil
	case CashMovementAdjustment:
		if !requested.IsValid() {
			return "", shared.NewDomainError("INVALID_INPUT", "ADJUSTMENT movements require a direction (IN or OUT)")
		}
		return requested, nil
	case CashMovementClosing:
		return CashOut, nil
	}
	return "", shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown cash movement type %q", t))
}

// CashMovement is an entry in a session's ledger
type CashMovement struct {
	shared.BaseEntity
	TenantID       uuid.UUID
	SessionID      uuid.UUID
	RegisterID     uuid.UUID
	Type           CashMovementType
	Direction      CashDirection
	Amount         decimal.Decimal
	Description    string
	PaymentOrderID *uuid.UUID
	CreatedBy      *uuid.UUID
}

// NewCashMovement validates and builds a movement for a session
func NewCashMovement(session *CashSession, movementType CashMovementType, direction CashDirection, amount decimal.Decimal, description string) (*CashMovement, error) {
	resolved, err := ResolveDirection(movementType, direction)
	if err != nil {
		return nil, err
	}
	if amount.IsNegative() || (movementType.IsUserManaged() && !amount.IsPositive()) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Movement amount must be positive")
	}
	if err := shared.CheckCurrencyAmount("Movement amount", amount); err != nil {
		return nil, err
	}
	return &CashMovement{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    session.TenantID,
		SessionID:   session.ID,
		RegisterID:  session.RegisterID,
		Type:        movementType,
		Direction:   resolved,
		Amount:      amount,
		Description: description,
	}, nil
}

// Delta is the effect of the movement on the session's expected balance.
// OPENING and CLOSING are informational and carry no delta.
func (m *CashMovement) Delta() decimal.Decimal {
	if !m.Type.IsUserManaged() {
		return decimal.Zero
	}
	if m.Direction == CashOut {
		return m.Amount.Neg()
	}
	return m.Amount
}

// EnsureDeletable rejects deletion of system movements
func (m *CashMovement) EnsureDeletable() error {
	if !m.Type.IsUserManaged() {
		return shared.ErrInvalidState.WithMessage(fmt.Sprintf("%s movements cannot be deleted", m.Type))
	}
	if m.PaymentOrderID != nil {
		return shared.ErrInvalidState.WithMessage("Movements generated by a payment order cannot be deleted")
	}
	return nil
}
