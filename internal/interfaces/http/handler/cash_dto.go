package handler

import (
	"time"

	"github.com/erp/treasury/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCashRegisterRequest represents a request to create a cash register
type CreateCashRegisterRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// OpenCashSessionRequest opens a session on a register
type OpenCashSessionRequest struct {
	OpeningBalance decimal.Decimal `json:"opening_balance" binding:"decimal_gte0,decimal_money"`
	Notes          string          `json:"notes" binding:"max=500"`
}

// CloseCashSessionRequest closes a session with the counted balance
type CloseCashSessionRequest struct {
	ActualBalance decimal.Decimal `json:"actual_balance" binding:"decimal_gte0,decimal_money"`
	Notes         string          `json:"notes" binding:"max=500"`
}

// AddCashMovementRequest records a manual cash movement. Direction is only
// needed for adjustments.
type AddCashMovementRequest struct {
	Type        treasury.CashMovementType `json:"type" binding:"required,oneof=INCOME EXPENSE ADJUSTMENT"`
	Direction   treasury.CashDirection    `json:"direction" binding:"omitempty,oneof=IN OUT"`
	Amount      decimal.Decimal           `json:"amount" binding:"decimal_gt0,decimal_money"`
	Description string                    `json:"description" binding:"max=255"`
}

// CashRegisterResponse represents a cash register in API responses
type CashRegisterResponse struct {
	ID        uuid.UUID                   `json:"id"`
	TenantID  uuid.UUID                   `json:"tenant_id"`
	Name      string                      `json:"name"`
	Status    treasury.CashRegisterStatus `json:"status"`
	CreatedAt time.Time                   `json:"created_at"`
}

// CashSessionResponse represents a cash session in API responses
type CashSessionResponse struct {
	ID              uuid.UUID                  `json:"id"`
	RegisterID      uuid.UUID                  `json:"register_id"`
	Status          treasury.CashSessionStatus `json:"status"`
	OpeningBalance  decimal.Decimal            `json:"opening_balance"`
	ExpectedBalance decimal.Decimal            `json:"expected_balance"`
	ActualBalance   *decimal.Decimal           `json:"actual_balance,omitempty"`
	Difference      *decimal.Decimal           `json:"difference,omitempty"`
	OpenedBy        *uuid.UUID                 `json:"opened_by,omitempty"`
	OpenedAt        time.Time                  `json:"opened_at"`
	ClosedBy        *uuid.UUID                 `json:"closed_by,omitempty"`
	ClosedAt        *time.Time                 `json:"closed_at,omitempty"`
	Notes           string                     `json:"notes,omitempty"`
}

// CashMovementResponse represents a cash movement in API responses
type CashMovementResponse struct {
	ID             uuid.UUID                 `json:"id"`
	SessionID      uuid.UUID                 `json:"session_id"`
	RegisterID     uuid.UUID                 `json:"register_id"`
	Type           treasury.CashMovementType `json:"type"`
	Direction      treasury.CashDirection    `json:"direction"`
	Amount         decimal.Decimal           `json:"amount"`
	Description    string                    `json:"description,omitempty"`
	PaymentOrderID *uuid.UUID                `json:"payment_order_id,omitempty"`
	CreatedBy      *uuid.UUID                `json:"created_by,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
}

func toCashRegisterResponse(r *treasury.CashRegister) CashRegisterResponse {
	return CashRegisterResponse{
		ID:        r.ID,
		TenantID:  r.TenantID,
		Name:      r.Name,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}

func toCashSessionResponse(s *treasury.CashSession) CashSessionResponse {
	return CashSessionResponse{
		ID:              s.ID,
		RegisterID:      s.RegisterID,
		Status:          s.Status,
		OpeningBalance:  s.OpeningBalance,
		ExpectedBalance: s.ExpectedBalance,
		ActualBalance:   s.ActualBalance,
		Difference:      s.Difference,
		OpenedBy:        s.OpenedBy,
		OpenedAt:        s.OpenedAt,
		ClosedBy:        s.ClosedBy,
		ClosedAt:        s.ClosedAt,
		Notes:           s.Notes,
	}
}

func toCashMovementResponse(m *treasury.CashMovement) CashMovementResponse {
	return CashMovementResponse{
		ID:             m.ID,
		SessionID:      m.SessionID,
		RegisterID:     m.RegisterID,
		Type:           m.Type,
		Direction:      m.Direction,
		Amount:         m.Amount,
		Description:    m.Description,
		PaymentOrderID: m.PaymentOrderID,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}
