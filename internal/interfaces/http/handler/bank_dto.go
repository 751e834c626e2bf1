package handler

import (
	"time"

	"github.com/erp/treasury/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateBankAccountRequest represents a request to open a bank account
type CreateBankAccountRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=100"`
	BankName       string          `json:"bank_name" binding:"max=100"`
	AccountNumber  string          `json:"account_number" binding:"required,max=50"`
	OpeningBalance decimal.Decimal `json:"opening_balance" binding:"decimal_money"`
}

// CreateBankMovementRequest represents a manual movement on an account
type CreateBankMovementRequest struct {
	Type                 treasury.BankMovementType `json:"type" binding:"required,oneof=DEPOSIT TRANSFER_IN INTEREST WITHDRAWAL TRANSFER_OUT CHECK DEBIT FEE"`
	Amount               decimal.Decimal           `json:"amount" binding:"decimal_gt0,decimal_money"`
	Date                 *time.Time                `json:"date"`
	Description          string                    `json:"description" binding:"max=255"`
	Reference            string                    `json:"reference" binding:"max=100"`
	CounterpartAccountID *uuid.UUID                `json:"counterpart_account_id"`
}

// ReconcileMovementRequest flips the reconciliation flag of one movement.
// An empty body reconciles.
type ReconcileMovementRequest struct {
	Reconciled *bool `json:"reconciled"`
}

// ReconcileMovementsRequest flips the flag of many movements at once
type ReconcileMovementsRequest struct {
	IDs        []uuid.UUID `json:"ids" binding:"required,min=1,max=500"`
	Reconciled *bool       `json:"reconciled"`
}

// ReconcileMovementsResponse reports how many movements changed
type ReconcileMovementsResponse struct {
	Updated int64 `json:"updated"`
}

// BankAccountResponse represents a bank account in API responses
//
//	@Description	Bank account with its running balance
type BankAccountResponse struct {
	ID             uuid.UUID                  `json:"id"`
	TenantID       uuid.UUID                  `json:"tenant_id"`
	Name           string                     `json:"name"`
	BankName       string                     `json:"bank_name,omitempty"`
	AccountNumber  string                     `json:"account_number"`
	Currency       string                     `json:"currency"`
	OpeningBalance decimal.Decimal            `json:"opening_balance"`
	Balance        decimal.Decimal            `json:"balance"`
	Status         treasury.BankAccountStatus `json:"status"`
	Version        int                        `json:"version"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// BankMovementResponse represents a bank movement in API responses
type BankMovementResponse struct {
	ID                   uuid.UUID                 `json:"id"`
	BankAccountID        uuid.UUID                 `json:"bank_account_id"`
	Type                 treasury.BankMovementType `json:"type"`
	Amount               decimal.Decimal           `json:"amount"`
	Date                 time.Time                 `json:"date"`
	Description          string                    `json:"description,omitempty"`
	Reference            string                    `json:"reference,omitempty"`
	CounterpartAccountID *uuid.UUID                `json:"counterpart_account_id,omitempty"`
	LinkedMovementID     *uuid.UUID                `json:"linked_movement_id,omitempty"`
	PaymentOrderID       *uuid.UUID                `json:"payment_order_id,omitempty"`
	Reconciled           bool                      `json:"reconciled"`
	ReconciledAt         *time.Time                `json:"reconciled_at,omitempty"`
	ReconciledBy         *uuid.UUID                `json:"reconciled_by,omitempty"`
	CreatedAt            time.Time                 `json:"created_at"`
}

func toBankAccountResponse(a *treasury.BankAccount) BankAccountResponse {
	return BankAccountResponse{
		ID:             a.ID,
		TenantID:       a.TenantID,
		Name:           a.Name,
		BankName:       a.BankName,
		AccountNumber:  a.AccountNumber,
		Currency:       string(a.Currency),
		OpeningBalance: a.OpeningBalance,
		Balance:        a.Balance,
		Status:         a.Status,
		Version:        a.Version,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func toBankMovementResponse(m *treasury.BankMovement) BankMovementResponse {
	return BankMovementResponse{
		ID:                   m.ID,
		BankAccountID:        m.BankAccountID,
		Type:                 m.Type,
		Amount:               m.Amount,
		Date:                 m.Date,
		Description:          m.Description,
		Reference:            m.Reference,
		CounterpartAccountID: m.CounterpartAccountID,
		LinkedMovementID:     m.LinkedMovementID,
		PaymentOrderID:       m.PaymentOrderID,
		Reconciled:           m.Reconciled,
		ReconciledAt:         m.ReconciledAt,
		ReconciledBy:         m.ReconciledBy,
		CreatedAt:            m.CreatedAt,
	}
}

func toBankMovementResponses(movements []treasury.BankMovement) []BankMovementResponse {
	out := make([]BankMovementResponse, len(movements))
	for i := range movements {
		out[i] = toBankMovementResponse(&movements[i])
	}
	return out
}
