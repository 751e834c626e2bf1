package handler

import (
	"time"

	"github.com/erp/treasury/internal/domain/shared/valueobject"
	"github.com/erp/treasury/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentOrderItemInput is one document settled by a payment order
type PaymentOrderItemInput struct {
	InvoiceID *uuid.UUID      `json:"invoice_id"`
	ExpenseID *uuid.UUID      `json:"expense_id"`
	Amount    decimal.Decimal `json:"amount" binding:"decimal_gt0,decimal_money"`
}

// PaymentOrderPaymentInput is one way the order is paid
type PaymentOrderPaymentInput struct {
	Method         treasury.PaymentMethod `json:"method" binding:"required,oneof=CASH TRANSFER CHECK DEBIT_CARD CREDIT_CARD"`
	Amount         decimal.Decimal        `json:"amount" binding:"decimal_gt0,decimal_money"`
	CashRegisterID *uuid.UUID             `json:"cash_register_id"`
	BankAccountID  *uuid.UUID             `json:"bank_account_id"`
	CheckNumber    string                 `json:"check_number" binding:"max=50"`
	CheckDueDate   *time.Time             `json:"check_due_date"`
	CardLast4      string                 `json:"card_last4" binding:"omitempty,len=4,numeric"`
}

// PaymentOrderWithholdingInput is a tax retained by the order
type PaymentOrderWithholdingInput struct {
	Type   treasury.WithholdingType `json:"type" binding:"required,oneof=VAT INCOME_TAX GROSS_INCOME SOCIAL_SECURITY"`
	Amount decimal.Decimal          `json:"amount" binding:"decimal_gt0,decimal_money"`
}

// CreatePaymentOrderRequest represents a request to create a draft payment order
//
//	@Description	Request body for creating a payment order
type CreatePaymentOrderRequest struct {
	Date         *time.Time                     `json:"date"`
	SupplierID   *uuid.UUID                     `json:"supplier_id"`
	Items        []PaymentOrderItemInput        `json:"items" binding:"required,min=1,dive"`
	Payments     []PaymentOrderPaymentInput     `json:"payments" binding:"dive"`
	Withholdings []PaymentOrderWithholdingInput `json:"withholdings" binding:"dive"`
	Notes        string                         `json:"notes" binding:"max=500"`
}

// GenerateInstallmentsRequest asks for an installment plan. With vat_rate the
// total is treated as a net amount and the plan splits the gross.
type GenerateInstallmentsRequest struct {
	Total        decimal.Decimal  `json:"total" binding:"decimal_gt0,decimal_money"`
	Count        int              `json:"count" binding:"required,min=1,max=120"`
	FirstDueDate time.Time        `json:"first_due_date" binding:"required"`
	IntervalDays int              `json:"interval_days" binding:"omitempty,min=0,max=365"`
	VATRate      *decimal.Decimal `json:"vat_rate" binding:"omitempty,decimal_gte0"`
}

// InstallmentPlanResponse is the result of an installment request
type InstallmentPlanResponse struct {
	VAT          *valueobject.VATLine   `json:"vat,omitempty"`
	Installments []treasury.Installment `json:"installments"`
}

// PaymentOrderItemResponse represents a settled document line
type PaymentOrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	InvoiceID *uuid.UUID      `json:"invoice_id,omitempty"`
	ExpenseID *uuid.UUID      `json:"expense_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}

// PaymentOrderPaymentResponse represents a payment line
type PaymentOrderPaymentResponse struct {
	ID             uuid.UUID              `json:"id"`
	Method         treasury.PaymentMethod `json:"method"`
	Amount         decimal.Decimal        `json:"amount"`
	CashRegisterID *uuid.UUID             `json:"cash_register_id,omitempty"`
	BankAccountID  *uuid.UUID             `json:"bank_account_id,omitempty"`
	CheckNumber    string                 `json:"check_number,omitempty"`
	CheckDueDate   *time.Time             `json:"check_due_date,omitempty"`
	CardLast4      string                 `json:"card_last4,omitempty"`
}

// PaymentOrderWithholdingResponse represents a withholding line
type PaymentOrderWithholdingResponse struct {
	ID     uuid.UUID                `json:"id"`
	Type   treasury.WithholdingType `json:"type"`
	Amount decimal.Decimal          `json:"amount"`
}

// PaymentOrderResponse represents a payment order in API responses
//
//	@Description	Payment order with its lines
type PaymentOrderResponse struct {
	ID             uuid.UUID                         `json:"id"`
	TenantID       uuid.UUID                         `json:"tenant_id"`
	FullNumber     string                            `json:"full_number"`
	Date           time.Time                         `json:"date"`
	SupplierID     *uuid.UUID                        `json:"supplier_id,omitempty"`
	TotalAmount    decimal.Decimal                   `json:"total_amount"`
	Status         treasury.PaymentOrderStatus       `json:"status"`
	Notes          string                            `json:"notes,omitempty"`
	Items          []PaymentOrderItemResponse        `json:"items"`
	Payments       []PaymentOrderPaymentResponse     `json:"payments"`
	Withholdings   []PaymentOrderWithholdingResponse `json:"withholdings"`
	ConfirmedBy    *uuid.UUID                        `json:"confirmed_by,omitempty"`
	ConfirmedAt    *time.Time                        `json:"confirmed_at,omitempty"`
	JournalEntryID *uuid.UUID                        `json:"journal_entry_id,omitempty"`
	Version        int                               `json:"version"`
	CreatedAt      time.Time                         `json:"created_at"`
	UpdatedAt      time.Time                         `json:"updated_at"`
}

func toPaymentOrderResponse(order *treasury.PaymentOrder) PaymentOrderResponse {
	resp := PaymentOrderResponse{
		ID:             order.ID,
		TenantID:       order.TenantID,
		FullNumber:     order.FullNumber,
		Date:           order.Date,
		SupplierID:     order.SupplierID,
		TotalAmount:    order.TotalAmount,
		Status:         order.Status,
		Notes:          order.Notes,
		Items:          make([]PaymentOrderItemResponse, 0, len(order.Items)),
		Payments:       make([]PaymentOrderPaymentResponse, 0, len(order.Payments)),
		Withholdings:   make([]PaymentOrderWithholdingResponse, 0, len(order.Withholdings)),
		ConfirmedBy:    order.ConfirmedBy,
		ConfirmedAt:    order.ConfirmedAt,
		JournalEntryID: order.JournalEntryID,
		Version:        order.Version,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, PaymentOrderItemResponse{
			ID:        item.ID,
			InvoiceID: item.InvoiceID,
			ExpenseID: item.ExpenseID,
			Amount:    item.Amount,
		})
	}
	for _, p := range order.Payments {
		resp.Payments = append(resp.Payments, PaymentOrderPaymentResponse{
			ID:             p.ID,
			Method:         p.Method,
			Amount:         p.Amount,
			CashRegisterID: p.CashRegisterID,
			BankAccountID:  p.BankAccountID,
			CheckNumber:    p.CheckNumber,
			CheckDueDate:   p.CheckDueDate,
			CardLast4:      p.CardLast4,
		})
	}
	for _, w := range order.Withholdings {
		resp.Withholdings = append(resp.Withholdings, PaymentOrderWithholdingResponse{
			ID:     w.ID,
			Type:   w.Type,
			Amount: w.Amount,
		})
	}
	return resp
}
