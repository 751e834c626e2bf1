package handler

import (
	"time"

	"github.com/erp/treasury/internal/domain/cashflow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProjectionRequest represents a request to plan an expected flow
type CreateProjectionRequest struct {
	Type        cashflow.ProjectionType `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Category    string                  `json:"category" binding:"max=100"`
	Description string                  `json:"description" binding:"max=255"`
	DueDate     time.Time               `json:"due_date" binding:"required"`
	Amount      decimal.Decimal         `json:"amount" binding:"decimal_gt0,decimal_money"`
}

// LinkDocumentRequest ties part of a document to a projection
type LinkDocumentRequest struct {
	DocumentKind cashflow.DocumentKind `json:"document_kind" binding:"required,oneof=SALES_INVOICE PURCHASE_INVOICE EXPENSE"`
	DocumentID   uuid.UUID             `json:"document_id" binding:"required"`
	Amount       decimal.Decimal       `json:"amount" binding:"decimal_gt0,decimal_money"`
	Notes        string                `json:"notes" binding:"max=500"`
}

// ProjectionResponse represents a cashflow projection in API responses
type ProjectionResponse struct {
	ID              uuid.UUID                 `json:"id"`
	TenantID        uuid.UUID                 `json:"tenant_id"`
	Type            cashflow.ProjectionType   `json:"type"`
	Category        string                    `json:"category,omitempty"`
	Description     string                    `json:"description,omitempty"`
	DueDate         time.Time                 `json:"due_date"`
	Amount          decimal.Decimal           `json:"amount"`
	ConfirmedAmount decimal.Decimal           `json:"confirmed_amount"`
	Status          cashflow.ProjectionStatus `json:"status"`
	Version         int                       `json:"version"`
}

// ProjectionLinkResponse represents a document link in API responses
type ProjectionLinkResponse struct {
	ID           uuid.UUID             `json:"id"`
	ProjectionID uuid.UUID             `json:"projection_id"`
	DocumentKind cashflow.DocumentKind `json:"document_kind"`
	DocumentID   uuid.UUID             `json:"document_id"`
	Amount       decimal.Decimal       `json:"amount"`
	Notes        string                `json:"notes,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

// LinkDocumentResponse carries the link and the recomputed projection
type LinkDocumentResponse struct {
	Link       ProjectionLinkResponse `json:"link"`
	Projection ProjectionResponse     `json:"projection"`
}

func toProjectionResponse(p *cashflow.CashflowProjection) ProjectionResponse {
	return ProjectionResponse{
		ID:              p.ID,
		TenantID:        p.TenantID,
		Type:            p.Type,
		Category:        p.Category,
		Description:     p.Description,
		DueDate:         p.DueDate,
		Amount:          p.Amount,
		ConfirmedAmount: p.ConfirmedAmount,
		Status:          p.Status,
		Version:         p.Version,
	}
}

func toProjectionLinkResponse(l *cashflow.ProjectionDocumentLink) ProjectionLinkResponse {
	resp := ProjectionLinkResponse{
		ID:           l.ID,
		ProjectionID: l.ProjectionID,
		Amount:       l.Amount,
		Notes:        l.Notes,
		CreatedAt:    l.CreatedAt,
	}
	switch {
	case l.SalesInvoiceID != nil:
		resp.DocumentKind, resp.DocumentID = cashflow.DocumentSalesInvoice, *l.SalesInvoiceID
	case l.PurchaseInvoiceID != nil:
		resp.DocumentKind, resp.DocumentID = cashflow.DocumentPurchaseInvoice, *l.PurchaseInvoiceID
	case l.ExpenseID != nil:
		resp.DocumentKind, resp.DocumentID = cashflow.DocumentExpense, *l.ExpenseID
	}
	return resp
}
