package models

import (
	"time"

	"github.com/erp/treasury/internal/domain/cashflow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashflowProjectionModel is the persistence model for forecast lines
type CashflowProjectionModel struct {
	TenantAggregateModel
	Type            cashflow.ProjectionType   `gorm:"type:varchar(10);not null;index"`
	Category        string                    `gorm:"type:varchar(100);not null"`
	Description     string                    `gorm:"type:varchar(500)"`
	DueDate         time.Time                 `gorm:"not null;index"`
	Amount          decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	ConfirmedAmount decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	Status          cashflow.ProjectionStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
}

// TableName returns the table name for GORM
func (CashflowProjectionModel) TableName() string {
	return "cashflow_projections"
}

// ToDomain converts the persistence model to a domain CashflowProjection
func (m *CashflowProjectionModel) ToDomain() *cashflow.CashflowProjection {
	return &cashflow.CashflowProjection{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Type:                m.Type,
		Category:            m.Category,
		Description:         m.Description,
		DueDate:             m.DueDate,
		Amount:              m.Amount,
		ConfirmedAmount:     m.ConfirmedAmount,
		Status:              m.Status,
	}
}

// CashflowProjectionModelFromDomain creates a new persistence model from a domain CashflowProjection
func CashflowProjectionModelFromDomain(p *cashflow.CashflowProjection) *CashflowProjectionModel {
	m := &CashflowProjectionModel{
		Type:            p.Type,
		Category:        p.Category,
		Description:     p.Description,
		DueDate:         p.DueDate,
		Amount:          p.Amount,
		ConfirmedAmount: p.ConfirmedAmount,
		Status:          p.Status,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}

// ProjectionDocumentLinkModel ties part of a projection to exactly one document
type ProjectionDocumentLinkModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProjectionID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SalesInvoiceID    *uuid.UUID      `gorm:"type:uuid;index"`
	PurchaseInvoiceID *uuid.UUID      `gorm:"type:uuid;index"`
	ExpenseID         *uuid.UUID      `gorm:"type:uuid;index"`
	Notes             string          `gorm:"type:text"`
	CreatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProjectionDocumentLinkModel) TableName() string {
	return "cashflow_projection_links"
}

// ToDomain converts the persistence model to a domain ProjectionDocumentLink
func (m *ProjectionDocumentLinkModel) ToDomain() *cashflow.ProjectionDocumentLink {
	return &cashflow.ProjectionDocumentLink{
		ID:                m.ID,
		TenantID:          m.TenantID,
		ProjectionID:      m.ProjectionID,
		Amount:            m.Amount,
		SalesInvoiceID:    m.SalesInvoiceID,
		PurchaseInvoiceID: m.PurchaseInvoiceID,
		ExpenseID:         m.ExpenseID,
		Notes:             m.Notes,
		CreatedAt:         m.CreatedAt,
	}
}

// ProjectionDocumentLinkModelFromDomain creates a new persistence model from a domain ProjectionDocumentLink
func ProjectionDocumentLinkModelFromDomain(l *cashflow.ProjectionDocumentLink) *ProjectionDocumentLinkModel {
	return &ProjectionDocumentLinkModel{
		ID:                l.ID,
		TenantID:          l.TenantID,
		ProjectionID:      l.ProjectionID,
		Amount:            l.Amount,
		SalesInvoiceID:    l.SalesInvoiceID,
		PurchaseInvoiceID: l.PurchaseInvoiceID,
		ExpenseID:         l.ExpenseID,
		Notes:             l.Notes,
		CreatedAt:         l.CreatedAt,
	}
}

// AllModels returns every persistence model in dependency order
func AllModels() []any {
	return []any{
		&PurchaseInvoiceModel{},
		&CreditNoteApplicationModel{},
		&ExpenseModel{},
		&BankAccountModel{},
		&BankMovementModel{},
		&CashRegisterModel{},
		&CashSessionModel{},
		&CashMovementModel{},
		&PaymentOrderModel{},
		&PaymentOrderItemModel{},
		&PaymentOrderPaymentModel{},
		&PaymentOrderWithholdingModel{},
		&OwnedCheckModel{},
		&WithholdingCertificateModel{},
		&CashflowProjectionModel{},
		&ProjectionDocumentLinkModel{},
	}
}
