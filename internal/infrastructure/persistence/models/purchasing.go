package models

import (
	"time"

	"github.com/erp/treasury/internal/domain/purchasing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseInvoiceModel is the persistence model for supplier vouchers
// (invoices, debit notes and credit notes)
type PurchaseInvoiceModel struct {
	TenantAggregateModel
	FullNumber        string                   `gorm:"type:varchar(50);not null;index"`
	VoucherType       purchasing.VoucherType   `gorm:"type:varchar(20);not null;index"`
	SupplierID        uuid.UUID                `gorm:"type:uuid;not null;index"`
	PurchaseOrderID   *uuid.UUID               `gorm:"type:uuid"`
	OriginalInvoiceID *uuid.UUID               `gorm:"type:uuid;index"`
	IssueDate         time.Time                `gorm:"not null"`
	DueDate           *time.Time               `gorm:"index"`
	Total             decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	Status            purchasing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
}

// TableName returns the table name for GORM
func (PurchaseInvoiceModel) TableName() string {
	return "purchase_invoices"
}

// ToDomain converts the persistence model to a domain PurchaseInvoice
func (m *PurchaseInvoiceModel) ToDomain() *purchasing.PurchaseInvoice {
	return &purchasing.PurchaseInvoice{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		FullNumber:          m.FullNumber,
		VoucherType:         m.VoucherType,
		SupplierID:          m.SupplierID,
		PurchaseOrderID:     m.PurchaseOrderID,
		OriginalInvoiceID:   m.OriginalInvoiceID,
		IssueDate:           m.IssueDate,
		DueDate:             m.DueDate,
		Total:               m.Total,
		Status:              m.Status,
	}
}

// FromDomain populates the persistence model from a domain PurchaseInvoice
func (m *PurchaseInvoiceModel) FromDomain(inv *purchasing.PurchaseInvoice) {
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	m.FullNumber = inv.FullNumber
	m.VoucherType = inv.VoucherType
	m.SupplierID = inv.SupplierID
	m.PurchaseOrderID = inv.PurchaseOrderID
	m.OriginalInvoiceID = inv.OriginalInvoiceID
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.Total = inv.Total
	m.Status = inv.Status
}

// PurchaseInvoiceModelFromDomain creates a new persistence model from a domain PurchaseInvoice
func PurchaseInvoiceModelFromDomain(inv *purchasing.PurchaseInvoice) *PurchaseInvoiceModel {
	m := &PurchaseInvoiceModel{}
	m.FromDomain(inv)
	return m
}

// CreditNoteApplicationModel is an explicit compensation of an invoice by a credit note
type CreditNoteApplicationModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreditNoteID uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AppliedBy    *uuid.UUID      `gorm:"type:uuid"`
	AppliedAt    time.Time       `gorm:"not null"`
	Backfilled   bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CreditNoteApplicationModel) TableName() string {
	return "credit_note_applications"
}

// ToDomain converts the persistence model to a domain CreditNoteApplication
func (m *CreditNoteApplicationModel) ToDomain() *purchasing.CreditNoteApplication {
	return &purchasing.CreditNoteApplication{
		ID:           m.ID,
		TenantID:     m.TenantID,
		CreditNoteID: m.CreditNoteID,
		InvoiceID:    m.InvoiceID,
		Amount:       m.Amount,
		AppliedBy:    m.AppliedBy,
		AppliedAt:    m.AppliedAt,
		Backfilled:   m.Backfilled,
	}
}

// CreditNoteApplicationModelFromDomain creates a new persistence model from a domain CreditNoteApplication
func CreditNoteApplicationModelFromDomain(a *purchasing.CreditNoteApplication) *CreditNoteApplicationModel {
	return &CreditNoteApplicationModel{
		ID:           a.ID,
		TenantID:     a.TenantID,
		CreditNoteID: a.CreditNoteID,
		InvoiceID:    a.InvoiceID,
		Amount:       a.Amount,
		AppliedBy:    a.AppliedBy,
		AppliedAt:    a.AppliedAt,
		Backfilled:   a.Backfilled,
	}
}

// ExpenseModel is the persistence model for expenses paid through payment orders
type ExpenseModel struct {
	TenantAggregateModel
	Number      string                   `gorm:"type:varchar(50);not null;index"`
	Description string                   `gorm:"type:text"`
	SupplierID  *uuid.UUID               `gorm:"type:uuid;index"`
	Date        time.Time                `gorm:"not null"`
	Total       decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	Status      purchasing.ExpenseStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense
func (m *ExpenseModel) ToDomain() *purchasing.Expense {
	return &purchasing.Expense{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Number:              m.Number,
		Description:         m.Description,
		SupplierID:          m.SupplierID,
		Date:                m.Date,
		Total:               m.Total,
		Status:              m.Status,
	}
}

// ExpenseModelFromDomain creates a new persistence model from a domain Expense
func ExpenseModelFromDomain(e *purchasing.Expense) *ExpenseModel {
	m := &ExpenseModel{
		Number:      e.Number,
		Description: e.Description,
		SupplierID:  e.SupplierID,
		Date:        e.Date,
		Total:       e.Total,
		Status:      e.Status,
	}
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	return m
}
