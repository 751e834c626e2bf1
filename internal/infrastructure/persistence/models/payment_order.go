package models

import (
	"time"

	"github.com/erp/treasury/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentOrderModel is the persistence model for the PaymentOrder aggregate root
type PaymentOrderModel struct {
	BaseModel
	TenantID       uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:ux_payment_orders_tenant_number,priority:1"`
	Version        int                         `gorm:"not null;default:1"`
	FullNumber     string                      `gorm:"type:varchar(50);not null;uniqueIndex:ux_payment_orders_tenant_number,priority:2"`
	Date           time.Time                   `gorm:"not null"`
	SupplierID     *uuid.UUID                  `gorm:"type:uuid;index"`
	TotalAmount    decimal.Decimal             `gorm:"type:decimal(18,2);not null"`
	Status         treasury.PaymentOrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Notes          string                      `gorm:"type:text"`
	ConfirmedBy    *uuid.UUID                  `gorm:"type:uuid"`
	ConfirmedAt    *time.Time
	JournalEntryID *uuid.UUID                     `gorm:"type:uuid"`
	Items          []PaymentOrderItemModel        `gorm:"foreignKey:PaymentOrderID;references:ID"`
	Payments       []PaymentOrderPaymentModel     `gorm:"foreignKey:PaymentOrderID;references:ID"`
	Withholdings   []PaymentOrderWithholdingModel `gorm:"foreignKey:PaymentOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PaymentOrderModel) TableName() string {
	return "payment_orders"
}

// ToDomain converts the persistence model, including loaded children, to a domain PaymentOrder
func (m *PaymentOrderModel) ToDomain() *treasury.PaymentOrder {
	order := &treasury.PaymentOrder{
		TenantAggregateRoot: tenantAggregateRoot(m.BaseModel, m.TenantID, m.Version),
		FullNumber:          m.FullNumber,
		Date:                m.Date,
		SupplierID:          m.SupplierID,
		TotalAmount:         m.TotalAmount,
		Status:              m.Status,
		Notes:               m.Notes,
		ConfirmedBy:         m.ConfirmedBy,
		ConfirmedAt:         m.ConfirmedAt,
		JournalEntryID:      m.JournalEntryID,
		Items:               make([]treasury.PaymentOrderItem, 0, len(m.Items)),
		Payments:            make([]treasury.PaymentOrderPayment, 0, len(m.Payments)),
		Withholdings:        make([]treasury.PaymentOrderWithholding, 0, len(m.Withholdings)),
	}
	for _, it := range m.Items {
		order.Items = append(order.Items, it.ToDomain())
	}
	for _, p := range m.Payments {
		order.Payments = append(order.Payments, p.ToDomain())
	}
	for _, w := range m.Withholdings {
		order.Withholdings = append(order.Withholdings, w.ToDomain())
	}
	return order
}

// PaymentOrderModelFromDomain creates a new persistence model with children from a domain PaymentOrder
func PaymentOrderModelFromDomain(o *treasury.PaymentOrder) *PaymentOrderModel {
	m := &PaymentOrderModel{
		TenantID:       o.TenantID,
		Version:        o.Version,
		FullNumber:     o.FullNumber,
		Date:           o.Date,
		SupplierID:     o.SupplierID,
		TotalAmount:    o.TotalAmount,
		Status:         o.Status,
		Notes:          o.Notes,
		ConfirmedBy:    o.ConfirmedBy,
		ConfirmedAt:    o.ConfirmedAt,
		JournalEntryID: o.JournalEntryID,
	}
	m.FromDomainBaseEntity(o.BaseEntity)
	for _, it := range o.Items {
		m.Items = append(m.Items, PaymentOrderItemModel{
			ID:             it.ID,
			TenantID:       o.TenantID,
			PaymentOrderID: o.ID,
			InvoiceID:      it.InvoiceID,
			ExpenseID:      it.ExpenseID,
			Amount:         it.Amount,
		})
	}
	for _, p := range o.Payments {
		m.Payments = append(m.Payments, PaymentOrderPaymentModel{
			ID:             p.ID,
			TenantID:       o.TenantID,
			PaymentOrderID: o.ID,
			Method:         p.Method,
			Amount:         p.Amount,
			CashRegisterID: p.CashRegisterID,
			BankAccountID:  p.BankAccountID,
			CheckNumber:    p.CheckNumber,
			CheckDueDate:   p.CheckDueDate,
			CardLast4:      p.CardLast4,
		})
	}
	for _, w := range o.Withholdings {
		m.Withholdings = append(m.Withholdings, PaymentOrderWithholdingModel{
			ID:             w.ID,
			TenantID:       o.TenantID,
			PaymentOrderID: o.ID,
			Type:           w.Type,
			Amount:         w.Amount,
		})
	}
	return m
}

// PaymentOrderItemModel allocates part of an order to an invoice or an expense
type PaymentOrderItemModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID      *uuid.UUID      `gorm:"type:uuid;index"`
	ExpenseID      *uuid.UUID      `gorm:"type:uuid;index"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (PaymentOrderItemModel) TableName() string {
	return "payment_order_items"
}

// ToDomain converts the persistence model to a domain PaymentOrderItem
func (m PaymentOrderItemModel) ToDomain() treasury.PaymentOrderItem {
	return treasury.PaymentOrderItem{
		ID:             m.ID,
		PaymentOrderID: m.PaymentOrderID,
		InvoiceID:      m.InvoiceID,
		ExpenseID:      m.ExpenseID,
		Amount:         m.Amount,
	}
}

// PaymentOrderPaymentModel is one settlement line of an order
type PaymentOrderPaymentModel struct {
	ID             uuid.UUID              `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	PaymentOrderID uuid.UUID              `gorm:"type:uuid;not null;index"`
	Method         treasury.PaymentMethod `gorm:"type:varchar(20);not null"`
	Amount         decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	CashRegisterID *uuid.UUID             `gorm:"type:uuid"`
	BankAccountID  *uuid.UUID             `gorm:"type:uuid"`
	CheckNumber    string                 `gorm:"type:varchar(30)"`
	CheckDueDate   *time.Time
	CardLast4      string `gorm:"type:varchar(4)"`
}

// TableName returns the table name for GORM
func (PaymentOrderPaymentModel) TableName() string {
	return "payment_order_payments"
}

// ToDomain converts the persistence model to a domain PaymentOrderPayment
func (m PaymentOrderPaymentModel) ToDomain() treasury.PaymentOrderPayment {
	return treasury.PaymentOrderPayment{
		ID:             m.ID,
		PaymentOrderID: m.PaymentOrderID,
		Method:         m.Method,
		Amount:         m.Amount,
		CashRegisterID: m.CashRegisterID,
		BankAccountID:  m.BankAccountID,
		CheckNumber:    m.CheckNumber,
		CheckDueDate:   m.CheckDueDate,
		CardLast4:      m.CardLast4,
	}
}

// PaymentOrderWithholdingModel is a tax line retained by an order
type PaymentOrderWithholdingModel struct {
	ID             uuid.UUID                `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID                `gorm:"type:uuid;not null;index"`
	PaymentOrderID uuid.UUID                `gorm:"type:uuid;not null;index"`
	Type           treasury.WithholdingType `gorm:"type:varchar(30);not null"`
	Amount         decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (PaymentOrderWithholdingModel) TableName() string {
	return "payment_order_withholdings"
}

// ToDomain converts the persistence model to a domain PaymentOrderWithholding
func (m PaymentOrderWithholdingModel) ToDomain() treasury.PaymentOrderWithholding {
	return treasury.PaymentOrderWithholding{
		ID:             m.ID,
		PaymentOrderID: m.PaymentOrderID,
		Type:           m.Type,
		Amount:         m.Amount,
	}
}

// OwnedCheckModel is a check issued from one of the tenant's bank accounts
type OwnedCheckModel struct {
	TenantModel
	BankAccountID   uuid.UUID                 `gorm:"type:uuid;not null;index"`
	PaymentOrderID  *uuid.UUID                `gorm:"type:uuid;index"`
	Number          string                    `gorm:"type:varchar(30);not null"`
	Amount          decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	IssueDate       time.Time                 `gorm:"not null"`
	DueDate         *time.Time                `gorm:"index"`
	PayeeSupplierID *uuid.UUID                `gorm:"type:uuid"`
	Status          treasury.OwnedCheckStatus `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (OwnedCheckModel) TableName() string {
	return "owned_checks"
}

// ToDomain converts the persistence model to a domain OwnedCheck
func (m *OwnedCheckModel) ToDomain() *treasury.OwnedCheck {
	return &treasury.OwnedCheck{
		BaseEntity:      m.BaseModel.ToDomain(),
		TenantID:        m.TenantID,
		BankAccountID:   m.BankAccountID,
		PaymentOrderID:  m.PaymentOrderID,
		Number:          m.Number,
		Amount:          m.Amount,
		IssueDate:       m.IssueDate,
		DueDate:         m.DueDate,
		PayeeSupplierID: m.PayeeSupplierID,
		Status:          m.Status,
	}
}

// OwnedCheckModelFromDomain creates a new persistence model from a domain OwnedCheck
func OwnedCheckModelFromDomain(c *treasury.OwnedCheck) *OwnedCheckModel {
	m := &OwnedCheckModel{
		BankAccountID:   c.BankAccountID,
		PaymentOrderID:  c.PaymentOrderID,
		Number:          c.Number,
		Amount:          c.Amount,
		IssueDate:       c.IssueDate,
		DueDate:         c.DueDate,
		PayeeSupplierID: c.PayeeSupplierID,
		Status:          c.Status,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	m.TenantID = c.TenantID
	return m
}

// WithholdingCertificateModel is the certificate issued per withholding line
type WithholdingCertificateModel struct {
	TenantModel
	PaymentOrderID    uuid.UUID                `gorm:"type:uuid;not null;index"`
	SupplierID        *uuid.UUID               `gorm:"type:uuid"`
	Type              treasury.WithholdingType `gorm:"type:varchar(30);not null"`
	Amount            decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	CertificateNumber string                   `gorm:"type:varchar(60);not null"`
	IssuedAt          time.Time                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WithholdingCertificateModel) TableName() string {
	return "withholding_certificates"
}

// ToDomain converts the persistence model to a domain WithholdingCertificate
func (m *WithholdingCertificateModel) ToDomain() treasury.WithholdingCertificate {
	return treasury.WithholdingCertificate{
		BaseEntity:        m.BaseModel.ToDomain(),
		TenantID:          m.TenantID,
		PaymentOrderID:    m.PaymentOrderID,
		SupplierID:        m.SupplierID,
		Type:              m.Type,
		Amount:            m.Amount,
		CertificateNumber: m.CertificateNumber,
		IssuedAt:          m.IssuedAt,
	}
}

// WithholdingCertificateModelFromDomain creates a new persistence model from a domain WithholdingCertificate
func WithholdingCertificateModelFromDomain(c treasury.WithholdingCertificate) WithholdingCertificateModel {
	m := WithholdingCertificateModel{
		PaymentOrderID:    c.PaymentOrderID,
		SupplierID:        c.SupplierID,
		Type:              c.Type,
		Amount:            c.Amount,
		CertificateNumber: c.CertificateNumber,
		IssuedAt:          c.IssuedAt,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	m.TenantID = c.TenantID
	return m
}
