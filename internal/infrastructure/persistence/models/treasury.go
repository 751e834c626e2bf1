package models

import (
	"time"

	"github.com/erp/treasury/internal/domain/shared/valueobject"
	"github.com/erp/treasury/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccountModel is the persistence model for the BankAccount aggregate root
type BankAccountModel struct {
	BaseModel
	TenantID       uuid.UUID                  `gorm:"type:uuid;not null;uniqueIndex:ux_bank_accounts_tenant_number,priority:1"`
	Version        int                        `gorm:"not null;default:1"`
	Name           string                     `gorm:"type:varchar(100);not null"`
	BankName       string                     `gorm:"type:varchar(100)"`
	AccountNumber  string                     `gorm:"type:varchar(50);not null;uniqueIndex:ux_bank_accounts_tenant_number,priority:2"`
	Currency       valueobject.Currency       `gorm:"type:varchar(3);not null;default:'ARS'"`
	OpeningBalance decimal.Decimal            `gorm:"type:decimal(18,2);not null"`
	Balance        decimal.Decimal            `gorm:"type:decimal(18,2);not null"`
	Status         treasury.BankAccountStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (BankAccountModel) TableName() string {
	return "bank_accounts"
}

// ToDomain converts the persistence model to a domain BankAccount
func (m *BankAccountModel) ToDomain() *treasury.BankAccount {
	return &treasury.BankAccount{
		TenantAggregateRoot: tenantAggregateRoot(m.BaseModel, m.TenantID, m.Version),
		Name:                m.Name,
		BankName:            m.BankName,
		AccountNumber:       m.AccountNumber,
		Currency:            m.Currency,
		OpeningBalance:      m.OpeningBalance,
		Balance:             m.Balance,
		Status:              m.Status,
	}
}

// BankAccountModelFromDomain creates a new persistence model from a domain BankAccount
func BankAccountModelFromDomain(a *treasury.BankAccount) *BankAccountModel {
	m := &BankAccountModel{
		TenantID:       a.TenantID,
		Version:        a.Version,
		Name:           a.Name,
		BankName:       a.BankName,
		AccountNumber:  a.AccountNumber,
		Currency:       a.Currency,
		OpeningBalance: a.OpeningBalance,
		Balance:        a.Balance,
		Status:         a.Status,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

// BankMovementModel is a row of a bank account ledger
type BankMovementModel struct {
	TenantModel
	BankAccountID        uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Type                 treasury.BankMovementType `gorm:"type:varchar(20);not null"`
	Amount               decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	Date                 time.Time                 `gorm:"not null;index"`
	Description          string                    `gorm:"type:varchar(500)"`
	Reference            string                    `gorm:"type:varchar(100)"`
	CounterpartAccountID *uuid.UUID                `gorm:"type:uuid"`
	LinkedMovementID     *uuid.UUID                `gorm:"type:uuid"`
	PaymentOrderID       *uuid.UUID                `gorm:"type:uuid;index"`
	Reconciled           bool                      `gorm:"not null;default:false;index"`
	ReconciledAt         *time.Time
	ReconciledBy         *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (BankMovementModel) TableName() string {
	return "bank_movements"
}

// ToDomain converts the persistence model to a domain BankMovement
func (m *BankMovementModel) ToDomain() *treasury.BankMovement {
	return &treasury.BankMovement{
		BaseEntity:           m.BaseModel.ToDomain(),
		TenantID:             m.TenantID,
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
	}
}

// BankMovementModelFromDomain creates a new persistence model from a domain BankMovement
func BankMovementModelFromDomain(mv *treasury.BankMovement) *BankMovementModel {
	m := &BankMovementModel{
		BankAccountID:        mv.BankAccountID,
		Type:                 mv.Type,
		Amount:               mv.Amount,
		Date:                 mv.Date,
		Description:          mv.Description,
		Reference:            mv.Reference,
		CounterpartAccountID: mv.CounterpartAccountID,
		LinkedMovementID:     mv.LinkedMovementID,
		PaymentOrderID:       mv.PaymentOrderID,
		Reconciled:           mv.Reconciled,
		ReconciledAt:         mv.ReconciledAt,
		ReconciledBy:         mv.ReconciledBy,
	}
	m.FromDomainBaseEntity(mv.BaseEntity)
	m.TenantID = mv.TenantID
	return m
}

// CashRegisterModel is the persistence model for cash registers
type CashRegisterModel struct {
	TenantAggregateModel
	Name   string                      `gorm:"type:varchar(100);not null"`
	Status treasury.CashRegisterStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (CashRegisterModel) TableName() string {
	return "cash_registers"
}

// ToDomain converts the persistence model to a domain CashRegister
func (m *CashRegisterModel) ToDomain() *treasury.CashRegister {
	return &treasury.CashRegister{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		Status:              m.Status,
	}
}

// CashRegisterModelFromDomain creates a new persistence model from a domain CashRegister
func CashRegisterModelFromDomain(r *treasury.CashRegister) *CashRegisterModel {
	m := &CashRegisterModel{Name: r.Name, Status: r.Status}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	return m
}

// CashSessionModel is the persistence model for register sessions. The
// partial unique index allows one OPEN session per register.
type CashSessionModel struct {
	TenantAggregateModel
	RegisterID      uuid.UUID                  `gorm:"type:uuid;not null;index:ux_cash_sessions_open_register,unique,where:status = 'OPEN'"`
	Status          treasury.CashSessionStatus `gorm:"type:varchar(20);not null;default:'OPEN'"`
	OpeningBalance  decimal.Decimal            `gorm:"type:decimal(18,2);not null"`
	ExpectedBalance decimal.Decimal            `gorm:"type:decimal(18,2);not null"`
	ActualBalance   *decimal.Decimal           `gorm:"type:decimal(18,2)"`
	Difference      *decimal.Decimal           `gorm:"type:decimal(18,2)"`
	OpenedBy        *uuid.UUID                 `gorm:"type:uuid"`
	OpenedAt        time.Time                  `gorm:"not null"`
	ClosedBy        *uuid.UUID                 `gorm:"type:uuid"`
	ClosedAt        *time.Time
	Notes           string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CashSessionModel) TableName() string {
	return "cash_sessions"
}

// ToDomain converts the persistence model to a domain CashSession
func (m *CashSessionModel) ToDomain() *treasury.CashSession {
	return &treasury.CashSession{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		RegisterID:          m.RegisterID,
		Status:              m.Status,
		OpeningBalance:      m.OpeningBalance,
		ExpectedBalance:     m.ExpectedBalance,
		ActualBalance:       m.ActualBalance,
		Difference:          m.Difference,
		OpenedBy:            m.OpenedBy,
		OpenedAt:            m.OpenedAt,
		ClosedBy:            m.ClosedBy,
		ClosedAt:            m.ClosedAt,
		Notes:               m.Notes,
	}
}

// CashSessionModelFromDomain creates a new persistence model from a domain CashSession
func CashSessionModelFromDomain(s *treasury.CashSession) *CashSessionModel {
	m := &CashSessionModel{
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
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	return m
}

// CashMovementModel is a row of a session ledger
type CashMovementModel struct {
	TenantModel
	SessionID      uuid.UUID                 `gorm:"type:uuid;not null;index"`
	RegisterID     uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Type           treasury.CashMovementType `gorm:"type:varchar(20);not null"`
	Direction      treasury.CashDirection    `gorm:"type:varchar(3);not null"`
	Amount         decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	Description    string                    `gorm:"type:varchar(500)"`
	PaymentOrderID *uuid.UUID                `gorm:"type:uuid;index"`
	CreatedBy      *uuid.UUID                `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CashMovementModel) TableName() string {
	return "cash_movements"
}

// ToDomain converts the persistence model to a domain CashMovement
func (m *CashMovementModel) ToDomain() *treasury.CashMovement {
	return &treasury.CashMovement{
		BaseEntity:     m.BaseModel.ToDomain(),
		TenantID:       m.TenantID,
		SessionID:      m.SessionID,
		RegisterID:     m.RegisterID,
		Type:           m.Type,
		Direction:      m.Direction,
		Amount:         m.Amount,
		Description:    m.Description,
		PaymentOrderID: m.PaymentOrderID,
		CreatedBy:      m.CreatedBy,
	}
}

// CashMovementModelFromDomain creates a new persistence model from a domain CashMovement
func CashMovementModelFromDomain(mv *treasury.CashMovement) *CashMovementModel {
	m := &CashMovementModel{
		SessionID:      mv.SessionID,
		RegisterID:     mv.RegisterID,
		Type:           mv.Type,
		Direction:      mv.Direction,
		Amount:         mv.Amount,
		Description:    mv.Description,
		PaymentOrderID: mv.PaymentOrderID,
		CreatedBy:      mv.CreatedBy,
	}
	m.FromDomainBaseEntity(mv.BaseEntity)
	m.TenantID = mv.TenantID
	return m
}
