package persistence

import (
	"context"

	apptreasury "github.com/erp/treasury/internal/application/treasury"
	"github.com/erp/treasury/internal/domain/purchasing"
	"github.com/erp/treasury/internal/domain/treasury"
	"gorm.io/gorm"
)

// GormTransactionScope implements the treasury TransactionScope using GORM
// transactions. Every repository handed to fn shares the transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apptreasury.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) InvoiceRepo() purchasing.PurchaseInvoiceRepository {
	return NewGormPurchaseInvoiceRepository(r.tx)
}

func (r *gormTransactionalRepositories) CreditNoteApplicationRepo() purchasing.CreditNoteApplicationRepository {
	return NewGormCreditNoteApplicationRepository(r.tx)
}

func (r *gormTransactionalRepositories) ExpenseRepo() purchasing.ExpenseRepository {
	return NewGormExpenseRepository(r.tx)
}

func (r *gormTransactionalRepositories) BankAccountRepo() treasury.BankAccountRepository {
	return NewGormBankAccountRepository(r.tx)
}

func (r *gormTransactionalRepositories) BankMovementRepo() treasury.BankMovementRepository {
	return NewGormBankMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) CashRegisterRepo() treasury.CashRegisterRepository {
	return NewGormCashRegisterRepository(r.tx)
}

func (r *gormTransactionalRepositories) CashSessionRepo() treasury.CashSessionRepository {
	return NewGormCashSessionRepository(r.tx)
}

func (r *gormTransactionalRepositories) CashMovementRepo() treasury.CashMovementRepository {
	return NewGormCashMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) PaymentOrderRepo() treasury.PaymentOrderRepository {
	return NewGormPaymentOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) OwnedCheckRepo() treasury.OwnedCheckRepository {
	return NewGormOwnedCheckRepository(r.tx)
}

func (r *gormTransactionalRepositories) WithholdingCertificateRepo() treasury.WithholdingCertificateRepository {
	return NewGormWithholdingCertificateRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ apptreasury.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ apptreasury.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
