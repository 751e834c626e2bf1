package treasury

import (
	"context"

	"github.com/erp/treasury/internal/domain/purchasing"
	"github.com/erp/treasury/internal/domain/treasury"
)

// TransactionScope provides transactional access to the purchasing and
// treasury repositories. Everything done through the repositories handed to
// fn commits or rolls back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	InvoiceRepo() purchasing.PurchaseInvoiceRepository
	CreditNoteApplicationRepo() purchasing.CreditNoteApplicationRepository
	ExpenseRepo() purchasing.ExpenseRepository
	BankAccountRepo() treasury.BankAccountRepository
	BankMovementRepo() treasury.BankMovementRepository
	CashRegisterRepo() treasury.CashRegisterRepository
	CashSessionRepo() treasury.CashSessionRepository
	CashMovementRepo() treasury.CashMovementRepository
	PaymentOrderRepo() treasury.PaymentOrderRepository
	OwnedCheckRepo() treasury.OwnedCheckRepository
	WithholdingCertificateRepo() treasury.WithholdingCertificateRepository
}

// Repositories is a plain set of repositories
type Repositories struct {
	Invoices                purchasing.PurchaseInvoiceRepository
	CreditNoteApplications  purchasing.CreditNoteApplicationRepository
	Expenses                purchasing.ExpenseRepository
	BankAccounts            treasury.BankAccountRepository
	BankMovements           treasury.BankMovementRepository
	CashRegisters           treasury.CashRegisterRepository
	CashSessions            treasury.CashSessionRepository
	CashMovements           treasury.CashMovementRepository
	PaymentOrders           treasury.PaymentOrderRepository
	OwnedChecks             treasury.OwnedCheckRepository
	WithholdingCertificates treasury.WithholdingCertificateRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing with mocked repositories.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories.
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) InvoiceRepo() purchasing.PurchaseInvoiceRepository {
	return s.repos.Invoices
}

func (s *NoOpTransactionScope) CreditNoteApplicationRepo() purchasing.CreditNoteApplicationRepository {
	return s.repos.CreditNoteApplications
}

func (s *NoOpTransactionScope) ExpenseRepo() purchasing.ExpenseRepository {
	return s.repos.Expenses
}

func (s *NoOpTransactionScope) BankAccountRepo() treasury.BankAccountRepository {
	return s.repos.BankAccounts
}

func (s *NoOpTransactionScope) BankMovementRepo() treasury.BankMovementRepository {
	return s.repos.BankMovements
}

func (s *NoOpTransactionScope) CashRegisterRepo() treasury.CashRegisterRepository {
	return s.repos.CashRegisters
}

func (s *NoOpTransactionScope) CashSessionRepo() treasury.CashSessionRepository {
	return s.repos.CashSessions
}

func (s *NoOpTransactionScope) CashMovementRepo() treasury.CashMovementRepository {
	return s.repos.CashMovements
}

func (s *NoOpTransactionScope) PaymentOrderRepo() treasury.PaymentOrderRepository {
	return s.repos.PaymentOrders
}

func (s *NoOpTransactionScope) OwnedCheckRepo() treasury.OwnedCheckRepository {
	return s.repos.OwnedChecks
}

func (s *NoOpTransactionScope) WithholdingCertificateRepo() treasury.WithholdingCertificateRepository {
	return s.repos.WithholdingCertificates
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
