package treasury

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccountRepository persists bank accounts. Finders return (nil, nil)
// when the account does not exist in the tenant.
type BankAccountRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*BankAccount, error)
	// FindByIDForUpdate locks the account row until the transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*BankAccount, error)
	ExistsByAccountNumber(ctx context.Context, tenantID uuid.UUID, accountNumber string) (bool, error)
	Create(ctx context.Context, account *BankAccount) error
	Save(ctx context.Context, account *BankAccount) error
}

// BankMovementRepository persists bank movements
type BankMovementRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*BankMovement, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*BankMovement, error)
	FindByAccount(ctx context.Context, tenantID, accountID uuid.UUID) ([]BankMovement, error)
	FindByPaymentOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]BankMovement, error)
	Create(ctx context.Context, movement *BankMovement) error
	Save(ctx context.Context, movement *BankMovement) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	// SetReconciledBulk updates every listed movement not already in the
	// requested state with one statement and returns the rows changed
	SetReconciledBulk(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, reconciled bool, by *uuid.UUID, at time.Time) (int64, error)
}

// CashRegisterRepository persists cash registers
type CashRegisterRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CashRegister, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*CashRegister, error)
	Create(ctx context.Context, register *CashRegister) error
	Save(ctx context.Context, register *CashRegister) error
}

// CashSessionRepository persists register sessions. At most one OPEN session
// per register is enforced by the store; Create reports a violation as
// shared.ErrSessionAlreadyOpen.
type CashSessionRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CashSession, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*CashSession, error)
	// FindOpenByRegisterForUpdate returns the OPEN session of a register, locked
	FindOpenByRegisterForUpdate(ctx context.Context, tenantID, registerID uuid.UUID) (*CashSession, error)
	Create(ctx context.Context, session *CashSession) error
	Save(ctx context.Context, session *CashSession) error
}

// CashMovementRepository persists cash movements
type CashMovementRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CashMovement, error)
	FindBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]CashMovement, error)
	FindByPaymentOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]CashMovement, error)
	Create(ctx context.Context, movement *CashMovement) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// PaymentOrderRepository persists payment orders together with their items,
// payments and withholdings
type PaymentOrderRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PaymentOrder, error)
	Create(ctx context.Context, order *PaymentOrder) error
	// MarkConfirmed performs the DRAFT -> CONFIRMED conditional update and
	// reports whether this call won it
	MarkConfirmed(ctx context.Context, tenantID, id uuid.UUID, by *uuid.UUID, at time.Time) (bool, error)
	// Delete removes a DRAFT order and its children; returns false if no draft matched
	Delete(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	SetJournalEntry(ctx context.Context, tenantID, id, journalEntryID uuid.UUID) error
	// ConfirmedAmountsByInvoice returns the item amounts of CONFIRMED orders paying the invoice
	ConfirmedAmountsByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]decimal.Decimal, error)
	// ConfirmedAmountsByExpense returns the item amounts of CONFIRMED orders paying the expense
	ConfirmedAmountsByExpense(ctx context.Context, tenantID, expenseID uuid.UUID) ([]decimal.Decimal, error)
	NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// OwnedCheckRepository persists issued checks
type OwnedCheckRepository interface {
	Create(ctx context.Context, check *OwnedCheck) error
	FindByPaymentOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]OwnedCheck, error)
}

// WithholdingCertificateRepository persists issued withholding certificates
type WithholdingCertificateRepository interface {
	CreateBatch(ctx context.Context, certs []WithholdingCertificate) error
	FindByPaymentOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]WithholdingCertificate, error)
}
