package treasury_test

import (
	"context"
	"testing"
	"time"

	apptreasury "github.com/erp/treasury/internal/application/treasury"
	"github.com/erp/treasury/internal/domain/purchasing"
	"github.com/erp/treasury/internal/domain/shared"
	"github.com/erp/treasury/internal/domain/treasury"
	"github.com/erp/treasury/internal/infrastructure/persistence"
	"github.com/erp/treasury/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, dec(want).StringFixed(2), got.StringFixed(2), msgAndArgs...)
}

// harness wires the services to a private sqlite database
type harness struct {
	t        *testing.T
	ctx      context.Context
	db       *gorm.DB
	scope    *persistence.GormTransactionScope
	tenantID uuid.UUID
	userID   uuid.UUID
	supplier uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	return &harness{
		t:        t,
		ctx:      context.Background(),
		db:       db,
		scope:    persistence.NewGormTransactionScope(db),
		tenantID: testutil.TestTenantID(),
		userID:   testutil.TestUserID(),
		supplier: testutil.NewTestUUID("supplier-acme"),
	}
}

func (h *harness) invoice(number string, total string) *purchasing.PurchaseInvoice {
	h.t.Helper()
	inv, err := purchasing.NewPurchaseInvoice(h.tenantID, number, purchasing.VoucherInvoiceA, h.supplier, dec(total), time.Now())
	require.NoError(h.t, err)
	require.NoError(h.t, inv.Confirm())
	require.NoError(h.t, persistence.NewGormPurchaseInvoiceRepository(h.db).Save(h.ctx, inv))
	return inv
}

func (h *harness) creditNote(number string, total string, original *purchasing.PurchaseInvoice) *purchasing.PurchaseInvoice {
	h.t.Helper()
	note, err := purchasing.NewPurchaseInvoice(h.tenantID, number, purchasing.VoucherCreditNoteA, h.supplier, dec(total), time.Now())
	require.NoError(h.t, err)
	if original != nil {
		require.NoError(h.t, note.LinkToOriginal(original.ID))
	}
	require.NoError(h.t, note.Confirm())
	require.NoError(h.t, persistence.NewGormPurchaseInvoiceRepository(h.db).Save(h.ctx, note))
	return note
}

func (h *harness) reloadInvoice(id uuid.UUID) *purchasing.PurchaseInvoice {
	h.t.Helper()
	inv, err := persistence.NewGormPurchaseInvoiceRepository(h.db).FindByIDForTenant(h.ctx, h.tenantID, id)
	require.NoError(h.t, err)
	require.NotNil(h.t, inv)
	return inv
}

func (h *harness) expense(number string, total string) *purchasing.Expense {
	h.t.Helper()
	exp, err := purchasing.NewExpense(h.tenantID, number, "Office rent", dec(total), time.Now())
	require.NoError(h.t, err)
	require.NoError(h.t, persistence.NewGormExpenseRepository(h.db).Save(h.ctx, exp))
	return exp
}

func (h *harness) reloadExpense(id uuid.UUID) *purchasing.Expense {
	h.t.Helper()
	exp, err := persistence.NewGormExpenseRepository(h.db).FindByIDForTenant(h.ctx, h.tenantID, id)
	require.NoError(h.t, err)
	require.NotNil(h.t, exp)
	return exp
}

func (h *harness) bankService() *apptreasury.BankService {
	return apptreasury.NewBankService(h.scope, nil, nil)
}

func (h *harness) cashService() *apptreasury.CashService {
	return apptreasury.NewCashService(h.scope, nil)
}

func (h *harness) creditNoteService(opts apptreasury.Options) *apptreasury.CreditNoteService {
	return apptreasury.NewCreditNoteService(h.scope, opts, nil, nil)
}

func (h *harness) bankAccount(number, opening string) *treasury.BankAccount {
	h.t.Helper()
	acc, err := h.bankService().CreateBankAccount(h.ctx, apptreasury.CreateBankAccountRequest{
		TenantID:       h.tenantID,
		Name:           "Operating " + number,
		BankName:       "Banco Nación",
		AccountNumber:  number,
		OpeningBalance: dec(opening),
	})
	require.NoError(h.t, err)
	return acc
}

func (h *harness) reloadAccount(id uuid.UUID) *treasury.BankAccount {
	h.t.Helper()
	acc, err := h.bankService().GetBankAccount(h.ctx, h.tenantID, id)
	require.NoError(h.t, err)
	return acc
}

// openRegister creates a register with an OPEN session holding opening
func (h *harness) openRegister(name, opening string) (*treasury.CashRegister, *treasury.CashSession) {
	h.t.Helper()
	svc := h.cashService()
	register, err := svc.CreateCashRegister(h.ctx, h.tenantID, name)
	require.NoError(h.t, err)
	session, err := svc.OpenCashSession(h.ctx, apptreasury.OpenCashSessionRequest{
		TenantID:       h.tenantID,
		RegisterID:     register.ID,
		OpeningBalance: dec(opening),
		UserID:         &h.userID,
	})
	require.NoError(h.t, err)
	return register, session
}

func (h *harness) reloadSession(id uuid.UUID) *treasury.CashSession {
	h.t.Helper()
	session, err := persistence.NewGormCashSessionRepository(h.db).FindByIDForTenant(h.ctx, h.tenantID, id)
	require.NoError(h.t, err)
	require.NotNil(h.t, session)
	return session
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
}
