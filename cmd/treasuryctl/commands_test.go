package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	treasuryapp "github.com/erp/treasury/internal/application/treasury"
	"github.com/erp/treasury/internal/domain/purchasing"
	"github.com/erp/treasury/internal/domain/treasury"
	"github.com/erp/treasury/internal/infrastructure/persistence"
	"github.com/erp/treasury/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func runCmd(t *testing.T, db *gorm.DB, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(func(string) (*runtime, error) {
		return newRuntime(db, true, zap.NewNop()), nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func saveVoucher(t *testing.T, db *gorm.DB, number string, voucher purchasing.VoucherType, total string, original *uuid.UUID) *purchasing.PurchaseInvoice {
	t.Helper()
	inv, err := purchasing.NewPurchaseInvoice(testutil.TestTenantID(), number, voucher,
		testutil.NewTestUUID("supplier"), decimal.RequireFromString(total), time.Now())
	require.NoError(t, err)
	if original != nil {
		require.NoError(t, inv.LinkToOriginal(*original))
	}
	require.NoError(t, inv.Confirm())
	require.NoError(t, persistence.NewGormPurchaseInvoiceRepository(db).Save(context.Background(), inv))
	return inv
}

func TestRootCmd_RequiresTenant(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	_, err := runCmd(t, db, "recompute-invoice-statuses")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tenant")

	_, err = runCmd(t, db, "recompute-invoice-statuses", "--tenant", "acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --tenant")
}

func TestBackfillCreditNotesCmd(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	tenant := testutil.TestTenantID().String()
	invoice := saveVoucher(t, db, "A-0001-00000010", purchasing.VoucherInvoiceA, "1000", nil)
	saveVoucher(t, db, "NCA-0001-00000010", purchasing.VoucherCreditNoteA, "300", &invoice.ID)

	out, err := runCmd(t, db, "backfill-credit-notes", "--tenant", tenant, "--dry-run")
	require.NoError(t, err)
	var report treasuryapp.BackfillReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Applied)
	require.Len(t, report.Items, 1)
	assert.Equal(t, "300.00", report.Items[0].Amount.StringFixed(2))

	apps, err := persistence.NewGormCreditNoteApplicationRepository(db).FindByInvoice(context.Background(), testutil.TestTenantID(), invoice.ID)
	require.NoError(t, err)
	assert.Empty(t, apps, "dry run must not write")

	out, err = runCmd(t, db, "backfill-credit-notes", "--tenant", tenant)
	require.NoError(t, err)
	report = treasuryapp.BackfillReport{}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.False(t, report.DryRun)
	assert.Equal(t, 1, report.Applied)

	out, err = runCmd(t, db, "backfill-credit-notes", "--tenant", tenant)
	require.NoError(t, err)
	report = treasuryapp.BackfillReport{}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Zero(t, report.Applied)
}

func TestRecomputeInvoiceStatusesCmd(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	saveVoucher(t, db, "A-0001-00000020", purchasing.VoucherInvoiceA, "500", nil)

	out, err := runCmd(t, db, "recompute-invoice-statuses", "--tenant", testutil.TestTenantID().String())
	require.NoError(t, err)
	var report treasuryapp.RecomputeReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Checked)
	assert.Zero(t, report.Changed)
}

func TestReconcileCmd(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	bank := treasuryapp.NewBankService(persistence.NewGormTransactionScope(db), nil, nil)

	account, err := bank.CreateBankAccount(ctx, treasuryapp.CreateBankAccountRequest{
		TenantID:       tenantID,
		Name:           "Operating",
		AccountNumber:  "0001",
		OpeningBalance: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	var ids []string
	for i := 0; i < 3; i++ {
		m, err := bank.CreateBankMovement(ctx, treasuryapp.CreateBankMovementRequest{
			TenantID:      tenantID,
			BankAccountID: account.ID,
			Type:          treasury.BankMovementDeposit,
			Amount:        decimal.NewFromInt(10),
			Date:          time.Now(),
		})
		require.NoError(t, err)
		ids = append(ids, m.ID.String())
	}

	file := filepath.Join(t.TempDir(), "ids.txt")
	content := "# statement 2026-10\n" + ids[1] + "\n\n" + ids[2] + "\n" + ids[1] + "\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	out, err := runCmd(t, db, "reconcile", "--tenant", tenantID.String(), "--batch-size", "1", "--file", file, ids[0])
	require.NoError(t, err)
	var result reconcileResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, int64(3), result.Updated)
	assert.True(t, result.Reconciled)

	movements, err := bank.ListBankMovements(ctx, tenantID, account.ID)
	require.NoError(t, err)
	for _, m := range movements {
		assert.True(t, m.Reconciled, m.ID)
	}

	out, err = runCmd(t, db, "reconcile", "--tenant", tenantID.String(), "--undo", ids[0], uuid.NewString())
	require.NoError(t, err)
	result = reconcileResult{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, int64(1), result.Updated)
	assert.False(t, result.Reconciled)
}

func TestCollectIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	ids, err := collectIDs(strings.NewReader(b.String()+"\n"+a.String()+"\n"), []string{a.String()}, "-")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	_, err = collectIDs(nil, []string{"not-an-id"}, "")
	assert.ErrorContains(t, err, "invalid movement ID")

	_, err = collectIDs(nil, nil, filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
