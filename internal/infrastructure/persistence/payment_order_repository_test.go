package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func TestGormPaymentOrderRepository_MarkConfirmed(t *testing.T) {
	tenantID := uuid.New()
	orderID := uuid.New()
	userID := uuid.New()

	t.Run("draft order is confirmed", func(t *testing.T) {
		db, mock := newMockGorm(t)
		mock.ExpectExec(`UPDATE "payment_orders" SET .*"status"=.*version \+ 1.* WHERE \(tenant_id = \$\d+ AND id = \$\d+ AND status = \$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := NewGormPaymentOrderRepository(db).MarkConfirmed(context.Background(), tenantID, orderID, &userID, time.Now())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already confirmed order updates nothing", func(t *testing.T) {
		db, mock := newMockGorm(t)
		mock.ExpectExec(`UPDATE "payment_orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := NewGormPaymentOrderRepository(db).MarkConfirmed(context.Background(), tenantID, orderID, &userID, time.Now())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentOrderRepository_NextNumber(t *testing.T) {
	tenantID := uuid.New()

	t.Run("first order of a tenant", func(t *testing.T) {
		db, mock := newMockGorm(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT "full_number" FROM "payment_orders"`)).
			WillReturnRows(sqlmock.NewRows([]string{"full_number"}))

		n, err := NewGormPaymentOrderRepository(db).NextNumber(context.Background(), tenantID)
		require.NoError(t, err)
		assert.Equal(t, "OP-00000001", n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("increments the highest number", func(t *testing.T) {
		db, mock := newMockGorm(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT "full_number" FROM "payment_orders"`)).
			WillReturnRows(sqlmock.NewRows([]string{"full_number"}).AddRow("OP-00000041"))

		n, err := NewGormPaymentOrderRepository(db).NextNumber(context.Background(), tenantID)
		require.NoError(t, err)
		assert.Equal(t, "OP-00000042", n)
	})

	t.Run("rejects a malformed number", func(t *testing.T) {
		db, mock := newMockGorm(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT "full_number" FROM "payment_orders"`)).
			WillReturnRows(sqlmock.NewRows([]string{"full_number"}).AddRow("OP-ABC"))

		_, err := NewGormPaymentOrderRepository(db).NextNumber(context.Background(), tenantID)
		assert.Error(t, err)
	})
}

func TestGormPaymentOrderRepository_Delete(t *testing.T) {
	tenantID := uuid.New()
	orderID := uuid.New()

	t.Run("confirmed order is not deleted", func(t *testing.T) {
		db, mock := newMockGorm(t)
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "payment_orders" WHERE (tenant_id = $1 AND id = $2 AND status = $3)`)).
			WithArgs(tenantID, orderID, "DRAFT").
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := NewGormPaymentOrderRepository(db).Delete(context.Background(), tenantID, orderID)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("draft order and its children are deleted", func(t *testing.T) {
		db, mock := newMockGorm(t)
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "payment_orders"`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "payment_order_items"`)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "payment_order_payments"`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "payment_order_withholdings"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := NewGormPaymentOrderRepository(db).Delete(context.Background(), tenantID, orderID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
