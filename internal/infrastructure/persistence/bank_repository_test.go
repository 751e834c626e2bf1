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
)

func TestGormBankMovementRepository_SetReconciledBulk(t *testing.T) {
	tenantID := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	userID := uuid.New()

	t.Run("skips movements already in the requested state", func(t *testing.T) {
		db, mock := newMockGorm(t)
		mock.ExpectExec(`UPDATE "bank_movements" SET .*"reconciled"=.* WHERE \(tenant_id = \$\d+ AND id IN \(\$\d+,\$\d+,\$\d+\) AND reconciled <> \$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 2))

		n, err := NewGormBankMovementRepository(db).SetReconciledBulk(context.Background(), tenantID, ids, true, &userID, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("repeated call changes nothing", func(t *testing.T) {
		db, mock := newMockGorm(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "bank_movements" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		n, err := NewGormBankMovementRepository(db).SetReconciledBulk(context.Background(), tenantID, ids, true, &userID, time.Now())
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("empty id list issues no statement", func(t *testing.T) {
		db, mock := newMockGorm(t)

		n, err := NewGormBankMovementRepository(db).SetReconciledBulk(context.Background(), tenantID, nil, false, nil, time.Now())
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
