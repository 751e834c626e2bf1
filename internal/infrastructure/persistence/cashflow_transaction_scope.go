package persistence

import (
	"context"

	appcashflow "github.com/erp/treasury/internal/application/cashflow"
	"github.com/erp/treasury/internal/domain/cashflow"
	"gorm.io/gorm"
)

// GormCashflowTransactionScope implements the cashflow TransactionScope using GORM transactions.
type GormCashflowTransactionScope struct {
	db *gorm.DB
}

// NewGormCashflowTransactionScope creates a new GormCashflowTransactionScope.
func NewGormCashflowTransactionScope(db *gorm.DB) *GormCashflowTransactionScope {
	return &GormCashflowTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
func (s *GormCashflowTransactionScope) Execute(ctx context.Context, fn func(repos appcashflow.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormCashflowRepositories{tx: tx})
	})
}

type gormCashflowRepositories struct {
	tx *gorm.DB
}

func (r *gormCashflowRepositories) ProjectionRepo() cashflow.ProjectionRepository {
	return NewGormProjectionRepository(r.tx)
}

func (r *gormCashflowRepositories) LinkRepo() cashflow.LinkRepository {
	return NewGormLinkRepository(r.tx)
}

var _ appcashflow.TransactionScope = (*GormCashflowTransactionScope)(nil)
