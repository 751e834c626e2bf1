package cashflow

import (
	"context"

	"github.com/erp/treasury/internal/domain/cashflow"
)

// TransactionScope runs projection work in a single transaction
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the projection repositories bound to one transaction
type TransactionalRepositories interface {
	ProjectionRepo() cashflow.ProjectionRepository
	LinkRepo() cashflow.LinkRepository
}

// NoOpTransactionScope hands the same repositories to every call without a transaction
type NoOpTransactionScope struct {
	projections cashflow.ProjectionRepository
	links       cashflow.LinkRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(projections cashflow.ProjectionRepository, links cashflow.LinkRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{projections: projections, links: links}
}

func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) ProjectionRepo() cashflow.ProjectionRepository { return s.projections }

func (s *NoOpTransactionScope) LinkRepo() cashflow.LinkRepository { return s.links }
