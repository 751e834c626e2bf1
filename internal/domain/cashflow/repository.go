package cashflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectionRepository persists cashflow projections
type ProjectionRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CashflowProjection, error)
	// FindByIDForUpdate locks the projection row until the transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*CashflowProjection, error)
	Create(ctx context.Context, projection *CashflowProjection) error
	Save(ctx context.Context, projection *CashflowProjection) error
}

// LinkRepository persists projection document links
type LinkRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ProjectionDocumentLink, error)
	Create(ctx context.Context, link *ProjectionDocumentLink) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	// AmountsByProjection returns the amount of every link of a projection
	AmountsByProjection(ctx context.Context, tenantID, projectionID uuid.UUID) ([]decimal.Decimal, error)
}
