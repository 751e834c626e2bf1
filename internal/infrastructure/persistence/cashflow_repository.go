package persistence

import (
	"context"
	"errors"

	"github.com/erp/treasury/internal/domain/cashflow"
	"github.com/erp/treasury/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormProjectionRepository implements ProjectionRepository using GORM
type GormProjectionRepository struct {
	db *gorm.DB
}

// NewGormProjectionRepository creates a new GormProjectionRepository
func NewGormProjectionRepository(db *gorm.DB) *GormProjectionRepository {
	return &GormProjectionRepository{db: db}
}

// FindByIDForTenant finds a projection by ID within a tenant
func (r *GormProjectionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*cashflow.CashflowProjection, error) {
	return r.findOne(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds a projection and locks its row
func (r *GormProjectionRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*cashflow.CashflowProjection, error) {
	return r.findOne(lockForUpdate(r.db.WithContext(ctx)), tenantID, id)
}

func (r *GormProjectionRepository) findOne(db *gorm.DB, tenantID, id uuid.UUID) (*cashflow.CashflowProjection, error) {
	var model models.CashflowProjectionModel
	if err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a projection
func (r *GormProjectionRepository) Create(ctx context.Context, projection *cashflow.CashflowProjection) error {
	return r.db.WithContext(ctx).Create(models.CashflowProjectionModelFromDomain(projection)).Error
}

// Save persists a projection
func (r *GormProjectionRepository) Save(ctx context.Context, projection *cashflow.CashflowProjection) error {
	return r.db.WithContext(ctx).Save(models.CashflowProjectionModelFromDomain(projection)).Error
}

// GormLinkRepository implements LinkRepository using GORM
type GormLinkRepository struct {
	db *gorm.DB
}

// NewGormLinkRepository creates a new GormLinkRepository
func NewGormLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// FindByIDForTenant finds a link by ID within a tenant
func (r *GormLinkRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*cashflow.ProjectionDocumentLink, error) {
	var model models.ProjectionDocumentLinkModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a link
func (r *GormLinkRepository) Create(ctx context.Context, link *cashflow.ProjectionDocumentLink) error {
	return r.db.WithContext(ctx).Create(models.ProjectionDocumentLinkModelFromDomain(link)).Error
}

// Delete removes a link
func (r *GormLinkRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.ProjectionDocumentLinkModel{}).Error
}

// AmountsByProjection returns the amount of every link of a projection
func (r *GormLinkRepository) AmountsByProjection(ctx context.Context, tenantID, projectionID uuid.UUID) ([]decimal.Decimal, error) {
	var amounts []decimal.Decimal
	if err := r.db.WithContext(ctx).Model(&models.ProjectionDocumentLinkModel{}).
		Where("tenant_id = ? AND projection_id = ?", tenantID, projectionID).
		Pluck("amount", &amounts).Error; err != nil {
		return nil, err
	}
	return amounts, nil
}

var (
	_ cashflow.ProjectionRepository = (*GormProjectionRepository)(nil)
	_ cashflow.LinkRepository       = (*GormLinkRepository)(nil)
)
