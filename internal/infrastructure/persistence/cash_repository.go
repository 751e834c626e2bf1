package persistence

import (
	"context"
	"errors"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/erp/treasury/internal/domain/treasury"
	"github.com/erp/treasury/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCashRegisterRepository implements CashRegisterRepository using GORM
type GormCashRegisterRepository struct {
	db *gorm.DB
}

// NewGormCashRegisterRepository creates a new GormCashRegisterRepository
func NewGormCashRegisterRepository(db *gorm.DB) *GormCashRegisterRepository {
	return &GormCashRegisterRepository{db: db}
}

// FindByIDForTenant finds a register by ID within a tenant
func (r *GormCashRegisterRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*treasury.CashRegister, error) {
	return r.findOne(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds a register and locks its row
func (r *GormCashRegisterRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*treasury.CashRegister, error) {
	return r.findOne(lockForUpdate(r.db.WithContext(ctx)), tenantID, id)
}

func (r *GormCashRegisterRepository) findOne(db *gorm.DB, tenantID, id uuid.UUID) (*treasury.CashRegister, error) {
	var model models.CashRegisterModel
	if err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a register
func (r *GormCashRegisterRepository) Create(ctx context.Context, register *treasury.CashRegister) error {
	return r.db.WithContext(ctx).Create(models.CashRegisterModelFromDomain(register)).Error
}

// Save persists a register
func (r *GormCashRegisterRepository) Save(ctx context.Context, register *treasury.CashRegister) error {
	return r.db.WithContext(ctx).Save(models.CashRegisterModelFromDomain(register)).Error
}

// GormCashSessionRepository implements CashSessionRepository using GORM
type GormCashSessionRepository struct {
	db *gorm.DB
}

// NewGormCashSessionRepository creates a new GormCashSessionRepository
func NewGormCashSessionRepository(db *gorm.DB) *GormCashSessionRepository {
	return &GormCashSessionRepository{db: db}
}

// FindByIDForTenant finds a session by ID within a tenant
func (r *GormCashSessionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*treasury.CashSession, error) {
	return r.findOne(r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindByIDForUpdate finds a session and locks its row
func (r *GormCashSessionRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*treasury.CashSession, error) {
	return r.findOne(lockForUpdate(r.db.WithContext(ctx)).Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindOpenByRegisterForUpdate returns the OPEN session of a register, locked
func (r *GormCashSessionRepository) FindOpenByRegisterForUpdate(ctx context.Context, tenantID, registerID uuid.UUID) (*treasury.CashSession, error) {
	return r.findOne(lockForUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND register_id = ? AND status = ?", tenantID, registerID, treasury.CashSessionOpen))
}

func (r *GormCashSessionRepository) findOne(query *gorm.DB) (*treasury.CashSession, error) {
	var model models.CashSessionModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a session. The partial unique index on open sessions turns
// a concurrent second open into shared.ErrSessionAlreadyOpen.
func (r *GormCashSessionRepository) Create(ctx context.Context, session *treasury.CashSession) error {
	if err := r.db.WithContext(ctx).Create(models.CashSessionModelFromDomain(session)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrSessionAlreadyOpen
		}
		return err
	}
	return nil
}

// Save persists a session
func (r *GormCashSessionRepository) Save(ctx context.Context, session *treasury.CashSession) error {
	return r.db.WithContext(ctx).Save(models.CashSessionModelFromDomain(session)).Error
}

// GormCashMovementRepository implements CashMovementRepository using GORM
type GormCashMovementRepository struct {
	db *gorm.DB
}

// NewGormCashMovementRepository creates a new GormCashMovementRepository
func NewGormCashMovementRepository(db *gorm.DB) *GormCashMovementRepository {
	return &GormCashMovementRepository{db: db}
}

// FindByIDForTenant finds a movement by ID within a tenant
func (r *GormCashMovementRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*treasury.CashMovement, error) {
	var model models.CashMovementModel
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

// FindBySession returns the ledger of a session, oldest first
func (r *GormCashMovementRepository) FindBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]treasury.CashMovement, error) {
	return r.findMany(ctx, "tenant_id = ? AND session_id = ?", tenantID, sessionID)
}

// FindByPaymentOrder returns the movements generated by a payment order
func (r *GormCashMovementRepository) FindByPaymentOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]treasury.CashMovement, error) {
	return r.findMany(ctx, "tenant_id = ? AND payment_order_id = ?", tenantID, orderID)
}

func (r *GormCashMovementRepository) findMany(ctx context.Context, query string, args ...any) ([]treasury.CashMovement, error) {
	var rows []models.CashMovementModel
	if err := r.db.WithContext(ctx).Where(query, args...).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]treasury.CashMovement, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

// Create inserts a movement
func (r *GormCashMovementRepository) Create(ctx context.Context, movement *treasury.CashMovement) error {
	return r.db.WithContext(ctx).Create(models.CashMovementModelFromDomain(movement)).Error
}

// Delete removes a movement
func (r *GormCashMovementRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.CashMovementModel{}).Error
}

var (
	_ treasury.CashRegisterRepository = (*GormCashRegisterRepository)(nil)
	_ treasury.CashSessionRepository  = (*GormCashSessionRepository)(nil)
	_ treasury.CashMovementRepository = (*GormCashMovementRepository)(nil)
)
