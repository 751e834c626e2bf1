package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/erp/treasury/internal/domain/treasury"
	"github.com/erp/treasury/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBankAccountRepository implements BankAccountRepository using GORM
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewGormBankAccountRepository creates a new GormBankAccountRepository
func NewGormBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// FindByIDForTenant finds an account by ID within a tenant
func (r *GormBankAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*treasury.BankAccount, error) {
	return r.findOne(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds an account and locks its row
func (r *GormBankAccountRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*treasury.BankAccount, error) {
	return r.findOne(lockForUpdate(r.db.WithContext(ctx)), tenantID, id)
}

func (r *GormBankAccountRepository) findOne(db *gorm.DB, tenantID, id uuid.UUID) (*treasury.BankAccount, error) {
	var model models.BankAccountModel
	if err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByAccountNumber checks if an account number is taken in the tenant
func (r *GormBankAccountRepository) ExistsByAccountNumber(ctx context.Context, tenantID uuid.UUID, accountNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.BankAccountModel{}).
		Where("tenant_id = ? AND account_number = ?", tenantID, accountNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts an account; a duplicate account number is shared.ErrAlreadyExists
func (r *GormBankAccountRepository) Create(ctx context.Context, account *treasury.BankAccount) error {
	if err := r.db.WithContext(ctx).Create(models.BankAccountModelFromDomain(account)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save persists the account
func (r *GormBankAccountRepository) Save(ctx context.Context, account *treasury.BankAccount) error {
	return r.db.WithContext(ctx).Save(models.BankAccountModelFromDomain(account)).Error
}

// GormBankMovementRepository implements BankMovementRepository using GORM
type GormBankMovementRepository struct {
	db *gorm.DB
}

// NewGormBankMovementRepository creates a new GormBankMovementRepository
func NewGormBankMovementRepository(db *gorm.DB) *GormBankMovementRepository {
	return &GormBankMovementRepository{db: db}
}

// FindByIDForTenant finds a movement by ID within a tenant
func (r *GormBankMovementRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*treasury.BankMovement, error) {
	return r.findOne(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds a movement and locks its row
func (r *GormBankMovementRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*treasury.BankMovement, error) {
	return r.findOne(lockForUpdate(r.db.WithContext(ctx)), tenantID, id)
}

func (r *GormBankMovementRepository) findOne(db *gorm.DB, tenantID, id uuid.UUID) (*treasury.BankMovement, error) {
	var model models.BankMovementModel
	if err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAccount returns the ledger of an account, oldest first
func (r *GormBankMovementRepository) FindByAccount(ctx context.Context, tenantID, accountID uuid.UUID) ([]treasury.BankMovement, error) {
	return r.findMany(ctx, "tenant_id = ? AND bank_account_id = ?", tenantID, accountID)
}

// FindByPaymentOrder returns the movements generated by a payment order
func (r *GormBankMovementRepository) FindByPaymentOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]treasury.BankMovement, error) {
	return r.findMany(ctx, "tenant_id = ? AND payment_order_id = ?", tenantID, orderID)
}

func (r *GormBankMovementRepository) findMany(ctx context.Context, query string, args ...any) ([]treasury.BankMovement, error) {
	var rows []models.BankMovementModel
	if err := r.db.WithContext(ctx).Where(query, args...).
		Order("date ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]treasury.BankMovement, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

// Create inserts a movement
func (r *GormBankMovementRepository) Create(ctx context.Context, movement *treasury.BankMovement) error {
	return r.db.WithContext(ctx).Create(models.BankMovementModelFromDomain(movement)).Error
}

// Save persists a movement
func (r *GormBankMovementRepository) Save(ctx context.Context, movement *treasury.BankMovement) error {
	return r.db.WithContext(ctx).Save(models.BankMovementModelFromDomain(movement)).Error
}

// Delete removes a movement
func (r *GormBankMovementRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.BankMovementModel{}).Error
}

// SetReconciledBulk flips the reconciled flag of every listed movement not
// already in the requested state, in one statement
func (r *GormBankMovementRepository) SetReconciledBulk(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, reconciled bool, by *uuid.UUID, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	updates := map[string]any{
		"reconciled":    reconciled,
		"reconciled_at": nil,
		"reconciled_by": nil,
		"updated_at":    at,
	}
	if reconciled {
		updates["reconciled_at"] = at
		updates["reconciled_by"] = by
	}
	result := r.db.WithContext(ctx).Model(&models.BankMovementModel{}).
		Where("tenant_id = ? AND id IN ? AND reconciled <> ?", tenantID, ids, reconciled).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

var (
	_ treasury.BankAccountRepository  = (*GormBankAccountRepository)(nil)
	_ treasury.BankMovementRepository = (*GormBankMovementRepository)(nil)
)
