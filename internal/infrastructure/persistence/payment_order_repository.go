package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/erp/treasury/internal/domain/treasury"
	"github.com/erp/treasury/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentOrderNumberPrefix prefixes the per-tenant payment order sequence
const PaymentOrderNumberPrefix = "OP-"

// GormPaymentOrderRepository implements PaymentOrderRepository using GORM
type GormPaymentOrderRepository struct {
	db *gorm.DB
}

// NewGormPaymentOrderRepository creates a new GormPaymentOrderRepository
func NewGormPaymentOrderRepository(db *gorm.DB) *GormPaymentOrderRepository {
	return &GormPaymentOrderRepository{db: db}
}

// FindByIDForTenant loads an order with its items, payments and withholdings
func (r *GormPaymentOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*treasury.PaymentOrder, error) {
	var model models.PaymentOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Preload("Withholdings").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts the order and its children. A taken number is reported as
// shared.ErrConcurrencyConflict.
func (r *GormPaymentOrderRepository) Create(ctx context.Context, order *treasury.PaymentOrder) error {
	if err := r.db.WithContext(ctx).Create(models.PaymentOrderModelFromDomain(order)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConcurrencyConflict.WithMessage(
				fmt.Sprintf("Payment order number %s is already taken", order.FullNumber))
		}
		return err
	}
	return nil
}

// MarkConfirmed moves the order from DRAFT to CONFIRMED only if it is still a
// draft. Exactly one of several concurrent callers observes true.
func (r *GormPaymentOrderRepository) MarkConfirmed(ctx context.Context, tenantID, id uuid.UUID, by *uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.PaymentOrderModel{}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, treasury.PaymentOrderDraft).
		Updates(map[string]any{
			"status":       treasury.PaymentOrderConfirmed,
			"confirmed_by": by,
			"confirmed_at": at,
			"version":      gorm.Expr("version + 1"),
			"updated_at":   at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Delete removes a draft order and its children
func (r *GormPaymentOrderRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	db := r.db.WithContext(ctx)
	result := db.Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, treasury.PaymentOrderDraft).
		Delete(&models.PaymentOrderModel{})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	for _, child := range []any{
		&models.PaymentOrderItemModel{},
		&models.PaymentOrderPaymentModel{},
		&models.PaymentOrderWithholdingModel{},
	} {
		if err := db.Where("tenant_id = ? AND payment_order_id = ?", tenantID, id).Delete(child).Error; err != nil {
			return false, err
		}
	}
	return true, nil
}

// SetJournalEntry stores the id of the posted journal entry
func (r *GormPaymentOrderRepository) SetJournalEntry(ctx context.Context, tenantID, id, journalEntryID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.PaymentOrderModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("journal_entry_id", journalEntryID).Error
}

// ConfirmedAmountsByInvoice returns the item amounts of CONFIRMED orders paying the invoice
func (r *GormPaymentOrderRepository) ConfirmedAmountsByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]decimal.Decimal, error) {
	return r.confirmedAmounts(ctx, tenantID, "payment_order_items.invoice_id = ?", invoiceID)
}

// ConfirmedAmountsByExpense returns the item amounts of CONFIRMED orders paying the expense
func (r *GormPaymentOrderRepository) ConfirmedAmountsByExpense(ctx context.Context, tenantID, expenseID uuid.UUID) ([]decimal.Decimal, error) {
	return r.confirmedAmounts(ctx, tenantID, "payment_order_items.expense_id = ?", expenseID)
}

func (r *GormPaymentOrderRepository) confirmedAmounts(ctx context.Context, tenantID uuid.UUID, target string, targetID uuid.UUID) ([]decimal.Decimal, error) {
	var amounts []decimal.Decimal
	if err := r.db.WithContext(ctx).Model(&models.PaymentOrderItemModel{}).
		Joins("JOIN payment_orders ON payment_orders.id = payment_order_items.payment_order_id").
		Where("payment_order_items.tenant_id = ? AND payment_orders.status = ?", tenantID, treasury.PaymentOrderConfirmed).
		Where(target, targetID).
		Pluck("payment_order_items.amount", &amounts).Error; err != nil {
		return nil, err
	}
	return amounts, nil
}

// NextNumber returns the next OP-nnnnnnnn number of the tenant. The unique
// index on (tenant_id, full_number) rejects a number taken concurrently.
func (r *GormPaymentOrderRepository) NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	var last []string
	if err := r.db.WithContext(ctx).Model(&models.PaymentOrderModel{}).
		Where("tenant_id = ? AND full_number LIKE ?", tenantID, PaymentOrderNumberPrefix+"%").
		Order("full_number DESC").
		Limit(1).
		Pluck("full_number", &last).Error; err != nil {
		return "", err
	}
	next := 1
	if len(last) > 0 {
		n, err := strconv.Atoi(strings.TrimPrefix(last[0], PaymentOrderNumberPrefix))
		if err != nil {
			return "", fmt.Errorf("unexpected payment order number %q: %w", last[0], err)
		}
		next = n + 1
	}
	return fmt.Sprintf("%s%08d", PaymentOrderNumberPrefix, next), nil
}

// GormOwnedCheckRepository implements OwnedCheckRepository using GORM
type GormOwnedCheckRepository struct {
	db *gorm.DB
}

// NewGormOwnedCheckRepository creates a new GormOwnedCheckRepository
func NewGormOwnedCheckRepository(db *gorm.DB) *GormOwnedCheckRepository {
	return &GormOwnedCheckRepository{db: db}
}

// Create inserts a check
func (r *GormOwnedCheckRepository) Create(ctx context.Context, check *treasury.OwnedCheck) error {
	return r.db.WithContext(ctx).Create(models.OwnedCheckModelFromDomain(check)).Error
}

// FindByPaymentOrder returns the checks delivered with a payment order
func (r *GormOwnedCheckRepository) FindByPaymentOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]treasury.OwnedCheck, error) {
	var rows []models.OwnedCheckModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND payment_order_id = ?", tenantID, orderID).
		Order("number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]treasury.OwnedCheck, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

// GormWithholdingCertificateRepository implements WithholdingCertificateRepository using GORM
type GormWithholdingCertificateRepository struct {
	db *gorm.DB
}

// NewGormWithholdingCertificateRepository creates a new GormWithholdingCertificateRepository
func NewGormWithholdingCertificateRepository(db *gorm.DB) *GormWithholdingCertificateRepository {
	return &GormWithholdingCertificateRepository{db: db}
}

// CreateBatch inserts the certificates of one order
func (r *GormWithholdingCertificateRepository) CreateBatch(ctx context.Context, certs []treasury.WithholdingCertificate) error {
	if len(certs) == 0 {
		return nil
	}
	rows := make([]models.WithholdingCertificateModel, 0, len(certs))
	for _, c := range certs {
		rows = append(rows, models.WithholdingCertificateModelFromDomain(c))
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindByPaymentOrder returns the certificates issued for a payment order
func (r *GormWithholdingCertificateRepository) FindByPaymentOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]treasury.WithholdingCertificate, error) {
	var rows []models.WithholdingCertificateModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND payment_order_id = ?", tenantID, orderID).
		Order("certificate_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]treasury.WithholdingCertificate, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

var (
	_ treasury.PaymentOrderRepository           = (*GormPaymentOrderRepository)(nil)
	_ treasury.OwnedCheckRepository             = (*GormOwnedCheckRepository)(nil)
	_ treasury.WithholdingCertificateRepository = (*GormWithholdingCertificateRepository)(nil)
)
