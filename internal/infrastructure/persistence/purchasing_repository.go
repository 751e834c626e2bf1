package persistence

import (
	"context"
	"errors"

	"github.com/erp/treasury/internal/domain/purchasing"
	"github.com/erp/treasury/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate adds SELECT ... FOR UPDATE. Dialects without row locks
// (sqlite) drop the clause.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// GormPurchaseInvoiceRepository implements PurchaseInvoiceRepository using GORM
type GormPurchaseInvoiceRepository struct {
	db *gorm.DB
}

// NewGormPurchaseInvoiceRepository creates a new GormPurchaseInvoiceRepository
func NewGormPurchaseInvoiceRepository(db *gorm.DB) *GormPurchaseInvoiceRepository {
	return &GormPurchaseInvoiceRepository{db: db}
}

// FindByIDForTenant finds a voucher by ID within a tenant
func (r *GormPurchaseInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*purchasing.PurchaseInvoice, error) {
	return r.findOne(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds a voucher and locks its row
func (r *GormPurchaseInvoiceRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*purchasing.PurchaseInvoice, error) {
	return r.findOne(lockForUpdate(r.db.WithContext(ctx)), tenantID, id)
}

func (r *GormPurchaseInvoiceRepository) findOne(db *gorm.DB, tenantID, id uuid.UUID) (*purchasing.PurchaseInvoice, error) {
	var model models.PurchaseInvoiceModel
	if err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLinkedCreditNotes returns the credit notes whose original invoice is invoiceID
func (r *GormPurchaseInvoiceRepository) FindLinkedCreditNotes(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]purchasing.PurchaseInvoice, error) {
	var rows []models.PurchaseInvoiceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND original_invoice_id = ? AND voucher_type IN ?", tenantID, invoiceID, creditNoteTypes()).
		Order("issue_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(rows), nil
}

// FindCreditNotesWithoutApplications returns confirmed credit notes linked
// to an original invoice that have no explicit application yet
func (r *GormPurchaseInvoiceRepository) FindCreditNotesWithoutApplications(ctx context.Context, tenantID uuid.UUID) ([]purchasing.PurchaseInvoice, error) {
	var rows []models.PurchaseInvoiceModel
	applied := r.db.Model(&models.CreditNoteApplicationModel{}).
		Select("credit_note_id").
		Where("tenant_id = ?", tenantID)
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND voucher_type IN ? AND original_invoice_id IS NOT NULL", tenantID, creditNoteTypes()).
		Where("status IN ?", []purchasing.InvoiceStatus{
			purchasing.InvoiceStatusConfirmed, purchasing.InvoiceStatusPartialPaid, purchasing.InvoiceStatusPaid,
		}).
		Where("id NOT IN (?)", applied).
		Order("issue_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(rows), nil
}

// FindPayable returns invoices and debit notes that still accept payments
func (r *GormPurchaseInvoiceRepository) FindPayable(ctx context.Context, tenantID uuid.UUID) ([]purchasing.PurchaseInvoice, error) {
	var rows []models.PurchaseInvoiceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND voucher_type NOT IN ?", tenantID, creditNoteTypes()).
		Where("status IN ?", []purchasing.InvoiceStatus{
			purchasing.InvoiceStatusConfirmed, purchasing.InvoiceStatusPartialPaid,
		}).
		Order("issue_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(rows), nil
}

// Save persists the voucher
func (r *GormPurchaseInvoiceRepository) Save(ctx context.Context, invoice *purchasing.PurchaseInvoice) error {
	return r.db.WithContext(ctx).Save(models.PurchaseInvoiceModelFromDomain(invoice)).Error
}

func creditNoteTypes() []purchasing.VoucherType {
	return []purchasing.VoucherType{
		purchasing.VoucherCreditNoteA, purchasing.VoucherCreditNoteB, purchasing.VoucherCreditNoteC,
	}
}

func invoicesToDomain(rows []models.PurchaseInvoiceModel) []purchasing.PurchaseInvoice {
	out := make([]purchasing.PurchaseInvoice, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out
}

// GormCreditNoteApplicationRepository implements CreditNoteApplicationRepository using GORM
type GormCreditNoteApplicationRepository struct {
	db *gorm.DB
}

// NewGormCreditNoteApplicationRepository creates a new GormCreditNoteApplicationRepository
func NewGormCreditNoteApplicationRepository(db *gorm.DB) *GormCreditNoteApplicationRepository {
	return &GormCreditNoteApplicationRepository{db: db}
}

// Create inserts an application
func (r *GormCreditNoteApplicationRepository) Create(ctx context.Context, app *purchasing.CreditNoteApplication) error {
	return r.db.WithContext(ctx).Create(models.CreditNoteApplicationModelFromDomain(app)).Error
}

// FindByInvoice returns the applications made against an invoice
func (r *GormCreditNoteApplicationRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]purchasing.CreditNoteApplication, error) {
	var rows []models.CreditNoteApplicationModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Order("applied_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]purchasing.CreditNoteApplication, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

// SumByCreditNote returns the amount already applied from a credit note
func (r *GormCreditNoteApplicationRepository) SumByCreditNote(ctx context.Context, tenantID, creditNoteID uuid.UUID) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	if err := r.db.WithContext(ctx).
		Model(&models.CreditNoteApplicationModel{}).
		Where("tenant_id = ? AND credit_note_id = ?", tenantID, creditNoteID).
		Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, err
	}
	return sumDecimals(amounts), nil
}

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByIDForTenant finds an expense by ID within a tenant
func (r *GormExpenseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*purchasing.Expense, error) {
	return r.findOne(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds an expense and locks its row
func (r *GormExpenseRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*purchasing.Expense, error) {
	return r.findOne(lockForUpdate(r.db.WithContext(ctx)), tenantID, id)
}

func (r *GormExpenseRepository) findOne(db *gorm.DB, tenantID, id uuid.UUID) (*purchasing.Expense, error) {
	var model models.ExpenseModel
	if err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save persists the expense
func (r *GormExpenseRepository) Save(ctx context.Context, expense *purchasing.Expense) error {
	return r.db.WithContext(ctx).Save(models.ExpenseModelFromDomain(expense)).Error
}

// sumDecimals adds amounts in Go so every dialect returns exact decimals
func sumDecimals(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

var (
	_ purchasing.PurchaseInvoiceRepository       = (*GormPurchaseInvoiceRepository)(nil)
	_ purchasing.CreditNoteApplicationRepository = (*GormCreditNoteApplicationRepository)(nil)
	_ purchasing.ExpenseRepository               = (*GormExpenseRepository)(nil)
)
