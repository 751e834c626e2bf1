package treasury

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/erp/treasury/internal/domain/purchasing"
	"github.com/erp/treasury/internal/domain/shared"
	"github.com/erp/treasury/internal/domain/treasury"
	"github.com/erp/treasury/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentOrderService drafts, confirms and deletes supplier payment orders
type PaymentOrderService struct {
	scope     TransactionScope
	publisher shared.EventPublisher
	opts      Options
	metrics   *telemetry.TreasuryMetrics
	logger    *zap.Logger
}

// NewPaymentOrderService creates a new PaymentOrderService. publisher may be
// nil, in which case confirmation events are dropped.
func NewPaymentOrderService(
	scope TransactionScope,
	publisher shared.EventPublisher,
	opts Options,
	metrics *telemetry.TreasuryMetrics,
	logger *zap.Logger,
) *PaymentOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentOrderService{
		scope:     scope,
		publisher: publisher,
		opts:      opts,
		metrics:   metrics,
		logger:    logger,
	}
}

// CreatePaymentOrderRequest is the input of CreatePaymentOrder. IDs of the
// nested lines are assigned by the service.
type CreatePaymentOrderRequest struct {
	TenantID     uuid.UUID
	Date         time.Time
	SupplierID   *uuid.UUID
	Items        []treasury.PaymentOrderItem
	Payments     []treasury.PaymentOrderPayment
	Withholdings []treasury.PaymentOrderWithholding
	Notes        string
}

// CreatePaymentOrder validates the targets and payment sources and stores a
// DRAFT order with a freshly allocated number
func (s *PaymentOrderService) CreatePaymentOrder(ctx context.Context, req CreatePaymentOrderRequest) (*treasury.PaymentOrder, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_order", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		"items_count", len(req.Items),
		"payments_count", len(req.Payments),
	)

	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	var order *treasury.PaymentOrder
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, item := range req.Items {
			if err := item.Validate(); err != nil {
				return err
			}
			if err := s.checkItemTarget(ctx, repos, req.TenantID, req.SupplierID, item); err != nil {
				return err
			}
		}
		for _, p := range req.Payments {
			if err := p.Validate(); err != nil {
				return err
			}
			if err := s.checkPaymentSource(ctx, repos, req.TenantID, p); err != nil {
				return err
			}
		}

		number, err := repos.PaymentOrderRepo().NextNumber(ctx, req.TenantID)
		if err != nil {
			return fmt.Errorf("failed to allocate payment order number: %w", err)
		}
		order, err = treasury.NewPaymentOrder(req.TenantID, number, req.Date, req.SupplierID,
			req.Items, req.Payments, req.Withholdings, req.Notes)
		if err != nil {
			return err
		}
		if err := repos.PaymentOrderRepo().Create(ctx, order); err != nil {
			return fmt.Errorf("failed to create payment order: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("payment order drafted",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("payment_order_id", order.ID.String()),
		zap.String("number", order.FullNumber),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	return order, nil
}

func (s *PaymentOrderService) checkItemTarget(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, supplierID *uuid.UUID, item treasury.PaymentOrderItem) error {
	if item.InvoiceID != nil {
		invoice, err := repos.InvoiceRepo().FindByIDForTenant(ctx, tenantID, *item.InvoiceID)
		if err != nil {
			return fmt.Errorf("failed to load invoice: %w", err)
		}
		if invoice == nil {
			return shared.ErrNotFound.WithMessage(fmt.Sprintf("Purchase invoice %s not found", *item.InvoiceID))
		}
		if invoice.VoucherType.IsCreditNote() || !invoice.Status.IsPayable() {
			return shared.ErrInvalidVoucherState.WithMessage(
				fmt.Sprintf("Voucher %s is %s and cannot be paid", invoice.FullNumber, invoice.Status))
		}
		if supplierID != nil && invoice.SupplierID != *supplierID {
			return shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Voucher %s belongs to another supplier", invoice.FullNumber))
		}
		summary, err := summarizeInvoice(ctx, repos, invoice, s.opts)
		if err != nil {
			return err
		}
		if item.Amount.GreaterThan(summary.Pending) {
			return shared.ErrAmountExceedsAvailable.WithMessage(fmt.Sprintf(
				"Amount %s exceeds the pending %s of voucher %s",
				item.Amount.StringFixed(2), summary.Pending.StringFixed(2), invoice.FullNumber))
		}
		return nil
	}

	expense, err := repos.ExpenseRepo().FindByIDForTenant(ctx, tenantID, *item.ExpenseID)
	if err != nil {
		return fmt.Errorf("failed to load expense: %w", err)
	}
	if expense == nil {
		return shared.ErrNotFound.WithMessage(fmt.Sprintf("Expense %s not found", *item.ExpenseID))
	}
	if !expense.Status.IsPayable() {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Expense %s is %s and cannot be paid", expense.Number, expense.Status))
	}
	paid, err := s.expensePaid(ctx, repos, expense)
	if err != nil {
		return err
	}
	if pending := expense.Pending(paid); item.Amount.GreaterThan(pending) {
		return shared.ErrAmountExceedsAvailable.WithMessage(fmt.Sprintf(
			"Amount %s exceeds the pending %s of expense %s",
			item.Amount.StringFixed(2), pending.StringFixed(2), expense.Number))
	}
	return nil
}

func (s *PaymentOrderService) checkPaymentSource(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, p treasury.PaymentOrderPayment) error {
	switch {
	case p.Method.UsesCashRegister():
		register, err := repos.CashRegisterRepo().FindByIDForTenant(ctx, tenantID, *p.CashRegisterID)
		if err != nil {
			return fmt.Errorf("failed to load cash register: %w", err)
		}
		if register == nil {
			return shared.ErrNotFound.WithMessage(fmt.Sprintf("Cash register %s not found", *p.CashRegisterID))
		}
	case p.Method.UsesBankAccount():
		account, err := repos.BankAccountRepo().FindByIDForTenant(ctx, tenantID, *p.BankAccountID)
		if err != nil {
			return fmt.Errorf("failed to load bank account: %w", err)
		}
		if account == nil {
			return shared.ErrNotFound.WithMessage(fmt.Sprintf("Bank account %s not found", *p.BankAccountID))
		}
	}
	return nil
}

func (s *PaymentOrderService) expensePaid(ctx context.Context, repos TransactionalRepositories, expense *purchasing.Expense) (decimal.Decimal, error) {
	amounts, err := repos.PaymentOrderRepo().ConfirmedAmountsByExpense(ctx, expense.TenantID, expense.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load payments of expense: %w", err)
	}
	paid := decimal.Zero
	for _, a := range amounts {
		paid = paid.Add(a)
	}
	return paid, nil
}

// ConfirmPaymentOrder confirms a DRAFT order and applies all of its ledger
// effects in one transaction: document statuses, cash and bank movements,
// checks and withholding certificates. The confirmation event is published
// after commit; what its handlers do cannot undo the confirmation.
func (s *PaymentOrderService) ConfirmPaymentOrder(ctx context.Context, tenantID, orderID uuid.UUID, userID *uuid.UUID) (*treasury.PaymentOrder, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_order", "confirm")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPaymentOrderID, orderID.String(),
	)

	started := time.Now()
	var order *treasury.PaymentOrder
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = s.confirm(ctx, repos, tenantID, orderID, userID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("payment order confirmation rejected",
			zap.String("payment_order_id", orderID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.RecordPaymentOrderConfirmed(ctx, tenantID, time.Since(started))
	s.logger.Info("payment order confirmed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("payment_order_id", order.ID.String()),
		zap.String("number", order.FullNumber),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)

	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if s.publisher != nil && len(events) > 0 {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Error("failed to publish payment order events",
				zap.String("payment_order_id", order.ID.String()),
				zap.Error(err),
			)
		}
	}
	return order, nil
}

func (s *PaymentOrderService) confirm(ctx context.Context, repos TransactionalRepositories, tenantID, orderID uuid.UUID, userID *uuid.UUID) (*treasury.PaymentOrder, error) {
	order, err := repos.PaymentOrderRepo().FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment order: %w", err)
	}
	if order == nil {
		return nil, shared.ErrNotFound.WithMessage(fmt.Sprintf("Payment order %s not found", orderID))
	}

	now := time.Now()
	won, err := repos.PaymentOrderRepo().MarkConfirmed(ctx, tenantID, orderID, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment order: %w", err)
	}
	if !won {
		return nil, shared.ErrAlreadyConfirmed.WithMessage(
			fmt.Sprintf("Payment order %s is already confirmed", order.FullNumber))
	}
	if err := order.MarkConfirmed(userID, now); err != nil {
		return nil, err
	}

	// documents are locked in id order
	items := slices.Clone(order.Items)
	slices.SortFunc(items, func(a, b treasury.PaymentOrderItem) int {
		return strings.Compare(a.TargetID().String(), b.TargetID().String())
	})
	for _, item := range items {
		if err := s.settleItem(ctx, repos, tenantID, item); err != nil {
			return nil, err
		}
	}

	ledger := newConfirmationLedger(repos, order, userID, now)
	for _, p := range order.Payments {
		if err := ledger.apply(ctx, p); err != nil {
			return nil, err
		}
	}

	if certs := treasury.IssueWithholdingCertificates(order, now); len(certs) > 0 {
		if err := repos.WithholdingCertificateRepo().CreateBatch(ctx, certs); err != nil {
			return nil, fmt.Errorf("failed to issue withholding certificates: %w", err)
		}
	}
	return order, nil
}

func (s *PaymentOrderService) settleItem(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, item treasury.PaymentOrderItem) error {
	if item.InvoiceID != nil {
		invoice, err := loadInvoiceForUpdate(ctx, repos, tenantID, *item.InvoiceID)
		if err != nil {
			return err
		}
		if !invoice.Status.IsPayable() {
			return shared.ErrInvalidVoucherState.WithMessage(
				fmt.Sprintf("Voucher %s is %s and cannot be paid", invoice.FullNumber, invoice.Status))
		}
		summary, _, err := settleInvoice(ctx, repos, invoice, s.opts)
		if err != nil {
			return err
		}
		if excess := summary.Overpayment(); excess.IsPositive() {
			return shared.ErrAmountExceedsAvailable.WithMessage(
				fmt.Sprintf("Payment order overpays voucher %s by %s", invoice.FullNumber, excess.StringFixed(2)))
		}
		return nil
	}

	expense, err := repos.ExpenseRepo().FindByIDForUpdate(ctx, tenantID, *item.ExpenseID)
	if err != nil {
		return fmt.Errorf("failed to load expense: %w", err)
	}
	if expense == nil {
		return shared.ErrNotFound.WithMessage(fmt.Sprintf("Expense %s not found", *item.ExpenseID))
	}
	if !expense.Status.IsPayable() {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Expense %s is %s and cannot be paid", expense.Number, expense.Status))
	}
	paid, err := s.expensePaid(ctx, repos, expense)
	if err != nil {
		return err
	}
	if expense.Pending(paid).IsNegative() {
		return shared.ErrAmountExceedsAvailable.WithMessage(
			fmt.Sprintf("Payment order overpays expense %s", expense.Number))
	}
	changed, err := expense.ApplyPaid(paid)
	if err != nil {
		return err
	}
	if changed {
		if err := repos.ExpenseRepo().Save(ctx, expense); err != nil {
			return fmt.Errorf("failed to save expense status: %w", err)
		}
	}
	return nil
}

// confirmationLedger applies the payment lines of one confirmation. Sessions
// and accounts are locked once and reused so several lines against the same
// register or account accumulate on the same row.
type confirmationLedger struct {
	repos    TransactionalRepositories
	order    *treasury.PaymentOrder
	userID   *uuid.UUID
	at       time.Time
	sessions map[uuid.UUID]*treasury.CashSession
	accounts map[uuid.UUID]*treasury.BankAccount
}

func newConfirmationLedger(repos TransactionalRepositories, order *treasury.PaymentOrder, userID *uuid.UUID, at time.Time) *confirmationLedger {
	return &confirmationLedger{
		repos:    repos,
		order:    order,
		userID:   userID,
		at:       at,
		sessions: make(map[uuid.UUID]*treasury.CashSession),
		accounts: make(map[uuid.UUID]*treasury.BankAccount),
	}
}

func (l *confirmationLedger) apply(ctx context.Context, p treasury.PaymentOrderPayment) error {
	description := fmt.Sprintf("Payment order %s", l.order.FullNumber)
	switch {
	case p.Method.UsesCashRegister():
		return l.applyCash(ctx, p, description)
	case p.Method.UsesBankAccount():
		if err := l.applyBank(ctx, p, description); err != nil {
			return err
		}
		if p.Method == treasury.PaymentMethodCheck {
			if err := l.repos.OwnedCheckRepo().Create(ctx, treasury.NewDeliveredCheck(l.order, p)); err != nil {
				return fmt.Errorf("failed to record delivered check: %w", err)
			}
		}
	}
	return nil
}

func (l *confirmationLedger) applyCash(ctx context.Context, p treasury.PaymentOrderPayment, description string) error {
	session, ok := l.sessions[*p.CashRegisterID]
	if !ok {
		var err error
		session, err = l.repos.CashSessionRepo().FindOpenByRegisterForUpdate(ctx, l.order.TenantID, *p.CashRegisterID)
		if err != nil {
			return fmt.Errorf("failed to load cash session: %w", err)
		}
		if session == nil {
			return shared.ErrNoOpenSession.WithMessage(
				fmt.Sprintf("Cash register %s has no open session", *p.CashRegisterID))
		}
		l.sessions[*p.CashRegisterID] = session
	}

	movement, err := treasury.NewCashMovement(session, treasury.CashMovementExpense, treasury.CashOut, p.Amount, description)
	if err != nil {
		return err
	}
	movement.PaymentOrderID = &l.order.ID
	movement.CreatedBy = l.userID
	if err := l.repos.CashMovementRepo().Create(ctx, movement); err != nil {
		return fmt.Errorf("failed to create cash movement: %w", err)
	}
	session.ApplyDelta(movement.Delta())
	if err := l.repos.CashSessionRepo().Save(ctx, session); err != nil {
		return fmt.Errorf("failed to update cash session: %w", err)
	}
	return nil
}

func (l *confirmationLedger) applyBank(ctx context.Context, p treasury.PaymentOrderPayment, description string) error {
	account, ok := l.accounts[*p.BankAccountID]
	if !ok {
		var err error
		account, err = l.repos.BankAccountRepo().FindByIDForUpdate(ctx, l.order.TenantID, *p.BankAccountID)
		if err != nil {
			return fmt.Errorf("failed to load bank account: %w", err)
		}
		if account == nil {
			return shared.ErrNotFound.WithMessage(fmt.Sprintf("Bank account %s not found", *p.BankAccountID))
		}
		if err := account.EnsureActive(); err != nil {
			return err
		}
		l.accounts[*p.BankAccountID] = account
	}

	movement, err := treasury.NewBankMovement(l.order.TenantID, account.ID, treasury.BankMovementWithdrawal, p.Amount, l.order.Date, description)
	if err != nil {
		return err
	}
	movement.PaymentOrderID = &l.order.ID
	movement.Reference = l.order.FullNumber
	if p.Method == treasury.PaymentMethodCheck {
		movement.Reference = p.CheckNumber
	}
	movement.SetReconciled(true, l.userID, l.at)
	if err := l.repos.BankMovementRepo().Create(ctx, movement); err != nil {
		return fmt.Errorf("failed to create bank movement: %w", err)
	}
	account.ApplyDelta(movement.Delta())
	if err := l.repos.BankAccountRepo().Save(ctx, account); err != nil {
		return fmt.Errorf("failed to update bank account balance: %w", err)
	}
	return nil
}

// DeletePaymentOrder deletes a DRAFT order together with its lines
func (s *PaymentOrderService) DeletePaymentOrder(ctx context.Context, tenantID, orderID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.PaymentOrderRepo().FindByIDForTenant(ctx, tenantID, orderID)
		if err != nil {
			return fmt.Errorf("failed to load payment order: %w", err)
		}
		if order == nil {
			return shared.ErrNotFound.WithMessage(fmt.Sprintf("Payment order %s not found", orderID))
		}
		if err := order.EnsureDeletable(); err != nil {
			return err
		}
		deleted, err := repos.PaymentOrderRepo().Delete(ctx, tenantID, orderID)
		if err != nil {
			return fmt.Errorf("failed to delete payment order: %w", err)
		}
		if !deleted {
			return shared.ErrInvalidState.WithMessage(
				fmt.Sprintf("Payment order %s is no longer a draft", order.FullNumber))
		}
		s.logger.Info("payment order deleted",
			zap.String("payment_order_id", orderID.String()),
			zap.String("number", order.FullNumber),
		)
		return nil
	})
}

// GetPaymentOrder returns an order with its lines
func (s *PaymentOrderService) GetPaymentOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*treasury.PaymentOrder, error) {
	var order *treasury.PaymentOrder
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.PaymentOrderRepo().FindByIDForTenant(ctx, tenantID, orderID)
		if err != nil {
			return fmt.Errorf("failed to load payment order: %w", err)
		}
		if order == nil {
			return shared.ErrNotFound.WithMessage(fmt.Sprintf("Payment order %s not found", orderID))
		}
		return nil
	})
	return order, err
}

// GenerateInstallments splits an amount into dated installments whose sum is
// exactly the amount
func (s *PaymentOrderService) GenerateInstallments(total decimal.Decimal, count int, firstDue time.Time, intervalDays int) ([]treasury.Installment, error) {
	return treasury.GenerateInstallments(total, count, firstDue, intervalDays)
}
