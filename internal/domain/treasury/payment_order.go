package treasury

import (
	"fmt"
	"time"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentOrderStatus is the lifecycle of a payment order
type PaymentOrderStatus string

const (
	PaymentOrderDraft     PaymentOrderStatus = "DRAFT"
	PaymentOrderConfirmed PaymentOrderStatus = "CONFIRMED"
)

// IsValid checks if the status is known
func (s PaymentOrderStatus) IsValid() bool {
	switch s {
	case PaymentOrderDraft, PaymentOrderConfirmed:
		return true
	}
	return false
}

// CanConfirm returns true only for drafts
func (s PaymentOrderStatus) CanConfirm() bool {
	switch s {
	case PaymentOrderDraft:
		return true
	case PaymentOrderConfirmed:
		return false
	}
	return false
}

// CanDelete returns true only for drafts
func (s PaymentOrderStatus) CanDelete() bool {
	return s.CanConfirm()
}

// PaymentMethod is how one payment line is settled
type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "CASH"
	PaymentMethodTransfer   PaymentMethod = "TRANSFER"
	PaymentMethodCheck      PaymentMethod = "CHECK"
	PaymentMethodDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
)

// IsValid checks if the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCheck,
		PaymentMethodDebitCard, PaymentMethodCreditCard:
		return true
	}
	return false
}

// UsesCashRegister returns true when the line moves cash out of a register
func (m PaymentMethod) UsesCashRegister() bool {
	return m == PaymentMethodCash
}

// UsesBankAccount returns true when the line debits a bank account
func (m PaymentMethod) UsesBankAccount() bool {
	switch m {
	case PaymentMethodTransfer, PaymentMethodCheck, PaymentMethodDebitCard:
		return true
	case PaymentMethodCash, PaymentMethodCreditCard:
		return false
	}
	return false
}

// PaymentOrderItem allocates part of the order to one invoice or expense
type PaymentOrderItem struct {
	ID             uuid.UUID
	PaymentOrderID uuid.UUID
	InvoiceID      *uuid.UUID
	ExpenseID      *uuid.UUID
	Amount         decimal.Decimal
}

// Validate checks the item targets exactly one document
func (i PaymentOrderItem) Validate() error {
	if (i.InvoiceID == nil) == (i.ExpenseID == nil) {
		return shared.NewDomainError("INVALID_INPUT", "Each item must reference exactly one invoice or expense")
	}
	if !i.Amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Item amount must be positive")
	}
	return shared.CheckCurrencyAmount("Item amount", i.Amount)
}

// PaymentOrderPayment is one settlement line of an order
type PaymentOrderPayment struct {
	ID             uuid.UUID
	PaymentOrderID uuid.UUID
	Method         PaymentMethod
	Amount         decimal.Decimal
	CashRegisterID *uuid.UUID
	BankAccountID  *uuid.UUID
	CheckNumber    string
	CheckDueDate   *time.Time
	CardLast4      string
}

// Validate checks the method-dependent fields
func (p PaymentOrderPayment) Validate() error {
	if !p.Method.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown payment method %q", p.Method))
	}
	if !p.Amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if err := shared.CheckCurrencyAmount("Payment amount", p.Amount); err != nil {
		return err
	}
	if p.Method.UsesCashRegister() && p.CashRegisterID == nil {
		return shared.NewDomainError("INVALID_INPUT", "Cash payments require a cash register")
	}
	if p.Method.UsesBankAccount() && p.BankAccountID == nil {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("%s payments require a bank account", p.Method))
	}
	if p.Method == PaymentMethodCheck && p.CheckNumber == "" {
		return shared.NewDomainError("INVALID_INPUT", "Check payments require a check number")
	}
	if p.Method == PaymentMethodCreditCard && len(p.CardLast4) != 4 {
		return shared.NewDomainError("INVALID_INPUT", "Card payments require the last 4 digits of the card")
	}
	return nil
}

// WithholdingType is the tax withheld from a supplier payment
type WithholdingType string

const (
	WithholdingVAT            WithholdingType = "VAT"
	WithholdingIncomeTax      WithholdingType = "INCOME_TAX"
	WithholdingGrossIncome    WithholdingType = "GROSS_INCOME"
	WithholdingSocialSecurity WithholdingType = "SOCIAL_SECURITY"
)

// IsValid checks if the withholding type is known
func (t WithholdingType) IsValid() bool {
	switch t {
	case WithholdingVAT, WithholdingIncomeTax, WithholdingGrossIncome, WithholdingSocialSecurity:
		return true
	}
	return false
}

// PaymentOrderWithholding is a tax line retained instead of paid
type PaymentOrderWithholding struct {
	ID             uuid.UUID
	PaymentOrderID uuid.UUID
	Type           WithholdingType
	Amount         decimal.Decimal
}

// PaymentOrder pays one or more supplier documents. It is mutable while DRAFT;
// confirmation is terminal and triggers the ledger side effects exactly once.
type PaymentOrder struct {
	shared.TenantAggregateRoot
	FullNumber     string
	Date           time.Time
	SupplierID     *uuid.UUID
	TotalAmount    decimal.Decimal
	Status         PaymentOrderStatus
	Notes          string
	Items          []PaymentOrderItem
	Payments       []PaymentOrderPayment
	Withholdings   []PaymentOrderWithholding
	ConfirmedBy    *uuid.UUID
	ConfirmedAt    *time.Time
	JournalEntryID *uuid.UUID
}

// NewPaymentOrder builds a DRAFT order. Items must be balanced by payments
// plus withholdings.
func NewPaymentOrder(
	tenantID uuid.UUID,
	fullNumber string,
	date time.Time,
	supplierID *uuid.UUID,
	items []PaymentOrderItem,
	payments []PaymentOrderPayment,
	withholdings []PaymentOrderWithholding,
	notes string,
) (*PaymentOrder, error) {
	if fullNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment order number cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment order requires at least one item")
	}

	order := &PaymentOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		FullNumber:          fullNumber,
		Date:                date,
		SupplierID:          supplierID,
		Status:              PaymentOrderDraft,
		Notes:               notes,
	}

	seen := make(map[uuid.UUID]struct{}, len(items))
	itemsTotal := decimal.Zero
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		target := item.TargetID()
		if _, dup := seen[target]; dup {
			return nil, shared.NewDomainError("INVALID_INPUT", "A document can only appear once per payment order")
		}
		seen[target] = struct{}{}
		item.ID = uuid.New()
		item.PaymentOrderID = order.ID
		order.Items = append(order.Items, item)
		itemsTotal = itemsTotal.Add(item.Amount)
	}

	settled := decimal.Zero
	for _, p := range payments {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		p.ID = uuid.New()
		p.PaymentOrderID = order.ID
		order.Payments = append(order.Payments, p)
		settled = settled.Add(p.Amount)
	}
	for _, w := range withholdings {
		if !w.Type.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown withholding type %q", w.Type))
		}
		if !w.Amount.IsPositive() {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Withholding amount must be positive")
		}
		if err := shared.CheckCurrencyAmount("Withholding amount", w.Amount); err != nil {
			return nil, err
		}
		w.ID = uuid.New()
		w.PaymentOrderID = order.ID
		order.Withholdings = append(order.Withholdings, w)
		settled = settled.Add(w.Amount)
	}

	if !settled.Equal(itemsTotal) {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf(
			"Payments and withholdings (%s) must equal the items total (%s)",
			settled.StringFixed(2), itemsTotal.StringFixed(2)))
	}
	order.TotalAmount = itemsTotal
	return order, nil
}

// TargetID returns the invoice or expense the item pays
func (i PaymentOrderItem) TargetID() uuid.UUID {
	if i.InvoiceID != nil {
		return *i.InvoiceID
	}
	if i.ExpenseID != nil {
		return *i.ExpenseID
	}
	return uuid.Nil
}

// EnsureDeletable allows deletion of drafts only
func (o *PaymentOrder) EnsureDeletable() error {
	if !o.Status.CanDelete() {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Payment order %s is %s and cannot be deleted", o.FullNumber, o.Status))
	}
	return nil
}

// MarkConfirmed mirrors the persisted confirmation on the loaded aggregate and
// queues the confirmation event
func (o *PaymentOrder) MarkConfirmed(by *uuid.UUID, at time.Time) error {
	if !o.Status.CanConfirm() {
		return shared.ErrAlreadyConfirmed.WithMessage(
			fmt.Sprintf("Payment order %s is already %s", o.FullNumber, o.Status))
	}
	o.Status = PaymentOrderConfirmed
	o.ConfirmedBy = by
	o.ConfirmedAt = &at
	o.IncrementVersion()
	o.AddDomainEvent(NewPaymentOrderConfirmedEvent(o))
	return nil
}

// WithholdingTotal is the sum of withheld amounts
func (o *PaymentOrder) WithholdingTotal() decimal.Decimal {
	total := decimal.Zero
	for _, w := range o.Withholdings {
		total = total.Add(w.Amount)
	}
	return total
}
