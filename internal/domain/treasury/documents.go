package treasury

import (
	"fmt"
	"time"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/erp/treasury/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OwnedCheckStatus is the lifecycle of a check drawn on our own account
type OwnedCheckStatus string

const (
	OwnedCheckDelivered OwnedCheckStatus = "DELIVERED"
	OwnedCheckCleared   OwnedCheckStatus = "CLEARED"
	OwnedCheckVoided    OwnedCheckStatus = "VOIDED"
)

// OwnedCheck is a check issued from one of our bank accounts
type OwnedCheck struct {
	shared.BaseEntity
	TenantID        uuid.UUID
	BankAccountID   uuid.UUID
	PaymentOrderID  *uuid.UUID
	Number          string
	Amount          decimal.Decimal
	IssueDate       time.Time
	DueDate         *time.Time
	PayeeSupplierID *uuid.UUID
	Status          OwnedCheckStatus
}

// NewDeliveredCheck records a check handed over with a payment order
func NewDeliveredCheck(order *PaymentOrder, payment PaymentOrderPayment) *OwnedCheck {
	return &OwnedCheck{
		BaseEntity:      shared.NewBaseEntity(),
		TenantID:        order.TenantID,
		BankAccountID:   *payment.BankAccountID,
		PaymentOrderID:  &order.ID,
		Number:          payment.CheckNumber,
		Amount:          payment.Amount,
		IssueDate:       order.Date,
		DueDate:         payment.CheckDueDate,
		PayeeSupplierID: order.SupplierID,
		Status:          OwnedCheckDelivered,
	}
}

// WithholdingCertificate is the record issued for each withholding of a
// confirmed payment order
type WithholdingCertificate struct {
	shared.BaseEntity
	TenantID          uuid.UUID
	PaymentOrderID    uuid.UUID
	SupplierID        *uuid.UUID
	Type              WithholdingType
	Amount            decimal.Decimal
	CertificateNumber string
	IssuedAt          time.Time
}

// IssueWithholdingCertificates creates one certificate per withholding line
func IssueWithholdingCertificates(order *PaymentOrder, issuedAt time.Time) []WithholdingCertificate {
	certs := make([]WithholdingCertificate, 0, len(order.Withholdings))
	for i, w := range order.Withholdings {
		certs = append(certs, WithholdingCertificate{
			BaseEntity:        shared.NewBaseEntity(),
			TenantID:          order.TenantID,
			PaymentOrderID:    order.ID,
			SupplierID:        order.SupplierID,
			Type:              w.Type,
			Amount:            w.Amount,
			CertificateNumber: fmt.Sprintf("%s-R%02d", order.FullNumber, i+1),
			IssuedAt:          issuedAt,
		})
	}
	return certs
}

// Installment is one dated part of a split payment
type Installment struct {
	Number  int             `json:"number"`
	DueDate time.Time       `json:"due_date"`
	Amount  decimal.Decimal `json:"amount"`
}

// GenerateInstallments splits total into count installments spaced
// intervalDays apart. The sum equals total to the cent; any rounding
// remainder lands on the last installment.
func GenerateInstallments(total decimal.Decimal, count int, firstDue time.Time, intervalDays int) ([]Installment, error) {
	if !total.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total must be positive")
	}
	if count <= 0 || count > 120 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Installment count must be between 1 and 120")
	}
	if intervalDays < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Interval cannot be negative")
	}
	parts, err := valueobject.Of(total).Installments(count)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	out := make([]Installment, count)
	for i, p := range parts {
		out[i] = Installment{
			Number:  i + 1,
			DueDate: firstDue.AddDate(0, 0, i*intervalDays),
			Amount:  p.Amount(),
		}
	}
	return out, nil
}
