package cashflow

import (
	"fmt"
	"time"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentKind names the document types a projection can be matched with
type DocumentKind string

const (
	DocumentSalesInvoice    DocumentKind = "SALES_INVOICE"
	DocumentPurchaseInvoice DocumentKind = "PURCHASE_INVOICE"
	DocumentExpense         DocumentKind = "EXPENSE"
)

// IsValid checks if the kind is known
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentSalesInvoice, DocumentPurchaseInvoice, DocumentExpense:
		return true
	}
	return false
}

// DocumentRef points at exactly one actual document
type DocumentRef struct {
	Kind DocumentKind `json:"kind"`
	ID   uuid.UUID    `json:"id"`
}

// Validate checks the reference is complete
func (r DocumentRef) Validate() error {
	if !r.Kind.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown document kind %q", r.Kind))
	}
	if r.ID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Document id is required")
	}
	return nil
}

// ProjectionDocumentLink records that part of a projection materialized as a
// document. Exactly one of the document ids is set.
type ProjectionDocumentLink struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	ProjectionID      uuid.UUID
	Amount            decimal.Decimal
	SalesInvoiceID    *uuid.UUID
	PurchaseInvoiceID *uuid.UUID
	ExpenseID         *uuid.UUID
	Notes             string
	CreatedAt         time.Time
}

// NewProjectionDocumentLink builds a link for a validated reference
func NewProjectionDocumentLink(projection *CashflowProjection, ref DocumentRef, amount decimal.Decimal, notes string) (*ProjectionDocumentLink, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	link := &ProjectionDocumentLink{
		ID:           uuid.New(),
		TenantID:     projection.TenantID,
		ProjectionID: projection.ID,
		Amount:       amount,
		Notes:        notes,
		CreatedAt:    time.Now(),
	}
	id := ref.ID
	switch ref.Kind {
	case DocumentSalesInvoice:
		link.SalesInvoiceID = &id
	case DocumentPurchaseInvoice:
		link.PurchaseInvoiceID = &id
	case DocumentExpense:
		link.ExpenseID = &id
	}
	return link, nil
}

// Document returns the reference the link points at
func (l *ProjectionDocumentLink) Document() DocumentRef {
	switch {
	case l.SalesInvoiceID != nil:
		return DocumentRef{Kind: DocumentSalesInvoice, ID: *l.SalesInvoiceID}
	case l.PurchaseInvoiceID != nil:
		return DocumentRef{Kind: DocumentPurchaseInvoice, ID: *l.PurchaseInvoiceID}
	case l.ExpenseID != nil:
		return DocumentRef{Kind: DocumentExpense, ID: *l.ExpenseID}
	}
	return DocumentRef{}
}
