package cashflow

import (
	"testing"
	"time"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDeriveProjectionStatus(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		confirmed string
		want      ProjectionStatus
	}{
		{"nothing confirmed", "1000", "0", ProjectionPending},
		{"partially confirmed", "1000", "400", ProjectionPartial},
		{"exactly confirmed", "1000", "1000", ProjectionConfirmed},
		{"over confirmed within tolerance", "1000", "1000.01", ProjectionConfirmed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveProjectionStatus(dec(tt.amount), dec(tt.confirmed)))
		})
	}
}

func TestNewCashflowProjection(t *testing.T) {
	p, err := NewCashflowProjection(uuid.New(), ProjectionExpense, "rent", "", time.Now(), dec("1000"))
	require.NoError(t, err)
	assert.Equal(t, ProjectionPending, p.Status)
	assert.True(t, p.ConfirmedAmount.IsZero())

	_, err = NewCashflowProjection(uuid.New(), ProjectionType("LOAN"), "rent", "", time.Now(), dec("1"))
	assert.Error(t, err)
	_, err = NewCashflowProjection(uuid.New(), ProjectionIncome, "", "", time.Now(), dec("1"))
	assert.Error(t, err)
	_, err = NewCashflowProjection(uuid.New(), ProjectionIncome, "sales", "", time.Now(), dec("0"))
	assert.Error(t, err)
}

func TestCashflowProjection_StatusFollowsLinks(t *testing.T) {
	p, err := NewCashflowProjection(uuid.New(), ProjectionExpense, "suppliers", "", time.Now(), dec("1000.00"))
	require.NoError(t, err)

	require.NoError(t, p.CanAccept(DocumentPurchaseInvoice, dec("400.00"), DefaultTolerance))
	p.Recompute([]decimal.Decimal{dec("400.00")})
	assert.Equal(t, ProjectionPartial, p.Status)
	assert.Equal(t, "400.00", p.ConfirmedAmount.StringFixed(2))

	require.NoError(t, p.CanAccept(DocumentExpense, dec("600.00"), DefaultTolerance))
	p.Recompute([]decimal.Decimal{dec("400.00"), dec("600.00")})
	assert.Equal(t, ProjectionConfirmed, p.Status)

	changed := p.Recompute([]decimal.Decimal{dec("400.00")})
	assert.True(t, changed)
	assert.Equal(t, ProjectionPartial, p.Status)
	assert.Equal(t, "400.00", p.ConfirmedAmount.StringFixed(2))

	p.Recompute(nil)
	assert.Equal(t, ProjectionPending, p.Status)
}

func TestCashflowProjection_CanAccept(t *testing.T) {
	p, _ := NewCashflowProjection(uuid.New(), ProjectionExpense, "suppliers", "", time.Now(), dec("100.00"))
	p.Recompute([]decimal.Decimal{dec("60.00")})

	assert.NoError(t, p.CanAccept(DocumentPurchaseInvoice, dec("40.01"), DefaultTolerance))

	err := p.CanAccept(DocumentPurchaseInvoice, dec("40.02"), DefaultTolerance)
	assert.ErrorIs(t, err, shared.ErrAmountExceedsRemaining)
	assert.Equal(t, shared.KindAmountExceedsAvailable, shared.KindOfError(err))

	err = p.CanAccept(DocumentSalesInvoice, dec("1"), DefaultTolerance)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)

	assert.Error(t, p.CanAccept(DocumentExpense, dec("0"), DefaultTolerance))
	assert.ErrorIs(t, p.CanAccept(DocumentExpense, dec("0.004"), DefaultTolerance), shared.ErrInvalidAmount)

	_, err = NewCashflowProjection(uuid.New(), ProjectionExpense, "suppliers", "", time.Now(), dec("1000.001"))
	assert.ErrorIs(t, err, shared.ErrInvalidAmount)
}

func TestProjectionDocumentLink_Document(t *testing.T) {
	p, _ := NewCashflowProjection(uuid.New(), ProjectionIncome, "sales", "", time.Now(), dec("10"))
	ref := DocumentRef{Kind: DocumentSalesInvoice, ID: uuid.New()}

	link, err := NewProjectionDocumentLink(p, ref, dec("5"), "")
	require.NoError(t, err)
	assert.Equal(t, ref, link.Document())
	assert.Nil(t, link.PurchaseInvoiceID)
	assert.Nil(t, link.ExpenseID)

	_, err = NewProjectionDocumentLink(p, DocumentRef{Kind: DocumentSalesInvoice}, dec("5"), "")
	assert.Error(t, err)
}
