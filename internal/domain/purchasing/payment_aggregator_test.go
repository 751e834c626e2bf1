package purchasing

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func application(noteID uuid.UUID, amount string) CreditNoteApplication {
	return CreditNoteApplication{ID: uuid.New(), CreditNoteID: noteID, InvoiceID: uuid.New(), Amount: dec(amount)}
}

func TestComputePaymentSummary_DirectAndExplicit(t *testing.T) {
	note := uuid.New()
	summary := ComputePaymentSummary(PaymentInputs{
		Total:          dec("1000"),
		DirectPayments: []decimal.Decimal{dec("300"), dec("200")},
		Applications:   []CreditNoteApplication{application(note, "100")},
	})

	assert.Equal(t, "500.00", summary.Direct.StringFixed(2))
	assert.Equal(t, "100.00", summary.Explicit.StringFixed(2))
	assert.True(t, summary.Fallback.IsZero())
	assert.Equal(t, "600.00", summary.Paid.StringFixed(2))
	assert.Equal(t, "400.00", summary.Pending.StringFixed(2))
	assert.Equal(t, InvoiceStatusPartialPaid, summary.DeriveStatus(InvoiceStatusConfirmed))
}

func TestComputePaymentSummary_FallbackIsCapped(t *testing.T) {
	summary := ComputePaymentSummary(PaymentInputs{
		Total:          dec("1000"),
		DirectPayments: []decimal.Decimal{dec("700")},
		LinkedCreditNotes: []LinkedCreditNote{
			{ID: uuid.New(), Status: InvoiceStatusConfirmed, Total: dec("500")},
		},
		IncludeImplicit: true,
	})

	assert.Equal(t, "300.00", summary.Fallback.StringFixed(2))
	assert.Equal(t, "1000.00", summary.Paid.StringFixed(2))
	assert.True(t, summary.IsSettled())
	assert.Equal(t, InvoiceStatusPaid, summary.DeriveStatus(InvoiceStatusConfirmed))
}

func TestComputePaymentSummary_FallbackSkipsExplicitDraftAndCancelled(t *testing.T) {
	explicitNote := uuid.New()
	summary := ComputePaymentSummary(PaymentInputs{
		Total:        dec("1000"),
		Applications: []CreditNoteApplication{application(explicitNote, "150")},
		LinkedCreditNotes: []LinkedCreditNote{
			{ID: explicitNote, Status: InvoiceStatusConfirmed, Total: dec("150")},
			{ID: uuid.New(), Status: InvoiceStatusDraft, Total: dec("50")},
			{ID: uuid.New(), Status: InvoiceStatusCancelled, Total: dec("70")},
			{ID: uuid.New(), Status: InvoiceStatusPaid, Total: dec("20")},
		},
		IncludeImplicit: true,
	})

	assert.Equal(t, "150.00", summary.Explicit.StringFixed(2))
	assert.Equal(t, "20.00", summary.Fallback.StringFixed(2))
	assert.Equal(t, "170.00", summary.Paid.StringFixed(2))
}

func TestComputePaymentSummary_ImplicitDisabled(t *testing.T) {
	summary := ComputePaymentSummary(PaymentInputs{
		Total: dec("100"),
		LinkedCreditNotes: []LinkedCreditNote{
			{ID: uuid.New(), Status: InvoiceStatusConfirmed, Total: dec("40")},
		},
	})
	assert.True(t, summary.Paid.IsZero())
	assert.Equal(t, InvoiceStatusConfirmed, summary.DeriveStatus(InvoiceStatusConfirmed))
}

func TestComputePaymentSummary_FallbackUsesOnlyUnappliedPart(t *testing.T) {
	spent := uuid.New()
	partly := uuid.New()
	summary := ComputePaymentSummary(PaymentInputs{
		Total: dec("1000"),
		LinkedCreditNotes: []LinkedCreditNote{
			{ID: spent, Status: InvoiceStatusConfirmed, Total: dec("300"), Applied: dec("300")},
			{ID: partly, Status: InvoiceStatusConfirmed, Total: dec("300"), Applied: dec("100")},
		},
		IncludeImplicit: true,
	})

	assert.True(t, summary.FallbackOf(spent).IsZero())
	assert.Equal(t, "200.00", summary.FallbackOf(partly).StringFixed(2))
	assert.Equal(t, "200.00", summary.Fallback.StringFixed(2))
	assert.Equal(t, "800.00", summary.Pending.StringFixed(2))
}

func TestComputePaymentSummary_FallbackSharesFollowOrder(t *testing.T) {
	first, second, third := uuid.New(), uuid.New(), uuid.New()
	summary := ComputePaymentSummary(PaymentInputs{
		Total:          dec("1000"),
		DirectPayments: []decimal.Decimal{dec("600")},
		LinkedCreditNotes: []LinkedCreditNote{
			{ID: first, Status: InvoiceStatusConfirmed, Total: dec("300")},
			{ID: second, Status: InvoiceStatusPaid, Total: dec("300")},
			{ID: third, Status: InvoiceStatusConfirmed, Total: dec("50")},
		},
		IncludeImplicit: true,
	})

	assert.Equal(t, "300.00", summary.FallbackOf(first).StringFixed(2))
	assert.Equal(t, "100.00", summary.FallbackOf(second).StringFixed(2))
	assert.True(t, summary.FallbackOf(third).IsZero())
	assert.True(t, summary.FallbackOf(uuid.New()).IsZero())
	assert.True(t, summary.IsSettled())
}

func TestComputePaymentSummary_OverpaymentIsCapped(t *testing.T) {
	summary := ComputePaymentSummary(PaymentInputs{
		Total:          dec("1000"),
		DirectPayments: []decimal.Decimal{dec("800")},
		Applications:   []CreditNoteApplication{application(uuid.New(), "300")},
		LinkedCreditNotes: []LinkedCreditNote{
			{ID: uuid.New(), Status: InvoiceStatusConfirmed, Total: dec("50")},
		},
		IncludeImplicit: true,
	})

	assert.Equal(t, "1000.00", summary.Paid.StringFixed(2))
	assert.True(t, summary.Pending.IsZero())
	assert.True(t, summary.Fallback.IsZero())
	assert.Equal(t, "100.00", summary.Overpayment().StringFixed(2))
	assert.Equal(t, InvoiceStatusPaid, summary.DeriveStatus(InvoiceStatusConfirmed))
}

// Whatever the inputs, the paid amount stays within the total and implicit
// links only fill what direct and explicit amounts left open.
func TestComputePaymentSummary_NeverExceedsTotal(t *testing.T) {
	total := dec("1000")
	amounts := []string{"0", "0.01", "250", "499.99", "500", "1000", "1200"}
	for _, direct := range amounts {
		for _, explicit := range amounts {
			for _, implicit := range amounts {
				for _, second := range []string{"0", "333.33", "1200"} {
					name := fmt.Sprintf("d=%s e=%s i=%s+%s", direct, explicit, implicit, second)
					t.Run(name, func(t *testing.T) {
						in := PaymentInputs{
							Total:           total,
							DirectPayments:  []decimal.Decimal{dec(direct)},
							IncludeImplicit: true,
							LinkedCreditNotes: []LinkedCreditNote{
								{ID: uuid.New(), Status: InvoiceStatusConfirmed, Total: dec(implicit)},
								{ID: uuid.New(), Status: InvoiceStatusPartialPaid, Total: dec(second), Applied: dec("0.01")},
							},
						}
						if !dec(explicit).IsZero() {
							in.Applications = []CreditNoteApplication{application(uuid.New(), explicit)}
						}

						s := ComputePaymentSummary(in)

						open := decimal.Max(decimal.Zero, total.Sub(dec(direct)).Sub(dec(explicit)))
						assert.True(t, s.Paid.LessThanOrEqual(total), "paid %s > total", s.Paid)
						assert.True(t, s.Fallback.LessThanOrEqual(open), "fallback %s > open %s", s.Fallback, open)
						assert.False(t, s.Fallback.IsNegative())
						assert.False(t, s.Pending.IsNegative())
						assert.True(t, s.Pending.Equal(total.Sub(s.Paid)))
						assert.True(t, s.Overpayment().Equal(
							decimal.Max(decimal.Zero, dec(direct).Add(dec(explicit)).Sub(total))))
					})
				}
			}
		}
	}
}

func TestPaymentSummary_DeriveStatus(t *testing.T) {
	tests := []struct {
		name    string
		paid    string
		pending string
		current InvoiceStatus
		want    InvoiceStatus
	}{
		{"nothing paid keeps confirmed", "0", "100", InvoiceStatusConfirmed, InvoiceStatusConfirmed},
		{"partial", "40", "60", InvoiceStatusConfirmed, InvoiceStatusPartialPaid},
		{"exact", "100", "0", InvoiceStatusPartialPaid, InvoiceStatusPaid},
		{"overpaid", "120", "-20", InvoiceStatusConfirmed, InvoiceStatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := PaymentSummary{Paid: dec(tt.paid), Pending: dec(tt.pending)}
			assert.Equal(t, tt.want, s.DeriveStatus(tt.current))
		})
	}
}
