package purchasing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LinkedCreditNote is a credit note that references an invoice through
// OriginalInvoiceID without an explicit application record. Such links
// predate CreditNoteApplication and only count as a capped fallback.
type LinkedCreditNote struct {
	ID     uuid.UUID
	Status InvoiceStatus
	Total  decimal.Decimal
	// Applied is what the note has compensated explicitly on any invoice.
	// Only the rest of the note can still back the fallback.
	Applied decimal.Decimal
}

// PaymentInputs is everything needed to settle one invoice
type PaymentInputs struct {
	Total decimal.Decimal
	// DirectPayments are payment order item amounts from confirmed orders
	DirectPayments []decimal.Decimal
	// Applications are the explicit credit note applications to the invoice
	Applications []CreditNoteApplication
	// LinkedCreditNotes are implicit links, in the order they take up the
	// fallback; ignored unless IncludeImplicit
	LinkedCreditNotes []LinkedCreditNote
	IncludeImplicit   bool
}

// PaymentSummary is the settled and outstanding position of an invoice
type PaymentSummary struct {
	Total    decimal.Decimal `json:"total"`
	Direct   decimal.Decimal `json:"direct"`
	Explicit decimal.Decimal `json:"explicit"`
	Fallback decimal.Decimal `json:"fallback"`
	Paid     decimal.Decimal `json:"paid"`
	Pending  decimal.Decimal `json:"pending"`

	fallbackByNote map[uuid.UUID]decimal.Decimal
}

// ComputePaymentSummary aggregates direct payments, explicit compensations and
// the fallback implicit credit notes. The fallback only fills the gap left by
// the first two; each linked note takes its share in order, up to its own
// unapplied part. Paid never exceeds the total and Pending is never negative.
func ComputePaymentSummary(in PaymentInputs) PaymentSummary {
	direct := decimal.Zero
	for _, amount := range in.DirectPayments {
		direct = direct.Add(amount)
	}

	explicit := decimal.Zero
	explicitNotes := make(map[uuid.UUID]struct{}, len(in.Applications))
	for _, app := range in.Applications {
		explicit = explicit.Add(app.Amount)
		explicitNotes[app.CreditNoteID] = struct{}{}
	}

	fallback := decimal.Zero
	var byNote map[uuid.UUID]decimal.Decimal
	if in.IncludeImplicit {
		byNote = make(map[uuid.UUID]decimal.Decimal, len(in.LinkedCreditNotes))
		capacity := decimal.Max(decimal.Zero, in.Total.Sub(direct).Sub(explicit))
		for _, note := range in.LinkedCreditNotes {
			if !capacity.IsPositive() {
				break
			}
			if !note.Status.IsSettlementSource() {
				continue
			}
			if _, ok := explicitNotes[note.ID]; ok {
				continue
			}
			available := note.Total.Sub(note.Applied)
			if !available.IsPositive() {
				continue
			}
			share := decimal.Min(available, capacity)
			byNote[note.ID] = share
			fallback = fallback.Add(share)
			capacity = capacity.Sub(share)
		}
	}

	paid := decimal.Min(direct.Add(explicit).Add(fallback), in.Total)
	return PaymentSummary{
		Total:          in.Total,
		Direct:         direct,
		Explicit:       explicit,
		Fallback:       fallback,
		Paid:           paid,
		Pending:        in.Total.Sub(paid),
		fallbackByNote: byNote,
	}
}

// Overpayment is how far direct payments and explicit compensations go past
// the total. Paid and Pending are capped and never show it.
func (s PaymentSummary) Overpayment() decimal.Decimal {
	return decimal.Max(decimal.Zero, s.Direct.Add(s.Explicit).Sub(s.Total))
}

// FallbackOf is the share of the fallback backed by one linked credit note
func (s PaymentSummary) FallbackOf(noteID uuid.UUID) decimal.Decimal {
	if share, ok := s.fallbackByNote[noteID]; ok {
		return share
	}
	return decimal.Zero
}

// DeriveStatus maps the summary onto an invoice status. Nothing paid leaves
// the current status as is.
func (s PaymentSummary) DeriveStatus(current InvoiceStatus) InvoiceStatus {
	switch {
	case !s.Paid.IsPositive():
		return current
	case s.Pending.LessThanOrEqual(decimal.Zero):
		return InvoiceStatusPaid
	default:
		return InvoiceStatusPartialPaid
	}
}

// IsSettled reports whether nothing remains to be paid
func (s PaymentSummary) IsSettled() bool {
	return s.Pending.LessThanOrEqual(decimal.Zero)
}
