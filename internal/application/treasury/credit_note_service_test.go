package treasury_test

import (
	"testing"

	apptreasury "github.com/erp/treasury/internal/application/treasury"
	"github.com/erp/treasury/internal/domain/purchasing"
	"github.com/erp/treasury/internal/domain/shared"
	"github.com/erp/treasury/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withImplicit(on bool) apptreasury.Options {
	return apptreasury.Options{IncludeImplicitCreditNotes: on}
}

func TestCreditNoteService_ImplicitFallback(t *testing.T) {
	t.Run("linked note counts as paid when enabled", func(t *testing.T) {
		h := newHarness(t)
		svc := h.creditNoteService(withImplicit(true))
		inv := h.invoice("A-0002-00000001", "500")
		h.creditNote("NC-0002-00000001", "300", inv)

		view, err := svc.GetInvoicePaymentSummary(h.ctx, h.tenantID, inv.ID)
		require.NoError(t, err)
		assertMoney(t, "300", view.Summary.Fallback)
		assertMoney(t, "200", view.Summary.Pending)

		report, err := svc.RecomputeInvoiceStatuses(h.ctx, h.tenantID)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Checked)
		assert.Equal(t, 1, report.Changed)
		assert.Equal(t, purchasing.InvoiceStatusPartialPaid, h.reloadInvoice(inv.ID).Status)

		// paying the rest settles the invoice
		account := h.bankAccount("0220-001", "1000")
		orders := apptreasury.NewPaymentOrderService(h.scope, nil, withImplicit(true), nil, nil)
		order, err := orders.CreatePaymentOrder(h.ctx, apptreasury.CreatePaymentOrderRequest{
			TenantID: h.tenantID,
			Items:    []treasury.PaymentOrderItem{invoiceItem(inv, "200")},
			Payments: []treasury.PaymentOrderPayment{transfer(account, "200")},
		})
		require.NoError(t, err)
		_, err = orders.ConfirmPaymentOrder(h.ctx, h.tenantID, order.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, purchasing.InvoiceStatusPaid, h.reloadInvoice(inv.ID).Status)
	})

	t.Run("linked note is ignored when disabled", func(t *testing.T) {
		h := newHarness(t)
		svc := h.creditNoteService(withImplicit(false))
		inv := h.invoice("A-0002-00000002", "500")
		h.creditNote("NC-0002-00000002", "300", inv)

		view, err := svc.GetInvoicePaymentSummary(h.ctx, h.tenantID, inv.ID)
		require.NoError(t, err)
		assert.True(t, view.Summary.Fallback.IsZero())
		assertMoney(t, "500", view.Summary.Pending)

		report, err := svc.RecomputeInvoiceStatuses(h.ctx, h.tenantID)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Changed)
		assert.Equal(t, purchasing.InvoiceStatusConfirmed, h.reloadInvoice(inv.ID).Status)
	})

	t.Run("fallback is capped at the unpaid part", func(t *testing.T) {
		h := newHarness(t)
		svc := h.creditNoteService(withImplicit(true))
		inv := h.invoice("A-0002-00000003", "200")
		h.creditNote("NC-0002-00000003", "300", inv)

		view, err := svc.GetInvoicePaymentSummary(h.ctx, h.tenantID, inv.ID)
		require.NoError(t, err)
		assertMoney(t, "200", view.Summary.Fallback)
		assert.True(t, view.Summary.Pending.IsZero())
	})
}

func TestCreditNoteService_ApplyCreditNote(t *testing.T) {
	h := newHarness(t)
	svc := h.creditNoteService(withImplicit(true))
	inv := h.invoice("A-0003-00000001", "500")
	note := h.creditNote("NC-0003-00000001", "300", nil)

	result, err := svc.ApplyCreditNote(h.ctx, apptreasury.ApplyCreditNoteRequest{
		TenantID:     h.tenantID,
		CreditNoteID: note.ID,
		InvoiceID:    inv.ID,
		Amount:       dec("250"),
		UserID:       &h.userID,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.ApplicationID)
	assertMoney(t, "250", result.AppliedAmount)
	assert.Equal(t, purchasing.InvoiceStatusPartialPaid, result.InvoiceStatus)
	assertMoney(t, "250", result.Summary.Explicit)
	assertMoney(t, "250", result.Summary.Pending)

	t.Run("remainder of the note is enforced", func(t *testing.T) {
		_, err := svc.ApplyCreditNote(h.ctx, apptreasury.ApplyCreditNoteRequest{
			TenantID:     h.tenantID,
			CreditNoteID: note.ID,
			InvoiceID:    inv.ID,
			Amount:       dec("60"),
		})
		require.ErrorIs(t, err, shared.ErrAmountExceedsAvailable)
	})

	t.Run("pending amount of the invoice is enforced", func(t *testing.T) {
		small := h.invoice("A-0003-00000002", "40")
		_, err := svc.ApplyCreditNote(h.ctx, apptreasury.ApplyCreditNoteRequest{
			TenantID:     h.tenantID,
			CreditNoteID: note.ID,
			InvoiceID:    small.ID,
			Amount:       dec("50"),
		})
		require.ErrorIs(t, err, shared.ErrAmountExceedsAvailable)
		assert.Equal(t, purchasing.InvoiceStatusConfirmed, h.reloadInvoice(small.ID).Status)
	})

	t.Run("only credit notes compensate", func(t *testing.T) {
		other := h.invoice("A-0003-00000003", "100")
		_, err := svc.ApplyCreditNote(h.ctx, apptreasury.ApplyCreditNoteRequest{
			TenantID:     h.tenantID,
			CreditNoteID: other.ID,
			InvoiceID:    inv.ID,
			Amount:       dec("10"),
		})
		require.ErrorIs(t, err, shared.ErrInvalidVoucherState)
	})

	t.Run("the rest of the note settles the invoice", func(t *testing.T) {
		second := h.creditNote("NC-0003-00000002", "250", nil)
		result, err := svc.ApplyCreditNote(h.ctx, apptreasury.ApplyCreditNoteRequest{
			TenantID:     h.tenantID,
			CreditNoteID: second.ID,
			InvoiceID:    inv.ID,
			Amount:       dec("250"),
		})
		require.NoError(t, err)
		assert.Equal(t, purchasing.InvoiceStatusPaid, result.InvoiceStatus)
		assert.True(t, result.Summary.Pending.IsZero())
	})

	t.Run("unknown invoice", func(t *testing.T) {
		_, err := svc.ApplyCreditNote(h.ctx, apptreasury.ApplyCreditNoteRequest{
			TenantID:     h.tenantID,
			CreditNoteID: note.ID,
			InvoiceID:    uuid.New(),
			Amount:       dec("1"),
		})
		require.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCreditNoteService_ExplicitReplacesFallback(t *testing.T) {
	h := newHarness(t)
	svc := h.creditNoteService(withImplicit(true))
	inv := h.invoice("A-0004-00000001", "500")
	note := h.creditNote("NC-0004-00000001", "300", inv)

	// the note's own fallback must not block making it explicit
	result, err := svc.ApplyCreditNote(h.ctx, apptreasury.ApplyCreditNoteRequest{
		TenantID:     h.tenantID,
		CreditNoteID: note.ID,
		InvoiceID:    inv.ID,
		Amount:       dec("300"),
	})
	require.NoError(t, err)
	assertMoney(t, "300", result.Summary.Explicit)
	assert.True(t, result.Summary.Fallback.IsZero())
	assertMoney(t, "200", result.Summary.Pending)
}

func TestCreditNoteService_LinkedNoteIsNotSpentTwice(t *testing.T) {
	t.Run("the part backing the original invoice cannot be applied elsewhere", func(t *testing.T) {
		h := newHarness(t)
		svc := h.creditNoteService(withImplicit(true))
		original := h.invoice("A-0006-00000001", "500")
		note := h.creditNote("NC-0006-00000001", "300", original)
		other := h.invoice("A-0006-00000002", "400")

		_, err := svc.ApplyCreditNote(h.ctx, apptreasury.ApplyCreditNoteRequest{
			TenantID:     h.tenantID,
			CreditNoteID: note.ID,
			InvoiceID:    other.ID,
			Amount:       dec("300"),
		})
		require.ErrorIs(t, err, shared.ErrAmountExceedsAvailable)

		view, err := svc.GetInvoicePaymentSummary(h.ctx, h.tenantID, original.ID)
		require.NoError(t, err)
		assertMoney(t, "300", view.Summary.Fallback)
		view, err = svc.GetInvoicePaymentSummary(h.ctx, h.tenantID, other.ID)
		require.NoError(t, err)
		assert.True(t, view.Summary.Explicit.IsZero())
	})

	t.Run("only what the original invoice does not use is free", func(t *testing.T) {
		h := newHarness(t)
		svc := h.creditNoteService(withImplicit(true))
		original := h.invoice("A-0006-00000003", "200")
		note := h.creditNote("NC-0006-00000002", "300", original)
		other := h.invoice("A-0006-00000004", "400")

		req := apptreasury.ApplyCreditNoteRequest{
			TenantID:     h.tenantID,
			CreditNoteID: note.ID,
			InvoiceID:    other.ID,
			Amount:       dec("100.01"),
		}
		_, err := svc.ApplyCreditNote(h.ctx, req)
		require.ErrorIs(t, err, shared.ErrAmountExceedsAvailable)

		req.Amount = dec("100")
		result, err := svc.ApplyCreditNote(h.ctx, req)
		require.NoError(t, err)
		assertMoney(t, "300", result.Summary.Pending)

		view, err := svc.GetInvoicePaymentSummary(h.ctx, h.tenantID, original.ID)
		require.NoError(t, err)
		assertMoney(t, "200", view.Summary.Fallback)
		assert.True(t, view.Summary.Pending.IsZero())

		// the note is used up: 200 implicit on the original, 100 explicit here
		req.Amount = dec("0.01")
		_, err = svc.ApplyCreditNote(h.ctx, req)
		require.ErrorIs(t, err, shared.ErrAmountExceedsAvailable)
	})

	t.Run("an explicit application elsewhere shrinks the fallback", func(t *testing.T) {
		h := newHarness(t)
		original := h.invoice("A-0006-00000005", "500")
		note := h.creditNote("NC-0006-00000003", "300", original)
		other := h.invoice("A-0006-00000006", "400")

		// applied while the fallback was off, then switched back on
		_, err := h.creditNoteService(withImplicit(false)).ApplyCreditNote(h.ctx, apptreasury.ApplyCreditNoteRequest{
			TenantID:     h.tenantID,
			CreditNoteID: note.ID,
			InvoiceID:    other.ID,
			Amount:       dec("250"),
		})
		require.NoError(t, err)

		svc := h.creditNoteService(withImplicit(true))
		view, err := svc.GetInvoicePaymentSummary(h.ctx, h.tenantID, original.ID)
		require.NoError(t, err)
		assertMoney(t, "50", view.Summary.Fallback)
		assertMoney(t, "450", view.Summary.Pending)
		otherView, err := svc.GetInvoicePaymentSummary(h.ctx, h.tenantID, other.ID)
		require.NoError(t, err)
		assert.True(t, view.Summary.Fallback.Add(otherView.Summary.Explicit).LessThanOrEqual(note.Total),
			"credit note consumed beyond its total")
	})
}

func TestCreditNoteService_BackfillImplicitCreditNotes(t *testing.T) {
	h := newHarness(t)
	svc := h.creditNoteService(withImplicit(true))

	inv := h.invoice("A-0005-00000001", "500")
	note := h.creditNote("NC-0005-00000001", "300", inv)
	capped := h.invoice("A-0005-00000002", "100")
	bigNote := h.creditNote("NC-0005-00000002", "250", capped)
	h.creditNote("NC-0005-00000003", "80", nil)

	t.Run("dry run reports without writing", func(t *testing.T) {
		report, err := svc.BackfillImplicitCreditNotes(h.ctx, h.tenantID, true)
		require.NoError(t, err)
		assert.True(t, report.DryRun)
		assert.Equal(t, 2, report.Applied)
		assert.Equal(t, 0, report.Skipped)

		amounts := map[uuid.UUID]string{}
		for _, item := range report.Items {
			amounts[item.CreditNoteID] = item.Amount.StringFixed(2)
		}
		assert.Equal(t, "300.00", amounts[note.ID])
		assert.Equal(t, "100.00", amounts[bigNote.ID])

		view, err := svc.GetInvoicePaymentSummary(h.ctx, h.tenantID, inv.ID)
		require.NoError(t, err)
		assert.True(t, view.Summary.Explicit.IsZero())
	})

	t.Run("apply makes the links explicit", func(t *testing.T) {
		report, err := svc.BackfillImplicitCreditNotes(h.ctx, h.tenantID, false)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Applied)

		off := h.creditNoteService(withImplicit(false))
		view, err := off.GetInvoicePaymentSummary(h.ctx, h.tenantID, inv.ID)
		require.NoError(t, err)
		assertMoney(t, "300", view.Summary.Explicit)
		assertMoney(t, "200", view.Summary.Pending)
		assert.Equal(t, purchasing.InvoiceStatusPartialPaid, view.Status)

		view, err = off.GetInvoicePaymentSummary(h.ctx, h.tenantID, capped.ID)
		require.NoError(t, err)
		assert.Equal(t, purchasing.InvoiceStatusPaid, view.Status)
	})

	t.Run("second run has nothing to do", func(t *testing.T) {
		report, err := svc.BackfillImplicitCreditNotes(h.ctx, h.tenantID, false)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Applied)
		assert.Empty(t, report.Items)
	})
}
