package handler

import (
	treasuryapp "github.com/erp/treasury/internal/application/treasury"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseInvoiceHandler exposes the payment position of purchase invoices
// and explicit credit-note compensation
type PurchaseInvoiceHandler struct {
	BaseHandler
	service *treasuryapp.CreditNoteService
}

// NewPurchaseInvoiceHandler creates a new PurchaseInvoiceHandler
func NewPurchaseInvoiceHandler(service *treasuryapp.CreditNoteService) *PurchaseInvoiceHandler {
	return &PurchaseInvoiceHandler{service: service}
}

// ApplyCreditNoteRequest compensates part of an invoice with a credit note
type ApplyCreditNoteRequest struct {
	CreditNoteID uuid.UUID       `json:"credit_note_id" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"decimal_gt0,decimal_money"`
}

// GetPaymentSummary godoc
// @ID           getPurchaseInvoicePaymentSummary
//
//	@Summary		Invoice payment summary
//	@Description	Direct payments, explicit and fallback credit-note compensation and the pending amount of an invoice
//	@Tags			purchase-invoices
//	@Produce		json
//	@Param			id	path		string	true	"Invoice ID"	format(uuid)
//	@Success		200	{object}	dto.Response{data=treasuryapp.InvoicePaymentView}
//	@Failure		404	{object}	dto.Response
//	@Router			/purchase-invoices/{id}/payment-summary [get]
func (h *PurchaseInvoiceHandler) GetPaymentSummary(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	invoiceID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	view, err := h.service.GetInvoicePaymentSummary(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, view)
}

// ApplyCreditNote godoc
// @ID           applyPurchaseInvoiceCreditNote
//
//	@Summary		Apply credit note
//	@Description	Record an explicit application of a credit note against the invoice
//	@Tags			purchase-invoices
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Invoice ID"	format(uuid)
//	@Param			request	body		ApplyCreditNoteRequest	true	"Application"
//	@Success		201		{object}	dto.Response{data=treasuryapp.ApplyCreditNoteResult}
//	@Failure		400		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Failure		422		{object}	dto.Response
//	@Router			/purchase-invoices/{id}/credit-note-applications [post]
func (h *PurchaseInvoiceHandler) ApplyCreditNote(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	invoiceID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	var req ApplyCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.service.ApplyCreditNote(c.Request.Context(), treasuryapp.ApplyCreditNoteRequest{
		TenantID:     tenantID,
		CreditNoteID: req.CreditNoteID,
		InvoiceID:    invoiceID,
		Amount:       req.Amount,
		UserID:       getUserID(c),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}
