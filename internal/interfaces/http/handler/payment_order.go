package handler

import (
	treasuryapp "github.com/erp/treasury/internal/application/treasury"
	"github.com/erp/treasury/internal/domain/shared/valueobject"
	"github.com/erp/treasury/internal/domain/treasury"
	"github.com/gin-gonic/gin"
)

// PaymentOrderHandler handles payment order endpoints
type PaymentOrderHandler struct {
	BaseHandler
	service *treasuryapp.PaymentOrderService
}

// NewPaymentOrderHandler creates a new PaymentOrderHandler
func NewPaymentOrderHandler(service *treasuryapp.PaymentOrderService) *PaymentOrderHandler {
	return &PaymentOrderHandler{service: service}
}

// Create godoc
// @ID           createPaymentOrder
//
//	@Summary		Create payment order
//	@Description	Create a DRAFT payment order. Targets and payment sources are checked but nothing moves until confirmation.
//	@Tags			payment-orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreatePaymentOrderRequest	true	"Payment order"
//	@Success		201		{object}	dto.Response{data=PaymentOrderResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		422		{object}	dto.Response
//	@Router			/payment-orders [post]
func (h *PaymentOrderHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var req CreatePaymentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	serviceReq := treasuryapp.CreatePaymentOrderRequest{
		TenantID:   tenantID,
		SupplierID: req.SupplierID,
		Notes:      req.Notes,
	}
	if req.Date != nil {
		serviceReq.Date = *req.Date
	}
	for _, item := range req.Items {
		serviceReq.Items = append(serviceReq.Items, treasury.PaymentOrderItem{
			InvoiceID: item.InvoiceID,
			ExpenseID: item.ExpenseID,
			Amount:    item.Amount,
		})
	}
	for _, p := range req.Payments {
		serviceReq.Payments = append(serviceReq.Payments, treasury.PaymentOrderPayment{
			Method:         p.Method,
			Amount:         p.Amount,
			CashRegisterID: p.CashRegisterID,
			BankAccountID:  p.BankAccountID,
			CheckNumber:    p.CheckNumber,
			CheckDueDate:   p.CheckDueDate,
			CardLast4:      p.CardLast4,
		})
	}
	for _, w := range req.Withholdings {
		serviceReq.Withholdings = append(serviceReq.Withholdings, treasury.PaymentOrderWithholding{
			Type:   w.Type,
			Amount: w.Amount,
		})
	}

	order, err := h.service.CreatePaymentOrder(c.Request.Context(), serviceReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toPaymentOrderResponse(order))
}

// Get godoc
// @ID           getPaymentOrder
//
//	@Summary		Get payment order
//	@Tags			payment-orders
//	@Produce		json
//	@Param			id	path		string	true	"Payment order ID"	format(uuid)
//	@Success		200	{object}	dto.Response{data=PaymentOrderResponse}
//	@Failure		404	{object}	dto.Response
//	@Router			/payment-orders/{id} [get]
func (h *PaymentOrderHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	orderID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	order, err := h.service.GetPaymentOrder(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toPaymentOrderResponse(order))
}

// Confirm godoc
// @ID           confirmPaymentOrder
//
//	@Summary		Confirm payment order
//	@Description	Settle the order's documents, move cash and bank balances and issue checks and certificates, all or nothing.
//	@Tags			payment-orders
//	@Produce		json
//	@Param			id	path		string	true	"Payment order ID"	format(uuid)
//	@Success		200	{object}	dto.Response{data=PaymentOrderResponse}
//	@Failure		404	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		422	{object}	dto.Response
//	@Router			/payment-orders/{id}/confirm [post]
func (h *PaymentOrderHandler) Confirm(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	orderID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	order, err := h.service.ConfirmPaymentOrder(c.Request.Context(), tenantID, orderID, getUserID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toPaymentOrderResponse(order))
}

// Delete godoc
// @ID           deletePaymentOrder
//
//	@Summary		Delete draft payment order
//	@Tags			payment-orders
//	@Param			id	path	string	true	"Payment order ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	dto.Response
//	@Failure		422	{object}	dto.Response
//	@Router			/payment-orders/{id} [delete]
func (h *PaymentOrderHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	orderID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeletePaymentOrder(c.Request.Context(), tenantID, orderID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// GenerateInstallments godoc
// @ID           generatePaymentOrderInstallments
//
//	@Summary		Preview an installment plan
//	@Description	Split an amount into dated installments that add up to it exactly. With vat_rate the amount is a net and VAT is added first.
//	@Tags			payment-orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		GenerateInstallmentsRequest	true	"Plan parameters"
//	@Success		200		{object}	dto.Response{data=InstallmentPlanResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/payment-orders/installments [post]
func (h *PaymentOrderHandler) GenerateInstallments(c *gin.Context) {
	var req GenerateInstallmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp := InstallmentPlanResponse{}
	total := req.Total
	if req.VATRate != nil {
		line := valueobject.ComputeVATLine(req.Total, *req.VATRate)
		resp.VAT = &line
		total = line.Total
	}
	interval := req.IntervalDays
	if interval == 0 {
		interval = 30
	}

	installments, err := h.service.GenerateInstallments(total, req.Count, req.FirstDueDate, interval)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	resp.Installments = installments

	h.Success(c, resp)
}
