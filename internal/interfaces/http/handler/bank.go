package handler

import (
	"errors"
	"io"

	treasuryapp "github.com/erp/treasury/internal/application/treasury"
	"github.com/gin-gonic/gin"
)

// BankHandler handles bank account and bank movement endpoints
type BankHandler struct {
	BaseHandler
	service *treasuryapp.BankService
}

// NewBankHandler creates a new BankHandler
func NewBankHandler(service *treasuryapp.BankService) *BankHandler {
	return &BankHandler{service: service}
}

// CreateAccount godoc
// @ID           createBankAccount
//
//	@Summary		Open bank account
//	@Tags			bank
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateBankAccountRequest	true	"Account"
//	@Success		201		{object}	dto.Response{data=BankAccountResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		409		{object}	dto.Response
//	@Router			/bank-accounts [post]
func (h *BankHandler) CreateAccount(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var req CreateBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	account, err := h.service.CreateBankAccount(c.Request.Context(), treasuryapp.CreateBankAccountRequest{
		TenantID:       tenantID,
		Name:           req.Name,
		BankName:       req.BankName,
		AccountNumber:  req.AccountNumber,
		OpeningBalance: req.OpeningBalance,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toBankAccountResponse(account))
}

// GetAccount godoc
// @ID           getBankAccount
//
//	@Summary		Get bank account
//	@Tags			bank
//	@Produce		json
//	@Param			id	path		string	true	"Account ID"	format(uuid)
//	@Success		200	{object}	dto.Response{data=BankAccountResponse}
//	@Failure		404	{object}	dto.Response
//	@Router			/bank-accounts/{id} [get]
func (h *BankHandler) GetAccount(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	accountID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	account, err := h.service.GetBankAccount(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toBankAccountResponse(account))
}

// CloseAccount godoc
// @ID           closeBankAccount
//
//	@Summary		Close bank account
//	@Description	Only accounts with a zero balance can be closed
//	@Tags			bank
//	@Produce		json
//	@Param			id	path		string	true	"Account ID"	format(uuid)
//	@Success		200	{object}	dto.Response{data=BankAccountResponse}
//	@Failure		404	{object}	dto.Response
//	@Failure		422	{object}	dto.Response
//	@Router			/bank-accounts/{id}/close [post]
func (h *BankHandler) CloseAccount(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	accountID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	account, err := h.service.CloseBankAccount(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toBankAccountResponse(account))
}

// ActivateAccount godoc
// @ID           activateBankAccount
//
//	@Summary		Activate bank account
//	@Tags			bank
//	@Produce		json
//	@Param			id	path		string	true	"Account ID"	format(uuid)
//	@Success		200	{object}	dto.Response{data=BankAccountResponse}
//	@Router			/bank-accounts/{id}/activate [post]
func (h *BankHandler) ActivateAccount(c *gin.Context) {
	h.setActive(c, true)
}

// DeactivateAccount godoc
// @ID           deactivateBankAccount
//
//	@Summary		Deactivate bank account
//	@Description	Inactive accounts reject new movements
//	@Tags			bank
//	@Produce		json
//	@Param			id	path		string	true	"Account ID"	format(uuid)
//	@Success		200	{object}	dto.Response{data=BankAccountResponse}
//	@Router			/bank-accounts/{id}/deactivate [post]
func (h *BankHandler) DeactivateAccount(c *gin.Context) {
	h.setActive(c, false)
}

func (h *BankHandler) setActive(c *gin.Context, active bool) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	accountID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	account, err := h.service.SetBankAccountActive(c.Request.Context(), tenantID, accountID, active)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toBankAccountResponse(account))
}

// CreateMovement godoc
// @ID           createBankMovement
//
//	@Summary		Record bank movement
//	@Description	Record a movement and update the account balance. Transfers also write the mirror movement on the counterpart account.
//	@Tags			bank
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Account ID"	format(uuid)
//	@Param			request	body		CreateBankMovementRequest	true	"Movement"
//	@Success		201		{object}	dto.Response{data=BankMovementResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		422		{object}	dto.Response
//	@Router			/bank-accounts/{id}/movements [post]
func (h *BankHandler) CreateMovement(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	accountID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	var req CreateBankMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	serviceReq := treasuryapp.CreateBankMovementRequest{
		TenantID:             tenantID,
		BankAccountID:        accountID,
		Type:                 req.Type,
		Amount:               req.Amount,
		Description:          req.Description,
		Reference:            req.Reference,
		CounterpartAccountID: req.CounterpartAccountID,
	}
	if req.Date != nil {
		serviceReq.Date = *req.Date
	}

	movement, err := h.service.CreateBankMovement(c.Request.Context(), serviceReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toBankMovementResponse(movement))
}

// ListMovements godoc
// @ID           listBankMovements
//
//	@Summary		List account movements
//	@Tags			bank
//	@Produce		json
//	@Param			id	path		string	true	"Account ID"	format(uuid)
//	@Success		200	{object}	dto.Response{data=[]BankMovementResponse}
//	@Router			/bank-accounts/{id}/movements [get]
func (h *BankHandler) ListMovements(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	accountID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	movements, err := h.service.ListBankMovements(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toBankMovementResponses(movements))
}

// DeleteMovement godoc
// @ID           deleteBankMovement
//
//	@Summary		Delete bank movement
//	@Description	Reverse the balance effect of an unreconciled movement and remove it. A transfer takes its mirror with it.
//	@Tags			bank
//	@Param			id	path	string	true	"Movement ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Router			/bank-movements/{id} [delete]
func (h *BankHandler) DeleteMovement(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	movementID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteBankMovement(c.Request.Context(), tenantID, movementID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ReconcileMovement godoc
// @ID           reconcileBankMovement
//
//	@Summary		Reconcile bank movement
//	@Tags			bank
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Movement ID"	format(uuid)
//	@Param			request	body		ReconcileMovementRequest	false	"Flag, defaults to true"
//	@Success		200		{object}	dto.Response{data=BankMovementResponse}
//	@Failure		404		{object}	dto.Response
//	@Router			/bank-movements/{id}/reconcile [post]
func (h *BankHandler) ReconcileMovement(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	movementID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	var req ReconcileMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.ValidationError(c, err)
		return
	}

	movement, err := h.service.ReconcileBankMovement(c.Request.Context(), tenantID, movementID, reconcileFlag(req.Reconciled), getUserID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toBankMovementResponse(movement))
}

// ReconcileMovements godoc
// @ID           reconcileBankMovements
//
//	@Summary		Reconcile bank movements in bulk
//	@Description	Flip the flag of every listed movement of the tenant in one statement. Unknown ids are ignored.
//	@Tags			bank
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ReconcileMovementsRequest	true	"Movement ids"
//	@Success		200		{object}	dto.Response{data=ReconcileMovementsResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/bank-movements/reconcile [post]
func (h *BankHandler) ReconcileMovements(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var req ReconcileMovementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	updated, err := h.service.ReconcileBankMovements(c.Request.Context(), tenantID, req.IDs, reconcileFlag(req.Reconciled), getUserID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ReconcileMovementsResponse{Updated: updated})
}
