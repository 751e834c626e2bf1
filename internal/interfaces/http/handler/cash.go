package handler

import (
	treasuryapp "github.com/erp/treasury/internal/application/treasury"
	"github.com/gin-gonic/gin"
)

// CashHandler handles cash register, session and movement endpoints
type CashHandler struct {
	BaseHandler
	service *treasuryapp.CashService
}

// NewCashHandler creates a new CashHandler
func NewCashHandler(service *treasuryapp.CashService) *CashHandler {
	return &CashHandler{service: service}
}

// CreateRegister godoc
// @ID           createCashRegister
//
//	@Summary		Create cash register
//	@Tags			cash
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateCashRegisterRequest	true	"Register"
//	@Success		201		{object}	dto.Response{data=CashRegisterResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/cash-registers [post]
func (h *CashHandler) CreateRegister(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var req CreateCashRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	register, err := h.service.CreateCashRegister(c.Request.Context(), tenantID, req.Name)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toCashRegisterResponse(register))
}

// OpenSession godoc
// @ID           openCashSession
//
//	@Summary		Open cash session
//	@Description	A register holds at most one open session
//	@Tags			cash
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Register ID"	format(uuid)
//	@Param			request	body		OpenCashSessionRequest	true	"Opening"
//	@Success		201		{object}	dto.Response{data=CashSessionResponse}
//	@Failure		409		{object}	dto.Response
//	@Failure		422		{object}	dto.Response
//	@Router			/cash-registers/{id}/sessions [post]
func (h *CashHandler) OpenSession(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	registerID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	var req OpenCashSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	session, err := h.service.OpenCashSession(c.Request.Context(), treasuryapp.OpenCashSessionRequest{
		TenantID:       tenantID,
		RegisterID:     registerID,
		OpeningBalance: req.OpeningBalance,
		Notes:          req.Notes,
		UserID:         getUserID(c),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toCashSessionResponse(session))
}

// CloseSession godoc
// @ID           closeCashSession
//
//	@Summary		Close cash session
//	@Description	Record the counted balance and the difference against the expected balance
//	@Tags			cash
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Session ID"	format(uuid)
//	@Param			request	body		CloseCashSessionRequest	true	"Closing"
//	@Success		200		{object}	dto.Response{data=CashSessionResponse}
//	@Failure		404		{object}	dto.Response
//	@Failure		422		{object}	dto.Response
//	@Router			/cash-sessions/{id}/close [post]
func (h *CashHandler) CloseSession(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	sessionID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	var req CloseCashSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	session, err := h.service.CloseCashSession(c.Request.Context(), treasuryapp.CloseCashSessionRequest{
		TenantID:      tenantID,
		SessionID:     sessionID,
		ActualBalance: req.ActualBalance,
		Notes:         req.Notes,
		UserID:        getUserID(c),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toCashSessionResponse(session))
}

// AddMovement godoc
// @ID           addCashMovement
//
//	@Summary		Add cash movement
//	@Tags			cash
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Session ID"	format(uuid)
//	@Param			request	body		AddCashMovementRequest	true	"Movement"
//	@Success		201		{object}	dto.Response{data=CashMovementResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		422		{object}	dto.Response
//	@Router			/cash-sessions/{id}/movements [post]
func (h *CashHandler) AddMovement(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	sessionID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	var req AddCashMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	movement, err := h.service.AddCashMovement(c.Request.Context(), treasuryapp.AddCashMovementRequest{
		TenantID:    tenantID,
		SessionID:   sessionID,
		Type:        req.Type,
		Direction:   req.Direction,
		Amount:      req.Amount,
		Description: req.Description,
		UserID:      getUserID(c),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toCashMovementResponse(movement))
}

// ListMovements godoc
// @ID           listCashMovements
//
//	@Summary		List session movements
//	@Tags			cash
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"	format(uuid)
//	@Success		200	{object}	dto.Response{data=[]CashMovementResponse}
//	@Router			/cash-sessions/{id}/movements [get]
func (h *CashHandler) ListMovements(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	sessionID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	movements, err := h.service.ListSessionMovements(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	out := make([]CashMovementResponse, len(movements))
	for i := range movements {
		out[i] = toCashMovementResponse(&movements[i])
	}
	h.Success(c, out)
}

// DeleteMovement godoc
// @ID           deleteCashMovement
//
//	@Summary		Delete cash movement
//	@Description	Reverse a manual movement of an open session
//	@Tags			cash
//	@Param			id	path	string	true	"Movement ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	dto.Response
//	@Failure		422	{object}	dto.Response
//	@Router			/cash-movements/{id} [delete]
func (h *CashHandler) DeleteMovement(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	movementID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteCashMovement(c.Request.Context(), tenantID, movementID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
