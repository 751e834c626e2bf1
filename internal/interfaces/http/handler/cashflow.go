package handler

import (
	cashflowapp "github.com/erp/treasury/internal/application/cashflow"
	"github.com/erp/treasury/internal/domain/cashflow"
	"github.com/gin-gonic/gin"
)

// CashflowHandler handles cashflow projection endpoints
type CashflowHandler struct {
	BaseHandler
	service *cashflowapp.ProjectionService
}

// NewCashflowHandler creates a new CashflowHandler
func NewCashflowHandler(service *cashflowapp.ProjectionService) *CashflowHandler {
	return &CashflowHandler{service: service}
}

// CreateProjection godoc
// @ID           createCashflowProjection
//
//	@Summary		Create cashflow projection
//	@Tags			cashflow
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateProjectionRequest	true	"Projection"
//	@Success		201		{object}	dto.Response{data=ProjectionResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/cashflow-projections [post]
func (h *CashflowHandler) CreateProjection(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var req CreateProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	projection, err := h.service.CreateProjection(c.Request.Context(), cashflowapp.CreateProjectionRequest{
		TenantID:    tenantID,
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
		DueDate:     req.DueDate,
		Amount:      req.Amount,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toProjectionResponse(projection))
}

// GetProjection godoc
// @ID           getCashflowProjection
//
//	@Summary		Get cashflow projection
//	@Tags			cashflow
//	@Produce		json
//	@Param			id	path		string	true	"Projection ID"	format(uuid)
//	@Success		200	{object}	dto.Response{data=ProjectionResponse}
//	@Failure		404	{object}	dto.Response
//	@Router			/cashflow-projections/{id} [get]
func (h *CashflowHandler) GetProjection(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	projectionID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	projection, err := h.service.GetProjection(c.Request.Context(), tenantID, projectionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toProjectionResponse(projection))
}

// LinkDocument godoc
// @ID           linkCashflowProjectionDocument
//
//	@Summary		Link document to projection
//	@Description	Attach part of an invoice or expense to the projection and recompute its confirmed amount and status
//	@Tags			cashflow
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Projection ID"	format(uuid)
//	@Param			request	body		LinkDocumentRequest	true	"Link"
//	@Success		201		{object}	dto.Response{data=LinkDocumentResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Failure		422		{object}	dto.Response
//	@Router			/cashflow-projections/{id}/links [post]
func (h *CashflowHandler) LinkDocument(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	projectionID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	var req LinkDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.service.LinkDocument(c.Request.Context(), cashflowapp.LinkDocumentRequest{
		TenantID:     tenantID,
		ProjectionID: projectionID,
		Document:     cashflow.DocumentRef{Kind: req.DocumentKind, ID: req.DocumentID},
		Amount:       req.Amount,
		Notes:        req.Notes,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, LinkDocumentResponse{
		Link:       toProjectionLinkResponse(result.Link),
		Projection: toProjectionResponse(result.Projection),
	})
}

// UnlinkDocument godoc
// @ID           unlinkCashflowProjectionDocument
//
//	@Summary		Remove projection link
//	@Description	Delete a document link and return the recomputed projection
//	@Tags			cashflow
//	@Produce		json
//	@Param			id	path		string	true	"Link ID"	format(uuid)
//	@Success		200	{object}	dto.Response{data=ProjectionResponse}
//	@Failure		404	{object}	dto.Response
//	@Router			/cashflow-projection-links/{id} [delete]
func (h *CashflowHandler) UnlinkDocument(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	linkID, ok := h.idOrAbort(c, "id")
	if !ok {
		return
	}

	projection, err := h.service.UnlinkDocument(c.Request.Context(), tenantID, linkID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toProjectionResponse(projection))
}
