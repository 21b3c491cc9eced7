package handler

import (
	"net/http"

	"motoboy/internal/middleware"
	"motoboy/internal/model"
	"motoboy/internal/service"
	"motoboy/pkg/pagination"
	"motoboy/pkg/response"

	"github.com/gin-gonic/gin"
)

type SolicitationHandler struct {
	service service.SolicitationService
	auth    *middleware.Auth
}

func NewSolicitationHandler(svc service.SolicitationService, auth *middleware.Auth) *SolicitationHandler {
	return &SolicitationHandler{service: svc, auth: auth}
}

func (h *SolicitationHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyRole := h.auth.RequireRole(model.RoleAdmin, model.RoleSupervisor, model.RoleOperator)
	deciders := h.auth.RequireRole(model.RoleAdmin, model.RoleSupervisor)

	group := router.Group("/solicitations")
	{
		group.GET("", anyRole, h.List)
		group.GET("/:id", anyRole, h.Get)
		group.POST("", anyRole, h.Create)
		group.PUT("/:id", anyRole, h.Update)
		group.DELETE("/:id", h.auth.RequireRole(model.RoleAdmin), h.Delete)

		group.POST("/:id/approve", deciders, h.Approve)
		group.POST("/:id/reject", deciders, h.Reject)
		group.POST("/:id/reset", deciders, h.Reset)

		group.POST("/:id/evidence/request", deciders, h.RequestEvidence)
		group.POST("/:id/evidence/recheck", deciders, h.RecheckEvidence)
		group.PUT("/:id/evidence", anyRole, h.AttachEvidence)
		group.PUT("/:id/evidence/status", deciders, h.SetEvidenceStatus)
	}
}

// List godoc
// @Summary      List requests
// @Tags         solicitations
// @Security     BearerAuth
// @Produce      json
// @Param        aprovacaoSup      query  string  false  "pendente, aprovado or rejeitado"
// @Param        aprovacao         query  string  false  "rider-facing state"
// @Param        categoria         query  string  false  "combustivel, pecas or outro"
// @Param        supervisorCodigo  query  string  false  "supervisor code"
// @Param        search            query  string  false  "name, phone or plate"
// @Param        page              query  int     false  "Page number (default 1)"
// @Param        limit             query  int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/solicitations [get]
func (h *SolicitationHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.service.List(c.Request.Context(), service.SolicitationListFilter{
		AprovacaoSup:     c.Query("aprovacaoSup"),
		Aprovacao:        c.Query("aprovacao"),
		Categoria:        c.Query("categoria"),
		SupervisorCodigo: c.Query("supervisorCodigo"),
		Search:           c.Query("search"),
		Page:             p.Page,
		Limit:            p.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, p.Result("items", items, total)))
}

// Get godoc
// @Summary      Get a request
// @Tags         solicitations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.SolicitationResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/solicitations/{id} [get]
func (h *SolicitationHandler) Get(c *gin.Context) {
	res, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Create godoc
// @Summary      Register a request
// @Description  Intake of a fuel advance, parts voucher or other request. Starts pending.
// @Tags         solicitations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateSolicitationRequest  true  "Request"
// @Success      201      {object}  response.Response{data=service.SolicitationResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/solicitations [post]
func (h *SolicitationHandler) Create(c *gin.Context) {
	var req service.CreateSolicitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	res, err := h.service.Create(c.Request.Context(), req, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// Update godoc
// @Summary      Edit a pending request
// @Tags         solicitations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                             true  "Request ID"
// @Param        payload  body      service.UpdateSolicitationRequest  true  "Changed fields"
// @Success      200      {object}  response.Response{data=service.SolicitationResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/solicitations/{id} [put]
func (h *SolicitationHandler) Update(c *gin.Context) {
	var req service.UpdateSolicitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	res, err := h.service.Update(c.Request.Context(), c.Param("id"), req, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Delete godoc
// @Summary      Delete a request and its stored voucher
// @Tags         solicitations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/solicitations/{id} [delete]
func (h *SolicitationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Solicitation deleted"}))
}

// Approve godoc
// @Summary      Approve a pending request
// @Description  Generates and stores the voucher, then notifies the courier. A failed notification is reported as a warning.
// @Tags         solicitations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                true   "Request ID"
// @Param        payload  body      service.ApproveInput  false  "Parts terms or approving supervisor"
// @Success      200      {object}  response.Response{data=service.TransitionResult}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response{data=object}  "photo evidence missing"
// @Failure      502      {object}  response.Response
// @Router       /api/solicitations/{id}/approve [post]
func (h *SolicitationHandler) Approve(c *gin.Context) {
	var in service.ApproveInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			badPayload(c, err)
			return
		}
	}

	res, err := h.service.Approve(c.Request.Context(), c.Param("id"), in, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Reject godoc
// @Summary      Reject a pending request
// @Tags         solicitations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Request ID"
// @Param        payload  body      service.RejectInput  true  "Reason and supervisor"
// @Success      200      {object}  response.Response{data=service.TransitionResult}
// @Failure      400      {object}  response.Response
// @Router       /api/solicitations/{id}/reject [post]
func (h *SolicitationHandler) Reject(c *gin.Context) {
	var in service.RejectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}

	res, err := h.service.Reject(c.Request.Context(), c.Param("id"), in, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Reset godoc
// @Summary      Return a request to pending
// @Description  Clears the voucher URL and deletes the stored document.
// @Tags         solicitations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.SolicitationResponse}
// @Router       /api/solicitations/{id}/reset [post]
func (h *SolicitationHandler) Reset(c *gin.Context) {
	res, err := h.service.Reset(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// RequestEvidence godoc
// @Summary      Ask the courier for a photo of the part
// @Tags         evidence
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.TransitionResult}
// @Router       /api/solicitations/{id}/evidence/request [post]
func (h *SolicitationHandler) RequestEvidence(c *gin.Context) {
	res, err := h.service.RequestEvidence(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// RecheckEvidence godoc
// @Summary      Look again for a received photo
// @Tags         evidence
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.EvidenceResult}
// @Router       /api/solicitations/{id}/evidence/recheck [post]
func (h *SolicitationHandler) RecheckEvidence(c *gin.Context) {
	res, err := h.service.RecheckEvidence(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// AttachEvidence godoc
// @Summary      Attach a photo URL to a request
// @Description  Called by the chat bot once the courier sends the picture.
// @Tags         evidence
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Request ID"
// @Param        payload  body      service.AttachEvidenceInput  true  "Photo URL"
// @Success      200      {object}  response.Response{data=service.SolicitationResponse}
// @Router       /api/solicitations/{id}/evidence [put]
func (h *SolicitationHandler) AttachEvidence(c *gin.Context) {
	var in service.AttachEvidenceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}

	res, err := h.service.AttachEvidence(c.Request.Context(), c.Param("id"), in.URL, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// SetEvidenceStatus godoc
// @Summary      Set the photo status
// @Tags         evidence
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Request ID"
// @Param        payload  body      service.EvidenceStatusInput  true  "pendente, recebida or processada"
// @Success      200      {object}  response.Response{data=service.SolicitationResponse}
// @Router       /api/solicitations/{id}/evidence/status [put]
func (h *SolicitationHandler) SetEvidenceStatus(c *gin.Context) {
	var in service.EvidenceStatusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}

	res, err := h.service.SetEvidenceStatus(c.Request.Context(), c.Param("id"), in.Status, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
