package handler

import (
	"net/http"

	"motoboy/internal/middleware"
	"motoboy/internal/model"
	"motoboy/internal/repository"
	"motoboy/internal/service"
	"motoboy/pkg/pagination"
	"motoboy/pkg/response"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	service service.WebhookService
	auth    *middleware.Auth
}

func NewWebhookHandler(svc service.WebhookService, auth *middleware.Auth) *WebhookHandler {
	return &WebhookHandler{service: svc, auth: auth}
}

func (h *WebhookHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/webhooks")
	group.Use(h.auth.RequireRole(model.RoleAdmin))
	{
		group.GET("", h.List)
		group.GET("/logs", h.Logs)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.PUT("/:id", h.Update)
		group.DELETE("/:id", h.Delete)
		group.POST("/:id/test", h.Test)
	}
}

// List godoc
// @Summary      List webhook endpoints
// @Tags         webhooks
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.WebhookConfigResponse}
// @Router       /api/webhooks [get]
func (h *WebhookHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// @Summary      Get a webhook endpoint
// @Tags         webhooks
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Webhook ID"
// @Success      200  {object}  response.Response{data=service.WebhookConfigResponse}
// @Router       /api/webhooks/{id} [get]
func (h *WebhookHandler) Get(c *gin.Context) {
	res, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// @Summary      Create a webhook endpoint
// @Description  tipo is aprovacao or geral. Timeout defaults to 30000 ms and retries to 3.
// @Tags         webhooks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.WebhookConfigRequest  true  "Endpoint"
// @Success      201      {object}  response.Response{data=service.WebhookConfigResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/webhooks [post]
func (h *WebhookHandler) Create(c *gin.Context) {
	var req service.WebhookConfigRequest
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

// @Summary      Update a webhook endpoint
// @Tags         webhooks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Webhook ID"
// @Param        payload  body      service.WebhookConfigRequest  true  "Endpoint"
// @Success      200      {object}  response.Response{data=service.WebhookConfigResponse}
// @Router       /api/webhooks/{id} [put]
func (h *WebhookHandler) Update(c *gin.Context) {
	var req service.WebhookConfigRequest
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

// @Summary      Delete a webhook endpoint
// @Tags         webhooks
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Webhook ID"
// @Success      200  {object}  response.Response
// @Router       /api/webhooks/{id} [delete]
func (h *WebhookHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Webhook deleted"}))
}

// Test godoc
// @Summary      Send a test message through an endpoint
// @Tags         webhooks
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Webhook ID"
// @Success      200  {object}  response.Response{data=service.WebhookTestResult}
// @Failure      502  {object}  response.Response
// @Router       /api/webhooks/{id}/test [post]
func (h *WebhookHandler) Test(c *gin.Context) {
	res, err := h.service.Test(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Logs godoc
// @Summary      List webhook call logs
// @Tags         webhooks
// @Security     BearerAuth
// @Produce      json
// @Param        solicitacaoId  query     string  false  "Related request"
// @Param        tipo           query     string  false  "aprovacao or geral"
// @Param        page           query     int     false  "Page number (default 1)"
// @Param        limit          query     int     false  "Items per page (default 20)"
// @Success      200            {object}  response.Response{data=object}
// @Router       /api/webhooks/logs [get]
func (h *WebhookHandler) Logs(c *gin.Context) {
	p := pagination.Parse(c)
	logs, total, err := h.service.Logs(c.Request.Context(), repository.WebhookLogFilter{
		SolicitacaoID: c.Query("solicitacaoId"),
		Tipo:          c.Query("tipo"),
		Page:          p.Page,
		Limit:         p.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, p.Result("logs", logs, total)))
}
