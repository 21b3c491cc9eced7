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

type MotoboyHandler struct {
	service service.MotoboyService
	auth    *middleware.Auth
}

func NewMotoboyHandler(svc service.MotoboyService, auth *middleware.Auth) *MotoboyHandler {
	return &MotoboyHandler{service: svc, auth: auth}
}

func (h *MotoboyHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/motoboys")
	read := h.auth.RequireRole(model.RoleAdmin, model.RoleSupervisor, model.RoleOperator)
	write := h.auth.RequireRole(model.RoleAdmin, model.RoleSupervisor)
	{
		group.GET("", read, h.List)
		group.GET("/:id", read, h.Get)
		group.POST("", write, h.Create)
		group.PUT("/:id", write, h.Update)
		group.DELETE("/:id", h.auth.RequireRole(model.RoleAdmin), h.Delete)
	}
}

// List godoc
// @Summary      List couriers
// @Description  Ordered by name
// @Tags         motoboys
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Name, phone, plate or registration"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Router       /api/motoboys [get]
func (h *MotoboyHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.service.List(c.Request.Context(), c.Query("search"), p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, p.Result("items", items, total)))
}

// @Summary      Get a courier
// @Tags         motoboys
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Courier ID"
// @Success      200  {object}  response.Response{data=service.MotoboyResponse}
// @Router       /api/motoboys/{id} [get]
func (h *MotoboyHandler) Get(c *gin.Context) {
	res, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// @Summary      Register a courier
// @Tags         motoboys
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.MotoboyRequest  true  "Courier"
// @Success      201      {object}  response.Response{data=service.MotoboyResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/motoboys [post]
func (h *MotoboyHandler) Create(c *gin.Context) {
	var req service.MotoboyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	res, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// @Summary      Update a courier
// @Tags         motoboys
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Courier ID"
// @Param        payload  body      service.MotoboyRequest  true  "Courier"
// @Success      200      {object}  response.Response{data=service.MotoboyResponse}
// @Router       /api/motoboys/{id} [put]
func (h *MotoboyHandler) Update(c *gin.Context) {
	var req service.MotoboyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	res, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// @Summary      Delete a courier
// @Tags         motoboys
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Courier ID"
// @Success      200  {object}  response.Response
// @Router       /api/motoboys/{id} [delete]
func (h *MotoboyHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Motoboy deleted"}))
}
