package handler

import (
	"net/http"

	"motoboy/internal/middleware"
	"motoboy/internal/model"
	"motoboy/internal/service"
	"motoboy/pkg/response"

	"github.com/gin-gonic/gin"
)

type SupervisorHandler struct {
	service service.SupervisorService
	auth    *middleware.Auth
}

func NewSupervisorHandler(svc service.SupervisorService, auth *middleware.Auth) *SupervisorHandler {
	return &SupervisorHandler{service: svc, auth: auth}
}

func (h *SupervisorHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/supervisors")
	group.GET("", h.auth.RequireRole(model.RoleAdmin, model.RoleSupervisor, model.RoleOperator), h.List)
	group.GET("/code/:codigo", h.auth.RequireRole(model.RoleAdmin, model.RoleSupervisor, model.RoleOperator), h.GetByCode)

	admin := group.Group("", h.auth.RequireRole(model.RoleAdmin))
	{
		admin.GET("/:id", h.Get)
		admin.POST("", h.Create)
		admin.PUT("/:id", h.Update)
		admin.DELETE("/:id", h.Delete)
	}
}

// List godoc
// @Summary      List supervisors
// @Description  Active supervisors only unless all=true
// @Tags         supervisors
// @Security     BearerAuth
// @Produce      json
// @Param        all  query     bool  false  "Include inactive"
// @Success      200  {object}  response.Response{data=[]service.SupervisorResponse}
// @Router       /api/supervisors [get]
func (h *SupervisorHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Query("all") == "true")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// @Summary      Get a supervisor by id
// @Tags         supervisors
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Supervisor ID"
// @Success      200  {object}  response.Response{data=service.SupervisorResponse}
// @Router       /api/supervisors/{id} [get]
func (h *SupervisorHandler) Get(c *gin.Context) {
	res, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// @Summary      Get a supervisor by code
// @Tags         supervisors
// @Security     BearerAuth
// @Produce      json
// @Param        codigo  path      string  true  "Supervisor code"
// @Success      200     {object}  response.Response{data=service.SupervisorResponse}
// @Router       /api/supervisors/code/{codigo} [get]
func (h *SupervisorHandler) GetByCode(c *gin.Context) {
	res, err := h.service.GetByCode(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// @Summary      Create a supervisor
// @Tags         supervisors
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SupervisorRequest  true  "Supervisor"
// @Success      201      {object}  response.Response{data=service.SupervisorResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/supervisors [post]
func (h *SupervisorHandler) Create(c *gin.Context) {
	var req service.SupervisorRequest
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

// @Summary      Update a supervisor
// @Tags         supervisors
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Supervisor ID"
// @Param        payload  body      service.SupervisorRequest  true  "Supervisor"
// @Success      200      {object}  response.Response{data=service.SupervisorResponse}
// @Router       /api/supervisors/{id} [put]
func (h *SupervisorHandler) Update(c *gin.Context) {
	var req service.SupervisorRequest
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

// @Summary      Delete a supervisor
// @Tags         supervisors
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Supervisor ID"
// @Success      200  {object}  response.Response
// @Router       /api/supervisors/{id} [delete]
func (h *SupervisorHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Supervisor deleted"}))
}
