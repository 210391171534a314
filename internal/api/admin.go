package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andcook/andcook/backend/internal/middleware"
	"github.com/andcook/andcook/backend/internal/service"
	"github.com/andcook/andcook/backend/internal/types"
)

type AdminHandler struct {
	admin service.IAdminService
}

func NewAdminHandler(admin service.IAdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	admin := router.Group("/admin")
	admin.Use(auth)
	{
		admin.GET("/users", h.ListUsers)
		admin.GET("/recipes", h.ListRecipes)
		admin.PUT("/users/:id/role", h.SetRole)
	}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *AdminHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.admin.ListRecipes(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *AdminHandler) SetRole(c *gin.Context) {
	var req types.SetRoleRequest
	if !bindJSON(c, &req, false) {
		return
	}
	user, err := h.admin.SetRole(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
