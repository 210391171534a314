package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andcook/andcook/backend/internal/middleware"
	"github.com/andcook/andcook/backend/internal/service"
	"github.com/andcook/andcook/backend/internal/types"
)

type FavoriteHandler struct {
	favorites service.IFavoriteService
}

func NewFavoriteHandler(favorites service.IFavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

func (h *FavoriteHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	favorites := router.Group("/users/favorites")
	favorites.Use(auth)
	{
		favorites.POST("", h.ToggleFavorite)
		favorites.GET("", h.ListFavorites)
		favorites.GET("/check", h.CheckFavorite)
	}
}

// ToggleFavorite adds the recipe to the caller's favorites, or removes it if
// already there.
func (h *FavoriteHandler) ToggleFavorite(c *gin.Context) {
	var req types.ToggleFavoriteRequest
	if !bindJSON(c, &req, true) {
		return
	}

	isFavorite, err := h.favorites.ToggleFavorite(c.Request.Context(), middleware.GetPrincipal(c), req.RecipeID)
	if err != nil {
		respondError(c, err)
		return
	}

	msg := "Recipe removed from favorites"
	if isFavorite {
		msg = "Recipe added to favorites"
	}
	c.JSON(http.StatusOK, gin.H{"isFavorite": isFavorite, "message": msg})
}

func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	recipes, err := h.favorites.ListFavorites(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": recipes})
}

func (h *FavoriteHandler) CheckFavorite(c *gin.Context) {
	isFavorite, err := h.favorites.IsFavorite(c.Request.Context(), middleware.GetPrincipal(c), c.Query("recipeId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isFavorite": isFavorite})
}
