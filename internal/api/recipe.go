package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/andcook/andcook/backend/internal/apperror"
	"github.com/andcook/andcook/backend/internal/middleware"
	"github.com/andcook/andcook/backend/internal/service"
	"github.com/andcook/andcook/backend/internal/types"
)

type RecipeHandler struct {
	recipes service.IRecipeService
	ratings service.IRatingService
}

func NewRecipeHandler(recipes service.IRecipeService, ratings service.IRatingService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, ratings: ratings}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc, limits Limiters) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:slug", h.GetRecipe)
		recipes.GET("/:slug/ratings", h.ListRatings)
		recipes.GET("/by-id/:id", h.GetRecipeByID)
		recipes.PUT("/by-id/:id", auth, h.UpdateRecipeByID)
		recipes.POST("", auth, limit(limits.RecipeCreate, "recipe_create"), h.CreateRecipe)
		recipes.PUT("/:slug", auth, h.UpdateRecipe)
		recipes.DELETE("/:slug", auth, h.DeleteRecipe)
		recipes.POST("/:slug/rate", auth, limit(limits.Rating, "rating"), h.RateRecipe)
		recipes.DELETE("/:slug/rate", auth, h.DeleteRating)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var q types.RecipeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, apperror.New(apperror.ErrValidation, "Invalid query parameters"))
		return
	}
	q.Categories = splitList(q.Categories)

	list, err := h.recipes.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipes.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) GetRecipeByID(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	recipe, err := h.recipes.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if !bindJSON(c, &req, false) {
		return
	}
	req.Categories = splitList(req.Categories)

	recipe, err := h.recipes.Create(c.Request.Context(), middleware.GetPrincipal(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	var req types.UpdateRecipeRequest
	if !bindJSON(c, &req, false) {
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), c.Param("slug"), middleware.GetPrincipal(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// UpdateRecipeByID is UpdateRecipe for callers holding the recipe id.
func (h *RecipeHandler) UpdateRecipeByID(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	var req types.UpdateRecipeRequest
	if !bindJSON(c, &req, false) {
		return
	}

	recipe, err := h.recipes.UpdateByID(c.Request.Context(), id, middleware.GetPrincipal(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	if err := h.recipes.Delete(c.Request.Context(), c.Param("slug"), middleware.GetPrincipal(c)); err != nil {
		respondError(c, err)
		return
	}
	message(c, http.StatusOK, "Recipe deleted successfully")
}

// RateRecipe creates or replaces the caller's rating.
func (h *RecipeHandler) RateRecipe(c *gin.Context) {
	var req types.RateRecipeRequest
	if !bindJSON(c, &req, true) {
		return
	}

	res, err := h.ratings.SubmitRating(c.Request.Context(), c.Param("slug"), middleware.GetPrincipal(c), req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Rating submitted successfully",
		"averageRating": res.AverageRating,
		"ratingCount":   res.RatingCount,
	})
}

// ListRatings returns the recipe's ratings in the order their positions are
// numbered for DELETE ?index=.
func (h *RecipeHandler) ListRatings(c *gin.Context) {
	ratings, err := h.ratings.ListRatings(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratings": ratings})
}

// DeleteRating removes the caller's rating, or with ?index= the rating at that
// position.
func (h *RecipeHandler) DeleteRating(c *gin.Context) {
	var index *int
	if raw := c.Query("index"); raw != "" {
		i, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperror.New(apperror.ErrValidation, "Invalid rating index"))
			return
		}
		index = &i
	}

	res, err := h.ratings.DeleteRating(c.Request.Context(), c.Param("slug"), middleware.GetPrincipal(c), index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Rating deleted successfully",
		"averageRating": res.AverageRating,
		"ratingCount":   res.RatingCount,
	})
}

func recipeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperror.New(apperror.ErrValidation, "Invalid recipe ID"))
		return uuid.Nil, false
	}
	return id, true
}

// splitList accepts both repeated parameters and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
