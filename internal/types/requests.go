package types

import (
	"github.com/andcook/andcook/backend/internal/models"
)

// CreateRecipeRequest represents the request body for creating a recipe
type CreateRecipeRequest struct {
	Title        string               `json:"title" binding:"required,max=255"`
	Description  string               `json:"description" binding:"required"`
	Ingredients  []models.Ingredient  `json:"ingredients" binding:"omitempty,dive"`
	Instructions []models.Instruction `json:"instructions" binding:"omitempty,dive"`
	CookingTime  int                  `json:"cookingTime" binding:"required,gt=0"`
	Servings     int                  `json:"servings" binding:"required,gt=0"`
	Difficulty   models.Difficulty    `json:"difficulty" binding:"omitempty,oneof=Easy Medium Hard"`
	MainImage    string               `json:"mainImage" binding:"required"`
	Images       []string             `json:"images"`
	Categories   []string             `json:"categories"`
}

// UpdateRecipeRequest carries only the fields being changed.
type UpdateRecipeRequest struct {
	Title        *string              `json:"title" binding:"omitempty,min=1,max=255"`
	Description  *string              `json:"description" binding:"omitempty,min=1"`
	Ingredients  []models.Ingredient  `json:"ingredients" binding:"omitempty,dive"`
	Instructions []models.Instruction `json:"instructions" binding:"omitempty,dive"`
	CookingTime  *int                 `json:"cookingTime" binding:"omitempty,gt=0"`
	Servings     *int                 `json:"servings" binding:"omitempty,gt=0"`
	Difficulty   *models.Difficulty   `json:"difficulty" binding:"omitempty,oneof=Easy Medium Hard"`
	MainImage    *string              `json:"mainImage" binding:"omitempty,min=1"`
	Images       []string             `json:"images"`
	Categories   []string             `json:"categories"`
}

// RateRecipeRequest is validated by the rating service so that a missing
// rating and an out-of-range one produce the same message.
type RateRecipeRequest struct {
	Rating  *int   `json:"rating"`
	Comment string `json:"comment"`
}

type ToggleFavoriteRequest struct {
	RecipeID string `json:"recipeId"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Bio   string `json:"bio"`
	Image string `json:"image"`
}

type SetRoleRequest struct {
	Role models.Role `json:"role" binding:"required,oneof=user admin"`
}
