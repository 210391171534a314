package types

import (
	"github.com/andcook/andcook/backend/internal/models"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// RecipeQuery filters the recipe listing. Categories match by id or slug.
type RecipeQuery struct {
	Categories []string `form:"categories"`
	Search     string   `form:"search"`
	Page       int      `form:"page"`
	Limit      int      `form:"limit"`
}

// Normalize applies paging defaults and bounds.
func (q *RecipeQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

type RecipeList struct {
	Recipes    []models.Recipe `json:"recipes"`
	Pagination Pagination      `json:"pagination"`
}

// RatingResult is the aggregate returned after a rating write.
type RatingResult struct {
	AverageRating float64 `json:"averageRating"`
	RatingCount   int     `json:"ratingCount"`
}
