package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andcook/andcook/backend/internal/apperror"
	"github.com/andcook/andcook/backend/internal/logging"
	"github.com/andcook/andcook/backend/internal/metrics"
	"github.com/andcook/andcook/backend/internal/models"
	"github.com/andcook/andcook/backend/internal/types"
)

// FavoriteService maintains each user's set of favorite recipes.
type FavoriteService struct {
	db       *gorm.DB
	identity *IdentityService
}

func NewFavoriteService(db *gorm.DB, identity *IdentityService) *FavoriteService {
	return &FavoriteService{db: db, identity: identity}
}

// ToggleFavorite flips membership of recipeID in the caller's favorites and
// reports whether the recipe is a favorite afterwards.
func (s *FavoriteService) ToggleFavorite(ctx context.Context, p *types.Principal, recipeID string) (bool, error) {
	id, err := parseRecipeID(recipeID)
	if err != nil {
		return false, err
	}

	user, err := s.identity.Resolve(ctx, p)
	if err != nil {
		return false, err
	}

	var isFavorite bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serialises toggles by the same user.
		var locked models.User
		if err := tx.Clauses(clause.Locking{Strength: "NO KEY UPDATE"}).Select("id").Where("id = ?", user.ID).Take(&locked).Error; err != nil {
			return fmt.Errorf("lock user: %w", err)
		}

		var count int64
		if err := tx.Model(&models.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("check recipe: %w", err)
		}
		if count == 0 {
			return apperror.New(apperror.ErrNotFound, "Recipe not found")
		}

		res := tx.Where("user_id = ? AND recipe_id = ?", user.ID, id).Delete(&models.RecipeFavorite{})
		if res.Error != nil {
			return fmt.Errorf("remove favorite: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			isFavorite = false
			return nil
		}

		fav := models.RecipeFavorite{UserID: user.ID, RecipeID: id}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fav).Error; err != nil {
			return fmt.Errorf("add favorite: %w", err)
		}
		isFavorite = true
		return nil
	})
	if err != nil {
		return false, err
	}

	state := "removed"
	if isFavorite {
		state = "added"
	}
	metrics.FavoriteToggles.WithLabelValues(state).Inc()
	logging.Ctx(ctx).Debug().
		Str("user_id", user.ID.String()).
		Str("recipe_id", id.String()).
		Bool("favorite", isFavorite).
		Msg("favorite toggled")
	return isFavorite, nil
}

// ListFavorites returns the caller's favorite recipes, most recently added
// first.
func (s *FavoriteService) ListFavorites(ctx context.Context, p *types.Principal) ([]models.Recipe, error) {
	user, err := s.identity.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}

	recipes := []models.Recipe{}
	err = s.db.WithContext(ctx).
		Joins("JOIN recipe_favorites ON recipe_favorites.recipe_id = recipes.id").
		Where("recipe_favorites.user_id = ?", user.ID).
		Order("recipe_favorites.created_at DESC").
		Preload("Author").
		Preload("Categories").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return recipes, nil
}

// IsFavorite reports whether recipeID is in the caller's favorites.
func (s *FavoriteService) IsFavorite(ctx context.Context, p *types.Principal, recipeID string) (bool, error) {
	id, err := parseRecipeID(recipeID)
	if err != nil {
		return false, err
	}
	user, err := s.identity.Resolve(ctx, p)
	if err != nil {
		return false, err
	}

	var count int64
	err = s.db.WithContext(ctx).Model(&models.RecipeFavorite{}).
		Where("user_id = ? AND recipe_id = ?", user.ID, id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return count > 0, nil
}

func parseRecipeID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, apperror.New(apperror.ErrValidation, "Recipe ID is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.New(apperror.ErrValidation, "Invalid recipe ID")
	}
	return id, nil
}
