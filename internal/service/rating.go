package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andcook/andcook/backend/internal/apperror"
	"github.com/andcook/andcook/backend/internal/cache"
	"github.com/andcook/andcook/backend/internal/logging"
	"github.com/andcook/andcook/backend/internal/metrics"
	"github.com/andcook/andcook/backend/internal/models"
	"github.com/andcook/andcook/backend/internal/types"
)

const (
	MinRating = 1
	MaxRating = 5
)

// RatingService writes ratings and keeps recipes.average_rating and
// recipes.rating_count equal to the aggregate of recipe_ratings.
//
// Every write runs in one transaction that locks the recipe row, changes
// recipe_ratings with a set-based statement, and recomputes the aggregate in
// SQL. Concurrent raters of one recipe serialise on the lock.
type RatingService struct {
	db       *gorm.DB
	identity *IdentityService
	guard    *AccessGuard
	cache    cache.RecipeCache
	now      func() time.Time
}

func NewRatingService(db *gorm.DB, identity *IdentityService, guard *AccessGuard, recipeCache cache.RecipeCache) *RatingService {
	return &RatingService{
		db:       db,
		identity: identity,
		guard:    guard,
		cache:    recipeCache,
		now:      time.Now,
	}
}

// SubmitRating records the caller's rating of the recipe, replacing their
// previous one if any, and returns the new aggregate.
func (s *RatingService) SubmitRating(ctx context.Context, slug string, p *types.Principal, rating *int, comment string) (*types.RatingResult, error) {
	if rating == nil || *rating < MinRating || *rating > MaxRating {
		return nil, apperror.New(apperror.ErrValidation, "Rating must be between 1 and 5")
	}

	user, err := s.identity.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}

	var result *types.RatingResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := lockRecipe(tx, slug)
		if err != nil {
			return err
		}

		// The recipe lock serialises writers, so MAX(seq)+1 is free. An edit
		// keeps its original seq because seq is not in DoUpdates.
		var seq int64
		err = tx.Model(&models.RecipeRating{}).
			Where("recipe_id = ?", recipe.ID).
			Select("COALESCE(MAX(seq), 0) + 1").
			Scan(&seq).Error
		if err != nil {
			return fmt.Errorf("next rating seq: %w", err)
		}

		entry := models.RecipeRating{
			RecipeID:  recipe.ID,
			UserID:    user.ID,
			Seq:       seq,
			UserName:  user.Name,
			UserImage: user.Image,
			Rating:    *rating,
			Comment:   comment,
			RatedAt:   s.now().UTC(),
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipe_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "user_name", "user_image", "rated_at", "updated_at"}),
		}).Create(&entry).Error
		if err != nil {
			return fmt.Errorf("upsert rating: %w", err)
		}

		result, err = recomputeAggregate(tx, recipe.ID, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(withoutCancel(ctx), slug)
	metrics.RatingWrites.WithLabelValues("submit").Inc()
	logging.Ctx(ctx).Info().
		Str("recipe", slug).
		Str("user_id", user.ID.String()).
		Int("rating", *rating).
		Float64("average", result.AverageRating).
		Msg("rating submitted")
	return result, nil
}

// DeleteRating removes a rating. With index nil the caller's own rating is
// removed, matched by user id. With an index the rating at that position
// (submission order) is removed; only admins may remove someone else's.
func (s *RatingService) DeleteRating(ctx context.Context, slug string, p *types.Principal, index *int) (*types.RatingResult, error) {
	user, err := s.identity.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	isAdmin := s.guard.IsAdmin(user)

	var result *types.RatingResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := lockRecipe(tx, slug)
		if err != nil {
			return err
		}

		target, err := findRating(tx, recipe.ID, user.ID, index)
		if err != nil {
			return err
		}
		if target.UserID != user.ID && !isAdmin {
			return apperror.New(apperror.ErrForbidden, "You can only delete your own rating")
		}

		if err := tx.Where("id = ?", target.ID).Delete(&models.RecipeRating{}).Error; err != nil {
			return fmt.Errorf("delete rating: %w", err)
		}

		result, err = recomputeAggregate(tx, recipe.ID, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(withoutCancel(ctx), slug)
	metrics.RatingWrites.WithLabelValues("delete").Inc()
	logging.Ctx(ctx).Info().
		Str("recipe", slug).
		Str("user_id", user.ID.String()).
		Bool("admin", isAdmin).
		Float64("average", result.AverageRating).
		Msg("rating deleted")
	return result, nil
}

// ListRatings returns the recipe's ratings in submission order.
func (s *RatingService) ListRatings(ctx context.Context, slug string) ([]models.RecipeRating, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Select("id").Where("slug = ?", slug).Take(&recipe).Error; err != nil {
		return nil, notFound(err, "load recipe", "Recipe not found")
	}

	ratings := []models.RecipeRating{}
	if err := orderRatings(s.db.WithContext(ctx)).Where("recipe_id = ?", recipe.ID).Find(&ratings).Error; err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, nil
}

func findRating(tx *gorm.DB, recipeID, userID uuid.UUID, index *int) (*models.RecipeRating, error) {
	var target models.RecipeRating
	var err error
	if index == nil {
		err = tx.Where("recipe_id = ? AND user_id = ?", recipeID, userID).Take(&target).Error
	} else {
		if *index < 0 {
			return nil, apperror.New(apperror.ErrNotFound, "Rating not found")
		}
		err = orderRatings(tx.Where("recipe_id = ?", recipeID)).Offset(*index).Take(&target).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.New(apperror.ErrNotFound, "Rating not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find rating: %w", err)
	}
	return &target, nil
}

// recomputeAggregate sets average_rating and rating_count from
// recipe_ratings. The average of no ratings is 0.
func recomputeAggregate(tx *gorm.DB, recipeID uuid.UUID, now time.Time) (*types.RatingResult, error) {
	err := tx.Exec(`
		UPDATE recipes SET
			average_rating = (SELECT COALESCE(AVG(rating), 0) FROM recipe_ratings WHERE recipe_id = ?),
			rating_count = (SELECT COUNT(*) FROM recipe_ratings WHERE recipe_id = ?),
			updated_at = ?
		WHERE id = ?`,
		recipeID, recipeID, now.UTC(), recipeID,
	).Error
	if err != nil {
		return nil, fmt.Errorf("recompute average rating: %w", err)
	}

	var agg types.RatingResult
	err = tx.Model(&models.Recipe{}).
		Select("average_rating", "rating_count").
		Where("id = ?", recipeID).
		Limit(1).
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("read average rating: %w", err)
	}
	return &agg, nil
}
