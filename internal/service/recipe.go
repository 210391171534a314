package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andcook/andcook/backend/internal/apperror"
	"github.com/andcook/andcook/backend/internal/cache"
	"github.com/andcook/andcook/backend/internal/logging"
	"github.com/andcook/andcook/backend/internal/models"
	"github.com/andcook/andcook/backend/internal/types"
)

// RecipeService handles recipe operations
type RecipeService struct {
	db       *gorm.DB
	identity *IdentityService
	guard    *AccessGuard
	slugs    *SlugGenerator
	cache    cache.RecipeCache
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, identity *IdentityService, guard *AccessGuard, slugs *SlugGenerator, recipeCache cache.RecipeCache) *RecipeService {
	return &RecipeService{
		db:       db,
		identity: identity,
		guard:    guard,
		slugs:    slugs,
		cache:    recipeCache,
	}
}

// List returns one page of recipes, newest first, filtered by category and
// a case-insensitive search over title and description.
func (s *RecipeService) List(ctx context.Context, q types.RecipeQuery) (*types.RecipeList, error) {
	q.Normalize()

	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if ids, slugs := splitRefs(q.Categories); len(ids) > 0 || len(slugs) > 0 {
		member := s.db.Table("recipe_categories").
			Select("recipe_categories.recipe_id").
			Joins("JOIN categories ON categories.id = recipe_categories.category_id")
		switch {
		case len(ids) > 0 && len(slugs) > 0:
			member = member.Where("categories.id IN ? OR categories.slug IN ?", ids, slugs)
		case len(ids) > 0:
			member = member.Where("categories.id IN ?", ids)
		default:
			member = member.Where("categories.slug IN ?", slugs)
		}
		query = query.Where("recipes.id IN (?)", member)
	}

	if search := strings.TrimSpace(q.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(recipes.title) LIKE ? OR LOWER(recipes.description) LIKE ?", like, like)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count recipes: %w", err)
	}

	recipes := []models.Recipe{}
	err := query.
		Preload("Author").
		Preload("Categories").
		Order("recipes.created_at DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	pages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return &types.RecipeList{
		Recipes: recipes,
		Pagination: types.Pagination{
			Total: total,
			Page:  q.Page,
			Limit: q.Limit,
			Pages: pages,
		},
	}, nil
}

// Create stores a new recipe authored by the caller. A slug taken between
// generation and insert is retried with a fresh suffix.
func (s *RecipeService) Create(ctx context.Context, p *types.Principal, req *types.CreateRecipeRequest) (*models.Recipe, error) {
	user, err := s.identity.ResolveOrCreate(ctx, p)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.New(apperror.ErrValidation, "Title is required")
	}

	slug, err := s.slugs.Generate(ctx, title, uuid.Nil)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		Title:        title,
		Description:  req.Description,
		Ingredients:  models.Ingredients(req.Ingredients),
		Instructions: models.Instructions(req.Instructions),
		CookingTime:  req.CookingTime,
		Servings:     req.Servings,
		Difficulty:   req.Difficulty,
		MainImage:    req.MainImage,
		Images:       models.StringList(req.Images),
		AuthorID:     user.ID,
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = models.Ingredients{}
	}
	if recipe.Instructions == nil {
		recipe.Instructions = models.Instructions{}
	}
	if recipe.Images == nil {
		recipe.Images = models.StringList{}
	}

	for attempt := 1; ; attempt++ {
		recipe.Slug = slug
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			categories, err := resolveCategories(tx, req.Categories)
			if err != nil {
				return err
			}
			recipe.Categories = categories
			return tx.Create(recipe).Error
		})
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt == maxSlugAttempts {
			var appErr *apperror.Error
			if errors.As(err, &appErr) {
				return nil, err
			}
			return nil, fmt.Errorf("create recipe: %w", err)
		}
		logging.Ctx(ctx).Warn().Str("slug", slug).Int("attempt", attempt).Msg("slug taken during insert, retrying")
		slug = s.slugs.Suffixed(Slugify(title))
	}

	recipe.Author = user
	recipe.Ratings = []models.RecipeRating{}
	logging.Ctx(ctx).Info().
		Str("recipe_id", recipe.ID.String()).
		Str("slug", recipe.Slug).
		Str("author_id", user.ID.String()).
		Msg("recipe created")
	return recipe, nil
}

// GetBySlug returns the recipe with its author, categories and ratings,
// reading through the recipe cache.
func (s *RecipeService) GetBySlug(ctx context.Context, slug string) (*models.Recipe, error) {
	if recipe, ok := s.cache.Get(ctx, slug); ok {
		return recipe, nil
	}

	var recipe models.Recipe
	if err := s.detailed(ctx).Where("slug = ?", slug).Take(&recipe).Error; err != nil {
		return nil, notFound(err, "get recipe", "Recipe not found")
	}
	s.cache.Set(ctx, &recipe)
	return &recipe, nil
}

func (s *RecipeService) GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.detailed(ctx).Where("id = ?", id).Take(&recipe).Error; err != nil {
		return nil, notFound(err, "get recipe", "Recipe not found")
	}
	return &recipe, nil
}

// Update changes the fields present in req. Only the author or an admin may
// update; a new title regenerates the slug.
func (s *RecipeService) Update(ctx context.Context, slug string, p *types.Principal, req *types.UpdateRecipeRequest) (*models.Recipe, error) {
	user, err := s.identity.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}

	newSlug := slug
	for attempt := 1; ; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			recipe, err := lockRecipe(tx, slug)
			if err != nil {
				return err
			}
			if !s.guard.CanMutate(user, recipe) {
				return apperror.New(apperror.ErrForbidden, "You are not allowed to modify this recipe")
			}

			updates, err := s.changes(tx, recipe, req, attempt > 1)
			if err != nil {
				return err
			}
			if v, ok := updates["slug"]; ok {
				newSlug = v.(string)
			}
			if len(updates) > 0 {
				if err := tx.Model(recipe).Updates(updates).Error; err != nil {
					return err
				}
			}

			if req.Categories != nil {
				categories, err := resolveCategories(tx, req.Categories)
				if err != nil {
					return err
				}
				if err := tx.Model(recipe).Association("Categories").Replace(categories); err != nil {
					return fmt.Errorf("replace categories: %w", err)
				}
			}
			return nil
		})
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt == maxSlugAttempts {
			var appErr *apperror.Error
			if errors.As(err, &appErr) {
				return nil, err
			}
			return nil, fmt.Errorf("update recipe: %w", err)
		}
	}

	s.cache.Invalidate(withoutCancel(ctx), slug, newSlug)
	logging.Ctx(ctx).Info().
		Str("slug", newSlug).
		Str("user_id", user.ID.String()).
		Msg("recipe updated")
	return s.GetBySlug(ctx, newSlug)
}

// UpdateByID is Update addressed by recipe id, for editors that hold the id
// rather than the current slug.
func (s *RecipeService) UpdateByID(ctx context.Context, id uuid.UUID, p *types.Principal, req *types.UpdateRecipeRequest) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Select("slug").Where("id = ?", id).Take(&recipe).Error; err != nil {
		return nil, notFound(err, "get recipe", "Recipe not found")
	}
	return s.Update(ctx, recipe.Slug, p, req)
}

// changes builds the column map for Update. Aggregates are never included so
// concurrent rating writes are not overwritten.
func (s *RecipeService) changes(tx *gorm.DB, recipe *models.Recipe, req *types.UpdateRecipeRequest, forceSuffix bool) (map[string]interface{}, error) {
	updates := map[string]interface{}{}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperror.New(apperror.ErrValidation, "Title cannot be empty")
		}
		if title != recipe.Title {
			updates["title"] = title
			var slug string
			var err error
			if forceSuffix {
				slug = s.slugs.Suffixed(Slugify(title))
			} else if slug, err = s.slugs.generate(tx, title, recipe.ID); err != nil {
				return nil, err
			}
			if slug != recipe.Slug {
				updates["slug"] = slug
			}
		}
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Ingredients != nil {
		updates["ingredients"] = models.Ingredients(req.Ingredients)
	}
	if req.Instructions != nil {
		updates["instructions"] = models.Instructions(req.Instructions)
	}
	if req.CookingTime != nil {
		updates["cooking_time"] = *req.CookingTime
	}
	if req.Servings != nil {
		updates["servings"] = *req.Servings
	}
	if req.Difficulty != nil {
		updates["difficulty"] = *req.Difficulty
	}
	if req.MainImage != nil {
		updates["main_image"] = *req.MainImage
	}
	if req.Images != nil {
		updates["images"] = models.StringList(req.Images)
	}
	return updates, nil
}

// Delete removes the recipe together with its ratings, favorites and
// category links. Only the author or an admin may delete.
func (s *RecipeService) Delete(ctx context.Context, slug string, p *types.Principal) error {
	user, err := s.identity.Resolve(ctx, p)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := lockRecipe(tx, slug)
		if err != nil {
			return err
		}
		if !s.guard.CanMutate(user, recipe) {
			return apperror.New(apperror.ErrForbidden, "You are not allowed to delete this recipe")
		}

		for _, table := range []string{"recipe_ratings", "recipe_favorites", "recipe_categories"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE recipe_id = ?", recipe.ID).Error; err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		if err := tx.Delete(&models.Recipe{}, "id = ?", recipe.ID).Error; err != nil {
			return fmt.Errorf("delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(withoutCancel(ctx), slug)
	logging.Ctx(ctx).Info().
		Str("slug", slug).
		Str("user_id", user.ID.String()).
		Msg("recipe deleted")
	return nil
}

// ListByAuthor returns up to limit of the author's recipes, newest first.
func (s *RecipeService) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, error) {
	if limit < 1 || limit > types.MaxPageSize {
		limit = types.DefaultPageSize
	}
	recipes := []models.Recipe{}
	err := s.db.WithContext(ctx).
		Preload("Categories").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("list recipes by author: %w", err)
	}
	return recipes, nil
}

func (s *RecipeService) detailed(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Author").
		Preload("Categories").
		Preload("Ratings", func(db *gorm.DB) *gorm.DB { return orderRatings(db) })
}
