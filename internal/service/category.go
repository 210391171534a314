package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/andcook/andcook/backend/internal/apperror"
	"github.com/andcook/andcook/backend/internal/models"
	"github.com/andcook/andcook/backend/internal/types"
)

// CategoryService handles category reads and admin-only creation.
type CategoryService struct {
	db       *gorm.DB
	identity *IdentityService
	guard    *AccessGuard
}

func NewCategoryService(db *gorm.DB, identity *IdentityService, guard *AccessGuard) *CategoryService {
	return &CategoryService{db: db, identity: identity, guard: guard}
}

// List returns every category ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).Take(&category).Error; err != nil {
		return nil, notFound(err, "get category", "Category not found")
	}
	return &category, nil
}

// Create adds a category. Only administrators may create categories and
// names must be unique.
func (s *CategoryService) Create(ctx context.Context, p *types.Principal, req *types.CreateCategoryRequest) (*models.Category, error) {
	user, err := s.identity.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if !s.guard.IsAdmin(user) {
		return nil, apperror.New(apperror.ErrForbidden, "Only administrators can create categories")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.New(apperror.ErrValidation, "Name is required")
	}

	category := &models.Category{
		Name:        name,
		Slug:        Slugify(name),
		Description: req.Description,
		Image:       req.Image,
	}

	var existing int64
	err = s.db.WithContext(ctx).Model(&models.Category{}).
		Where("name = ? OR slug = ?", category.Name, category.Slug).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if existing > 0 {
		return nil, apperror.New(apperror.ErrConflict, "Category already exists")
	}

	// The unique indexes still catch a concurrent create.
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(apperror.ErrConflict, "Category already exists")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// resolveCategories loads the categories named by refs, each an id or a
// slug. Unknown references are a validation error.
func resolveCategories(tx *gorm.DB, refs []string) ([]models.Category, error) {
	ids, slugs := splitRefs(refs)
	if len(ids) == 0 && len(slugs) == 0 {
		return []models.Category{}, nil
	}

	query := tx.Model(&models.Category{})
	switch {
	case len(ids) > 0 && len(slugs) > 0:
		query = query.Where("id IN ? OR slug IN ?", ids, slugs)
	case len(ids) > 0:
		query = query.Where("id IN ?", ids)
	default:
		query = query.Where("slug IN ?", slugs)
	}

	var categories []models.Category
	if err := query.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	found := make(map[string]bool, len(categories)*2)
	for _, c := range categories {
		found[c.ID.String()] = true
		found[c.Slug] = true
	}
	for _, ref := range append(ids, slugs...) {
		if !found[ref] {
			return nil, apperror.Newf(apperror.ErrValidation, "Unknown category %q", ref)
		}
	}
	return categories, nil
}
