package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/andcook/andcook/backend/internal/apperror"
	"github.com/andcook/andcook/backend/internal/models"
	"github.com/andcook/andcook/backend/internal/types"
)

// profileRecipeLimit is how many of the user's recipes the profile page shows.
const profileRecipeLimit = 10

// ProfileService handles user profile operations
type ProfileService struct {
	db       *gorm.DB
	identity *IdentityService
	recipes  *RecipeService
}

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB, identity *IdentityService, recipes *RecipeService) *ProfileService {
	return &ProfileService{
		db:       db,
		identity: identity,
		recipes:  recipes,
	}
}

// GetProfile returns the caller's user record and latest recipes, creating
// the user on first access.
func (s *ProfileService) GetProfile(ctx context.Context, p *types.Principal) (*types.ProfileResponse, error) {
	user, err := s.identity.ResolveOrCreate(ctx, p)
	if err != nil {
		return nil, err
	}

	var (
		profile models.User
		recipes []models.Recipe
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.db.WithContext(gctx).Where("id = ?", user.ID).Take(&profile).Error; err != nil {
			return notFound(err, "load profile", "User not found")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recipes, err = s.recipes.ListByAuthor(gctx, user.ID, profileRecipeLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The stored row does not carry a session-granted admin role.
	profile.Role = user.Role
	return &types.ProfileResponse{Profile: &profile, Recipes: recipes}, nil
}

// UpdateProfile sets name, bio and image on the caller's user record.
func (s *ProfileService) UpdateProfile(ctx context.Context, p *types.Principal, req *types.UpdateProfileRequest) (*models.User, error) {
	user, err := s.identity.ResolveOrCreate(ctx, p)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.New(apperror.ErrValidation, "Name is required")
	}
	updates := map[string]interface{}{
		"name": name,
		"bio":  req.Bio,
	}
	if image := strings.TrimSpace(req.Image); image != "" {
		updates["image"] = image
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	var updated models.User
	if err := s.db.WithContext(ctx).Where("id = ?", user.ID).Take(&updated).Error; err != nil {
		return nil, notFound(err, "load profile", "User not found")
	}
	updated.Role = user.Role
	return &updated, nil
}
