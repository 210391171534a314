package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andcook/andcook/backend/internal/apperror"
	"github.com/andcook/andcook/backend/internal/logging"
	"github.com/andcook/andcook/backend/internal/models"
	"github.com/andcook/andcook/backend/internal/types"
)

// AdminService backs the /admin endpoints. Every method requires the caller
// to be an administrator.
type AdminService struct {
	db       *gorm.DB
	identity *IdentityService
	guard    *AccessGuard
}

func NewAdminService(db *gorm.DB, identity *IdentityService, guard *AccessGuard) *AdminService {
	return &AdminService{db: db, identity: identity, guard: guard}
}

func (s *AdminService) ListUsers(ctx context.Context, p *types.Principal) ([]models.User, error) {
	if _, err := s.requireAdmin(ctx, p); err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *AdminService) ListRecipes(ctx context.Context, p *types.Principal) ([]models.Recipe, error) {
	if _, err := s.requireAdmin(ctx, p); err != nil {
		return nil, err
	}
	recipes := []models.Recipe{}
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Categories").
		Order("created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// SetRole changes the stored role of the user with the given id.
func (s *AdminService) SetRole(ctx context.Context, p *types.Principal, userID string, role models.Role) (*models.User, error) {
	admin, err := s.requireAdmin(ctx, p)
	if err != nil {
		return nil, err
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, apperror.Newf(apperror.ErrValidation, "Invalid role %q", role)
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperror.New(apperror.ErrValidation, "Invalid user ID")
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return nil, fmt.Errorf("set role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.New(apperror.ErrNotFound, "User not found")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error; err != nil {
		return nil, notFound(err, "load user", "User not found")
	}
	logging.Ctx(ctx).Info().
		Str("admin_id", admin.ID.String()).
		Str("user_id", id.String()).
		Str("role", string(role)).
		Msg("user role changed")
	return &user, nil
}

func (s *AdminService) requireAdmin(ctx context.Context, p *types.Principal) (*models.User, error) {
	user, err := s.identity.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if !s.guard.IsAdmin(user) {
		return nil, apperror.New(apperror.ErrForbidden, "Admin access required")
	}
	return user, nil
}
