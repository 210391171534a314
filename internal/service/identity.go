package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andcook/andcook/backend/internal/apperror"
	"github.com/andcook/andcook/backend/internal/models"
	"github.com/andcook/andcook/backend/internal/types"
)

// IdentityService maps the session principal to a stored user. Every
// authenticated operation goes through it.
type IdentityService struct {
	db *gorm.DB
}

func NewIdentityService(db *gorm.DB) *IdentityService {
	return &IdentityService{db: db}
}

// Resolve finds the user by id, then by email. A session role of admin is
// honored on the returned value without being persisted.
func (s *IdentityService) Resolve(ctx context.Context, p *types.Principal) (*models.User, error) {
	if p == nil || (p.UserID == uuid.Nil && p.Email == "") {
		return nil, apperror.New(apperror.ErrUnauthorized, "Unauthorized")
	}

	user, err := s.lookup(ctx, p)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.New(apperror.ErrUnauthorized, "User not found")
	}
	if models.Role(p.Role) == models.RoleAdmin {
		user.Role = models.RoleAdmin
	}
	return user, nil
}

// ResolveOrCreate is Resolve, creating the user from the session payload
// when it has never been seen.
func (s *IdentityService) ResolveOrCreate(ctx context.Context, p *types.Principal) (*models.User, error) {
	user, err := s.Resolve(ctx, p)
	if err == nil || !errors.Is(err, apperror.ErrUnauthorized) || p == nil || p.Email == "" {
		return user, err
	}

	user = &models.User{
		ID:    p.UserID,
		Email: normalizeEmail(p.Email),
		Name:  displayName(p),
		Image: p.Image,
		Role:  models.RoleUser,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Created concurrently by another request.
			return s.Resolve(ctx, p)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	if models.Role(p.Role) == models.RoleAdmin {
		user.Role = models.RoleAdmin
	}
	return user, nil
}

func (s *IdentityService) lookup(ctx context.Context, p *types.Principal) (*models.User, error) {
	db := s.db.WithContext(ctx)
	var user models.User

	if p.UserID != uuid.Nil {
		err := db.Where("id = ?", p.UserID).Take(&user).Error
		if err == nil {
			return &user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find user by id: %w", err)
		}
	}

	if p.Email != "" {
		err := db.Where("email = ?", normalizeEmail(p.Email)).Take(&user).Error
		if err == nil {
			return &user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find user by email: %w", err)
		}
	}
	return nil, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func displayName(p *types.Principal) string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(p.Email, "@")
	return local
}
