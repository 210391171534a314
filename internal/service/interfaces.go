package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/andcook/andcook/backend/internal/models"
	"github.com/andcook/andcook/backend/internal/types"
)

// IAuthService defines the interface for session token operations
type IAuthService interface {
	ValidateToken(token string) (*types.TokenClaims, error)
	GenerateToken(p *types.Principal) (string, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	List(ctx context.Context, q types.RecipeQuery) (*types.RecipeList, error)
	Create(ctx context.Context, p *types.Principal, req *types.CreateRecipeRequest) (*models.Recipe, error)
	GetBySlug(ctx context.Context, slug string) (*models.Recipe, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	Update(ctx context.Context, slug string, p *types.Principal, req *types.UpdateRecipeRequest) (*models.Recipe, error)
	UpdateByID(ctx context.Context, id uuid.UUID, p *types.Principal, req *types.UpdateRecipeRequest) (*models.Recipe, error)
	Delete(ctx context.Context, slug string, p *types.Principal) error
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, error)
}

// IRatingService defines the interface for rating operations
type IRatingService interface {
	SubmitRating(ctx context.Context, slug string, p *types.Principal, rating *int, comment string) (*types.RatingResult, error)
	DeleteRating(ctx context.Context, slug string, p *types.Principal, index *int) (*types.RatingResult, error)
	ListRatings(ctx context.Context, slug string) ([]models.RecipeRating, error)
}

// IFavoriteService defines the interface for favorite operations
type IFavoriteService interface {
	ToggleFavorite(ctx context.Context, p *types.Principal, recipeID string) (bool, error)
	ListFavorites(ctx context.Context, p *types.Principal) ([]models.Recipe, error)
	IsFavorite(ctx context.Context, p *types.Principal, recipeID string) (bool, error)
}

// ICategoryService defines the interface for category operations
type ICategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, p *types.Principal, req *types.CreateCategoryRequest) (*models.Category, error)
}

// IProfileService defines the interface for user profile operations
type IProfileService interface {
	GetProfile(ctx context.Context, p *types.Principal) (*types.ProfileResponse, error)
	UpdateProfile(ctx context.Context, p *types.Principal, req *types.UpdateProfileRequest) (*models.User, error)
}

// IAdminService defines the interface for administrator operations
type IAdminService interface {
	ListUsers(ctx context.Context, p *types.Principal) ([]models.User, error)
	ListRecipes(ctx context.Context, p *types.Principal) ([]models.Recipe, error)
	SetRole(ctx context.Context, p *types.Principal, userID string, role models.Role) (*models.User, error)
}

// IImageService defines the interface for image uploads
type IImageService interface {
	Upload(ctx context.Context, p *types.Principal, declaredType string, r io.Reader) (string, error)
}

var (
	_ IAuthService     = (*AuthService)(nil)
	_ IRecipeService   = (*RecipeService)(nil)
	_ IRatingService   = (*RatingService)(nil)
	_ IFavoriteService = (*FavoriteService)(nil)
	_ ICategoryService = (*CategoryService)(nil)
	_ IProfileService  = (*ProfileService)(nil)
	_ IAdminService    = (*AdminService)(nil)
	_ IImageService    = (*ImageService)(nil)
)
