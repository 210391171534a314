package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andcook/andcook/backend/internal/cache"
	"github.com/andcook/andcook/backend/internal/models"
	"github.com/andcook/andcook/backend/internal/service"
	"github.com/andcook/andcook/backend/internal/testhelpers"
	"github.com/andcook/andcook/backend/internal/types"
)

const privilegedEmail = "chef@andcook.test"

type fixture struct {
	db         *gorm.DB
	identity   *service.IdentityService
	guard      *service.AccessGuard
	slugs      *service.SlugGenerator
	recipes    *service.RecipeService
	ratings    *service.RatingService
	favorites  *service.FavoriteService
	categories *service.CategoryService
	profiles   *service.ProfileService
	admin      *service.AdminService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithCache(t, cache.NoopCache{})
}

func newFixtureWithCache(t *testing.T, recipeCache cache.RecipeCache) *fixture {
	t.Helper()
	db := testhelpers.SetupTestDB(t).DB()

	identity := service.NewIdentityService(db)
	guard := service.NewAccessGuard(privilegedEmail)
	slugs := service.NewSlugGenerator(db)
	recipes := service.NewRecipeService(db, identity, guard, slugs, recipeCache)

	return &fixture{
		db:         db,
		identity:   identity,
		guard:      guard,
		slugs:      slugs,
		recipes:    recipes,
		ratings:    service.NewRatingService(db, identity, guard, recipeCache),
		favorites:  service.NewFavoriteService(db, identity),
		categories: service.NewCategoryService(db, identity, guard),
		profiles:   service.NewProfileService(db, identity, recipes),
		admin:      service.NewAdminService(db, identity, guard),
	}
}

func (f *fixture) user(t *testing.T, name, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: email, Role: role}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) category(t *testing.T, name, slug string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, Slug: slug}
	require.NoError(t, f.db.Create(c).Error)
	return c
}

func (f *fixture) recipe(t *testing.T, author *models.User, title string, categories ...string) *models.Recipe {
	t.Helper()
	r, err := f.recipes.Create(context.Background(), principal(author), &types.CreateRecipeRequest{
		Title:        title,
		Description:  "A recipe for " + title,
		Ingredients:  []models.Ingredient{{Name: "salt", Quantity: "1", Unit: "tsp"}},
		Instructions: []models.Instruction{{Step: 1, Description: "Cook it"}},
		CookingTime:  20,
		Servings:     2,
		MainImage:    "/images/" + title + ".jpg",
		Categories:   categories,
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) reload(t *testing.T, id any) *models.Recipe {
	t.Helper()
	var r models.Recipe
	require.NoError(t, f.db.Where("id = ?", id).Take(&r).Error)
	return &r
}

func principal(u *models.User) *types.Principal {
	return &types.Principal{UserID: u.ID, Email: u.Email, Name: u.Name, Image: u.Image, Role: string(u.Role)}
}

func intPtr(v int) *int {
	return &v
}
