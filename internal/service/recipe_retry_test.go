package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andcook/andcook/backend/internal/cache"
	"github.com/andcook/andcook/backend/internal/models"
	"github.com/andcook/andcook/backend/internal/testhelpers"
	"github.com/andcook/andcook/backend/internal/types"
)

const retryClock = int64(1700000000000)

// newRetryService returns a recipe service whose slug clock is frozen, plus
// the author used for every recipe it creates.
func newRetryService(t *testing.T) (*RecipeService, *gorm.DB, *types.Principal) {
	t.Helper()
	db := testhelpers.SetupTestDB(t).DB()

	slugs := NewSlugGenerator(db)
	slugs.now = func() time.Time { return time.UnixMilli(retryClock) }

	identity := NewIdentityService(db)
	svc := NewRecipeService(db, identity, NewAccessGuard("chef@andcook.test"), slugs, cache.NoopCache{})

	author := &models.User{Name: "Author", Email: "author@example.com"}
	require.NoError(t, db.Create(author).Error)
	return svc, db, &types.Principal{UserID: author.ID, Email: author.Email, Name: author.Name}
}

func insertRecipe(t *testing.T, db *gorm.DB, p *types.Principal, slug, title string) *models.Recipe {
	t.Helper()
	r := &models.Recipe{
		Slug: slug, Title: title, Description: "d", CookingTime: 1, Servings: 1,
		MainImage: "/x.jpg", AuthorID: p.UserID,
		Ingredients: models.Ingredients{}, Instructions: models.Instructions{}, Images: models.StringList{},
	}
	require.NoError(t, db.Create(r).Error)
	return r
}

func TestCreateRetriesSlugTakenAtInsert(t *testing.T) {
	svc, db, author := newRetryService(t)
	ctx := context.Background()

	insertRecipe(t, db, author, "pizza", "Pizza")
	// The suffixed slug the generator hands out first is already stored, so
	// the first insert hits the unique index.
	taken := insertRecipe(t, db, author, fmt.Sprintf("pizza-%d", retryClock), "Pizza")

	recipe, err := svc.Create(ctx, author, &types.CreateRecipeRequest{
		Title: "Pizza", Description: "d", CookingTime: 10, Servings: 2, MainImage: "/p.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("pizza-%d", retryClock+1), recipe.Slug)

	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	var stored models.Recipe
	require.NoError(t, db.Where("id = ?", taken.ID).Take(&stored).Error)
	assert.Equal(t, taken.Slug, stored.Slug)
}

func TestUpdateRetriesSlugTakenAtRename(t *testing.T) {
	svc, db, author := newRetryService(t)
	ctx := context.Background()

	insertRecipe(t, db, author, "pizza", "Pizza")
	insertRecipe(t, db, author, fmt.Sprintf("pizza-%d", retryClock), "Pizza")
	soup := insertRecipe(t, db, author, "soup", "Soup")

	title := "Pizza"
	desc := "now a pizza"
	updated, err := svc.Update(ctx, "soup", author, &types.UpdateRecipeRequest{Title: &title, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, soup.ID, updated.ID)
	assert.Equal(t, fmt.Sprintf("pizza-%d", retryClock+1), updated.Slug)
	assert.Equal(t, "now a pizza", updated.Description)

	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Where("slug = ?", "soup").Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	svc, db, author := newRetryService(t)
	ctx := context.Background()

	insertRecipe(t, db, author, "pizza", "Pizza")
	for i := int64(0); i < maxSlugAttempts; i++ {
		insertRecipe(t, db, author, fmt.Sprintf("pizza-%d", retryClock+i), "Pizza")
	}

	_, err := svc.Create(ctx, author, &types.CreateRecipeRequest{
		Title: "Pizza", Description: "d", CookingTime: 10, Servings: 2, MainImage: "/p.jpg",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
