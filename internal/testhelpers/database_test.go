package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andcook/andcook/backend/internal/models"
)

func TestDatabaseSetup(t *testing.T) {
	pool := SetupTestDB(t)
	require.NotNil(t, pool)
	db := pool.DB()

	user := &models.User{Name: "Test User", Email: "test@example.com"}
	require.NoError(t, db.Create(user).Error)
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.DefaultAvatar, user.Image)
	assert.Equal(t, models.RoleUser, user.Role)

	category := &models.Category{Name: "Italian", Slug: "italian"}
	require.NoError(t, db.Create(category).Error)

	recipe := &models.Recipe{
		Slug:         "homemade-pizza",
		Title:        "Homemade Pizza",
		Description:  "Crispy base",
		Ingredients:  models.Ingredients{{Name: "flour", Quantity: "500", Unit: "g"}},
		Instructions: models.Instructions{{Step: 1, Description: "Knead"}},
		CookingTime:  30,
		Servings:     4,
		MainImage:    "/images/pizza.jpg",
		Images:       models.StringList{},
		AuthorID:     user.ID,
		Categories:   []models.Category{*category},
	}
	require.NoError(t, db.Create(recipe).Error)

	var loaded models.Recipe
	require.NoError(t, db.Preload("Categories").Where("slug = ?", "homemade-pizza").Take(&loaded).Error)
	assert.Equal(t, models.DifficultyMedium, loaded.Difficulty)
	assert.Equal(t, "flour", loaded.Ingredients[0].Name)
	require.Len(t, loaded.Categories, 1)
	assert.Equal(t, "italian", loaded.Categories[0].Slug)
}

func TestDatabaseEnforcesOneRatingPerUser(t *testing.T) {
	db := SetupTestDB(t).DB()

	user := &models.User{Name: "Rater", Email: "rater@example.com"}
	require.NoError(t, db.Create(user).Error)
	recipe := &models.Recipe{
		Slug: "soup", Title: "Soup", Description: "Hot", CookingTime: 10, Servings: 2,
		MainImage: "/soup.jpg", AuthorID: user.ID,
		Ingredients: models.Ingredients{}, Instructions: models.Instructions{}, Images: models.StringList{},
	}
	require.NoError(t, db.Create(recipe).Error)

	first := &models.RecipeRating{RecipeID: recipe.ID, UserID: user.ID, UserName: user.Name, Rating: 4, RatedAt: recipe.CreatedAt}
	require.NoError(t, db.Create(first).Error)

	second := &models.RecipeRating{RecipeID: recipe.ID, UserID: user.ID, UserName: user.Name, Rating: 2, RatedAt: recipe.CreatedAt}
	assert.Error(t, db.Create(second).Error)
}
