package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andcook/andcook/backend/internal/apperror"
	"github.com/andcook/andcook/backend/internal/models"
	"github.com/andcook/andcook/backend/internal/types"
)

func TestGetProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "Author", "author@example.com", models.RoleUser)
	f.recipe(t, author, "Curry")
	f.recipe(t, author, "Dal")

	res, err := f.profiles.GetProfile(ctx, principal(author))
	require.NoError(t, err)
	assert.Equal(t, author.ID, res.Profile.ID)
	assert.Len(t, res.Recipes, 2)
}

func TestGetProfileCreatesUser(t *testing.T) {
	f := newFixture(t)
	p := &types.Principal{UserID: uuid.New(), Email: "first@example.com", Name: "First Visit"}

	res, err := f.profiles.GetProfile(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p.UserID, res.Profile.ID)
	assert.Equal(t, "First Visit", res.Profile.Name)
	assert.Empty(t, res.Recipes)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "Old", "user@example.com", models.RoleUser)

	updated, err := f.profiles.UpdateProfile(ctx, principal(user), &types.UpdateProfileRequest{Name: "New", Bio: "Loves soup"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, "Loves soup", updated.Bio)
	assert.Equal(t, models.DefaultAvatar, updated.Image)

	_, err = f.profiles.UpdateProfile(ctx, principal(user), &types.UpdateProfileRequest{Name: "  "})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
