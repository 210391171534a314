package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andcook/andcook/backend/internal/apperror"
	"github.com/andcook/andcook/backend/internal/models"
)

func TestAdminRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cook := f.user(t, "Cook", "cook@example.com", models.RoleUser)

	_, err := f.admin.ListUsers(ctx, principal(cook))
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = f.admin.ListRecipes(ctx, principal(cook))
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = f.admin.SetRole(ctx, principal(cook), cook.ID.String(), models.RoleAdmin)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = f.admin.ListUsers(ctx, nil)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestAdminOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chef := f.user(t, "Chef", privilegedEmail, models.RoleUser)
	cook := f.user(t, "Cook", "cook@example.com", models.RoleUser)
	f.recipe(t, cook, "Stew")

	users, err := f.admin.ListUsers(ctx, principal(chef))
	require.NoError(t, err)
	assert.Len(t, users, 2)

	recipes, err := f.admin.ListRecipes(ctx, principal(chef))
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Cook", recipes[0].Author.Name)

	promoted, err := f.admin.SetRole(ctx, principal(chef), cook.ID.String(), models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	_, err = f.admin.SetRole(ctx, principal(chef), uuid.NewString(), models.RoleAdmin)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = f.admin.SetRole(ctx, principal(chef), "nope", models.RoleAdmin)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = f.admin.SetRole(ctx, principal(chef), cook.ID.String(), models.Role("owner"))
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
