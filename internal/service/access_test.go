package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/andcook/andcook/backend/internal/models"
)

func TestAccessGuard(t *testing.T) {
	guard := NewAccessGuard(" Chef@AndCook.test ")
	author := &models.User{ID: uuid.New(), Email: "author@example.com", Role: models.RoleUser}
	stranger := &models.User{ID: uuid.New(), Email: "stranger@example.com", Role: models.RoleUser}
	admin := &models.User{ID: uuid.New(), Email: "admin@example.com", Role: models.RoleAdmin}
	chef := &models.User{ID: uuid.New(), Email: "chef@andcook.test", Role: models.RoleUser}
	recipe := &models.Recipe{ID: uuid.New(), AuthorID: author.ID}

	assert.True(t, guard.CanMutate(author, recipe))
	assert.True(t, guard.CanMutate(admin, recipe))
	assert.True(t, guard.CanMutate(chef, recipe))
	assert.False(t, guard.CanMutate(stranger, recipe))
	assert.False(t, guard.CanMutate(nil, recipe))
	assert.False(t, guard.CanMutate(author, nil))

	assert.True(t, guard.IsAdmin(admin))
	assert.True(t, guard.IsAdmin(chef))
	assert.False(t, guard.IsAdmin(author))
	assert.False(t, guard.IsAdmin(nil))
}

func TestAccessGuardWithoutPrivilegedEmail(t *testing.T) {
	guard := NewAccessGuard("")
	assert.False(t, guard.IsAdmin(&models.User{Email: "", Role: models.RoleUser}))
}
