package database

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/andcook/andcook/backend/internal/models"
	"github.com/andcook/andcook/backend/migrations"
)

func TestPoolLifecycle(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig())
	require.NoError(t, err)

	pool, err := NewPool(db)
	require.NoError(t, err)
	pool.sqlDB.SetMaxOpenConns(1)
	require.NoError(t, AutoMigrate(pool.DB()))
	require.NoError(t, pool.Ping(context.Background()))

	user := models.User{Name: "Test User", Email: "test@example.com"}
	require.NoError(t, pool.DB().Create(&user).Error)
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.DefaultAvatar, user.Image)
	assert.Equal(t, models.RoleUser, user.Role)

	dup := models.User{Name: "Other", Email: "test@example.com"}
	assert.ErrorIs(t, pool.DB().Create(&dup).Error, gorm.ErrDuplicatedKey)

	require.NoError(t, pool.Close())
	assert.Error(t, pool.Ping(context.Background()))
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_search.up.sql":   {Data: []byte("CREATE INDEX b;")},
		"002_search.down.sql": {Data: []byte("DROP INDEX b;")},
		"001_init.up.sql":     {Data: []byte("CREATE TABLE a;")},
		"001_init.down.sql":   {Data: []byte("DROP TABLE a;")},
		"README.md":           {Data: []byte("ignored")},
	}

	migs, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migs, 2)
	assert.Equal(t, "001", migs[0].Version)
	assert.Equal(t, "001_init", migs[0].Name)
	assert.Equal(t, "DROP TABLE a;", migs[0].Down)
	assert.Equal(t, "002", migs[1].Version)
}

func TestLoadMigrationsRejectsBadName(t *testing.T) {
	_, err := LoadMigrations(fstest.MapFS{"init.up.sql": {Data: []byte("x")}})
	assert.Error(t, err)
}

func TestEmbeddedMigrationsHaveRollbacks(t *testing.T) {
	migs, err := LoadMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, migs)
	for _, m := range migs {
		assert.NotEmpty(t, m.Down, m.Name)
	}
}
