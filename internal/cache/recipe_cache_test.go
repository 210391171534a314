package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andcook/andcook/backend/internal/models"
)

func newTestCache(t *testing.T) (*RedisRecipeCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRecipeCache(client, time.Minute), mr
}

func TestRedisRecipeCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, ok := c.Get(ctx, "homemade-pizza")
	assert.False(t, ok)

	recipe := &models.Recipe{
		ID:            uuid.New(),
		Slug:          "homemade-pizza",
		Title:         "Homemade Pizza",
		Ingredients:   models.Ingredients{{Name: "flour", Quantity: "500", Unit: "g"}},
		AverageRating: 4,
		RatingCount:   2,
	}
	c.Set(ctx, recipe)
	assert.True(t, mr.Exists("andcook:recipe:homemade-pizza"))
	assert.Equal(t, time.Minute, mr.TTL("andcook:recipe:homemade-pizza"))

	got, ok := c.Get(ctx, "homemade-pizza")
	require.True(t, ok)
	assert.Equal(t, recipe.ID, got.ID)
	assert.Equal(t, 4.0, got.AverageRating)
	assert.Equal(t, "flour", got.Ingredients[0].Name)

	c.Invalidate(ctx, "homemade-pizza", "")
	_, ok = c.Get(ctx, "homemade-pizza")
	assert.False(t, ok)
}

func TestRedisRecipeCacheDropsCorruptEntries(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("andcook:recipe:broken", "{not json"))

	_, ok := c.Get(context.Background(), "broken")
	assert.False(t, ok)
	assert.False(t, mr.Exists("andcook:recipe:broken"))
}

func TestRedisRecipeCacheTreatsOutageAsMiss(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	c := NewRedisRecipeCache(client, time.Minute)
	mr.Close()

	_, ok := c.Get(context.Background(), "any")
	assert.False(t, ok)
	c.Set(context.Background(), &models.Recipe{Slug: "any"})
}
