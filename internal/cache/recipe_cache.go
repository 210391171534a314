// Package cache keeps read-through copies of recipe detail payloads in Redis.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/andcook/andcook/backend/internal/logging"
	"github.com/andcook/andcook/backend/internal/metrics"
	"github.com/andcook/andcook/backend/internal/models"
)

// RecipeCache stores recipes by slug. Misses and cache failures are both
// reported as a miss; callers fall back to the database.
type RecipeCache interface {
	Get(ctx context.Context, slug string) (*models.Recipe, bool)
	Set(ctx context.Context, recipe *models.Recipe)
	Invalidate(ctx context.Context, slugs ...string)
}

const keyPrefix = "andcook:recipe:"

type RedisRecipeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRecipeCache(client *redis.Client, ttl time.Duration) *RedisRecipeCache {
	return &RedisRecipeCache{client: client, ttl: ttl}
}

func key(slug string) string {
	return keyPrefix + slug
}

func (c *RedisRecipeCache) Get(ctx context.Context, slug string) (*models.Recipe, bool) {
	raw, err := c.client.Get(ctx, key(slug)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.Ctx(ctx).Warn().Err(err).Str("slug", slug).Msg("recipe cache read failed")
		}
		metrics.RecipeCacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}

	var recipe models.Recipe
	if err := json.Unmarshal(raw, &recipe); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("slug", slug).Msg("dropping undecodable cache entry")
		c.Invalidate(ctx, slug)
		metrics.RecipeCacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.RecipeCacheRequests.WithLabelValues("hit").Inc()
	return &recipe, true
}

func (c *RedisRecipeCache) Set(ctx context.Context, recipe *models.Recipe) {
	raw, err := json.Marshal(recipe)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("slug", recipe.Slug).Msg("recipe cache encode failed")
		return
	}
	if err := c.client.Set(ctx, key(recipe.Slug), raw, c.ttl).Err(); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("slug", recipe.Slug).Msg("recipe cache write failed")
	}
}

func (c *RedisRecipeCache) Invalidate(ctx context.Context, slugs ...string) {
	if len(slugs) == 0 {
		return
	}
	keys := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, key(s))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Strs("keys", keys).Msg("recipe cache invalidation failed")
	}
}

// NoopCache is used when Redis is disabled or unreachable.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*models.Recipe, bool) { return nil, false }
func (NoopCache) Set(context.Context, *models.Recipe)                {}
func (NoopCache) Invalidate(context.Context, ...string)              {}
