package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andcook/andcook/backend/config"
	"github.com/andcook/andcook/backend/internal/api"
	"github.com/andcook/andcook/backend/internal/middleware"
)

func TestNewLimiters(t *testing.T) {
	limits := newLimiters(config.RateLimitConfig{
		Enabled:      true,
		Window:       time.Minute,
		RecipeCreate: 1,
		Rating:       2,
		Upload:       3,
	}, nil)

	tests := []struct {
		name    string
		limiter middleware.Limiter
		prefix  string
		limit   int
	}{
		{"recipe create", limits.RecipeCreate, "ratelimit:recipe_create", 1},
		{"rating", limits.Rating, "ratelimit:rating", 2},
		{"upload", limits.Upload, "ratelimit:upload", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.limiter)
			assert.IsType(t, &middleware.LocalLimiter{}, tt.limiter)
			assert.Equal(t, tt.prefix, tt.limiter.Config().KeyPrefix)
			assert.Equal(t, tt.limit, tt.limiter.Config().Limit)
		})
	}
}

func TestNewLimitersDisabled(t *testing.T) {
	assert.Equal(t, api.Limiters{}, newLimiters(config.RateLimitConfig{}, nil))
}
