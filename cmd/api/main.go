package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/andcook/andcook/backend/config"
	"github.com/andcook/andcook/backend/internal/api"
	"github.com/andcook/andcook/backend/internal/cache"
	"github.com/andcook/andcook/backend/internal/database"
	"github.com/andcook/andcook/backend/internal/logging"
	"github.com/andcook/andcook/backend/internal/middleware"
	"github.com/andcook/andcook/backend/internal/server"
	"github.com/andcook/andcook/backend/internal/service"
	"github.com/andcook/andcook/backend/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx := context.Background()

	pool, err := database.Open(ctx, cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		if err := pool.Close(); err != nil {
			logging.Error().Err(err).Msg("failed to close database pool")
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(pool.DB()); err != nil {
			logging.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = database.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logging.Warn().Err(err).Msg("redis unavailable, continuing without cache and with local rate limits")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var recipeCache cache.RecipeCache = cache.NoopCache{}
	if redisClient != nil {
		recipeCache = cache.NewRedisRecipeCache(redisClient, cfg.Redis.CacheTTL)
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	db := pool.DB()
	guard := service.NewAccessGuard(cfg.Auth.PrivilegedEmail)
	identity := service.NewIdentityService(db)
	recipes := service.NewRecipeService(db, identity, guard, service.NewSlugGenerator(db), recipeCache)

	services := api.Services{
		Auth:           service.NewAuthService(cfg.Auth),
		Recipes:        recipes,
		Ratings:        service.NewRatingService(db, identity, guard, recipeCache),
		Favorites:      service.NewFavoriteService(db, identity),
		Categories:     service.NewCategoryService(db, identity, guard),
		Profiles:       service.NewProfileService(db, identity, recipes),
		Admin:          service.NewAdminService(db, identity, guard),
		Images:         service.NewImageService(store, cfg.Storage, identity),
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	}
	health := api.NewHealthHandler(pool, redisClient)
	limits := newLimiters(cfg.RateLimit, redisClient)

	srv := server.New(cfg, func(r *gin.Engine) {
		api.RegisterRoutes(r, services, limits, health)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logging.Error().Err(err).Msg("server error")
		}
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("shutting down server")
		if err := srv.Shutdown(ctx); err != nil {
			logging.Error().Err(err).Msg("server shutdown error")
		}
	}
	logging.Info().Msg("server stopped")
}

// newLimiters builds one limiter per limited route. Redis backs the counters
// when available; each Redis limiter falls back to a process-local one.
func newLimiters(cfg config.RateLimitConfig, client *redis.Client) api.Limiters {
	if !cfg.Enabled {
		return api.Limiters{}
	}
	build := func(prefix string, limit int) middleware.Limiter {
		rc := middleware.RateLimitConfig{Window: cfg.Window, Limit: limit, KeyPrefix: prefix}
		local := middleware.NewLocalLimiter(rc)
		if client == nil {
			return local
		}
		return middleware.NewRateLimiter(client, rc, local)
	}
	return api.Limiters{
		RecipeCreate: build("ratelimit:recipe_create", cfg.RecipeCreate),
		Rating:       build("ratelimit:rating", cfg.Rating),
		Upload:       build("ratelimit:upload", cfg.Upload),
	}
}
