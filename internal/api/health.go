package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/andcook/andcook/backend/internal/logging"
)

const healthTimeout = 2 * time.Second

// Pinger is satisfied by database.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the database and, when configured, Redis
// are reachable.
type HealthHandler struct {
	db    Pinger
	redis *redis.Client
}

// NewHealthHandler builds the handler. redisClient may be nil.
func NewHealthHandler(db Pinger, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// Check returns 200 when every dependency answers, 503 otherwise.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	checks := map[string]string{"database": "ok"}
	if h.redis != nil {
		checks["redis"] = "ok"
	}

	var dbErr, redisErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dbErr = h.db.Ping(gctx)
		return nil
	})
	if h.redis != nil {
		g.Go(func() error {
			redisErr = h.redis.Ping(gctx).Err()
			return nil
		})
	}
	_ = g.Wait()

	status := http.StatusOK
	if dbErr != nil {
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
		logging.Ctx(ctx).Warn().Err(dbErr).Msg("health check: database unavailable")
	}
	if redisErr != nil {
		checks["redis"] = "unavailable"
		status = http.StatusServiceUnavailable
		logging.Ctx(ctx).Warn().Err(redisErr).Msg("health check: redis unavailable")
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
