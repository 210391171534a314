package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/andcook/andcook/backend/config"
	"github.com/andcook/andcook/backend/internal/logging"
)

// Pool owns the gorm handle and the *sql.DB connection pool behind it.
//
// cmd/api opens exactly one Pool at startup with Open, hands Pool.DB() to the
// services, and calls Close during shutdown after the HTTP server has drained.
type Pool struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

// GormConfig is shared by every dialector. TranslateError turns unique
// violations into gorm.ErrDuplicatedKey.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         NewGormLogger(200 * time.Millisecond),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Open connects to Postgres, sizes the pool and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	logging.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("user", cfg.User).
		Str("database", cfg.Name).
		Msg("connecting to database")

	db, err := gorm.Open(postgres.Open(cfg.DSN()), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	pool, err := NewPool(db)
	if err != nil {
		return nil, err
	}

	pool.sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	logging.Info().Msg("successfully connected to database")
	return pool, nil
}

// NewPool wraps an already opened gorm handle.
func NewPool(db *gorm.DB) (*Pool, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting sql.DB: %w", err)
	}
	return &Pool{db: db, sqlDB: sqlDB}, nil
}

// DB returns the gorm handle. It is safe for concurrent use.
func (p *Pool) DB() *gorm.DB {
	return p.db
}

// Ping checks if the database is accessible
func (p *Pool) Ping(ctx context.Context) error {
	return p.sqlDB.PingContext(ctx)
}

// Close releases every pooled connection. The Pool is unusable afterwards.
func (p *Pool) Close() error {
	return p.sqlDB.Close()
}
