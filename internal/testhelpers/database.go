package testhelpers

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/andcook/andcook/backend/internal/database"
)

// SetupTestDB returns a migrated, private in-memory SQLite pool. The pool is
// limited to one connection so every query sees the same database.
func SetupTestDB(t *testing.T) *database.Pool {
	t.Helper()

	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	cfg := database.GormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=private&_foreign_keys=on", name)), cfg)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	pool, err := database.NewPool(db)
	if err != nil {
		t.Fatalf("failed to wrap sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { _ = pool.Close() })
	return pool
}

// SetupPostgres starts a disposable Postgres container, returning its DSN.
// The test is skipped when docker is unavailable or -short is set.
func SetupPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}

	const (
		user     = "andcook"
		password = "andcook"
		dbName   = "andcook_test"
	)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     user,
				"POSTGRES_PASSWORD": password,
				"POSTGRES_DB":       dbName,
			},
			WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port.Port(), dbName)
			}).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port.Port(), user, password, dbName)
}

// OpenPostgres opens a gorm pool on dsn with the production gorm settings.
func OpenPostgres(t *testing.T, dsn string) *database.Pool {
	t.Helper()
	db, err := gorm.Open(postgres.Open(dsn), database.GormConfig())
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	pool, err := database.NewPool(db)
	if err != nil {
		t.Fatalf("failed to wrap database: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}
