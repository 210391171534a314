package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("CI", "")
	t.Setenv("ENV", "")
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv(SecretsDirEnvVar, t.TempDir())
}

func TestLoadConfigWithDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "andcook", cfg.Database.Name)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(5<<20), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, time.Hour, cfg.RateLimit.Window)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowOrigins)
}

func TestLoadConfigFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("ANDCOOK_DATABASE__HOST", "db.internal")
	t.Setenv("ANDCOOK_DATABASE__PORT", "6543")
	t.Setenv("ANDCOOK_AUTH__PRIVILEGED_EMAIL", "chef@andcook.dev")
	t.Setenv("ANDCOOK_CORS__ALLOW_ORIGINS", "https://andcook.dev, https://www.andcook.dev")
	t.Setenv("ANDCOOK_RATE_LIMIT__WINDOW", "10m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "chef@andcook.dev", cfg.Auth.PrivilegedEmail)
	assert.Equal(t, []string{"https://andcook.dev", "https://www.andcook.dev"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, 10*time.Minute, cfg.RateLimit.Window)
}

func TestLoadConfigFromFileAndSecrets(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  name: recipes\nlogging:\n  format: console\n"), 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	secrets := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(secrets, "db_password"), []byte("s3cret\n"), 0o600))
	t.Setenv(SecretsDirEnvVar, secrets)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "recipes", cfg.Database.Name)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "s3cret", cfg.Database.Password)
}

func TestLoadConfigProductionRejectsDevSecret(t *testing.T) {
	isolate(t)
	t.Setenv("ENV", "production")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWTSecret")
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	isolate(t)
	t.Setenv("ANDCOOK_STORAGE__BACKEND", "minio")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint")
}

func TestStoragePublicURL(t *testing.T) {
	s3 := StorageConfig{Backend: StorageS3, Bucket: "pics"}
	assert.Equal(t, "https://pics.s3.amazonaws.com/recipes/a.png", s3.PublicURL("recipes/a.png"))

	minio := StorageConfig{Backend: StorageMinio, Bucket: "pics", Endpoint: "localhost:9000"}
	assert.Equal(t, "http://localhost:9000/pics/recipes/a.png", minio.PublicURL("recipes/a.png"))

	cdn := StorageConfig{Backend: StorageS3, Bucket: "pics", PublicBaseURL: "https://cdn.andcook.dev/"}
	assert.Equal(t, "https://cdn.andcook.dev/recipes/a.png", cdn.PublicURL("recipes/a.png"))
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=n sslmode=disable", d.DSN())
}
