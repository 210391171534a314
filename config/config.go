package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix namespaces environment overrides: ANDCOOK_DATABASE__HOST -> database.host.
	EnvPrefix = "ANDCOOK_"

	ConfigPathEnvVar = "CONFIG_PATH"
	SecretsDirEnvVar = "SECRETS_DIR"

	defaultSecretsDir = "/run/secrets"
	devJWTSecret      = "andcook-dev-secret-change-me"
)

// DefaultConfigPaths are tried in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{"config.yaml", "/etc/andcook/config.yaml"}

// Config holds all configuration for the application
type Config struct {
	Environment Environment     `koanf:"environment" validate:"oneof=development test ci production"`
	Server      ServerConfig    `koanf:"server"`
	Database    DatabaseConfig  `koanf:"database"`
	Redis       RedisConfig     `koanf:"redis"`
	Auth        AuthConfig      `koanf:"auth"`
	Storage     StorageConfig   `koanf:"storage"`
	Logging     LoggingConfig   `koanf:"logging"`
	CORS        CORSConfig      `koanf:"cors"`
	RateLimit   RateLimitConfig `koanf:"rate_limit"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr is the listen address for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"oneof=disable require verify-ca verify-full prefer allow"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// DSN renders a libpq keyword/value connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool          `koanf:"enabled"`
	URL      string        `koanf:"url"`
	Host     string        `koanf:"host"`
	Port     int           `koanf:"port"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db" validate:"min=0"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret" validate:"required"`
	Issuer    string        `koanf:"issuer"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
	// PrivilegedEmail is treated as an administrator in addition to users
	// holding the admin role.
	PrivilegedEmail string `koanf:"privileged_email" validate:"omitempty,email"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

type CORSConfig struct {
	AllowOrigins []string `koanf:"allow_origins" validate:"min=1"`
}

// RateLimitConfig limits per user and window.
type RateLimitConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Window       time.Duration `koanf:"window"`
	RecipeCreate int           `koanf:"recipe_create" validate:"min=1"`
	Rating       int           `koanf:"rating" validate:"min=1"`
	Upload       int           `koanf:"upload" validate:"min=1"`
}

func defaultConfig() Config {
	return Config{
		Environment: Development,
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Password:        "postgres",
			Name:            "andcook",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Enabled:  true,
			Host:     "localhost",
			Port:     6379,
			CacheTTL: 5 * time.Minute,
		},
		Auth: AuthConfig{
			JWTSecret: devJWTSecret,
			Issuer:    "andcook",
			TokenTTL:  24 * time.Hour,
		},
		Storage: StorageConfig{
			Backend:        StorageS3,
			Bucket:         "andcook-uploads",
			Region:         "us-east-1",
			MaxUploadBytes: 5 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
		},
		RateLimit: RateLimitConfig{
			Enabled:      true,
			Window:       time.Hour,
			RecipeCreate: 20,
			Rating:       60,
			Upload:       30,
		},
	}
}

// LoadConfig layers defaults, an optional YAML file, ANDCOOK_* environment
// variables and Docker secrets, then validates the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if env, ok := environmentOverride(); ok {
		cfg.Environment = env
	}

	applySecrets(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceKeys = map[string]bool{
	"cors.allow_origins": true,
}

// envTransform maps ANDCOOK_RATE_LIMIT__UPLOAD to rate_limit.upload and splits
// comma separated list values.
func envTransform(key, value string) (string, interface{}) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")

	if sliceKeys[key] {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return key, out
	}
	return key, value
}

// applySecrets overrides credentials with Docker secrets when present.
func applySecrets(cfg *Config) {
	targets := map[string]*string{
		"db_user":            &cfg.Database.User,
		"db_password":        &cfg.Database.Password,
		"jwt_secret":         &cfg.Auth.JWTSecret,
		"redis_password":     &cfg.Redis.Password,
		"redis_url":          &cfg.Redis.URL,
		"storage_access_key": &cfg.Storage.AccessKey,
		"storage_secret_key": &cfg.Storage.SecretKey,
	}
	for name, dst := range targets {
		if v := readSecret(name); v != "" {
			*dst = v
		}
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv(SecretsDirEnvVar)
	if secretsDir == "" {
		secretsDir = defaultSecretsDir
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
