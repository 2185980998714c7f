package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iho/bankledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("CREDENTIAL_STORE", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.StoreDriver != config.DriverFile {
		t.Fatalf("expected file driver by default, got %s", cfg.StoreDriver)
	}

	if cfg.CredentialStore != config.DriverFile {
		t.Fatalf("expected credential store to follow store driver, got %s", cfg.CredentialStore)
	}

	if cfg.HTTPPort != "5000" {
		t.Fatalf("expected default HTTP port 5000, got %s", cfg.HTTPPort)
	}

	if cfg.AccountNumberLength != 10 {
		t.Fatalf("expected 10 digit account numbers, got %d", cfg.AccountNumberLength)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error without JWT secret")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("CREDENTIAL_STORE", "redis")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("JWT_SECRET", "top-secret")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.CredentialStore != config.DriverRedis || !cfg.UsesPostgres() {
		t.Fatalf("unexpected drivers: store=%s credentials=%s", cfg.StoreDriver, cfg.CredentialStore)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadDotenvFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	// registers cleanup; godotenv only sets unset variables
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("LOG_LEVEL=debug\nJWT_SECRET=from-file\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Fatalf("expected LOG_LEVEL from dotenv, got %s", cfg.LogLevel)
	}
	if cfg.JWTSecret != "from-env" {
		t.Fatalf("expected environment to win over dotenv, got %s", cfg.JWTSecret)
	}
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			StoreDriver:         config.DriverFile,
			CredentialStore:     config.DriverFile,
			DataDir:             "data",
			DatabaseMaxConns:    5,
			DatabaseMinConns:    1,
			LogFormat:           "json",
			JWTSecret:           "secret",
			AccountNumberLength: 10,
		}
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown store driver", func(c *config.Config) { c.StoreDriver = "sqlite" }},
		{"redis credentials without url", func(c *config.Config) { c.CredentialStore = config.DriverRedis }},
		{"postgres without url", func(c *config.Config) { c.StoreDriver = config.DriverPostgres }},
		{"file without data dir", func(c *config.Config) { c.DataDir = "" }},
		{"min conns above max", func(c *config.Config) { c.DatabaseMinConns = 10 }},
		{"account number too long", func(c *config.Config) { c.AccountNumberLength = 19 }},
		{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
	}

	base := valid()
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, config.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
