package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.RateLimit.LoginAttempts != 5 || cfg.RateLimit.LoginWindow != 15*time.Minute {
		t.Fatalf("unexpected login rate limit: %+v", cfg.RateLimit)
	}
	if cfg.Workers.AnnonceExpirySchedule != "@every 10m" {
		t.Fatalf("unexpected expiry schedule %q", cfg.Workers.AnnonceExpirySchedule)
	}
	if cfg.Redis.Namespace != "tc" || cfg.Redis.PoolSize != 20 || cfg.Redis.DialTimeout != 5*time.Second {
		t.Fatalf("unexpected redis defaults: %+v", cfg.Redis)
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("unexpected log format %q", cfg.LogFormat)
	}
	if cfg.Mongo.Database != "transportconnect" {
		t.Fatalf("unexpected mongo database %q", cfg.Mongo.Database)
	}
}

func TestLoad_Overrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("LOGIN_RATE_LIMIT", "10")
	t.Setenv("POSITION_WORKERS", "2")
	t.Setenv("ENV", "production")
	t.Setenv("REDIS_PASSWORD", "s3cret")
	t.Setenv("REDIS_NAMESPACE", "staging")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" || cfg.RateLimit.LoginAttempts != 10 || cfg.Workers.PositionWorkers != 2 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Redis.Password != "s3cret" || cfg.Redis.Namespace != "staging" {
		t.Fatalf("redis overrides not applied: %+v", cfg.Redis)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production env")
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET", "placeholder")
	os.Unsetenv("JWT_SECRET")

	if _, err := Load(context.Background()); err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
