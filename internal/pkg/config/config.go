package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	LogFormat string        `env:"LOG_FORMAT, default=json"`

	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Workers   WorkerConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=transportconnect"`
}

type RedisConfig struct {
	Addr         string        `env:"REDIS_ADDR,           default=localhost:6379"`
	Password     string        `env:"REDIS_PASSWORD"`
	DB           int           `env:"REDIS_DB,             default=0"`
	PoolSize     int           `env:"REDIS_POOL_SIZE,      default=20"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS, default=2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT,   default=5s"`
	// Namespace prefixes every key so several deployments can share one Redis.
	Namespace string `env:"REDIS_NAMESPACE, default=tc"`
}

// RateLimitConfig bounds login attempts per client IP.
type RateLimitConfig struct {
	LoginAttempts int           `env:"LOGIN_RATE_LIMIT,  default=5"`
	LoginWindow   time.Duration `env:"LOGIN_RATE_WINDOW, default=15m"`
}

type WorkerConfig struct {
	PositionWorkers       int    `env:"POSITION_WORKERS,        default=8"`
	AnnonceExpirySchedule string `env:"ANNONCE_EXPIRY_SCHEDULE, default=@every 10m"`
}

// Load reads an optional .env file, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
