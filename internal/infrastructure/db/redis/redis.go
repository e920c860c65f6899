package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Config mirrors the REDIS_* settings.
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	Namespace    string
}

// Store is a Redis client scoped to one key namespace. Every key the API writes
// goes through Key.
type Store struct {
	Client    *redis.Client
	namespace string
}

// NewStore wraps an existing client.
func NewStore(client *redis.Client, namespace string) *Store {
	return &Store{Client: client, namespace: strings.Trim(namespace, ":")}
}

// Connect opens the pool described by cfg and checks it with a ping.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return NewStore(client, cfg.Namespace), nil
}

// Key joins parts under the store namespace: <namespace>:<part>:<part>...
func (s *Store) Key(parts ...string) string {
	if s.namespace == "" {
		return strings.Join(parts, ":")
	}
	return s.namespace + ":" + strings.Join(parts, ":")
}

func (s *Store) Close() error {
	return s.Client.Close()
}
