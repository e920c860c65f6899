package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter is a fixed-window attempt counter shared by every API instance.
// Key format: <namespace>:ratelimit:<scope>:<key>
type RateLimiter struct {
	store  *Store
	scope  string
	limit  int64
	window time.Duration
}

// NewRateLimiter allows limit attempts per key within each window.
func NewRateLimiter(store *Store, scope string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{store: store, scope: scope, limit: int64(limit), window: window}
}

// Allow counts one attempt for key and reports whether it is within the limit.
// The window starts with the first attempt.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.store.Key("ratelimit", l.scope, key)

	pipe := l.store.Client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit: %w", err)
	}
	return incr.Val() <= l.limit, nil
}
