package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aryan0dhankhar/interntrack/internal/reliability/circuitbreaker"
)

// TokenCache caches bearer token lookups in Redis. Calls are guarded by a
// circuit breaker: when Redis misbehaves the cache reports misses and the
// token service falls through to the database.
type TokenCache struct {
	client  *Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewTokenCache creates a Redis-backed token cache
func NewTokenCache(client *Client, logger *slog.Logger) *TokenCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenCache{
		client:  client,
		breaker: circuitbreaker.New(5, 2, 30*time.Second),
		logger:  logger,
	}
}

// GetUserID returns the cached user ID for a token key, if present.
func (c *TokenCache) GetUserID(ctx context.Context, key string) (string, bool) {
	var userID string
	miss := false

	err := c.breaker.Execute(func() error {
		v, err := c.client.Get(ctx, "token:"+key)
		if errors.Is(err, redis.Nil) {
			miss = true
			return nil
		}
		if err != nil {
			return err
		}
		userID = v
		return nil
	})
	if err != nil {
		if !errors.Is(err, circuitbreaker.ErrOpen) {
			c.logger.Warn("token cache read failed", slog.String("error", err.Error()))
		}
		return "", false
	}
	if miss {
		return "", false
	}
	return userID, true
}

// SetUserID caches a token→user mapping for ttl.
func (c *TokenCache) SetUserID(ctx context.Context, key, userID string, ttl time.Duration) {
	err := c.breaker.Execute(func() error {
		return c.client.Set(ctx, "token:"+key, userID, ttl)
	})
	if err != nil && !errors.Is(err, circuitbreaker.ErrOpen) {
		c.logger.Warn("token cache write failed", slog.String("error", err.Error()))
	}
}

// Forget drops a cached token, for example after revocation.
func (c *TokenCache) Forget(ctx context.Context, key string) {
	err := c.breaker.Execute(func() error {
		return c.client.Delete(ctx, "token:"+key)
	})
	if err != nil && !errors.Is(err, circuitbreaker.ErrOpen) {
		c.logger.Warn("token cache delete failed", slog.String("error", err.Error()))
	}
}
