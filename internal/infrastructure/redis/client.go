package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aryan0dhankhar/interntrack/internal/reliability/retry"
)

const connectTimeout = 5 * time.Second

// Client wraps go-redis with the handful of string operations the token
// cache needs.
type Client struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewClient connects to Redis at the given URL and verifies the connection
// with a ping before returning.
func NewClient(url string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	// Redis may still be starting; retry the handshake with backoff.
	_, err = retry.Do(context.Background(), retry.DefaultConfig(), logger, "redis ping",
		func(ctx context.Context) (struct{}, error) {
			pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
			defer cancel()
			return struct{}{}, rdb.Ping(pingCtx).Err()
		})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("redis connected", slog.String("addr", opts.Addr))
	return &Client{rdb: rdb, logger: logger}, nil
}

// Set stores a value with a TTL
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Get retrieves a value
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

// Delete removes a key
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// Ping checks connectivity
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
