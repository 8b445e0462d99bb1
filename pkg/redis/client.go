package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/flowrank/backend/pkg/config"
)

const connectTimeout = 5 * time.Second

// Client wraps go-redis behind an enable flag. With REDIS_ENABLED=false the
// client still constructs, and every cache operation becomes a no-op, so the
// report pipeline runs identically without a Redis instance.
// ⭐ SSOT: Redis 연결은 여기서만 관리
type Client struct {
	rdb     *redis.Client
	enabled bool
}

// New connects to Redis, or returns a disabled passthrough client when
// Redis is turned off in config
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: connectTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect %s:%s: %w", cfg.Redis.Host, cfg.Redis.Port, err)
	}

	return &Client{rdb: rdb, enabled: true}, nil
}

// Enabled reports whether a live Redis connection is behind this client
func (c *Client) Enabled() bool {
	return c.enabled
}

// Redis exposes the underlying go-redis client. Callers must check
// Enabled() first; a disabled client has no connection.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// Close releases the connection if one was established
func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
