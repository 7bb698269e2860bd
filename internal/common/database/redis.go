package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lead-intake/internal/common/config"
)

type RedisClient struct {
	Client *redis.Client
}

// NewRedis builds the client lazily; nothing is dialled until the first
// command. The limiter only issues short INCR/EXPIRE/TTL calls, so timeouts
// are kept well under the request budget.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	opts := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	}

	opts.DialTimeout = 2 * time.Second
	opts.ReadTimeout = 500 * time.Millisecond
	opts.WriteTimeout = 500 * time.Millisecond
	opts.PoolSize = 10
	opts.MinIdleConns = 2

	return &RedisClient{Client: redis.NewClient(opts)}, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}
