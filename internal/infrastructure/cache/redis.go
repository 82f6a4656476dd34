// Package cache holds the Redis connection and the small state stores kept in it.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/leasebot/internal/shared/config"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

const pingTimeout = 5 * time.Second

// NewRedisClient connects and pings. The caller owns Close.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, log logger.Interface) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.GetAddr(), err)
	}

	log.Infow("redis connection established", "addr", cfg.GetAddr(), "db", cfg.DB)
	return client, nil
}
