package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// New creates a Redis client and checks it answers.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/cache: ping: %w", err)
	}

	return client, nil
}

// Optional is New for callers that can run without Redis. It returns nil and
// logs a warning when the server is unreachable.
func Optional(ctx context.Context, addr string, logger *slog.Logger) *redis.Client {
	if addr == "" {
		return nil
	}
	client, err := New(ctx, addr)
	if err != nil {
		if logger != nil {
			logger.Warn("redis unavailable, caching disabled", slog.String("addr", addr), slog.Any("error", err))
		}
		return nil
	}
	return client
}
