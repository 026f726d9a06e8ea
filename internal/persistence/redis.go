package persistence

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisClient backs the idempotency cache (internal/orchestrator) only — the
// rate limiter itself stays in-process per §9.
type RedisClient struct {
	*redis.Client
}

func NewRedis(ctx context.Context, url string) (*RedisClient, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisClient{Client: client}, nil
}
