package config

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedisConnection opens and pings the shared coordination store.
func NewRedisConnection(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, err
	}
	return client, nil
}
