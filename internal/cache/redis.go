package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "textmetrics:text:"

// redisClient is the part of *redis.Client the cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// Redis keeps article text in redis, optionally expiring after ttl.
type Redis struct {
	client redisClient
	ttl    time.Duration
}

// NewRedis wraps client. A zero ttl keeps entries forever.
func NewRedis(client redisClient, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, id string) (string, error) {
	text, err := r.client.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return text, nil
}

func (r *Redis) Put(ctx context.Context, id, text string) error {
	if err := r.client.Set(ctx, keyPrefix+id, text, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
