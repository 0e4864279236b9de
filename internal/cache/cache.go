// Package cache keeps fetched article text between runs so repeated runs do
// not download the same page twice.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/tsawler/textmetrics/internal/config"
	"github.com/tsawler/textmetrics/internal/store"
)

// ErrMiss is returned by Get when no text is cached for an id.
var ErrMiss = errors.New("cache miss")

// Cache stores article text by article id.
type Cache interface {
	Get(ctx context.Context, id string) (string, error)
	Put(ctx context.Context, id, text string) error
	Close() error
}

// Open returns the backend selected by cfg.Backend. The sqlite and postgres
// backends keep text in the database named by dsn.
func Open(cfg config.CacheConfig, dsn string, logger *log.Logger) (Cache, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "none":
		return Nop{}, nil
	case "file":
		return NewFile(cfg.Dir)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedis(client, cfg.TTL), nil
	case "sqlite", "postgres":
		s, err := store.Open(dsn, logger)
		if err != nil {
			return nil, fmt.Errorf("open cache store: %w", err)
		}
		return NewStore(s, true), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (string, error) { return "", ErrMiss }
func (Nop) Put(context.Context, string, string) error   { return nil }
func (Nop) Close() error                                { return nil }
