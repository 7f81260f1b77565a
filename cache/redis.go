package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds connection parameters for the Redis server.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisProvider implements Provider backed by a Redis-compatible server.
type RedisProvider struct {
	rdb *redis.Client
}

var _ Provider = (*RedisProvider)(nil)

// NewRedisProvider creates a Provider using the supplied configuration.
// It performs a ping against the target to fail fast when credentials
// or connectivity are incorrect.
func NewRedisProvider(ctx context.Context, cfg RedisConfig) (*RedisProvider, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis addr is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisProvider{rdb: rdb}, nil
}

// Get fetches bytes by key, returning ErrCacheMiss when the key is
// absent.
func (p *RedisProvider) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := p.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return data, nil
}

// Set stores bytes with the provided TTL.
func (p *RedisProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return p.rdb.Set(ctx, key, value, ttl).Err()
}

// Close closes the underlying client.
func (p *RedisProvider) Close() error {
	return p.rdb.Close()
}
