package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisTimeout = 5 * time.Second

// RedisBackend stores each key as a plain string value under prefix+key.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

var _ Backend = (*RedisBackend)(nil)

// NewRedisBackend connects to url and verifies the connection with a ping
// bounded by timeout.
func NewRedisBackend(ctx context.Context, url, prefix string, timeout time.Duration) (*RedisBackend, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultRedisTimeout
	}
	opt.DialTimeout = timeout
	opt.ReadTimeout = timeout
	opt.WriteTimeout = timeout

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisBackend{client: client, prefix: prefix}, nil
}

func (r *RedisBackend) Name() string { return "redis" }

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.prefix+key, err)
	}
	return data, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.prefix+key, err)
	}
	return nil
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
