package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hazemadel/quotedesk-backend/pkg/config"
	"github.com/redis/go-redis/v9"
)

const redisKeyNamespace = "quotedesk"

// RedisStore implements Store on a shared Redis, for deployments where the
// quoting API runs on ephemeral hosts.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis URL is required for the redis storage driver")
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, namespaced(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	err := r.client.Set(ctx, namespaced(key), value, 0).Err()
	if err != nil && isRedisOOM(err) {
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, err)
	}
	return err
}

func (r *RedisStore) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, namespaced(key)).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func namespaced(key string) string {
	return redisKeyNamespace + ":" + key
}

// isRedisOOM matches the error Redis returns when maxmemory is reached
// under a noeviction policy.
func isRedisOOM(err error) bool {
	return strings.HasPrefix(strings.ToUpper(err.Error()), "OOM")
}
