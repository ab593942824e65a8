package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces translation keys in a shared Redis.
const DefaultRedisPrefix = "lens:tr:"

// RedisStore shares cached translations between lens processes. Keys carry no TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	writes atomic.Int64
}

// NewRedisStore connects to redisURL (redis://[:password@]host:port/db) and verifies
// the connection with a PING.
func NewRedisStore(ctx context.Context, redisURL, prefix string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	slog.Info("Translation cache backed by redis", "addr", opt.Addr, "db", opt.DB, "prefix", prefix)
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) redisKey(key CacheKey) string {
	return s.prefix + key.Source + ":" + key.Target + ":" + key.Text
}

func (s *RedisStore) Get(ctx context.Context, key CacheKey) (string, bool, error) {
	v, err := s.client.Get(ctx, s.redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key CacheKey, value string) error {
	if err := s.client.Set(ctx, s.redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	s.writes.Add(1)
	return nil
}

// Len reports the number of entries written by this process.
func (s *RedisStore) Len() int {
	return int(s.writes.Load())
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
