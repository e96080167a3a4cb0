package store

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/vango-dev/engine/internal/config"
)

// kv is the subset of Redis used by RedisStore. It is implemented by the
// go-redis client and by test doubles.
type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

type goRedis struct {
	client *redis.Client
}

func (g *goRedis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := g.client.Get(ctx, key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (g *goRedis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return g.client.Set(ctx, key, value, ttl).Err()
}

func (g *goRedis) Close() error {
	return g.client.Close()
}

// RedisStore caches snapshots in Redis with a TTL.
type RedisStore struct {
	kv     kv
	prefix string
	ttl    time.Duration
	cb     *gobreaker.CircuitBreaker
}

// NewRedisStore creates a store. No connection is opened until first use.
func NewRedisStore(cfg config.RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return newRedisStore(&goRedis{client: client}, cfg.Prefix, cfg.TTL, cfg.Addr)
}

func newRedisStore(client kv, prefix string, ttl time.Duration, name string) *RedisStore {
	return &RedisStore{
		kv:     client,
		prefix: prefix,
		ttl:    ttl,
		cb:     newBreaker("redis:" + name),
	}
}

// Get returns the cached snapshot.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	return guard(s.cb, "get", key, func() ([]byte, error) {
		return s.kv.Get(ctx, s.prefix+key)
	})
}

// Put caches the snapshot for the configured TTL. Zero TTL keeps it until
// evicted.
func (s *RedisStore) Put(ctx context.Context, key string, data []byte) error {
	_, err := guard(s.cb, "put", key, func() ([]byte, error) {
		return nil, s.kv.Set(ctx, s.prefix+key, data, s.ttl)
	})
	return err
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.kv.Close()
}
