package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisPrefix namespaces the store's keys inside a shared Redis database.
const DefaultRedisPrefix = "soulball:"

// Redis implements Medium on top of a Redis server. Redis only stores
// strings, which is exactly what the store hands it.
type Redis struct {
	inner  *redis.Client
	prefix string
}

// NewRedis connects to addr and verifies the connection with a PING.
func NewRedis(ctx context.Context, addr, password, prefix string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0, // use default DB
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return newRedisWithClient(client, prefix), nil
}

func newRedisWithClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{inner: client, prefix: prefix}
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

// Close closes the Redis client.
func (r *Redis) Close() error {
	return r.inner.Close()
}

// Get returns the value stored under key. The bool is false when the key is absent.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.inner.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key without expiration.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.inner.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.inner.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// MultiRemove deletes all given keys with a single DEL.
func (r *Redis) MultiRemove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	if err := r.inner.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("remove keys: %w", err)
	}
	return nil
}
