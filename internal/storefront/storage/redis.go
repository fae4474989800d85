// internal/storefront/storage/redis.go
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps entries under "<keyspace>:<key>" with no expiry;
// the guest cart survives until it is cleared explicitly.
type RedisStorage struct {
	client   *redis.Client
	keyspace string
}

// NewRedisStorage creates a Redis-backed storage
func NewRedisStorage(client *redis.Client, keyspace string) *RedisStorage {
	return &RedisStorage{client: client, keyspace: keyspace}
}

func (s *RedisStorage) key(key string) string {
	if s.keyspace == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", s.keyspace, key)
}

// Get returns the stored value and whether it exists
func (s *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key
func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Remove deletes key; removing a missing key is not an error
func (s *RedisStorage) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
