// internal/storefront/storage/storage.go

// Package storage is the storefront's local persistent key-value store.
// It holds the guest cart blob and the auth token.
package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/ecommerce-storefront/internal/config"
)

// Storage is a string key-value store with get, set and remove
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// New builds the storage backend selected by STOREFRONT_STORAGE
func New(cfg *config.Config, redisClient *redis.Client) (Storage, error) {
	switch cfg.Storefront.StorageProvider {
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("redis storage requires a redis client")
		}
		return NewRedisStorage(redisClient, cfg.Storefront.StorageKeyspace), nil
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Storefront.StorageProvider)
	}
}
