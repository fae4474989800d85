// internal/storefront/storage/memory.go
package storage

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStorage is an in-process storage for single-process clients and tests
type MemoryStorage struct {
	store *gocache.Cache
}

// NewMemoryStorage creates an in-memory storage whose entries never expire
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		store: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get returns the stored value and whether it exists
func (s *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	value, ok := s.store.Get(key)
	if !ok {
		return "", false, nil
	}
	str, _ := value.(string)
	return str, true, nil
}

// Set stores value under key
func (s *MemoryStorage) Set(_ context.Context, key, value string) error {
	s.store.Set(key, value, gocache.NoExpiration)
	return nil
}

// Remove deletes key
func (s *MemoryStorage) Remove(_ context.Context, key string) error {
	s.store.Delete(key)
	return nil
}
