// Package memory holds in-process implementations of the repository ports.
// They back tests and single-node deployments that run without Postgres.
package memory

import (
	"context"
	"sync"

	"leadblitz/internal/domain"
)

type CacheRepository struct {
	mu      sync.RWMutex
	entries map[string]domain.ScoreCacheEntry
}

func NewCacheRepository() *CacheRepository {
	return &CacheRepository{entries: map[string]domain.ScoreCacheEntry{}}
}

func (r *CacheRepository) GetScore(_ context.Context, urlHash string) (domain.ScoreCacheEntry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[urlHash]
	return e, ok, nil
}

func (r *CacheRepository) PutScore(_ context.Context, entry domain.ScoreCacheEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.URLHash] = entry
	return nil
}
