package scoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"leadblitz/internal/domain"
	"leadblitz/internal/ports"
)

// Cache is the read/write-through layer over the score store. Entries age
// out softly: a stale entry is skipped, not deleted.
type Cache struct {
	repo   ports.CacheRepository
	maxAge time.Duration
	now    func() time.Time
}

func NewCache(repo ports.CacheRepository, maxAge time.Duration) *Cache {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &Cache{repo: repo, maxAge: maxAge, now: time.Now}
}

// Lookup returns the cached entry for url if one exists and is fresh.
func (c *Cache) Lookup(ctx context.Context, url string) (domain.ScoreCacheEntry, bool) {
	entry, found, err := c.repo.GetScore(ctx, HashURL(url))
	if err != nil {
		zap.L().Warn("score cache read failed", zap.String("url", url), zap.Error(err))
		return domain.ScoreCacheEntry{}, false
	}
	if !found {
		return domain.ScoreCacheEntry{}, false
	}
	if c.now().Sub(entry.FetchedAt) > c.maxAge {
		return domain.ScoreCacheEntry{}, false
	}
	return entry, true
}

// Store writes the scoring output through to the cache. Failures are logged
// and swallowed; a broken cache never fails a scoring run.
func (c *Cache) Store(ctx context.Context, url string, heur *domain.HeuristicResult, ai *domain.AIResult, final int, confidence float64) {
	entry := domain.ScoreCacheEntry{
		URLHash:       HashURL(url),
		NormalizedURL: NormalizeURL(url),
		Heuristic:     heur,
		AI:            ai,
		FinalScore:    final,
		Confidence:    confidence,
		FetchedAt:     c.now(),
	}
	if err := c.repo.PutScore(ctx, entry); err != nil {
		zap.L().Warn("score cache write failed", zap.String("url", url), zap.Error(err))
	}
}
