package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"leadblitz/internal/domain"
)

type CacheRepository struct {
	db *DB
}

func NewCacheRepository(db *DB) *CacheRepository {
	return &CacheRepository{db: db}
}

func (r *CacheRepository) GetScore(ctx context.Context, urlHash string) (domain.ScoreCacheEntry, bool, error) {
	var entry domain.ScoreCacheEntry
	err := r.db.Pool.QueryRow(ctx, `
		SELECT url_hash, normalized_url, heuristic_result, ai_result, final_score, confidence, fetched_at
		FROM score_cache
		WHERE url_hash = $1
	`, urlHash).Scan(&entry.URLHash, &entry.NormalizedURL, &entry.Heuristic, &entry.AI,
		&entry.FinalScore, &entry.Confidence, &entry.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ScoreCacheEntry{}, false, nil
	}
	if err != nil {
		return domain.ScoreCacheEntry{}, false, err
	}
	return entry, true, nil
}

func (r *CacheRepository) PutScore(ctx context.Context, entry domain.ScoreCacheEntry) error {
	// One row per url hash; re-scores overwrite.
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO score_cache (url_hash, normalized_url, heuristic_result, ai_result, final_score, confidence, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (url_hash) DO UPDATE SET
			normalized_url = EXCLUDED.normalized_url,
			heuristic_result = EXCLUDED.heuristic_result,
			ai_result = EXCLUDED.ai_result,
			final_score = EXCLUDED.final_score,
			confidence = EXCLUDED.confidence,
			fetched_at = EXCLUDED.fetched_at
	`, entry.URLHash, entry.NormalizedURL, entry.Heuristic, entry.AI,
		entry.FinalScore, entry.Confidence, entry.FetchedAt)
	return err
}
