package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"leadblitz/internal/domain"
	"leadblitz/internal/ports"
)

type LeadRepository struct {
	db *DB
}

func NewLeadRepository(db *DB) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `
	id, user_id, COALESCE(campaign_id::text, ''), name, COALESCE(address, ''),
	COALESCE(phone, ''), COALESCE(email, ''), COALESCE(website, ''),
	COALESCE(rating, 0), COALESCE(review_count, 0),
	score, heuristic_score, ai_score, score_breakdown, technographics,
	stage, COALESCE(notes, ''), last_scored_at, created_at`

func scanLead(row pgx.Row) (domain.Lead, error) {
	var l domain.Lead
	err := row.Scan(&l.ID, &l.UserID, &l.CampaignID, &l.Name, &l.Address,
		&l.Phone, &l.Email, &l.Website, &l.Rating, &l.ReviewCount,
		&l.Score, &l.HeuristicScore, &l.AIScore, &l.ScoreBreakdown, &l.Technographics,
		&l.Stage, &l.Notes, &l.LastScoredAt, &l.CreatedAt)
	return l, err
}

func (r *LeadRepository) Get(ctx context.Context, userID, leadID string) (domain.Lead, error) {
	l, err := scanLead(r.db.Pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE id = $1 AND user_id = $2
	`, leadID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ports.ErrNotFound
	}
	return l, err
}

func (r *LeadRepository) ListByIDs(ctx context.Context, userID string, ids []string) ([]domain.Lead, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE user_id = $1 AND id = ANY($2)
		ORDER BY created_at
	`, userID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *LeadRepository) CreateBatch(ctx context.Context, leads []domain.Lead) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	for _, l := range leads {
		if _, err = tx.Exec(ctx, `
			INSERT INTO leads (id, user_id, campaign_id, name, address, phone, email, website, rating, review_count, stage)
			VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, $9, $10, $11)
		`, l.ID, l.UserID, l.CampaignID, l.Name, l.Address, l.Phone, l.Email,
			l.Website, l.Rating, l.ReviewCount, l.Stage); err != nil {
			return err
		}
	}
	return nil
}

func (r *LeadRepository) SaveScore(ctx context.Context, leadID string, result domain.CombinedResult) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE leads
		SET score=$2, heuristic_score=$3, ai_score=$4,
		    score_breakdown=$5, technographics=$6, last_scored_at=now()
		WHERE id=$1
	`, leadID, result.FinalScore, result.HeuristicScore, result.AIScore,
		result, result.Technographics)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *LeadRepository) SaveContact(ctx context.Context, leadID, email, phone string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE leads
		SET email = COALESCE(NULLIF($2, ''), email),
		    phone = COALESCE(NULLIF($3, ''), phone)
		WHERE id = $1
	`, leadID, email, phone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}
