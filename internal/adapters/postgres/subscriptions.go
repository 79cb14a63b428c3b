package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"leadblitz/internal/domain"
	"leadblitz/internal/ports"
)

type SubscriptionRepository struct {
	db *DB
}

func NewSubscriptionRepository(db *DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subColumns = `
	id, user_id, package_id, status, COALESCE(stripe_subscription_id, ''),
	current_period_start, current_period_end, cancel_at_period_end`

func scanSub(row pgx.Row) (domain.UserSubscription, error) {
	var s domain.UserSubscription
	err := row.Scan(&s.ID, &s.UserID, &s.PackageID, &s.Status, &s.StripeSubscriptionID,
		&s.CurrentPeriodStart, &s.CurrentPeriodEnd, &s.CancelAtPeriodEnd)
	return s, err
}

func (r *SubscriptionRepository) GetByUser(ctx context.Context, userID string) (domain.UserSubscription, error) {
	s, err := scanSub(r.db.Pool.QueryRow(ctx, `
		SELECT `+subColumns+`
		FROM user_subscriptions
		WHERE user_id = $1
		ORDER BY current_period_start DESC
		LIMIT 1
	`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserSubscription{}, ports.ErrNotFound
	}
	return s, err
}

// ListIssuable returns subscriptions the drip scheduler should consider:
// active or canceling, inside their current period.
func (r *SubscriptionRepository) ListIssuable(ctx context.Context) ([]domain.UserSubscription, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+subColumns+`
		FROM user_subscriptions
		WHERE status IN ('active', 'canceling')
		  AND current_period_end >= now()
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UserSubscription
	for rows.Next() {
		s, err := scanSub(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type PaymentRepository struct {
	db *DB
}

func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p domain.Payment) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO payments (id, user_id, session_id, amount_cents, credits_purchased, plan_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.UserID, p.SessionID, p.AmountCents, p.CreditsPurchased, p.PlanName, p.Status)
	return err
}
