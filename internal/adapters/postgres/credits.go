package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"leadblitz/internal/domain"
	"leadblitz/internal/ports"
)

type CreditRepository struct {
	db *DB
}

func NewCreditRepository(db *DB) *CreditRepository {
	return &CreditRepository{db: db}
}

func (r *CreditRepository) GetOrCreate(ctx context.Context, userID string) (domain.UserCredits, error) {
	var c domain.UserCredits
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO user_credits (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, balance, total_purchased, total_used, COALESCE(stripe_customer_id, ''), updated_at
	`, userID).Scan(&c.UserID, &c.Balance, &c.TotalPurchased, &c.TotalUsed, &c.StripeCustomerID, &c.UpdatedAt)
	return c, err
}

func (r *CreditRepository) GetState(ctx context.Context, userID string) (domain.CreditState, error) {
	var st domain.CreditState
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO credit_state (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, last_issued_at, weeks_issued, updated_at
	`, userID).Scan(&st.UserID, &st.LastIssuedAt, &st.WeeksIssued, &st.UpdatedAt)
	return st, err
}

type creditTxn struct {
	credits *domain.UserCredits
	state   *domain.CreditState
	pending []domain.CreditTransaction
}

func (t *creditTxn) Credits() *domain.UserCredits       { return t.credits }
func (t *creditTxn) State() *domain.CreditState         { return t.state }
func (t *creditTxn) Append(tx domain.CreditTransaction) { t.pending = append(t.pending, tx) }

// WithUser locks the user's credit and state rows, runs fn, and writes the
// mutated rows plus every appended ledger entry in one transaction.
func (r *CreditRepository) WithUser(ctx context.Context, userID string, fn func(ports.CreditTxn) error) (err error) {
	if _, err = r.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	if _, err = r.GetState(ctx, userID); err != nil {
		return err
	}

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

	var credits domain.UserCredits
	err = tx.QueryRow(ctx, `
		SELECT user_id, balance, total_purchased, total_used, COALESCE(stripe_customer_id, ''), updated_at
		FROM user_credits
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&credits.UserID, &credits.Balance, &credits.TotalPurchased,
		&credits.TotalUsed, &credits.StripeCustomerID, &credits.UpdatedAt)
	if err != nil {
		return err
	}

	var state domain.CreditState
	err = tx.QueryRow(ctx, `
		SELECT user_id, last_issued_at, weeks_issued, updated_at
		FROM credit_state
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&state.UserID, &state.LastIssuedAt, &state.WeeksIssued, &state.UpdatedAt)
	if err != nil {
		return err
	}

	scope := &creditTxn{credits: &credits, state: &state}
	if err = fn(scope); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE user_credits
		SET balance=$2, total_purchased=$3, total_used=$4,
		    stripe_customer_id=NULLIF($5, ''), updated_at=now()
		WHERE user_id=$1
	`, userID, credits.Balance, credits.TotalPurchased, credits.TotalUsed, credits.StripeCustomerID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `
		UPDATE credit_state
		SET last_issued_at=$2, weeks_issued=$3, updated_at=now()
		WHERE user_id=$1
	`, userID, state.LastIssuedAt, state.WeeksIssued); err != nil {
		return err
	}

	for _, entry := range scope.pending {
		if _, err = tx.Exec(ctx, `
			INSERT INTO credit_transactions (id, user_id, amount, transaction_type, description, external_ref, balance_after)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		`, entry.ID, userID, entry.Amount, entry.Type, entry.Description, entry.ExternalRef, entry.BalanceAfter); err != nil {
			if isUniqueViolation(err) {
				err = ports.ErrDuplicateTransaction
			}
			return err
		}
	}
	return nil
}

func (r *CreditRepository) HasExternalRef(ctx context.Context, ref string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM credit_transactions WHERE external_ref = $1)
	`, ref).Scan(&exists)
	return exists, err
}

func (r *CreditRepository) ListTransactions(ctx context.Context, userID string, limit int) ([]domain.CreditTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, user_id, amount, transaction_type, description, COALESCE(external_ref, ''), balance_after, created_at
		FROM credit_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CreditTransaction
	for rows.Next() {
		var t domain.CreditTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Description,
			&t.ExternalRef, &t.BalanceAfter, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
