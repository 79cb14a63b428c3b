package ports

import (
	"context"
	"errors"

	"leadblitz/internal/domain"
)

// Sentinel errors shared by every repository backend.
var (
	ErrNotFound             = errors.New("not found")
	ErrDuplicateTransaction = errors.New("duplicate transaction")
)

// CacheRepository stores scoring results keyed by url hash. Lookups return
// the raw entry; freshness policy belongs to the caller.
type CacheRepository interface {
	GetScore(ctx context.Context, urlHash string) (entry domain.ScoreCacheEntry, found bool, err error)
	PutScore(ctx context.Context, entry domain.ScoreCacheEntry) error
}

// CreditTxn is the mutation scope passed to CreditRepository.WithUser. The
// credits row and drip cursor are held under an exclusive per-user lock;
// every change made through the scope commits atomically or not at all.
type CreditTxn interface {
	Credits() *domain.UserCredits
	State() *domain.CreditState
	Append(tx domain.CreditTransaction)
}

// CreditRepository manages the per-user balance row, drip cursor, and the
// append-only transaction ledger.
type CreditRepository interface {
	// GetOrCreate lazily creates a zero-balance row on first access.
	GetOrCreate(ctx context.Context, userID string) (domain.UserCredits, error)
	GetState(ctx context.Context, userID string) (domain.CreditState, error)

	// WithUser runs fn while holding an exclusive lock on the user's credit
	// row. If fn returns an error everything is rolled back.
	WithUser(ctx context.Context, userID string, fn func(CreditTxn) error) error

	// HasExternalRef reports whether a ledger entry with the given external
	// reference already exists (payment idempotency).
	HasExternalRef(ctx context.Context, ref string) (bool, error)

	ListTransactions(ctx context.Context, userID string, limit int) ([]domain.CreditTransaction, error)
}

// LeadRepository stores leads and their scoring/enrichment output.
type LeadRepository interface {
	Get(ctx context.Context, userID, leadID string) (domain.Lead, error)
	ListByIDs(ctx context.Context, userID string, ids []string) ([]domain.Lead, error)
	CreateBatch(ctx context.Context, leads []domain.Lead) error
	SaveScore(ctx context.Context, leadID string, result domain.CombinedResult) error
	SaveContact(ctx context.Context, leadID, email, phone string) error
}

// SubscriptionRepository exposes the subscriptions the drip scheduler walks.
type SubscriptionRepository interface {
	GetByUser(ctx context.Context, userID string) (domain.UserSubscription, error)
	ListIssuable(ctx context.Context) ([]domain.UserSubscription, error)
}

// PaymentRepository records completed checkout sessions.
type PaymentRepository interface {
	Create(ctx context.Context, p domain.Payment) error
}
