package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"leadblitz/internal/domain"
	"leadblitz/internal/ports"
)

type userCredits struct {
	mu      sync.Mutex
	credits domain.UserCredits
	state   domain.CreditState
	ledger  []domain.CreditTransaction
}

// CreditRepository keeps one locked record per user so concurrent WithUser
// calls for the same user serialize exactly like a row lock would.
type CreditRepository struct {
	mu    sync.Mutex
	users map[string]*userCredits
	refs  map[string]bool
}

func NewCreditRepository() *CreditRepository {
	return &CreditRepository{
		users: map[string]*userCredits{},
		refs:  map[string]bool{},
	}
}

func (r *CreditRepository) user(userID string) *userCredits {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		u = &userCredits{
			credits: domain.UserCredits{UserID: userID, UpdatedAt: time.Now()},
			state:   domain.CreditState{UserID: userID},
		}
		r.users[userID] = u
	}
	return u
}

func (r *CreditRepository) GetOrCreate(_ context.Context, userID string) (domain.UserCredits, error) {
	u := r.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.credits, nil
}

func (r *CreditRepository) GetState(_ context.Context, userID string) (domain.CreditState, error) {
	u := r.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state, nil
}

type creditTxn struct {
	credits *domain.UserCredits
	state   *domain.CreditState
	pending []domain.CreditTransaction
}

func (t *creditTxn) Credits() *domain.UserCredits       { return t.credits }
func (t *creditTxn) State() *domain.CreditState         { return t.state }
func (t *creditTxn) Append(tx domain.CreditTransaction) { t.pending = append(t.pending, tx) }

func (r *CreditRepository) WithUser(_ context.Context, userID string, fn func(ports.CreditTxn) error) error {
	u := r.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()

	// fn mutates copies; nothing sticks unless it succeeds.
	credits := u.credits
	state := u.state
	txn := &creditTxn{credits: &credits, state: &state}

	if err := fn(txn); err != nil {
		return err
	}

	// External refs are globally unique; claim them before committing.
	r.mu.Lock()
	for _, tx := range txn.pending {
		if tx.ExternalRef != "" && r.refs[tx.ExternalRef] {
			r.mu.Unlock()
			return ports.ErrDuplicateTransaction
		}
	}
	for _, tx := range txn.pending {
		if tx.ExternalRef != "" {
			r.refs[tx.ExternalRef] = true
		}
	}
	r.mu.Unlock()

	credits.UpdatedAt = time.Now()
	u.credits = credits
	u.state = state
	for _, tx := range txn.pending {
		if tx.CreatedAt.IsZero() {
			tx.CreatedAt = time.Now()
		}
		u.ledger = append(u.ledger, tx)
	}
	return nil
}

func (r *CreditRepository) HasExternalRef(_ context.Context, ref string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refs[ref], nil
}

func (r *CreditRepository) ListTransactions(_ context.Context, userID string, limit int) ([]domain.CreditTransaction, error) {
	u := r.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]domain.CreditTransaction, len(u.ledger))
	copy(out, u.ledger)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
