package memory

import (
	"context"
	"sync"

	"leadblitz/internal/domain"
	"leadblitz/internal/ports"
)

type SubscriptionRepository struct {
	mu   sync.RWMutex
	subs map[string]domain.UserSubscription
}

func NewSubscriptionRepository() *SubscriptionRepository {
	return &SubscriptionRepository{subs: map[string]domain.UserSubscription{}}
}

func (r *SubscriptionRepository) Put(sub domain.UserSubscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.UserID] = sub
}

func (r *SubscriptionRepository) GetByUser(_ context.Context, userID string) (domain.UserSubscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subs[userID]
	if !ok {
		return domain.UserSubscription{}, ports.ErrNotFound
	}
	return sub, nil
}

func (r *SubscriptionRepository) ListIssuable(_ context.Context) ([]domain.UserSubscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.UserSubscription
	for _, sub := range r.subs {
		if sub.Status == domain.SubActive || sub.Status == domain.SubCanceling {
			out = append(out, sub)
		}
	}
	return out, nil
}

type PaymentRepository struct {
	mu       sync.Mutex
	payments []domain.Payment
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{}
}

func (r *PaymentRepository) Create(_ context.Context, p domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = append(r.payments, p)
	return nil
}

// Payments returns a copy of everything recorded, newest last.
func (r *PaymentRepository) Payments() []domain.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Payment, len(r.payments))
	copy(out, r.payments)
	return out
}
