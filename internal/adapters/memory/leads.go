package memory

import (
	"context"
	"sync"
	"time"

	"leadblitz/internal/domain"
	"leadblitz/internal/ports"
)

type LeadRepository struct {
	mu    sync.RWMutex
	leads map[string]domain.Lead
}

func NewLeadRepository() *LeadRepository {
	return &LeadRepository{leads: map[string]domain.Lead{}}
}

func (r *LeadRepository) Get(_ context.Context, userID, leadID string) (domain.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.leads[leadID]
	if !ok || l.UserID != userID {
		return domain.Lead{}, ports.ErrNotFound
	}
	return l, nil
}

func (r *LeadRepository) ListByIDs(_ context.Context, userID string, ids []string) ([]domain.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Lead, 0, len(ids))
	for _, id := range ids {
		if l, ok := r.leads[id]; ok && l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *LeadRepository) CreateBatch(_ context.Context, leads []domain.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, l := range leads {
		if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}
		r.leads[l.ID] = l
	}
	return nil
}

func (r *LeadRepository) SaveScore(_ context.Context, leadID string, result domain.CombinedResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[leadID]
	if !ok {
		return ports.ErrNotFound
	}
	score := result.FinalScore
	heur := result.HeuristicScore
	ai := result.AIScore
	l.Score = &score
	l.HeuristicScore = &heur
	l.AIScore = &ai
	res := result
	l.ScoreBreakdown = &res
	l.Technographics = result.Technographics
	now := time.Now()
	l.LastScoredAt = &now
	r.leads[leadID] = l
	return nil
}

func (r *LeadRepository) SaveContact(_ context.Context, leadID, email, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[leadID]
	if !ok {
		return ports.ErrNotFound
	}
	if email != "" {
		l.Email = email
	}
	if phone != "" {
		l.Phone = phone
	}
	r.leads[leadID] = l
	return nil
}
