// Package batchrunner scores many leads in the background with a bounded
// worker pool, charging one credit per AI-scored lead and halting cleanly
// when the balance runs out.
package batchrunner

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"leadblitz/internal/domain"
	"leadblitz/internal/ports"
	"leadblitz/internal/services/credits"
)

// Scorer is the slice of the scoring orchestrator the runner needs.
type Scorer interface {
	ScoreWebsite(ctx context.Context, url string, useCache bool) domain.CombinedResult
}

type Runner struct {
	leads   ports.LeadRepository
	scorer  Scorer
	credits *credits.Service
	status  ports.StatusStore
	workers int
}

func New(leads ports.LeadRepository, scorer Scorer, cr *credits.Service, status ports.StatusStore, workers int) *Runner {
	if workers <= 0 {
		workers = 10
	}
	return &Runner{leads: leads, scorer: scorer, credits: cr, status: status, workers: workers}
}

// Start kicks off a batch and returns its id immediately. Progress is
// polled through the status store.
func (r *Runner) Start(ctx context.Context, userID string, leadIDs []string) string {
	batchID := uuid.NewString()
	st := ports.BatchStatus{
		ID:        batchID,
		Kind:      "scoring",
		Total:     len(leadIDs),
		StartedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	r.status.Put(batchID, st)

	go r.Run(ctx, batchID, userID, leadIDs)
	return batchID
}

// Run processes the batch synchronously. Each lead is debited before it is
// scored; the first failed debit halts the batch, counts one failure, and
// skips the rest.
func (r *Runner) Run(ctx context.Context, batchID, userID string, leadIDs []string) {
	st := ports.BatchStatus{
		ID:        batchID,
		Kind:      "scoring",
		Total:     len(leadIDs),
		StartedAt: time.Now(),
	}
	var mu sync.Mutex
	update := func(fn func(*ports.BatchStatus)) {
		mu.Lock()
		fn(&st)
		st.UpdatedAt = time.Now()
		r.status.Put(batchID, st)
		mu.Unlock()
	}
	update(func(*ports.BatchStatus) {})

	halted := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return st.Halted
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, leadID := range leadIDs {
		g.Go(func() error {
			if halted() {
				update(func(s *ports.BatchStatus) { s.Skipped++ })
				return nil
			}

			lead, err := r.leads.Get(gctx, userID, leadID)
			if err != nil {
				zap.L().Warn("batch: lead lookup failed",
					zap.String("lead_id", leadID), zap.Error(err))
				update(func(s *ports.BatchStatus) { s.Failed++ })
				return nil
			}
			if lead.Website == "" {
				update(func(s *ports.BatchStatus) { s.Skipped++ })
				return nil
			}

			ok, _, err := r.credits.Debit(gctx, userID, credits.ActionAIScoring, 1, "Score "+lead.Name)
			if err != nil {
				update(func(s *ports.BatchStatus) { s.Failed++ })
				return nil
			}
			if !ok {
				update(func(s *ports.BatchStatus) {
					if !s.Halted {
						s.Halted = true
						s.Failed++
						s.Message = "Insufficient credits, batch halted"
					} else {
						s.Skipped++
					}
				})
				return nil
			}

			result := r.scorer.ScoreWebsite(gctx, lead.Website, true)
			if err := r.leads.SaveScore(gctx, leadID, result); err != nil {
				zap.L().Error("batch: saving score failed",
					zap.String("lead_id", leadID), zap.Error(err))
				update(func(s *ports.BatchStatus) { s.Failed++ })
				return nil
			}
			update(func(s *ports.BatchStatus) { s.Completed++ })
			return nil
		})
	}
	g.Wait()

	update(func(s *ports.BatchStatus) { s.Done = true })
	mu.Lock()
	final := st
	mu.Unlock()
	zap.L().Info("batch finished",
		zap.String("batch_id", batchID),
		zap.Int("completed", final.Completed),
		zap.Int("failed", final.Failed),
		zap.Int("skipped", final.Skipped),
		zap.Bool("halted", final.Halted))
}
