// Package driprunner sweeps subscriptions on an interval and issues the
// weekly credit batches that have come due.
package driprunner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"leadblitz/internal/services/credits"
)

type Runner struct {
	drip     *credits.Drip
	interval time.Duration
}

func New(drip *credits.Drip, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Runner{drip: drip, interval: interval}
}

// Run loops until the context is canceled. One sweep runs immediately so a
// restart never delays overdue batches by a full interval.
func (r *Runner) Run(ctx context.Context) {
	zap.L().Info("drip runner started", zap.Duration("interval", r.interval))
	r.drip.RunOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			zap.L().Info("drip runner stopped")
			return
		case <-ticker.C:
			r.drip.RunOnce(ctx)
		}
	}
}
