package driprunner

import (
	"context"
	"testing"
	"time"

	"leadblitz/internal/adapters/memory"
	"leadblitz/internal/domain"
	"leadblitz/internal/services/credits"
)

func TestRunSweepsImmediatelyAndStopsOnCancel(t *testing.T) {
	repo := memory.NewCreditRepository()
	subs := memory.NewSubscriptionRepository()
	subs.Put(domain.UserSubscription{
		UserID:             "u1",
		PackageID:          "starter_monthly",
		Status:             domain.SubActive,
		CurrentPeriodStart: time.Now().Add(-time.Hour),
		CurrentPeriodEnd:   time.Now().Add(29 * 24 * time.Hour),
	})
	drip := credits.NewDrip(credits.NewService(repo), repo, subs)

	r := New(drip, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	// The first sweep runs before any tick, so week 1 lands right away.
	deadline := time.After(2 * time.Second)
	for {
		uc, err := repo.GetOrCreate(context.Background(), "u1")
		if err != nil {
			t.Fatal(err)
		}
		if uc.Balance == 63 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("balance = %d, want 63 from the immediate sweep", uc.Balance)
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop on context cancel")
	}
}

func TestNewDefaultsInterval(t *testing.T) {
	r := New(nil, 0)
	if r.interval != time.Hour {
		t.Errorf("interval = %v, want 1h default", r.interval)
	}
}
