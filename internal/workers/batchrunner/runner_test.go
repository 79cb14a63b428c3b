package batchrunner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"leadblitz/internal/adapters/memory"
	"leadblitz/internal/domain"
	"leadblitz/internal/services/credits"
)

type stubScorer struct{}

func (stubScorer) ScoreWebsite(_ context.Context, _ string, _ bool) domain.CombinedResult {
	return domain.CombinedResult{FinalScore: 42, HeuristicScore: 30, AIScore: 12}
}

func seedLeads(t *testing.T, repo *memory.LeadRepository, n int) []string {
	t.Helper()
	ids := make([]string, n)
	leads := make([]domain.Lead, n)
	for i := 0; i < n; i++ {
		ids[i] = fmt.Sprintf("lead-%d", i)
		leads[i] = domain.Lead{
			ID:      ids[i],
			UserID:  "u1",
			Name:    fmt.Sprintf("Business %d", i),
			Website: fmt.Sprintf("https://biz%d.example", i),
		}
	}
	if err := repo.CreateBatch(context.Background(), leads); err != nil {
		t.Fatal(err)
	}
	return ids
}

func TestRunScoresAllWithEnoughCredits(t *testing.T) {
	leads := memory.NewLeadRepository()
	cr := credits.NewService(memory.NewCreditRepository())
	status := memory.NewStatusStore(10)
	ctx := context.Background()

	if _, err := cr.Credit(ctx, "u1", 10, "cs_batch1", "top up"); err != nil {
		t.Fatal(err)
	}
	ids := seedLeads(t, leads, 5)

	runner := New(leads, stubScorer{}, cr, status, 3)
	runner.Run(ctx, "b1", "u1", ids)

	st, ok := status.Get("b1")
	if !ok {
		t.Fatal("status missing")
	}
	if !st.Done || st.Halted {
		t.Errorf("status = %+v, want done and not halted", st)
	}
	if st.Completed != 5 || st.Failed != 0 {
		t.Errorf("completed=%d failed=%d, want 5/0", st.Completed, st.Failed)
	}

	for _, id := range ids {
		l, err := leads.Get(ctx, "u1", id)
		if err != nil {
			t.Fatal(err)
		}
		if l.Score == nil || *l.Score != 42 {
			t.Errorf("lead %s score not saved", id)
		}
	}

	c, _ := cr.Balance(ctx, "u1")
	if c.Balance != 5 {
		t.Errorf("balance = %d, want 5 (one credit per lead)", c.Balance)
	}
}

func TestRunHaltsOnCreditExhaustion(t *testing.T) {
	leads := memory.NewLeadRepository()
	cr := credits.NewService(memory.NewCreditRepository())
	status := memory.NewStatusStore(10)
	ctx := context.Background()

	// 3 credits, 5 leads: 3 scored, halt on the 4th, skip the 5th.
	if _, err := cr.Credit(ctx, "u1", 3, "cs_batch2", "top up"); err != nil {
		t.Fatal(err)
	}
	ids := seedLeads(t, leads, 5)

	// Single worker keeps the processing order deterministic.
	runner := New(leads, stubScorer{}, cr, status, 1)
	runner.Run(ctx, "b2", "u1", ids)

	st, _ := status.Get("b2")
	if !st.Done {
		t.Fatal("batch not done")
	}
	if !st.Halted {
		t.Error("batch not halted on exhaustion")
	}
	if st.Completed != 3 {
		t.Errorf("completed = %d, want 3", st.Completed)
	}
	if st.Failed != 1 {
		t.Errorf("failed = %d, want exactly 1 for the halt", st.Failed)
	}
	if st.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", st.Skipped)
	}
	if st.Message == "" {
		t.Error("halt message missing")
	}

	c, _ := cr.Balance(ctx, "u1")
	if c.Balance != 0 {
		t.Errorf("balance = %d, want 0", c.Balance)
	}
}

func TestRunSkipsLeadsWithoutWebsite(t *testing.T) {
	leads := memory.NewLeadRepository()
	cr := credits.NewService(memory.NewCreditRepository())
	status := memory.NewStatusStore(10)
	ctx := context.Background()

	if _, err := cr.Credit(ctx, "u1", 10, "cs_batch3", "top up"); err != nil {
		t.Fatal(err)
	}
	if err := leads.CreateBatch(ctx, []domain.Lead{
		{ID: "l1", UserID: "u1", Name: "Has Site", Website: "https://a.example"},
		{ID: "l2", UserID: "u1", Name: "No Site"},
	}); err != nil {
		t.Fatal(err)
	}

	runner := New(leads, stubScorer{}, cr, status, 2)
	runner.Run(ctx, "b3", "u1", []string{"l1", "l2"})

	st, _ := status.Get("b3")
	if st.Completed != 1 || st.Skipped != 1 {
		t.Errorf("completed=%d skipped=%d, want 1/1", st.Completed, st.Skipped)
	}

	c, _ := cr.Balance(ctx, "u1")
	if c.Balance != 9 {
		t.Errorf("balance = %d, want 9 (no charge for skipped lead)", c.Balance)
	}
}

func TestStartReturnsPollableID(t *testing.T) {
	leads := memory.NewLeadRepository()
	cr := credits.NewService(memory.NewCreditRepository())
	status := memory.NewStatusStore(10)
	ctx := context.Background()

	if _, err := cr.Credit(ctx, "u1", 5, "cs_batch4", "top up"); err != nil {
		t.Fatal(err)
	}
	ids := seedLeads(t, leads, 2)

	runner := New(leads, stubScorer{}, cr, status, 2)
	batchID := runner.Start(ctx, "u1", ids)
	if batchID == "" {
		t.Fatal("no batch id")
	}

	deadline := time.After(2 * time.Second)
	for {
		if st, ok := status.Get(batchID); ok && st.Done {
			if st.Completed != 2 {
				t.Errorf("completed = %d, want 2", st.Completed)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("batch never finished")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
