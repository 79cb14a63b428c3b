package places

import (
	"context"
	"errors"
	"testing"

	"leadblitz/internal/adapters/memory"
	"leadblitz/internal/domain"
)

type stubPlaces struct {
	page domain.PlacePage
	err  error
}

func (s stubPlaces) Search(_ context.Context, _, _, _ string, _ int) (domain.PlacePage, error) {
	return s.page, s.err
}

func TestSearchStoresLeads(t *testing.T) {
	leads := memory.NewLeadRepository()
	svc := New(stubPlaces{page: domain.PlacePage{
		Places: []domain.Place{
			{Name: "Acme Roofing", Website: "https://acme.example", Rating: 4.5, ReviewCount: 32},
			{Name: "Best Gutters", Phone: "555-0100"},
		},
		NextPageToken: "tok2",
	}}, leads)

	res, err := svc.Search(context.Background(), "u1", "c1", "roofer", "Austin TX", "", 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Leads) != 2 {
		t.Fatalf("stored %d leads, want 2", len(res.Leads))
	}
	if res.NextPageToken != "tok2" {
		t.Errorf("token = %q, want tok2", res.NextPageToken)
	}
	for _, l := range res.Leads {
		if l.ID == "" || l.UserID != "u1" || l.CampaignID != "c1" || l.Stage != "new" {
			t.Errorf("lead not initialized: %+v", l)
		}
		stored, err := leads.Get(context.Background(), "u1", l.ID)
		if err != nil {
			t.Errorf("lead %s not persisted: %v", l.ID, err)
		}
		if stored.Name != l.Name {
			t.Errorf("stored name %q != %q", stored.Name, l.Name)
		}
	}
}

func TestSearchZeroResults(t *testing.T) {
	svc := New(stubPlaces{}, memory.NewLeadRepository())
	res, err := svc.Search(context.Background(), "u1", "c1", "unicorn wrangler", "Nowhere", "", 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Leads) != 0 || res.NextPageToken != "" {
		t.Errorf("zero-result search: %+v, want empty page", res)
	}
}

func TestSearchProviderError(t *testing.T) {
	svc := New(stubPlaces{err: errors.New("REQUEST_DENIED")}, memory.NewLeadRepository())
	if _, err := svc.Search(context.Background(), "u1", "c1", "roofer", "Austin", "", 20); err == nil {
		t.Fatal("provider error swallowed")
	}
}
