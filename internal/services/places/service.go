// Package places turns a business type and location into stored leads.
package places

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"leadblitz/internal/domain"
	"leadblitz/internal/ports"
)

type Service struct {
	client ports.PlacesClient
	leads  ports.LeadRepository
}

func New(client ports.PlacesClient, leads ports.LeadRepository) *Service {
	return &Service{client: client, leads: leads}
}

// SearchResult is one stored page of leads.
type SearchResult struct {
	Leads         []domain.Lead `json:"leads"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

// Search queries the provider and stores every hit as a new lead. Zero
// results is a success with an empty page and no continuation token.
func (s *Service) Search(ctx context.Context, userID, campaignID, businessType, location, pageToken string, limit int) (SearchResult, error) {
	page, err := s.client.Search(ctx, businessType, location, pageToken, limit)
	if err != nil {
		return SearchResult{}, err
	}
	if len(page.Places) == 0 {
		zap.L().Info("places search returned nothing",
			zap.String("business_type", businessType),
			zap.String("location", location))
		return SearchResult{Leads: []domain.Lead{}}, nil
	}

	leads := make([]domain.Lead, 0, len(page.Places))
	for _, p := range page.Places {
		leads = append(leads, domain.Lead{
			ID:          uuid.NewString(),
			UserID:      userID,
			CampaignID:  campaignID,
			Name:        p.Name,
			Address:     p.Address,
			Phone:       p.Phone,
			Website:     p.Website,
			Rating:      p.Rating,
			ReviewCount: p.ReviewCount,
			Stage:       "new",
		})
	}
	if err := s.leads.CreateBatch(ctx, leads); err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Leads: leads, NextPageToken: page.NextPageToken}, nil
}
