// Package googleplaces searches the Google Places text search API and
// hydrates each hit with a details call.
package googleplaces

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"leadblitz/internal/domain"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

const detailWorkers = 10

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

type textSearchResponse struct {
	Status        string `json:"status"`
	ErrorMessage  string `json:"error_message"`
	NextPageToken string `json:"next_page_token"`
	Results       []struct {
		PlaceID          string  `json:"place_id"`
		Name             string  `json:"name"`
		FormattedAddress string  `json:"formatted_address"`
		Rating           float64 `json:"rating"`
		UserRatingsTotal int     `json:"user_ratings_total"`
	} `json:"results"`
}

type detailsResponse struct {
	Status string `json:"status"`
	Result struct {
		Name                 string  `json:"name"`
		FormattedAddress     string  `json:"formatted_address"`
		FormattedPhoneNumber string  `json:"formatted_phone_number"`
		Website              string  `json:"website"`
		Rating               float64 `json:"rating"`
		UserRatingsTotal     int     `json:"user_ratings_total"`
	} `json:"result"`
}

// Search runs "<businessType> in <location>" as a text query. ZERO_RESULTS
// is a success with an empty page; quota and auth statuses are errors.
func (c *Client) Search(ctx context.Context, businessType, location, pageToken string, limit int) (domain.PlacePage, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	if pageToken != "" {
		params.Set("pagetoken", pageToken)
	} else {
		params.Set("query", fmt.Sprintf("%s in %s", businessType, location))
	}

	var search textSearchResponse
	if err := c.getJSON(ctx, "/textsearch/json", params, &search); err != nil {
		return domain.PlacePage{}, err
	}

	switch search.Status {
	case "OK":
	case "ZERO_RESULTS":
		return domain.PlacePage{Places: []domain.Place{}}, nil
	case "REQUEST_DENIED", "OVER_QUERY_LIMIT", "INVALID_REQUEST":
		return domain.PlacePage{}, fmt.Errorf("places search %s: %s", search.Status, search.ErrorMessage)
	default:
		return domain.PlacePage{}, fmt.Errorf("places search unexpected status %s", search.Status)
	}

	results := search.Results
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	places := make([]domain.Place, len(results))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailWorkers)
	for i, r := range results {
		g.Go(func() error {
			place := domain.Place{
				Name:        r.Name,
				Address:     r.FormattedAddress,
				Rating:      r.Rating,
				ReviewCount: r.UserRatingsTotal,
			}
			// Details failures degrade to the search-level fields.
			if det, err := c.details(gctx, r.PlaceID); err == nil {
				place.Phone = det.Result.FormattedPhoneNumber
				place.Website = det.Result.Website
				if det.Result.FormattedAddress != "" {
					place.Address = det.Result.FormattedAddress
				}
			}
			mu.Lock()
			places[i] = place
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.PlacePage{}, err
	}

	return domain.PlacePage{Places: places, NextPageToken: search.NextPageToken}, nil
}

func (c *Client) details(ctx context.Context, placeID string) (detailsResponse, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("place_id", placeID)
	params.Set("fields", "name,formatted_address,formatted_phone_number,website,rating,user_ratings_total")

	var det detailsResponse
	if err := c.getJSON(ctx, "/details/json", params, &det); err != nil {
		return detailsResponse{}, err
	}
	if det.Status != "OK" {
		return detailsResponse{}, fmt.Errorf("place details status %s", det.Status)
	}
	return det, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("places request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("places: HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
