// Package hunter looks up role and personal email addresses for a domain
// through the Hunter.io domain search API.
package hunter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"leadblitz/internal/ports"
)

const defaultBaseURL = "https://api.hunter.io/v2"

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

type domainSearchResponse struct {
	Data struct {
		Emails []struct {
			Value      string `json:"value"`
			Type       string `json:"type"`
			Confidence int    `json:"confidence"`
		} `json:"emails"`
	} `json:"data"`
	Errors []struct {
		Details string `json:"details"`
	} `json:"errors"`
}

func (c *Client) FindEmails(ctx context.Context, emailDomain string, limit int) ([]ports.FoundEmail, error) {
	if limit <= 0 {
		limit = 5
	}
	params := url.Values{}
	params.Set("domain", emailDomain)
	params.Set("api_key", c.apiKey)
	params.Set("limit", fmt.Sprint(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/domain-search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hunter request: %w", err)
	}
	defer resp.Body.Close()

	var parsed domainSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("hunter response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("hunter: %s", parsed.Errors[0].Details)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hunter: HTTP %d", resp.StatusCode)
	}

	out := make([]ports.FoundEmail, 0, len(parsed.Data.Emails))
	for _, e := range parsed.Data.Emails {
		out = append(out, ports.FoundEmail{
			Email:      e.Value,
			Confidence: float64(e.Confidence) / 100,
			Type:       e.Type,
		})
	}
	return out, nil
}
