// Package stripe talks to the Stripe REST API directly: checkout session
// creation out, signed webhook events in.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"leadblitz/internal/services/billing"
)

const defaultBaseURL = "https://api.stripe.com/v1"

type Client struct {
	secretKey string
	baseURL   string
	http      *http.Client
}

func New(secretKey string) *Client {
	return &Client{
		secretKey: secretKey,
		baseURL:   defaultBaseURL,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

type sessionResponse struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateCheckoutSession opens a one-time payment session. Metadata rides
// along so the webhook can fulfill without a database lookup.
func (c *Client) CreateCheckoutSession(ctx context.Context, params billing.CheckoutParams) (billing.CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", "usd")
	form.Set("line_items[0][price_data][unit_amount]", strconv.Itoa(params.AmountCents))
	form.Set("line_items[0][price_data][product_data][name]", params.ProductName)
	form.Set("client_reference_id", params.UserID)
	for k, v := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return billing.CheckoutSession{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return billing.CheckoutSession{}, fmt.Errorf("stripe request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return billing.CheckoutSession{}, err
	}
	var sess sessionResponse
	if err := json.Unmarshal(raw, &sess); err != nil {
		return billing.CheckoutSession{}, fmt.Errorf("stripe response: %w", err)
	}
	if sess.Error != nil {
		return billing.CheckoutSession{}, fmt.Errorf("stripe: %s", sess.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return billing.CheckoutSession{}, fmt.Errorf("stripe: HTTP %d", resp.StatusCode)
	}
	return billing.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}
