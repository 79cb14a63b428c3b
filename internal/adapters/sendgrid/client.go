// Package sendgrid delivers email through the SendGrid v3 mail send API.
package sendgrid

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"leadblitz/internal/ports"
)

const defaultBaseURL = "https://api.sendgrid.com/v3"

type Client struct {
	apiKey    string
	fromEmail string
	baseURL   string
	http      *http.Client
}

func New(apiKey, fromEmail string) *Client {
	return &Client{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		baseURL:   defaultBaseURL,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

type mailRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
	Attachments      []attachment      `json:"attachments,omitempty"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Email string `json:"email"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type attachment struct {
	Content  string `json:"content"`
	Type     string `json:"type,omitempty"`
	Filename string `json:"filename"`
}

func (c *Client) SendEmail(ctx context.Context, msg ports.OutboundEmail) error {
	payload := mailRequest{
		Personalizations: []personalization{{To: []emailAddress{{Email: msg.To}}}},
		From:             emailAddress{Email: c.fromEmail},
		Subject:          msg.Subject,
		Content:          []content{{Type: "text/html", Value: msg.Body}},
	}
	if len(msg.AttachmentBytes) > 0 {
		payload.Attachments = []attachment{{
			Content:  base64.StdEncoding.EncodeToString(msg.AttachmentBytes),
			Type:     msg.AttachmentMime,
			Filename: msg.AttachmentName,
		}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mail/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sendgrid: HTTP %d: %s", resp.StatusCode, detail)
	}
	return nil
}
