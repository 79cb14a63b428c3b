package ports

import (
	"context"

	"leadblitz/internal/domain"
)

// PlacesClient searches the places provider for candidate businesses.
// Quota and auth errors surface as errors; zero results is a successful
// empty page with no continuation token.
type PlacesClient interface {
	Search(ctx context.Context, businessType, location, pageToken string, limit int) (domain.PlacePage, error)
}

// AIClient is the language-model provider used by the AI scorer.
type AIClient interface {
	GenerateJSON(ctx context.Context, system, user string) (map[string]any, error)
}

// OutboundEmail is the provider-agnostic email envelope.
type OutboundEmail struct {
	To      string
	Subject string
	Body    string

	// Optional attachment.
	AttachmentName  string
	AttachmentMime  string
	AttachmentBytes []byte
}

// EmailSender delivers one email through whatever provider is configured.
type EmailSender interface {
	SendEmail(ctx context.Context, msg OutboundEmail) error
}

// SMSSender delivers one SMS and returns the provider message id.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (messageID string, err error)
}

// EmailFinder is the optional domain-search enrichment provider.
type EmailFinder interface {
	FindEmails(ctx context.Context, emailDomain string, limit int) ([]FoundEmail, error)
}

type FoundEmail struct {
	Email      string
	Confidence float64
	Type       string // personal|generic
}
