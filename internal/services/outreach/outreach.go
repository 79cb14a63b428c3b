// Package outreach sends templated email and SMS to leads, charging
// credits per message.
package outreach

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"leadblitz/internal/domain"
	"leadblitz/internal/ports"
	"leadblitz/internal/services/credits"
)

// ErrInsufficientCredits aborts a send before the provider is touched.
var ErrInsufficientCredits = fmt.Errorf("insufficient credits")

type Service struct {
	email   ports.EmailSender
	sms     ports.SMSSender
	ai      ports.AIClient // optional, enables personalization
	credits *credits.Service
}

func New(email ports.EmailSender, sms ports.SMSSender, ai ports.AIClient, cr *credits.Service) *Service {
	return &Service{email: email, sms: sms, ai: ai, credits: cr}
}

// RenderTemplate substitutes lead fields into {{placeholders}}. Unknown
// placeholders are left in place so broken templates are visible.
func RenderTemplate(tpl string, lead domain.Lead) string {
	score := ""
	if lead.Score != nil {
		score = strconv.Itoa(*lead.Score)
	}
	r := strings.NewReplacer(
		"{{business_name}}", lead.Name,
		"{{name}}", lead.Name,
		"{{city}}", cityOf(lead.Address),
		"{{score}}", score,
		"{{phone}}", lead.Phone,
		"{{website}}", lead.Website,
	)
	return r.Replace(tpl)
}

// cityOf pulls the city from a comma-separated address: the second-to-last
// component ("123 Main St, Austin, TX 78701" -> "Austin").
func cityOf(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return strings.TrimSpace(address)
	}
	return strings.TrimSpace(parts[len(parts)-2])
}

// SendSMS renders the template and delivers it, debiting the SMS cost
// first. No credits, no send.
func (s *Service) SendSMS(ctx context.Context, userID string, lead domain.Lead, template string) (string, error) {
	if lead.Phone == "" {
		return "", fmt.Errorf("lead %s has no phone number", lead.ID)
	}
	ok, _, err := s.credits.Debit(ctx, userID, credits.ActionSMSSend, 1, "SMS to "+lead.Name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInsufficientCredits
	}

	body := RenderTemplate(template, lead)
	msgID, err := s.sms.SendSMS(ctx, lead.Phone, body)
	if err != nil {
		zap.L().Error("sms send failed",
			zap.String("lead_id", lead.ID), zap.Error(err))
		return "", err
	}
	return msgID, nil
}

// SendEmail renders subject and body and delivers through the email
// provider. Email sends are free; the ledger is untouched.
func (s *Service) SendEmail(ctx context.Context, userID string, lead domain.Lead, subject, body string) error {
	if lead.Email == "" {
		return fmt.Errorf("lead %s has no email address", lead.ID)
	}
	ok, _, err := s.credits.Debit(ctx, userID, credits.ActionEmailSend, 1, "Email to "+lead.Name)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInsufficientCredits
	}

	return s.email.SendEmail(ctx, ports.OutboundEmail{
		To:      lead.Email,
		Subject: RenderTemplate(subject, lead),
		Body:    RenderTemplate(body, lead),
	})
}

// PersonalizedEmail is a model-drafted outreach message for one lead.
type PersonalizedEmail struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

const personalizeSystem = `You write short, friendly B2B outreach emails for a local-business ` +
	`web agency. Reply with JSON: {"subject": string, "body": string}. Keep the body under ` +
	`120 words, reference the business by name, and mention one concrete improvement.`

// PersonalizeEmail drafts a subject and body tailored to the lead, charging
// the personalization cost before the model is called.
func (s *Service) PersonalizeEmail(ctx context.Context, userID string, lead domain.Lead) (PersonalizedEmail, error) {
	if s.ai == nil {
		return PersonalizedEmail{}, fmt.Errorf("email personalization is not configured")
	}
	ok, _, err := s.credits.Debit(ctx, userID, credits.ActionEmailPersonalization, 1, "Personalized email for "+lead.Name)
	if err != nil {
		return PersonalizedEmail{}, err
	}
	if !ok {
		return PersonalizedEmail{}, ErrInsufficientCredits
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Business: %s\n", lead.Name)
	if city := cityOf(lead.Address); city != "" {
		fmt.Fprintf(&b, "City: %s\n", city)
	}
	if lead.Website != "" {
		fmt.Fprintf(&b, "Website: %s\n", lead.Website)
	}
	if lead.Score != nil {
		fmt.Fprintf(&b, "Website score: %d/100\n", *lead.Score)
	}
	b.WriteString("Draft the outreach email.")

	raw, err := s.ai.GenerateJSON(ctx, personalizeSystem, b.String())
	if err != nil {
		zap.L().Error("personalization failed",
			zap.String("lead_id", lead.ID), zap.Error(err))
		return PersonalizedEmail{}, err
	}
	subject, _ := raw["subject"].(string)
	body, _ := raw["body"].(string)
	if subject == "" || body == "" {
		return PersonalizedEmail{}, fmt.Errorf("model returned an incomplete email")
	}
	return PersonalizedEmail{Subject: subject, Body: body}, nil
}
