package outreach

import (
	"context"
	"errors"
	"testing"

	"leadblitz/internal/adapters/memory"
	"leadblitz/internal/domain"
	"leadblitz/internal/ports"
	"leadblitz/internal/services/credits"
)

type stubSMS struct {
	sent []string
	to   []string
}

func (s *stubSMS) SendSMS(_ context.Context, to, body string) (string, error) {
	s.to = append(s.to, to)
	s.sent = append(s.sent, body)
	return "SM123", nil
}

type stubEmail struct {
	sent []ports.OutboundEmail
}

func (s *stubEmail) SendEmail(_ context.Context, msg ports.OutboundEmail) error {
	s.sent = append(s.sent, msg)
	return nil
}

func testLead() domain.Lead {
	score := 34
	return domain.Lead{
		ID:      "l1",
		Name:    "Acme Roofing",
		Address: "123 Main St, Austin, TX 78701",
		Phone:   "+15125550100",
		Email:   "info@acme.example",
		Website: "https://acme.example",
		Score:   &score,
	}
}

func TestRenderTemplate(t *testing.T) {
	got := RenderTemplate("Hi {{business_name}} in {{city}}, your site scored {{score}}/100. See {{website}}", testLead())
	want := "Hi Acme Roofing in Austin, your site scored 34/100. See https://acme.example"
	if got != want {
		t.Errorf("rendered = %q\nwant %q", got, want)
	}
}

func TestRenderTemplateUnknownPlaceholderKept(t *testing.T) {
	got := RenderTemplate("Hello {{nope}}", testLead())
	if got != "Hello {{nope}}" {
		t.Errorf("rendered = %q, want placeholder preserved", got)
	}
}

func TestCityOfShortAddress(t *testing.T) {
	if got := cityOf("Austin"); got != "Austin" {
		t.Errorf("cityOf single part = %q", got)
	}
	if got := cityOf("123 Main St, Austin, TX"); got != "Austin" {
		t.Errorf("cityOf = %q, want Austin", got)
	}
}

func TestSendSMSDebitsCredits(t *testing.T) {
	repo := memory.NewCreditRepository()
	cr := credits.NewService(repo)
	ctx := context.Background()
	if _, err := cr.Credit(ctx, "u1", 5, "cs_sms", "top up"); err != nil {
		t.Fatal(err)
	}

	sms := &stubSMS{}
	svc := New(&stubEmail{}, sms, nil, cr)
	msgID, err := svc.SendSMS(ctx, "u1", testLead(), "Hi {{business_name}}")
	if err != nil {
		t.Fatal(err)
	}
	if msgID != "SM123" {
		t.Errorf("msg id = %q", msgID)
	}
	if len(sms.sent) != 1 || sms.sent[0] != "Hi Acme Roofing" {
		t.Errorf("sent = %v", sms.sent)
	}

	c, _ := cr.Balance(ctx, "u1")
	if c.Balance != 3 {
		t.Errorf("balance = %d, want 3 after one sms", c.Balance)
	}
}

func TestSendSMSInsufficientCredits(t *testing.T) {
	cr := credits.NewService(memory.NewCreditRepository())
	sms := &stubSMS{}
	svc := New(&stubEmail{}, sms, nil, cr)

	_, err := svc.SendSMS(context.Background(), "u1", testLead(), "Hi")
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("err = %v, want ErrInsufficientCredits", err)
	}
	if len(sms.sent) != 0 {
		t.Error("sms sent despite empty balance")
	}
}

type stubAI struct {
	res    map[string]any
	err    error
	called bool
}

func (s *stubAI) GenerateJSON(_ context.Context, _, _ string) (map[string]any, error) {
	s.called = true
	return s.res, s.err
}

func TestPersonalizeEmailDebitsCredit(t *testing.T) {
	repo := memory.NewCreditRepository()
	cr := credits.NewService(repo)
	ctx := context.Background()
	if _, err := cr.Credit(ctx, "u1", 3, "cs_pers", "top up"); err != nil {
		t.Fatal(err)
	}

	ai := &stubAI{res: map[string]any{
		"subject": "Quick idea for Acme Roofing",
		"body":    "Hi, I noticed your site scored 34/100...",
	}}
	svc := New(&stubEmail{}, &stubSMS{}, ai, cr)

	draft, err := svc.PersonalizeEmail(ctx, "u1", testLead())
	if err != nil {
		t.Fatal(err)
	}
	if draft.Subject == "" || draft.Body == "" {
		t.Errorf("draft = %+v, want subject and body", draft)
	}
	if !ai.called {
		t.Error("model never called")
	}

	c, _ := cr.Balance(ctx, "u1")
	if c.Balance != 2 {
		t.Errorf("balance = %d, want 2 after one personalization", c.Balance)
	}
}

func TestPersonalizeEmailInsufficientCredits(t *testing.T) {
	cr := credits.NewService(memory.NewCreditRepository())
	ai := &stubAI{res: map[string]any{"subject": "s", "body": "b"}}
	svc := New(&stubEmail{}, &stubSMS{}, ai, cr)

	_, err := svc.PersonalizeEmail(context.Background(), "u1", testLead())
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("err = %v, want ErrInsufficientCredits", err)
	}
	if ai.called {
		t.Error("model called despite empty balance")
	}
}

func TestPersonalizeEmailIncompleteReply(t *testing.T) {
	cr := credits.NewService(memory.NewCreditRepository())
	ctx := context.Background()
	if _, err := cr.Credit(ctx, "u1", 3, "cs_pers2", "top up"); err != nil {
		t.Fatal(err)
	}
	ai := &stubAI{res: map[string]any{"subject": "only a subject"}}
	svc := New(&stubEmail{}, &stubSMS{}, ai, cr)

	if _, err := svc.PersonalizeEmail(ctx, "u1", testLead()); err == nil {
		t.Fatal("incomplete model reply accepted")
	}
}

func TestSendEmailIsFree(t *testing.T) {
	cr := credits.NewService(memory.NewCreditRepository())
	email := &stubEmail{}
	svc := New(email, &stubSMS{}, nil, cr)

	err := svc.SendEmail(context.Background(), "u1", testLead(), "About {{business_name}}", "Hello {{name}}")
	if err != nil {
		t.Fatal(err)
	}
	if len(email.sent) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(email.sent))
	}
	if email.sent[0].Subject != "About Acme Roofing" {
		t.Errorf("subject = %q", email.sent[0].Subject)
	}
	if email.sent[0].To != "info@acme.example" {
		t.Errorf("to = %q", email.sent[0].To)
	}
}
