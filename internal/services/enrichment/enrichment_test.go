package enrichment

import (
	"context"
	"strings"
	"testing"

	"leadblitz/internal/domain"
	"leadblitz/internal/ports"
)

type stubFetcher struct {
	pages map[string]string // path -> html
}

func (s stubFetcher) FetchPage(_ context.Context, url string) domain.FetchResult {
	for path, html := range s.pages {
		if strings.HasSuffix(url, path) || (path == "/" && !strings.Contains(strings.TrimPrefix(url, "https://"), "/")) {
			return domain.FetchResult{Status: 200, HTML: html, FinalURL: url}
		}
	}
	return domain.FetchResult{Status: 404, FinalURL: url}
}

func TestEnrichPrefersGenericPrefix(t *testing.T) {
	f := stubFetcher{pages: map[string]string{
		"/":        `<html><body>Reach john.smith@acme.example or call us</body></html>`,
		"/contact": `<html><body>info@acme.example, call 512 555 0199</body></html>`,
	}}
	res, err := New(f, nil).Enrich(context.Background(), "https://acme.example")
	if err != nil {
		t.Fatal(err)
	}
	if res.Email != "info@acme.example" {
		t.Errorf("email = %q, want role address preferred", res.Email)
	}
	if res.Source != "website" {
		t.Errorf("source = %q, want website", res.Source)
	}
	if res.Phone == "" {
		t.Error("phone not extracted")
	}
	if len(res.Emails) != 2 {
		t.Errorf("emails = %v, want both addresses", res.Emails)
	}
}

func TestEnrichFiltersJunk(t *testing.T) {
	f := stubFetcher{pages: map[string]string{
		"/": `<html><body>
noreply@acme.example
email@example.com
errors@sentry.io
logo@2x.png
owner@acme.example
</body></html>`,
	}}
	res, err := New(f, nil).Enrich(context.Background(), "https://acme.example")
	if err != nil {
		t.Fatal(err)
	}
	if res.Email != "owner@acme.example" {
		t.Errorf("email = %q, want owner@acme.example after filtering", res.Email)
	}
	if len(res.Emails) != 1 {
		t.Errorf("emails = %v, want junk filtered", res.Emails)
	}
}

func TestChooseBestEmailPrefersOwnDomain(t *testing.T) {
	emails := []string{"support@bookingwidget.example", "jane@acme.example"}
	if got := chooseBestEmail(emails, "www.acme.example"); got != "jane@acme.example" {
		t.Errorf("chose %q, want the site's own domain over a vendor role address", got)
	}

	emails = []string{"jane@acme.example", "info@acme.example"}
	if got := chooseBestEmail(emails, "acme.example"); got != "info@acme.example" {
		t.Errorf("chose %q, want the role address on the site domain", got)
	}
}

type stubFinder struct {
	emails []ports.FoundEmail
}

func (s stubFinder) FindEmails(_ context.Context, _ string, _ int) ([]ports.FoundEmail, error) {
	return s.emails, nil
}

func TestEnrichFallsBackToFinder(t *testing.T) {
	f := stubFetcher{pages: map[string]string{
		"/": `<html><body>nothing to see</body></html>`,
	}}
	finder := stubFinder{emails: []ports.FoundEmail{{Email: "hello@acme.example", Confidence: 0.9, Type: "generic"}}}
	res, err := New(f, finder).Enrich(context.Background(), "https://www.acme.example")
	if err != nil {
		t.Fatal(err)
	}
	if res.Email != "hello@acme.example" {
		t.Errorf("email = %q, want finder fallback", res.Email)
	}
	if res.Source != "finder" {
		t.Errorf("source = %q, want finder", res.Source)
	}
}
