// Package enrichment digs contact details out of a lead's website: emails
// from the homepage and likely contact pages, with junk filtered out.
package enrichment

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/errgroup"

	"leadblitz/internal/domain"
	"leadblitz/internal/ports"
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`(?:\+?\d{1,3}[\s\-.]?)?\(?\d{2,4}\)?[\s\-.]?\d{3,4}[\s\-.]?\d{3,4}`)
)

var noreplyPatterns = []string{"noreply", "no-reply", "donotreply", "do-not-reply", "mailer-daemon"}

var placeholderEmails = map[string]bool{
	"email@example.com":    true,
	"name@example.com":     true,
	"your@email.com":       true,
	"info@yourdomain.com":  true,
	"contact@yoursite.com": true,
	"user@domain.com":      true,
}

var invalidDomains = []string{
	"example.com", "sentry.io", "wixpress.com", "sentry-next.wixpress.com",
	"schema.org", "w3.org", "googleapis.com",
}

// genericPrefixes mark role addresses. For outreach these beat personal
// addresses: they reach whoever answers the business inbox.
var genericPrefixes = []string{
	"info", "contact", "hello", "support", "sales",
	"admin", "enquiries", "mail", "office",
}

var contactPagePaths = []string{"/contact", "/contact-us", "/about", "/about-us", "/get-in-touch"}

const enrichWorkers = 4

// PageFetcher is the slice of the fetcher the enricher needs.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) domain.FetchResult
}

type Enricher struct {
	fetcher PageFetcher
	finder  ports.EmailFinder // optional fallback, may be nil
}

func New(fetcher PageFetcher, finder ports.EmailFinder) *Enricher {
	return &Enricher{fetcher: fetcher, finder: finder}
}

// Result is what enrichment found for one lead.
type Result struct {
	Email  string   `json:"email,omitempty"`
	Phone  string   `json:"phone,omitempty"`
	Emails []string `json:"all_emails,omitempty"`
	Source string   `json:"source,omitempty"` // website|finder
}

// Enrich scrapes the homepage and common contact paths concurrently, then
// falls back to the domain-search provider when the site gave nothing.
func (e *Enricher) Enrich(ctx context.Context, websiteURL string) (Result, error) {
	pages := append([]string{""}, contactPagePaths...)

	var mu sync.Mutex
	var emails []string
	var phone string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichWorkers)
	for _, path := range pages {
		g.Go(func() error {
			target := websiteURL
			if path != "" {
				target = joinPath(websiteURL, path)
				if target == "" {
					return nil
				}
			}
			page := e.fetcher.FetchPage(gctx, target)
			if page.HTML == "" {
				return nil
			}
			found := extractValidEmails(page.HTML)
			p := firstPhone(page.HTML)
			mu.Lock()
			emails = append(emails, found...)
			if phone == "" {
				phone = p
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	emails = dedupe(emails)
	if len(emails) > 0 {
		return Result{
			Email:  chooseBestEmail(emails, hostOf(websiteURL)),
			Phone:  phone,
			Emails: emails,
			Source: "website",
		}, nil
	}

	if e.finder != nil {
		if host := hostOf(websiteURL); host != "" {
			found, err := e.finder.FindEmails(ctx, host, 5)
			if err == nil && len(found) > 0 {
				all := make([]string, 0, len(found))
				for _, f := range found {
					all = append(all, f.Email)
				}
				return Result{Email: all[0], Phone: phone, Emails: all, Source: "finder"}, nil
			}
		}
	}

	return Result{Phone: phone}, nil
}

// extractValidEmails pulls addresses from raw HTML and drops noreply, known
// placeholder, and infrastructure-domain hits.
func extractValidEmails(html string) []string {
	var out []string
	for _, m := range emailRe.FindAllString(html, -1) {
		e := strings.ToLower(m)
		if !validEmail(e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func validEmail(e string) bool {
	if placeholderEmails[e] {
		return false
	}
	local, domain, ok := strings.Cut(e, "@")
	if !ok {
		return false
	}
	for _, p := range noreplyPatterns {
		if strings.Contains(local, p) {
			return false
		}
	}
	for _, d := range invalidDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return false
		}
	}
	// Asset filenames picked up by the regex (logo@2x.png and friends).
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"} {
		if strings.HasSuffix(domain, ext) {
			return false
		}
	}
	return true
}

// chooseBestEmail ranks candidates: role address on the site's own
// registrable domain, then any same-domain address, then any role address,
// then whatever came first. Third-party domains (booking widgets, chat
// vendors) lose to the business's own inbox.
func chooseBestEmail(emails []string, siteHost string) string {
	siteDomain := registrableDomain(siteHost)

	var roleSameDomain, role, sameDomain string
	for _, e := range emails {
		local, domain, _ := strings.Cut(e, "@")
		isRole := false
		for _, p := range genericPrefixes {
			if local == p {
				isRole = true
				break
			}
		}
		onSite := siteDomain != "" && registrableDomain(domain) == siteDomain
		switch {
		case isRole && onSite && roleSameDomain == "":
			roleSameDomain = e
		case isRole && role == "":
			role = e
		case onSite && sameDomain == "":
			sameDomain = e
		}
	}
	for _, pick := range []string{roleSameDomain, sameDomain, role} {
		if pick != "" {
			return pick
		}
	}
	return emails[0]
}

func registrableDomain(host string) string {
	if host == "" {
		return ""
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(host))
	if err != nil {
		return strings.ToLower(host)
	}
	return d
}

func firstPhone(html string) string {
	for _, m := range phoneRe.FindAllString(html, -1) {
		digits := 0
		for _, r := range m {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= 8 && digits <= 15 {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

func joinPath(base, path string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return ""
	}
	u.Path = path
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
