// Package heuristics scores a rendered page deterministically on a 0-50
// scale across six categories. Same HTML in, same scores out.
package heuristics

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"leadblitz/internal/domain"
)

var socialProofWords = []string{
	"testimonial", "review", "trusted by", "5 star", "five star",
	"rated", "happy customers", "satisfied", "award",
}

// Score evaluates raw HTML against fixed category rules. finalURL decides
// the https points. Pages under 100 characters score zero with rendering
// limitations flagged.
func Score(html, finalURL string) domain.HeuristicResult {
	if len(strings.TrimSpace(html)) < 100 {
		return domain.HeuristicResult{
			RenderingLimitations: true,
			Evidence: domain.Evidence{
				Errors: []string{"page too small to analyze"},
			},
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.HeuristicResult{
			RenderingLimitations: true,
			Evidence:             domain.Evidence{Errors: []string{"html parse failed: " + err.Error()}},
		}
	}

	text := doc.Text()
	words := len(strings.Fields(text))
	lower := strings.ToLower(html)

	var scores domain.HeuristicScores
	ev := domain.Evidence{TextWordCount: words}

	// Mobile
	if vp, ok := doc.Find(`meta[name="viewport"]`).Attr("content"); ok {
		scores.Mobile += 6
		ev.Viewport = vp
	}
	buttons := collectCTAs(doc)
	textLinks := doc.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) != ""
	}).Length()
	if len(buttons) > 0 || textLinks > 5 {
		scores.Mobile += 4
	}
	ev.CTAButtons = buttons
	ev.CTACount = len(buttons)

	// Security
	if strings.HasPrefix(strings.ToLower(finalURL), "https://") {
		scores.Security += 6
		ev.HTTPS = true
	}
	if hasPrivacySignal(doc, lower) {
		scores.Security += 4
	}

	// SEO
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if n := len(title); n >= 10 && n <= 65 {
		scores.SEO += 4
	}
	ev.Title = title
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		if n := len(strings.TrimSpace(desc)); n >= 50 && n <= 170 {
			scores.SEO += 4
		}
	}

	// Contact
	phones := 0
	if hasPhone(doc, text) {
		scores.Contact += 2
		phones = 1
		ev.ContactItems = append(ev.ContactItems, "phone")
	}
	emails := extractEmails(doc, text)
	if len(emails) > 0 {
		scores.Contact += 3
		ev.EmailsFound = emails
		ev.ContactItems = append(ev.ContactItems, "email")
	}
	forms := classifyForms(doc)
	if len(forms) > 0 {
		scores.Contact += 2
		ev.ContactForms = forms
		ev.ContactItems = append(ev.ContactItems, "form")
	}
	if hasAddressSignal(doc, html) {
		scores.Contact += 1
		ev.ContactItems = append(ev.ContactItems, "address")
	}
	ev.ContactSummary = domain.ContactSummary{
		Emails: len(emails),
		Phones: phones,
		Forms:  forms,
		CTAs:   len(buttons),
	}

	// Content
	h1 := strings.TrimSpace(doc.Find("h1").First().Text())
	if h1 != "" {
		scores.Content += 4
		ev.H1 = h1
	}
	if words >= 200 {
		scores.Content += 4
	}

	// Tech
	if hasModernImages(doc, lower) {
		scores.Tech += 3
	}
	for _, w := range socialProofWords {
		if strings.Contains(strings.ToLower(text), w) {
			scores.Tech += 3
			break
		}
	}

	return domain.HeuristicResult{
		Scores:               scores,
		Total:                scores.Total(),
		Evidence:             ev,
		RenderingLimitations: len(html) < 1000,
	}
}

// collectCTAs gathers button labels and short link texts carrying
// call-to-action classes. Capped at 10.
func collectCTAs(doc *goquery.Document) []string {
	var out []string
	doc.Find("button").Each(func(_ int, s *goquery.Selection) {
		if len(out) >= 10 {
			return
		}
		if t := strings.TrimSpace(s.Text()); t != "" && len(t) < 50 {
			out = append(out, t)
		}
	})
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		if len(out) >= 10 {
			return
		}
		cls, _ := s.Attr("class")
		lc := strings.ToLower(cls)
		if !strings.Contains(lc, "btn") && !strings.Contains(lc, "button") && !strings.Contains(lc, "cta") {
			return
		}
		if t := strings.TrimSpace(s.Text()); t != "" && len(t) < 50 {
			out = append(out, t)
		}
	})
	return out
}

func hasPrivacySignal(doc *goquery.Document, lowerHTML string) bool {
	found := false
	doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := strings.ToLower(s.Text())
		href, _ := s.Attr("href")
		if strings.Contains(t, "privacy") || strings.Contains(strings.ToLower(href), "privacy") {
			found = true
			return false
		}
		return true
	})
	return found || strings.Contains(lowerHTML, "privacy policy")
}

func hasModernImages(doc *goquery.Document, lowerHTML string) bool {
	if doc.Find(`img[loading="lazy"]`).Length() > 0 {
		return true
	}
	return strings.Contains(lowerHTML, ".webp") || strings.Contains(lowerHTML, ".avif")
}
