package heuristics

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	emailRe      = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	obfuscatedRe = regexp.MustCompile(`(?i)([A-Za-z0-9._%+\-]+)\s*(?:\[at\]|\(at\))\s*([A-Za-z0-9.\-]+)\s*(?:\[dot\]|\(dot\))\s*([A-Za-z]{2,})`)
	phoneRe      = regexp.MustCompile(`(?:\+?\d{1,3}[\s\-.]?)?\(?\d{2,4}\)?[\s\-.]?\d{3,4}[\s\-.]?\d{3,4}`)
)

// extractEmails collects addresses from mailto links, visible text, common
// [at]/[dot] obfuscations and schema.org JSON-LD blocks. Deduplicated,
// lowercased, order preserved.
func extractEmails(doc *goquery.Document, text string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(e string) {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || seen[e] {
			return
		}
		seen[e] = true
		out = append(out, e)
	}

	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		if emailRe.MatchString(addr) {
			add(addr)
		}
	})

	for _, m := range emailRe.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range obfuscatedRe.FindAllStringSubmatch(text, -1) {
		add(m[1] + "@" + m[2] + "." + m[3])
	}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var data map[string]any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return
		}
		if e, ok := data["email"].(string); ok && emailRe.MatchString(e) {
			add(e)
		}
	})
	return out
}

// hasPhone checks tel: links first, then falls back to a loose number match
// over the visible text.
func hasPhone(doc *goquery.Document, text string) bool {
	if doc.Find(`a[href^="tel:"]`).Length() > 0 {
		return true
	}
	for _, m := range phoneRe.FindAllString(text, -1) {
		digits := 0
		for _, r := range m {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= 8 {
			return true
		}
	}
	return false
}

// classifyForms labels each form on the page by the strongest keyword found
// in its attributes and inner text.
func classifyForms(doc *goquery.Document) []string {
	var kinds []string
	doc.Find("form").Each(func(_ int, s *goquery.Selection) {
		blob := strings.ToLower(s.Text())
		if id, ok := s.Attr("id"); ok {
			blob += " " + strings.ToLower(id)
		}
		if cls, ok := s.Attr("class"); ok {
			blob += " " + strings.ToLower(cls)
		}
		if act, ok := s.Attr("action"); ok {
			blob += " " + strings.ToLower(act)
		}
		switch {
		case strings.Contains(blob, "quote") || strings.Contains(blob, "estimate"):
			kinds = append(kinds, "quote")
		case strings.Contains(blob, "book") || strings.Contains(blob, "appointment") || strings.Contains(blob, "schedule"):
			kinds = append(kinds, "booking")
		case strings.Contains(blob, "newsletter") || strings.Contains(blob, "subscribe"):
			kinds = append(kinds, "newsletter")
		case strings.Contains(blob, "contact") || strings.Contains(blob, "message") || strings.Contains(blob, "enquir") || strings.Contains(blob, "inquir"):
			kinds = append(kinds, "contact")
		default:
			kinds = append(kinds, "generic")
		}
	})
	return kinds
}

// hasAddressSignal looks for a street address: <address> tags, embedded maps,
// or schema.org address markup.
func hasAddressSignal(doc *goquery.Document, html string) bool {
	if doc.Find("address").Length() > 0 {
		return true
	}
	lower := strings.ToLower(html)
	if strings.Contains(lower, "google.com/maps") || strings.Contains(lower, "maps.googleapis.com") {
		return true
	}
	if strings.Contains(lower, `itemprop="address"`) || strings.Contains(lower, "postaladdress") {
		return true
	}
	return false
}
