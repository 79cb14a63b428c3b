package fetcher

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"leadblitz/internal/domain"
)

const textExcerptLimit = 6000

// ExtractContent reduces HTML to the bounded summary handed to the language
// model. Everything is capped so prompt size stays predictable.
func ExtractContent(html string) domain.SiteContent {
	var c domain.SiteContent
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return c
	}

	c.Title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("h1").Each(func(_ int, s *goquery.Selection) {
		if len(c.H1Tags) >= 3 {
			return
		}
		if t := clean(s.Text()); t != "" {
			c.H1Tags = append(c.H1Tags, t)
		}
	})
	doc.Find("h2").Each(func(_ int, s *goquery.Selection) {
		if len(c.H2Tags) >= 5 {
			return
		}
		if t := clean(s.Text()); t != "" {
			c.H2Tags = append(c.H2Tags, t)
		}
	})

	doc.Find("button").Each(func(_ int, s *goquery.Selection) {
		if len(c.CTAButtons) >= 10 {
			return
		}
		if t := clean(s.Text()); t != "" && len(t) < 50 {
			c.CTAButtons = append(c.CTAButtons, t)
		}
	})
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		if len(c.CTAButtons) >= 10 {
			return
		}
		cls, _ := s.Attr("class")
		lc := strings.ToLower(cls)
		if !strings.Contains(lc, "btn") && !strings.Contains(lc, "button") && !strings.Contains(lc, "cta") {
			return
		}
		if t := clean(s.Text()); t != "" && len(t) < 50 {
			c.CTAButtons = append(c.CTAButtons, t)
		}
	})

	doc.Find("nav a, header a").Each(func(_ int, s *goquery.Selection) {
		if len(c.NavLinks) >= 15 {
			return
		}
		if t := clean(s.Text()); t != "" {
			c.NavLinks = append(c.NavLinks, t)
		}
	})

	doc.Find("img[alt]").Each(func(_ int, s *goquery.Selection) {
		if len(c.ImageAlts) >= 10 {
			return
		}
		if alt, _ := s.Attr("alt"); clean(alt) != "" {
			c.ImageAlts = append(c.ImageAlts, clean(alt))
		}
	})

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		if len(c.LinkTexts) >= 30 {
			return
		}
		if t := clean(s.Text()); t != "" {
			c.LinkTexts = append(c.LinkTexts, t)
		}
	})

	text := strings.Join(strings.Fields(doc.Text()), " ")
	if len(text) > textExcerptLimit {
		text = text[:textExcerptLimit]
	}
	c.TextExcerpt = text
	return c
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
