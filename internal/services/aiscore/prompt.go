package aiscore

import (
	"fmt"
	"strings"

	"leadblitz/internal/domain"
)

const systemPrompt = `You are a website quality auditor for a lead generation platform.
You score small-business websites on design and conversion quality.

Rules:
- Score ONLY from the evidence provided. Never infer or imagine content that is not listed.
- If the evidence is thin, say so via insufficient_evidence instead of guessing.
- Scores are integers within each category's maximum.
- Respond with JSON only, matching the requested shape exactly.`

// buildUserPrompt lays the extracted evidence out category by category. The
// model never sees raw HTML.
func buildUserPrompt(content domain.SiteContent, tech *domain.TechResult, renderingLimited bool) string {
	var b strings.Builder

	b.WriteString("Score this website based solely on the evidence below.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", orNone(content.Title))
	fmt.Fprintf(&b, "H1 headings: %s\n", listOrNone(content.H1Tags))
	fmt.Fprintf(&b, "H2 headings: %s\n", listOrNone(content.H2Tags))
	fmt.Fprintf(&b, "Call-to-action buttons: %s\n", listOrNone(content.CTAButtons))
	fmt.Fprintf(&b, "Navigation links: %s\n", listOrNone(content.NavLinks))
	fmt.Fprintf(&b, "Image alt texts: %s\n", listOrNone(content.ImageAlts))
	fmt.Fprintf(&b, "Link texts: %s\n", listOrNone(content.LinkTexts))
	fmt.Fprintf(&b, "Visible text excerpt:\n%s\n", orNone(content.TextExcerpt))

	if tech != nil && tech.Detected {
		b.WriteString("\nDetected technology:\n")
		fmt.Fprintf(&b, "- CMS: %s (%s confidence)\n", tech.CMS.Name, tech.CMS.Confidence)
		fmt.Fprintf(&b, "- HTTPS: %v\n", tech.SSL)
		fmt.Fprintf(&b, "- Mobile viewport: %v\n", tech.MobileResponsive)
		if tech.JQuery.Present {
			fmt.Fprintf(&b, "- jQuery: %s\n", orNone(tech.JQuery.Version))
		}
		fmt.Fprintf(&b, "- Analytics installed: %v\n", tech.Analytics.GoogleAnalytics || tech.Analytics.MetaPixel)
	}

	if renderingLimited {
		b.WriteString("\nNote: the page appears to render mostly client-side, so the evidence above may understate the live site. Factor that into your confidence.\n")
	}

	b.WriteString(`
Return JSON:
{
  "category_scores": {"brand": 0-12, "visual": 0-10, "conversion": 0-12, "trust": 0-10, "a11y": 0-6},
  "justifications": {"brand": "...", "visual": "...", "conversion": "...", "trust": "...", "a11y": "..."},
  "plain_english_report": {
    "strengths": ["..."],
    "weaknesses": ["..."],
    "technology_observations": "...",
    "sales_opportunities": ["..."]
  },
  "insufficient_evidence": true|false,
  "confidence": 0.0-1.0
}`)
	return b.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, "; ")
}
