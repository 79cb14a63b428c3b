// Package technographics detects the technology stack of a fetched page:
// CMS, analytics, jQuery, social presence, page weight and share markup.
package technographics

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"leadblitz/internal/domain"
)

// cmsSignature maps a platform to the substrings that identify it. Checks
// run in order; first hit wins.
type cmsSignature struct {
	name    string
	markers []string
}

var cmsSignatures = []cmsSignature{
	{"WordPress", []string{"wp-content", "wp-includes", "wp-json"}},
	{"Wix", []string{"wix.com", "wixstatic.com", "wixsite.com"}},
	{"Squarespace", []string{"squarespace.com", "squarespace-cdn"}},
	{"Shopify", []string{"cdn.shopify.com", "myshopify.com"}},
	{"Webflow", []string{"webflow.com", "wf-page", "w-nav"}},
	{"Joomla", []string{"/media/jui/", "joomla"}},
	{"Drupal", []string{"drupal.js", "/sites/default/files"}},
	{"Ghost", []string{"ghost.io", "ghost-sdk"}},
	{"Weebly", []string{"weebly.com", "weeblycloud"}},
	{"GoDaddy", []string{"godaddy.com", "secureserver.net"}},
}

var (
	wpVersionRe     = regexp.MustCompile(`(?i)wordpress\s*([\d.]+)`)
	jqueryVersionRe = regexp.MustCompile(`jquery[/\-.]?([\d]+\.[\d]+(?:\.[\d]+)?)`)
	gaRe            = regexp.MustCompile(`(?i)googletagmanager\.com|google-analytics\.com|gtag\(|ga\('create'`)
	metaPixelRe     = regexp.MustCompile(`(?i)connect\.facebook\.net|fbq\(`)
)

var cookieConsentMarkers = []string{
	"cookieconsent", "cookie-consent", "cookie_notice", "cookiebot",
	"onetrust", "gdpr", "accept cookies", "cookie policy",
}

var socialHosts = map[string]string{
	"facebook":  "facebook.com",
	"instagram": "instagram.com",
	"linkedin":  "linkedin.com",
	"twitter":   "twitter.com",
	"x":         "x.com",
	"youtube":   "youtube.com",
	"tiktok":    "tiktok.com",
}

// Detect inspects raw HTML. Inputs under 50 characters return an undetected
// zero result.
func Detect(html, finalURL string) domain.TechResult {
	if len(html) < 50 {
		return domain.TechResult{}
	}

	lower := strings.ToLower(html)
	res := domain.TechResult{Detected: true}

	res.SSL = strings.HasPrefix(strings.ToLower(finalURL), "https://")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		doc = nil
	}

	res.CMS, res.CMSVersion = detectCMS(lower, doc)

	if doc != nil {
		_, res.MobileResponsive = doc.Find(`meta[name="viewport"]`).Attr("content")
	}

	res.Analytics = domain.AnalyticsInfo{
		GoogleAnalytics: gaRe.MatchString(html),
		MetaPixel:       metaPixelRe.MatchString(html),
	}
	if strings.Contains(lower, "hotjar") {
		res.Analytics.Other = append(res.Analytics.Other, "Hotjar")
	}
	if strings.Contains(lower, "clarity.ms") {
		res.Analytics.Other = append(res.Analytics.Other, "Microsoft Clarity")
	}

	if m := jqueryVersionRe.FindStringSubmatch(lower); m != nil {
		res.JQuery = domain.JQueryInfo{Present: true, Version: m[1]}
	} else if strings.Contains(lower, "jquery") {
		res.JQuery = domain.JQueryInfo{Present: true}
	}

	for _, marker := range cookieConsentMarkers {
		if strings.Contains(lower, marker) {
			res.CookieConsent = true
			break
		}
	}

	if doc != nil {
		res.SocialLinks = detectSocials(doc)
		res.PageBloat = countBloat(doc)
		res.OGTags = domain.OGTags{
			HasTitle: doc.Find(`meta[property="og:title"]`).Length() > 0,
			HasImage: doc.Find(`meta[property="og:image"]`).Length() > 0,
		}
		res.Favicon = doc.Find(`link[rel="icon"], link[rel="shortcut icon"], link[rel="apple-touch-icon"]`).Length() > 0
	}

	return res
}

func detectCMS(lower string, doc *goquery.Document) (domain.CMSInfo, string) {
	for _, sig := range cmsSignatures {
		for _, marker := range sig.markers {
			if strings.Contains(lower, marker) {
				version := ""
				if sig.name == "WordPress" {
					if m := wpVersionRe.FindStringSubmatch(lower); m != nil {
						version = m[1]
					}
				}
				return domain.CMSInfo{Name: sig.name, Confidence: "high"}, version
			}
		}
	}
	if doc != nil {
		if gen, ok := doc.Find(`meta[name="generator"]`).Attr("content"); ok && gen != "" {
			name := strings.TrimSpace(gen)
			if i := strings.IndexByte(name, ' '); i > 0 {
				name = name[:i]
			}
			return domain.CMSInfo{Name: name, Confidence: "medium"}, ""
		}
	}
	return domain.CMSInfo{Name: "Unknown", Confidence: "low"}, ""
}

func detectSocials(doc *goquery.Document) map[string]bool {
	out := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.ToLower(href)
		for name, host := range socialHosts {
			if strings.Contains(href, host) {
				if name == "x" {
					name = "twitter"
				}
				out[name] = true
			}
		}
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

func countBloat(doc *goquery.Document) domain.PageBloat {
	scripts := doc.Find("script[src]").Length()
	styles := doc.Find(`link[rel="stylesheet"]`).Length()
	return domain.PageBloat{
		ExternalScripts:     scripts,
		ExternalStylesheets: styles,
		TotalExternal:       scripts + styles,
	}
}
