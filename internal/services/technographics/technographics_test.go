package technographics

import (
	"testing"

	"leadblitz/internal/domain"
)

const wpPage = `<!DOCTYPE html>
<html><head>
<title>Acme Roofing</title>
<meta name="viewport" content="width=device-width">
<meta name="generator" content="WordPress 5.8.2">
<meta property="og:title" content="Acme Roofing">
<link rel="icon" href="/favicon.ico">
<link rel="stylesheet" href="/wp-content/themes/acme/style.css">
<script src="https://www.googletagmanager.com/gtag/js?id=G-XYZ"></script>
<script src="/wp-includes/js/jquery/jquery-2.2.4.min.js"></script>
</head><body>
<a href="https://facebook.com/acme">fb</a>
<a href="https://instagram.com/acme">ig</a>
<a href="https://linkedin.com/company/acme">li</a>
<div class="cookie-consent">We use cookies</div>
</body></html>`

func TestDetectWordPress(t *testing.T) {
	r := Detect(wpPage, "https://acmeroofing.com")
	if !r.Detected {
		t.Fatal("expected detection")
	}
	if r.CMS.Name != "WordPress" || r.CMS.Confidence != "high" {
		t.Errorf("cms = %+v, want WordPress/high", r.CMS)
	}
	if r.CMSVersion != "5.8.2" {
		t.Errorf("cms version = %q, want 5.8.2", r.CMSVersion)
	}
	if !r.SSL {
		t.Error("ssl not detected from https url")
	}
	if !r.MobileResponsive {
		t.Error("viewport not detected")
	}
	if !r.Analytics.GoogleAnalytics {
		t.Error("google analytics not detected")
	}
	if !r.JQuery.Present || r.JQuery.Version != "2.2.4" {
		t.Errorf("jquery = %+v, want present 2.2.4", r.JQuery)
	}
	if !r.CookieConsent {
		t.Error("cookie consent not detected")
	}
	if len(r.SocialLinks) != 3 {
		t.Errorf("social links = %v, want 3", r.SocialLinks)
	}
	if !r.OGTags.HasTitle || r.OGTags.HasImage {
		t.Errorf("og tags = %+v, want title only", r.OGTags)
	}
	if !r.Favicon {
		t.Error("favicon not detected")
	}
	if r.PageBloat.TotalExternal != 3 {
		t.Errorf("bloat total = %d, want 3", r.PageBloat.TotalExternal)
	}
}

func TestDetectTinyInput(t *testing.T) {
	r := Detect("<html></html>", "https://x.com")
	if r.Detected {
		t.Error("expected undetected result for sub-50-char input")
	}
}

func TestDetectShopifyBeforeGenerator(t *testing.T) {
	page := `<html><head><meta name="generator" content="SomethingElse"><script src="https://cdn.shopify.com/s/app.js"></script></head><body>store</body></html>`
	r := Detect(page, "https://store.example.com")
	if r.CMS.Name != "Shopify" {
		t.Errorf("cms = %q, want Shopify (signature beats generator)", r.CMS.Name)
	}
}

func TestClassifyHealthBuckets(t *testing.T) {
	r := Detect(wpPage, "https://acmeroofing.com")
	h := ClassifyHealth(r)

	if !hasLabel(h.Amber, "CMS") {
		t.Error("WordPress 5.x should be amber")
	}
	if !hasLabel(h.Amber, "jQuery") {
		t.Error("jQuery 2.x should be amber")
	}
	if !hasLabel(h.Green, "SSL") {
		t.Error("https should be green")
	}
	if !hasLabel(h.Green, "Social presence") {
		t.Error("3 social profiles should be green")
	}
	if !hasLabel(h.Amber, "Social sharing") {
		t.Error("partial og markup should be amber")
	}
	if hasLabel(h.Red, "SSL") {
		t.Error("ssl wrongly red")
	}
}

func TestClassifyHealthNoSSL(t *testing.T) {
	h := ClassifyHealth(Detect(wpPage, "http://acmeroofing.com"))
	if !hasLabel(h.Red, "SSL") {
		t.Error("missing https should be red")
	}
}

func hasLabel(items []domain.TechHealthItem, label string) bool {
	for _, it := range items {
		if it.Label == label {
			return true
		}
	}
	return false
}
