package heuristics

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

var richPage = `<!DOCTYPE html>
<html><head>
<title>Smith Plumbing - Emergency Plumbers in Austin TX</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="description" content="Family-owned plumbing company serving Austin for 20 years. Licensed, insured, available 24/7 for emergencies.">
</head><body>
<h1>Austin's Most Trusted Plumbers</h1>
<p>` + loremWords(250) + `</p>
<p>Rated 5 star by hundreds of happy customers.</p>
<a href="/privacy">Privacy Policy</a>
<a href="tel:+15125550199">Call us</a>
<a href="mailto:info@smithplumbing.com">Email</a>
<form id="contact-form"><input name="message"><button>Send Message</button></form>
<button class="cta">Get a Quote</button>
<img src="/hero.webp" loading="lazy" alt="van">
<address>123 Main St, Austin TX</address>
</body></html>`

func loremWords(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = "lorem"
	}
	return strings.Join(w, " ")
}

func TestScoreDeterministic(t *testing.T) {
	a := Score(richPage, "https://smithplumbing.com")
	b := Score(richPage, "https://smithplumbing.com")
	if a.Total != b.Total {
		t.Fatalf("same input scored differently: %d vs %d", a.Total, b.Total)
	}
	if a.Scores != b.Scores {
		t.Fatalf("category scores differ: %+v vs %+v", a.Scores, b.Scores)
	}
}

func TestScoreRichPageFullMarks(t *testing.T) {
	r := Score(richPage, "https://smithplumbing.com")
	if r.Scores.Mobile != 10 {
		t.Errorf("mobile = %d, want 10", r.Scores.Mobile)
	}
	if r.Scores.Security != 10 {
		t.Errorf("security = %d, want 10", r.Scores.Security)
	}
	if r.Scores.SEO != 8 {
		t.Errorf("seo = %d, want 8", r.Scores.SEO)
	}
	if r.Scores.Contact != 8 {
		t.Errorf("contact = %d, want 8", r.Scores.Contact)
	}
	if r.Scores.Content != 8 {
		t.Errorf("content = %d, want 8", r.Scores.Content)
	}
	if r.Scores.Tech != 6 {
		t.Errorf("tech = %d, want 6", r.Scores.Tech)
	}
	if r.Total != 50 {
		t.Errorf("total = %d, want 50", r.Total)
	}
	if r.RenderingLimitations {
		t.Error("rendering limitations set on a full page")
	}
}

func TestScoreTinyPage(t *testing.T) {
	r := Score("<html></html>", "https://example.com")
	if r.Total != 0 {
		t.Errorf("total = %d, want 0", r.Total)
	}
	if !r.RenderingLimitations {
		t.Error("expected rendering limitations for sub-100-char page")
	}
}

func TestScoreWhitespacePage(t *testing.T) {
	page := strings.Repeat(" \n\t", 80) + "<p>hi</p>"
	r := Score(page, "https://example.com")
	if r.Total != 0 {
		t.Errorf("total = %d, want 0 for whitespace padding", r.Total)
	}
	if !r.RenderingLimitations {
		t.Error("whitespace-padded page not treated as too small")
	}
}

func TestScoreHTTPOnly(t *testing.T) {
	r := Score(richPage, "http://smithplumbing.com")
	if r.Scores.Security != 4 {
		t.Errorf("security = %d, want 4 (privacy only, no https)", r.Scores.Security)
	}
	if r.Evidence.HTTPS {
		t.Error("https evidence set for http url")
	}
}

func TestScoreSmallButValidPageFlagsRendering(t *testing.T) {
	page := `<html><head><title>x</title></head><body><p>short body here with enough characters to pass the minimum size check for parsing</p></body></html>`
	r := Score(page, "https://example.com")
	if !r.RenderingLimitations {
		t.Error("expected rendering limitations for page under 1000 chars")
	}
}

func TestExtractEmailsObfuscatedAndJSONLD(t *testing.T) {
	page := `<html><body>
<p>Write to sales [at] example [dot] com or bob@example.com</p>
<script type="application/ld+json">{"@type":"LocalBusiness","email":"owner@example.com"}</script>
</body></html>`
	doc := mustDoc(t, page)
	emails := extractEmails(doc, doc.Text())
	want := map[string]bool{"sales@example.com": true, "bob@example.com": true, "owner@example.com": true}
	if len(emails) != len(want) {
		t.Fatalf("got %v, want 3 distinct emails", emails)
	}
	for _, e := range emails {
		if !want[e] {
			t.Errorf("unexpected email %q", e)
		}
	}
}

func TestClassifyForms(t *testing.T) {
	page := `<html><body>
<form id="quote-request"><input></form>
<form class="newsletter-signup"><input></form>
<form action="/contact"><input></form>
<form><input name="q"></form>
</body></html>`
	kinds := classifyForms(mustDoc(t, page))
	want := []string{"quote", "newsletter", "contact", "generic"}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("form %d = %q, want %q", i, kinds[i], want[i])
		}
	}
}
