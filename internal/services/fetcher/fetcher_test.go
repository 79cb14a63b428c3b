package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestFetcher() *Fetcher {
	f := New(5*time.Second, 3, 8)
	f.sleep = func(time.Duration) {}
	return f
}

func TestFetchPageOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer srv.Close()

	res := newTestFetcher().FetchPage(context.Background(), srv.URL)
	if res.Status != 200 {
		t.Fatalf("status = %d, want 200", res.Status)
	}
	if !strings.Contains(res.HTML, "hello") {
		t.Errorf("body missing: %q", res.HTML)
	}
}

func TestFetchPageBlockedIsTerminal(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	res := newTestFetcher().FetchPage(context.Background(), srv.URL)
	if res.Status != 403 {
		t.Fatalf("status = %d, want 403", res.Status)
	}
	if !res.Blocked() {
		t.Error("403 not reported as blocked")
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hit %d times, want 1 (no retry on block)", got)
	}
	if len(res.Errors) == 0 || !strings.Contains(res.Errors[0], "blocked") {
		t.Errorf("errors = %v, want blocked note", res.Errors)
	}
}

func TestFetchPageRetriesOn503(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("<html>recovered</html>"))
	}))
	defer srv.Close()

	res := newTestFetcher().FetchPage(context.Background(), srv.URL)
	if res.Status != 200 {
		t.Fatalf("status = %d, want 200 after retry", res.Status)
	}
	if hits.Load() != 2 {
		t.Errorf("server hit %d times, want 2", hits.Load())
	}
}

func TestFetchPageUserAgentRotates(t *testing.T) {
	var agents []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents = append(agents, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	newTestFetcher().FetchPage(context.Background(), srv.URL)
	if len(agents) != 3 {
		t.Fatalf("attempts = %d, want 3", len(agents))
	}
	if agents[0] == agents[1] {
		t.Error("user agent did not rotate between attempts")
	}
}

func TestFetchSiteFollowsPriorityLinks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
<a href="/contact">Contact</a>
<a href="/about">About</a>
<a href="/blog/post-1">Blog</a>
</body></html>`))
	})
	mux.HandleFunc("/contact", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>call us at 555-0100</body></html>`))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>our story</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res := newTestFetcher().FetchSite(context.Background(), srv.URL, 3)
	if len(res.PriorityLinks) != 2 {
		t.Fatalf("priority links = %v, want contact+about", res.PriorityLinks)
	}
	if !strings.Contains(res.PriorityLinks[0], "/contact") {
		t.Errorf("first link = %q, want contact tier first", res.PriorityLinks[0])
	}
	if !strings.Contains(res.CombinedHTML, "<!-- Page: home -->") {
		t.Error("combined html missing home marker")
	}
	if !strings.Contains(res.CombinedHTML, "<!-- Page: contact -->") {
		t.Error("combined html missing contact marker")
	}
	if !strings.Contains(res.CombinedHTML, "call us at 555-0100") {
		t.Error("contact page content not in combined html")
	}
}

func TestFetchSiteSkips404Pages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<html><body><a href="/contact">Contact</a></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res := newTestFetcher().FetchSite(context.Background(), srv.URL, 3)
	if strings.Contains(res.CombinedHTML, "<!-- Page: contact -->") {
		t.Error("404 page should not appear in combined html")
	}
}

func TestFetchSiteMatchesAnchorText(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
<a href="/p2">Contact Us</a>
<a href="/p9">Gallery</a>
</body></html>`))
	})
	mux.HandleFunc("/p2", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>reach us at 555-0100</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res := newTestFetcher().FetchSite(context.Background(), srv.URL, 2)
	if len(res.PriorityLinks) != 1 || !strings.Contains(res.PriorityLinks[0], "/p2") {
		t.Fatalf("priority links = %v, want /p2 via anchor text", res.PriorityLinks)
	}
	if !strings.Contains(res.CombinedHTML, "reach us at 555-0100") {
		t.Error("anchor-text page content missing from combined html")
	}
}

func TestFetchSiteFallbackTopsUpThinDiscovery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<html><body><a href="/contact">Contact</a><a href="/blog">Blog</a></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	// One priority link found, two slots: a well-known path fills the gap.
	res := newTestFetcher().FetchSite(context.Background(), srv.URL, 3)
	if len(res.PriorityLinks) != 2 {
		t.Fatalf("priority links = %v, want discovered link plus fallback", res.PriorityLinks)
	}
	if !strings.Contains(res.PriorityLinks[0], "/contact") {
		t.Errorf("first link = %q, want the discovered contact page", res.PriorityLinks[0])
	}
	if res.PriorityLinks[1] == res.PriorityLinks[0] {
		t.Error("fallback duplicated the discovered link")
	}
}

func TestFetchPageRespectsFetchCap(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := inFlight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	f := New(5*time.Second, 3, 2)
	f.sleep = func(time.Duration) {}

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.FetchPage(context.Background(), srv.URL)
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > 2 {
		t.Errorf("peak concurrent fetches = %d, want at most 2", got)
	}
}

func TestLooksGarbled(t *testing.T) {
	if looksGarbled("<html>plain text</html>") {
		t.Error("clean html flagged garbled")
	}
	garbled := strings.Repeat("\x01\x02\x03", 10)
	if !looksGarbled(garbled) {
		t.Error("binary soup not flagged garbled")
	}
}

func TestExtractContentCaps(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><head><title>Big Site</title></head><body><nav>")
	for i := 0; i < 30; i++ {
		b.WriteString(`<a href="/x">Nav Item</a>`)
	}
	b.WriteString("</nav>")
	for i := 0; i < 6; i++ {
		b.WriteString("<h1>Heading One</h1>")
	}
	for i := 0; i < 8; i++ {
		b.WriteString("<h2>Heading Two</h2>")
	}
	for i := 0; i < 20; i++ {
		b.WriteString("<button>Click Me</button>")
	}
	b.WriteString("<p>" + strings.Repeat("word ", 2000) + "</p>")
	b.WriteString("</body></html>")

	c := ExtractContent(b.String())
	if c.Title != "Big Site" {
		t.Errorf("title = %q", c.Title)
	}
	if len(c.H1Tags) != 3 {
		t.Errorf("h1 count = %d, want 3", len(c.H1Tags))
	}
	if len(c.H2Tags) != 5 {
		t.Errorf("h2 count = %d, want 5", len(c.H2Tags))
	}
	if len(c.CTAButtons) != 10 {
		t.Errorf("cta count = %d, want 10", len(c.CTAButtons))
	}
	if len(c.NavLinks) != 15 {
		t.Errorf("nav count = %d, want 15", len(c.NavLinks))
	}
	if len(c.TextExcerpt) > 6000 {
		t.Errorf("excerpt = %d chars, want <= 6000", len(c.TextExcerpt))
	}
}
