package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"leadblitz/internal/domain"
)

var priorityKeywords = []string{
	"contact", "quote", "book", "enquir", "pricing",
	"get-in-touch", "reach-us", "schedule", "about", "services",
}

var fallbackPaths = []string{"/contact", "/contact-us", "/get-in-touch", "/about"}

// keywordTier orders candidate links: contact pages first, commercial intent
// next, informational last.
func keywordTier(link string) int {
	l := strings.ToLower(link)
	switch {
	case strings.Contains(l, "contact") || strings.Contains(l, "get-in-touch") || strings.Contains(l, "reach-us"):
		return 0
	case strings.Contains(l, "quote") || strings.Contains(l, "enquir") || strings.Contains(l, "book"):
		return 1
	case strings.Contains(l, "pricing") || strings.Contains(l, "schedule"):
		return 2
	case strings.Contains(l, "about") || strings.Contains(l, "services"):
		return 3
	default:
		return 4
	}
}

// FetchSite downloads the homepage plus up to maxPages-1 prioritized
// internal pages, and concatenates them with page markers so downstream
// analysis sees one document.
func (f *Fetcher) FetchSite(ctx context.Context, rawURL string, maxPages int) domain.MultiFetchResult {
	if maxPages < 1 {
		maxPages = 1
	}

	home := f.FetchPage(ctx, rawURL)
	res := domain.MultiFetchResult{
		Pages:    map[string]domain.FetchResult{"home": home},
		FinalURL: home.FinalURL,
		Status:   home.Status,
		Errors:   home.Errors,
	}
	if home.HTML == "" {
		return res
	}

	links := priorityLinks(home.HTML, home.FinalURL, maxPages-1)
	// Top up from well-known paths whenever discovery came back thin.
	if len(links) < maxPages-1 {
		have := map[string]bool{}
		for _, l := range links {
			have[l] = true
		}
		for _, p := range fallbackPaths {
			if len(links) >= maxPages-1 {
				break
			}
			u := resolveLink(home.FinalURL, p)
			if u == "" || have[u] {
				continue
			}
			have[u] = true
			links = append(links, u)
		}
	}
	res.PriorityLinks = links

	combined := []string{"<!-- Page: home -->\n" + home.HTML}
	for _, link := range links {
		page := f.FetchPage(ctx, link)
		name := pageName(link)
		res.Pages[name] = page
		if page.Status == 404 || page.HTML == "" {
			continue
		}
		combined = append(combined, fmt.Sprintf("<!-- Page: %s -->\n%s", name, page.HTML))
	}
	res.CombinedHTML = strings.Join(combined, "\n")
	return res
}

// priorityLinks extracts same-host links whose path or anchor text hits a
// priority keyword, best tier first, capped at limit.
func priorityLinks(html, baseURL string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	type candidate struct {
		url  string
		tier int
	}
	seen := map[string]bool{}
	var cands []candidate

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Host != base.Host || abs.Path == "" || abs.Path == "/" {
			return
		}
		matched := false
		lowerPath := strings.ToLower(abs.Path)
		lowerText := strings.ToLower(strings.TrimSpace(s.Text()))
		for _, kw := range priorityKeywords {
			if strings.Contains(lowerPath, kw) || strings.Contains(lowerText, kw) {
				matched = true
				break
			}
		}
		if !matched {
			return
		}
		abs.Fragment = ""
		abs.RawQuery = ""
		u := abs.String()
		if seen[u] {
			return
		}
		seen[u] = true
		tier := keywordTier(lowerPath)
		if t := keywordTier(lowerText); t < tier {
			tier = t
		}
		cands = append(cands, candidate{url: u, tier: tier})
	})

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].tier < cands[j].tier })
	if len(cands) > limit {
		cands = cands[:limit]
	}
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.url
	}
	return out
}

func resolveLink(baseURL, path string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	ref := *base
	ref.Path = path
	ref.RawQuery = ""
	ref.Fragment = ""
	return ref.String()
}

func pageName(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	name := strings.Trim(u.Path, "/")
	if name == "" {
		return "home"
	}
	return name
}
