// Package frameworks estimates how JavaScript-heavy a page is. A client-side
// rendered site serves a near-empty document, so heuristic scores for it
// understate the real site; the detector flags that so downstream consumers
// can soften their confidence.
package frameworks

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"leadblitz/internal/domain"
)

type signature struct {
	framework string
	markers   []string
}

var signatures = []signature{
	{"React", []string{"react.production.min.js", "react-dom", "_reactroot", "data-reactroot"}},
	{"Next.js", []string{"__next_data__", "/_next/static"}},
	{"Vue", []string{"vue.runtime", "data-v-", "__vue__", "vue.min.js"}},
	{"Nuxt", []string{"__nuxt", "/_nuxt/"}},
	{"Angular", []string{"ng-version", "ng-app", "angular.min.js"}},
	{"Svelte", []string{"svelte-", "__svelte"}},
	{"Gatsby", []string{"___gatsby", "gatsby-"}},
}

var rootContainerRe = regexp.MustCompile(`(?i)<div[^>]+id=["'](?:root|app|__next|___gatsby)["'][^>]*>\s*</div>`)

// Detect returns the JS-heaviness estimate for a page. Confidence accumulates
// per signal and is clamped to 1.0.
func Detect(html string) domain.FrameworkDetection {
	lower := strings.ToLower(html)
	det := domain.FrameworkDetection{}

	words := 0
	scripts := 0
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		words = len(strings.Fields(doc.Text()))
		scripts = doc.Find("script").Length()
	}
	det.TextWordCount = words
	det.ScriptCount = scripts

	conf := 0.0

	for _, sig := range signatures {
		for _, m := range sig.markers {
			if strings.Contains(lower, m) {
				det.FrameworkHints = append(det.FrameworkHints, sig.framework)
				det.Signals = append(det.Signals, "framework signature: "+sig.framework)
				conf += 0.3
				break
			}
		}
	}

	if strings.Contains(lower, "webpack") || strings.Contains(lower, "chunk.js") || strings.Contains(lower, ".bundle.js") {
		det.Signals = append(det.Signals, "bundler artifacts")
		conf += 0.1
	}
	if strings.Contains(lower, "hydrat") {
		det.Signals = append(det.Signals, "hydration markers")
		conf += 0.15
	}

	if scripts > 0 && len(html) > 0 {
		scriptBytes := 0
		for _, m := range regexp.MustCompile(`(?is)<script\b.*?</script>`).FindAllString(html, -1) {
			scriptBytes += len(m)
		}
		det.ScriptRatio = float64(scriptBytes) / float64(len(html))
	}
	if det.ScriptRatio > 0.4 {
		det.Signals = append(det.Signals, "script-dominated markup")
		conf += 0.15
	}
	if det.ScriptRatio > 0.6 {
		conf += 0.15
	}

	switch {
	case words < 50:
		det.Signals = append(det.Signals, "almost no visible text")
		conf += 0.3
	case words < 120:
		det.Signals = append(det.Signals, "very little visible text")
		conf += 0.2
	}

	if rootContainerRe.MatchString(html) {
		det.Signals = append(det.Signals, "empty root container")
		conf += 0.25
	}
	if strings.Contains(lower, "<noscript>") && strings.Contains(lower, "enable javascript") {
		det.Signals = append(det.Signals, "noscript warning")
		conf += 0.15
	}

	if conf > 1.0 {
		conf = 1.0
	}
	det.Confidence = conf
	det.IsJSHeavy = conf >= 0.5 || (words < 100 && det.ScriptRatio > 0.3)
	return det
}
