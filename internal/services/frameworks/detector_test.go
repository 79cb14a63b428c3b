package frameworks

import (
	"strings"
	"testing"
)

func TestDetectReactShell(t *testing.T) {
	page := `<!DOCTYPE html><html><head>
<script src="/static/js/main.chunk.js"></script>
<script src="/static/js/react-dom.production.min.js"></script>
</head><body>
<noscript>You need to enable JavaScript to run this app.</noscript>
<div id="root"></div>
</body></html>`
	d := Detect(page)
	if !d.IsJSHeavy {
		t.Fatalf("react shell not flagged js-heavy: %+v", d)
	}
	if !hasHint(d.FrameworkHints, "React") {
		t.Errorf("hints = %v, want React", d.FrameworkHints)
	}
	if d.Confidence < 0.5 {
		t.Errorf("confidence = %v, want >= 0.5", d.Confidence)
	}
}

func TestDetectStaticBrochureSite(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><head><title>Plumber</title></head><body><h1>Welcome</h1><p>")
	for i := 0; i < 400; i++ {
		b.WriteString("service quality local trusted ")
	}
	b.WriteString("</p></body></html>")
	d := Detect(b.String())
	if d.IsJSHeavy {
		t.Fatalf("static site wrongly flagged js-heavy: %+v", d)
	}
	if len(d.FrameworkHints) != 0 {
		t.Errorf("unexpected hints on static site: %v", d.FrameworkHints)
	}
}

func TestDetectConfidenceClamped(t *testing.T) {
	page := `<html><body>
<div id="root"></div>
<noscript>enable javascript</noscript>
<script src="react-dom.js"></script>
<script src="vue.min.js"></script>
<script src="angular.min.js"></script>
<script src="app.bundle.js"></script>
<script>window.__hydrate = hydrateRoot;</script>
</body></html>`
	d := Detect(page)
	if d.Confidence > 1.0 {
		t.Errorf("confidence = %v, want <= 1.0", d.Confidence)
	}
	if !d.IsJSHeavy {
		t.Error("expected js-heavy")
	}
}

func hasHint(hints []string, want string) bool {
	for _, h := range hints {
		if h == want {
			return true
		}
	}
	return false
}
