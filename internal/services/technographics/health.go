package technographics

import (
	"fmt"
	"strconv"
	"strings"

	"leadblitz/internal/domain"
)

// ClassifyHealth buckets detected attributes into green/amber/red by fixed
// per-attribute policy. Undetected results produce a single amber note.
func ClassifyHealth(t domain.TechResult) domain.TechHealth {
	var h domain.TechHealth
	if !t.Detected {
		h.Amber = append(h.Amber, domain.TechHealthItem{
			Label: "Technology", Detail: "Not enough page content to analyze",
		})
		return h
	}

	if t.SSL {
		h.Green = append(h.Green, domain.TechHealthItem{Label: "SSL", Detail: "Site served over HTTPS"})
	} else {
		h.Red = append(h.Red, domain.TechHealthItem{Label: "SSL", Detail: "No HTTPS; browsers flag the site as not secure"})
	}

	if t.MobileResponsive {
		h.Green = append(h.Green, domain.TechHealthItem{Label: "Mobile", Detail: "Responsive viewport configured"})
	} else {
		h.Amber = append(h.Amber, domain.TechHealthItem{Label: "Mobile", Detail: "No responsive viewport meta tag"})
	}

	if t.CMS.Name == "WordPress" && t.CMSVersion != "" {
		if major := majorVersion(t.CMSVersion); major > 0 && major < 6 {
			h.Amber = append(h.Amber, domain.TechHealthItem{
				Label: "CMS", Detail: fmt.Sprintf("WordPress %s is out of date", t.CMSVersion),
			})
		} else {
			h.Green = append(h.Green, domain.TechHealthItem{Label: "CMS", Detail: "WordPress " + t.CMSVersion})
		}
	} else if t.CMS.Name != "" && t.CMS.Name != "Unknown" {
		h.Green = append(h.Green, domain.TechHealthItem{Label: "CMS", Detail: t.CMS.Name + " detected"})
	}

	if t.JQuery.Present && t.JQuery.Version != "" {
		if major := majorVersion(t.JQuery.Version); major > 0 && major < 3 {
			h.Amber = append(h.Amber, domain.TechHealthItem{
				Label: "jQuery", Detail: fmt.Sprintf("jQuery %s has known vulnerabilities", t.JQuery.Version),
			})
		} else {
			h.Green = append(h.Green, domain.TechHealthItem{Label: "jQuery", Detail: "jQuery " + t.JQuery.Version})
		}
	}

	if t.Analytics.GoogleAnalytics || t.Analytics.MetaPixel {
		h.Green = append(h.Green, domain.TechHealthItem{Label: "Analytics", Detail: "Visitor tracking installed"})
	} else {
		h.Amber = append(h.Amber, domain.TechHealthItem{Label: "Analytics", Detail: "No analytics detected; the business is flying blind"})
	}

	switch {
	case t.OGTags.HasTitle && t.OGTags.HasImage:
		h.Green = append(h.Green, domain.TechHealthItem{Label: "Social sharing", Detail: "Open Graph title and image set"})
	case t.OGTags.HasTitle || t.OGTags.HasImage:
		h.Amber = append(h.Amber, domain.TechHealthItem{Label: "Social sharing", Detail: "Partial Open Graph markup"})
	default:
		h.Amber = append(h.Amber, domain.TechHealthItem{Label: "Social sharing", Detail: "Links share without a preview card"})
	}

	if n := len(t.SocialLinks); n >= 3 {
		h.Green = append(h.Green, domain.TechHealthItem{Label: "Social presence", Detail: fmt.Sprintf("%d social profiles linked", n)})
	} else if n == 0 {
		h.Amber = append(h.Amber, domain.TechHealthItem{Label: "Social presence", Detail: "No social profiles linked"})
	}

	if t.PageBloat.TotalExternal > 30 {
		h.Amber = append(h.Amber, domain.TechHealthItem{
			Label: "Page weight", Detail: fmt.Sprintf("%d external scripts/stylesheets slow the page down", t.PageBloat.TotalExternal),
		})
	}

	if !t.Favicon {
		h.Amber = append(h.Amber, domain.TechHealthItem{Label: "Favicon", Detail: "No favicon set"})
	}

	return h
}

func majorVersion(v string) int {
	head, _, _ := strings.Cut(v, ".")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0
	}
	return n
}
