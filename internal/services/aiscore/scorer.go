// Package aiscore asks the language model for the subjective half of the
// website score: brand, visual design, conversion, trust, accessibility.
package aiscore

import (
	"context"

	"go.uber.org/zap"

	"leadblitz/internal/domain"
	"leadblitz/internal/ports"
)

// Category maxima. The five together cap at 50.
var categoryMax = map[string]int{
	"brand":      12,
	"visual":     10,
	"conversion": 12,
	"trust":      10,
	"a11y":       6,
}

type Scorer struct {
	client ports.AIClient
}

func New(client ports.AIClient) *Scorer {
	return &Scorer{client: client}
}

// Score runs the model over the extracted evidence. A failed or malformed
// call degrades to a zero result with insufficient evidence and zero
// confidence; the pipeline never stops on model errors.
func (s *Scorer) Score(ctx context.Context, content domain.SiteContent, tech *domain.TechResult, renderingLimited bool, wordCount int) domain.AIResult {
	raw, err := s.client.GenerateJSON(ctx, systemPrompt, buildUserPrompt(content, tech, renderingLimited))
	if err != nil {
		zap.L().Warn("ai scoring call failed", zap.Error(err))
		return failedResult()
	}

	res := parseResult(raw)

	// A model that refuses to commit on a page with real content tends to
	// produce a uniformly low score. Redistribute a small floor across
	// categories so thin-confidence pages with substance do not bottom out.
	if res.InsufficientEvidence && res.CategoryScores.Total() < 20 && wordCount > 150 {
		adj := (20 - res.CategoryScores.Total()) / 5
		res.CategoryScores.Brand += adj
		res.CategoryScores.Visual += adj
		res.CategoryScores.Conversion += adj
		res.CategoryScores.Trust += adj
		res.CategoryScores.A11y += adj
		res.CategoryScores = clampScores(res.CategoryScores)
	}

	return res
}

func failedResult() domain.AIResult {
	return domain.AIResult{InsufficientEvidence: true, Confidence: 0}
}

func parseResult(raw map[string]any) domain.AIResult {
	var res domain.AIResult

	if cs, ok := raw["category_scores"].(map[string]any); ok {
		res.CategoryScores = clampScores(domain.AICategoryScores{
			Brand:      intField(cs, "brand"),
			Visual:     intField(cs, "visual"),
			Conversion: intField(cs, "conversion"),
			Trust:      intField(cs, "trust"),
			A11y:       intField(cs, "a11y"),
		})
	}

	if js, ok := raw["justifications"].(map[string]any); ok {
		res.Justifications = map[string]string{}
		for k, v := range js {
			if s, ok := v.(string); ok {
				res.Justifications[k] = s
			}
		}
	}

	if rep, ok := raw["plain_english_report"].(map[string]any); ok {
		res.Report = domain.PlainEnglishReport{
			Strengths:              stringSlice(rep["strengths"]),
			Weaknesses:             stringSlice(rep["weaknesses"]),
			SalesOpportunities:     stringSlice(rep["sales_opportunities"]),
			TechnologyObservations: stringField(rep, "technology_observations"),
		}
	}

	res.InsufficientEvidence, _ = raw["insufficient_evidence"].(bool)
	if c, ok := raw["confidence"].(float64); ok {
		if c < 0 {
			c = 0
		}
		if c > 1 {
			c = 1
		}
		res.Confidence = c
	}
	return res
}

func clampScores(s domain.AICategoryScores) domain.AICategoryScores {
	s.Brand = clamp(s.Brand, categoryMax["brand"])
	s.Visual = clamp(s.Visual, categoryMax["visual"])
	s.Conversion = clamp(s.Conversion, categoryMax["conversion"])
	s.Trust = clamp(s.Trust, categoryMax["trust"])
	s.A11y = clamp(s.A11y, categoryMax["a11y"])
	return s
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
