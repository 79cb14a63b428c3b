// Package scoring runs the full website scoring pipeline: cache, fetch,
// deterministic heuristics, technographics, AI review, combination.
package scoring

import (
	"context"
	"math"

	"go.uber.org/zap"

	"leadblitz/internal/domain"
	"leadblitz/internal/services/fetcher"
	"leadblitz/internal/services/frameworks"
	"leadblitz/internal/services/heuristics"
	"leadblitz/internal/services/technographics"
)

// SiteFetcher is the slice of the fetcher the orchestrator needs.
type SiteFetcher interface {
	FetchSite(ctx context.Context, url string, maxPages int) domain.MultiFetchResult
}

// AIScorer is the slice of the AI scorer the orchestrator needs.
type AIScorer interface {
	Score(ctx context.Context, content domain.SiteContent, tech *domain.TechResult, renderingLimited bool, wordCount int) domain.AIResult
}

type Orchestrator struct {
	fetcher  SiteFetcher
	ai       AIScorer
	cache    *Cache
	maxPages int
}

func NewOrchestrator(f SiteFetcher, ai AIScorer, cache *Cache, maxPages int) *Orchestrator {
	if maxPages <= 0 {
		maxPages = 3
	}
	return &Orchestrator{fetcher: f, ai: ai, cache: cache, maxPages: maxPages}
}

// ScoreWebsite runs the pipeline for one URL. It always returns a usable
// result; failures degrade stage by stage instead of aborting. useCache
// false forces a fresh score; the result is still written back.
func (o *Orchestrator) ScoreWebsite(ctx context.Context, url string, useCache bool) domain.CombinedResult {
	if useCache {
		if entry, ok := o.cache.Lookup(ctx, url); ok {
			zap.L().Debug("score cache hit", zap.String("url", url))
			return resultFromCache(entry)
		}
	}

	fetched := o.fetcher.FetchSite(ctx, url, o.maxPages)

	blocked := fetched.Status == 401 || fetched.Status == 403 || fetched.Status == 429
	if blocked || fetched.CombinedHTML == "" {
		return unreachableResult(blocked, fetched.Errors)
	}

	fw := frameworks.Detect(fetched.CombinedHTML)
	heur := heuristics.Score(fetched.CombinedHTML, fetched.FinalURL)
	tech := technographics.Detect(fetched.CombinedHTML, fetched.FinalURL)

	renderingLimited := heur.RenderingLimitations || fw.IsJSHeavy
	heur.RenderingLimitations = renderingLimited

	content := fetcher.ExtractContent(fetched.CombinedHTML)
	ai := o.ai.Score(ctx, content, &tech, renderingLimited, heur.Evidence.TextWordCount)

	res := combine(heur, ai, &tech, fw)
	res.Errors = fetched.Errors
	res.HasErrors = len(fetched.Errors) > 0

	o.cache.Store(ctx, url, &heur, &ai, res.FinalScore, res.Confidence)
	return res
}

// combine merges the deterministic and AI halves onto the 0-100 scale.
func combine(heur domain.HeuristicResult, ai domain.AIResult, tech *domain.TechResult, fw domain.FrameworkDetection) domain.CombinedResult {
	aiTotal := ai.CategoryScores.Total()
	if aiTotal > 50 {
		aiTotal = 50
	}
	final := heur.Total + aiTotal
	if final > 100 {
		final = 100
	}

	heurConf := 0.6
	if heur.Evidence.TextWordCount > 150 {
		heurConf = 0.9
	}
	confidence := math.Round((heurConf+ai.Confidence)/2*100) / 100

	return domain.CombinedResult{
		FinalScore:           final,
		Confidence:           confidence,
		HeuristicScore:       heur.Total,
		AIScore:              aiTotal,
		Heuristic:            heur.Scores,
		AI:                   ai.CategoryScores,
		Evidence:             heur.Evidence,
		AIJustifications:     ai.Justifications,
		Report:               ai.Report,
		RenderingLimitations: heur.RenderingLimitations,
		InsufficientEvidence: ai.InsufficientEvidence,
		Technographics:       tech,
		JSDetected:           fw.IsJSHeavy,
		FrameworkHints:       fw.FrameworkHints,
	}
}

// unreachableResult is the degenerate score for sites that block or refuse
// the fetch. The one thing a bot wall proves is that security is in place.
func unreachableResult(blocked bool, errs []string) domain.CombinedResult {
	report := domain.PlainEnglishReport{
		TechnologyObservations: "Unable to access website for analysis",
	}
	if blocked {
		report.Strengths = []string{"Website has security measures in place"}
	}
	return domain.CombinedResult{
		FinalScore: 0,
		Confidence: 0.3,
		Report:     report,
		BotBlocked: blocked,
		HasErrors:  true,
		Errors:     errs,
	}
}

func resultFromCache(entry domain.ScoreCacheEntry) domain.CombinedResult {
	res := domain.CombinedResult{
		FinalScore: entry.FinalScore,
		Confidence: entry.Confidence,
		Cached:     true,
	}
	if entry.Heuristic != nil {
		res.HeuristicScore = entry.Heuristic.Total
		res.Heuristic = entry.Heuristic.Scores
		res.Evidence = entry.Heuristic.Evidence
		res.RenderingLimitations = entry.Heuristic.RenderingLimitations
	}
	if entry.AI != nil {
		aiTotal := entry.AI.CategoryScores.Total()
		if aiTotal > 50 {
			aiTotal = 50
		}
		res.AIScore = aiTotal
		res.AI = entry.AI.CategoryScores
		res.AIJustifications = entry.AI.Justifications
		res.Report = entry.AI.Report
		res.InsufficientEvidence = entry.AI.InsufficientEvidence
	}
	return res
}
