// Package pipeline assembles the aggregation flow: fan out to every enabled
// source, score each item against the watchlist, and record the outcome.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spoilershield/internal/detect"
	"spoilershield/internal/feed"
	"spoilershield/internal/model"
	"spoilershield/internal/platform"
	"spoilershield/internal/source"
)

// Watchlist supplies the terms to scan for.
type Watchlist interface {
	ListTerms(ctx context.Context) ([]string, error)
}

// StatsSink receives one record per analyzed item.
type StatsSink interface {
	RecordScan(ctx context.Context, hasSpoiler bool) error
}

// Options tune one pipeline instance. Zero values pick the defaults.
type Options struct {
	// Priority is the tie-break order for the merged feed.
	Priority []string
	// RecentWindow marks items younger than this as recent for scoring.
	RecentWindow time.Duration
}

const defaultRecentWindow = 24 * time.Hour

// Pipeline builds spoiler-annotated feeds. Safe for concurrent use.
type Pipeline struct {
	registry     *platform.Registry
	engine       *detect.Engine
	watchlist    Watchlist
	stats        StatsSink
	priority     []string
	recentWindow time.Duration
	now          func() time.Time
	log          *slog.Logger
}

// New creates a Pipeline.
func New(registry *platform.Registry, engine *detect.Engine, watchlist Watchlist, stats StatsSink, opts Options, log *slog.Logger) *Pipeline {
	if opts.RecentWindow <= 0 {
		opts.RecentWindow = defaultRecentWindow
	}
	return &Pipeline{
		registry:     registry,
		engine:       engine,
		watchlist:    watchlist,
		stats:        stats,
		priority:     opts.Priority,
		recentWindow: opts.RecentWindow,
		now:          time.Now,
		log:          log,
	}
}

// BuildFeed fetches from every enabled source, merges the results into one
// ordered feed, and annotates each item with its detection result. Source
// failures surface in the per-source status, never as a top-level error.
func (p *Pipeline) BuildFeed(ctx context.Context, q source.Query) (model.AggregationResult, error) {
	terms, err := p.watchlist.ListTerms(ctx)
	if err != nil {
		return model.AggregationResult{}, fmt.Errorf("load watchlist: %w", err)
	}

	perSource, status := p.registry.FetchAll(ctx, q)
	items := feed.Merge(perSource, p.priority)
	p.annotate(ctx, items, terms)

	return model.AggregationResult{Items: items, Status: status}, nil
}

// Search runs a query across every search-capable enabled source and
// annotates the merged results the same way BuildFeed does.
func (p *Pipeline) Search(ctx context.Context, query string, opts source.SearchOptions) (model.AggregationResult, error) {
	terms, err := p.watchlist.ListTerms(ctx)
	if err != nil {
		return model.AggregationResult{}, fmt.Errorf("load watchlist: %w", err)
	}

	perSource, status := p.registry.SearchAll(ctx, query, opts)
	items := feed.Merge(perSource, p.priority)
	p.annotate(ctx, items, terms)

	return model.AggregationResult{Items: items, Status: status}, nil
}

// annotate scores title and body of each item and records one scan per item.
func (p *Pipeline) annotate(ctx context.Context, items []model.ContentItem, terms []string) {
	cutoff := p.now().Add(-p.recentWindow)
	for i := range items {
		item := &items[i]
		recent := item.CreatedAt.After(cutoff)

		titleRes := p.engine.Analyze(item.Title, terms, model.AnalysisContext{Type: model.TypeTitle, IsRecent: recent})
		bodyRes := p.engine.Analyze(item.Body, terms, model.AnalysisContext{Type: model.TypeBody, IsRecent: recent})
		res := combine(titleRes, bodyRes)
		item.Detection = &res

		if err := p.stats.RecordScan(ctx, res.HasSpoiler); err != nil {
			p.log.Error("record scan", "item", item.ID, "error", err)
		}
	}
}

// combine keeps the stronger of the two results and folds in the matches the
// weaker one found on top of it.
func combine(a, b model.DetectionResult) model.DetectionResult {
	strong, weak := a, b
	if b.Confidence > a.Confidence {
		strong, weak = b, a
	}
	strong.HasSpoiler = a.HasSpoiler || b.HasSpoiler

	seen := make(map[string]bool, len(strong.MatchedTerms))
	for _, t := range strong.MatchedTerms {
		seen[t] = true
	}
	for _, m := range weak.Matches {
		if !seen[m.Term] {
			seen[m.Term] = true
			strong.MatchedTerms = append(strong.MatchedTerms, m.Term)
			strong.Matches = append(strong.Matches, m)
		}
	}
	return strong
}

// WithoutSpoilers filters out items whose detection confidence reaches the
// given threshold. Display policy belongs to the caller, not the engine.
func WithoutSpoilers(items []model.ContentItem, threshold float64) []model.ContentItem {
	kept := make([]model.ContentItem, 0, len(items))
	for _, item := range items {
		if item.Detection != nil && item.Detection.Confidence >= threshold {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}
