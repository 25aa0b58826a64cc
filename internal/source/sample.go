package source

import (
	"context"
	"strings"
	"time"

	"spoilershield/internal/model"
)

// Sample serves canned content without touching the network. It backs demos
// and acceptance tests where no real platform is configured.
type Sample struct {
	id    string
	now   func() time.Time
	items []sampleItem
}

var (
	_ Adapter  = (*Sample)(nil)
	_ Searcher = (*Sample)(nil)
)

type sampleItem struct {
	title  string
	body   string
	author string
	age    time.Duration
}

// NewSample creates the sample adapter.
func NewSample() *Sample {
	return &Sample{
		id:  "sample",
		now: time.Now,
		items: []sampleItem{
			{
				title:  "Weekly discussion thread",
				body:   "Share what you are watching this week.",
				author: "mod_team",
				age:    2 * time.Hour,
			},
			{
				title:  "Season finale airs tonight",
				body:   "No plot details here, just a reminder to tune in.",
				author: "showtime_fan",
				age:    8 * time.Hour,
			},
			{
				title:  "Production update for next season",
				body:   "Filming wrapped last month according to the studio.",
				author: "industry_watcher",
				age:    30 * time.Hour,
			},
		},
	}
}

// Name identifies the adapter inside the registry.
func (s *Sample) Name() string { return s.id }

// Fetch returns the canned items with fresh timestamps.
func (s *Sample) Fetch(ctx context.Context, q Query) ([]model.ContentItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewError(s.id, Transient, err)
	}
	limit := limitOrDefault(q.Limit)
	now := s.now().UTC()
	items := make([]model.ContentItem, 0, len(s.items))
	for i, it := range s.items {
		if i >= limit {
			break
		}
		items = append(items, model.ContentItem{
			ID:        "sample_" + it.author,
			SourceID:  s.id,
			Title:     it.title,
			Body:      it.body,
			Author:    it.author,
			CreatedAt: now.Add(-it.age),
			Permalink: "https://example.com/sample/" + it.author,
		})
	}
	return items, nil
}

// Search filters the canned items by substring match on the title.
func (s *Sample) Search(ctx context.Context, query string, opts SearchOptions) ([]model.ContentItem, error) {
	all, err := s.Fetch(ctx, Query{Limit: opts.Limit})
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	matched := make([]model.ContentItem, 0, len(all))
	for _, item := range all {
		if strings.Contains(strings.ToLower(item.Title), needle) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}
