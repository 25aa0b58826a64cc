// Package watch runs the aggregation pipeline on a timer and pushes newly
// flagged items to a notifier.
package watch

import (
	"context"
	"log/slog"
	"time"

	"spoilershield/internal/model"
	"spoilershield/internal/source"
)

// FeedBuilder produces one annotated feed per call.
type FeedBuilder interface {
	BuildFeed(ctx context.Context, q source.Query) (model.AggregationResult, error)
}

// Notifier delivers alerts for flagged items and reports how many were sent.
type Notifier interface {
	Notify(items []model.ContentItem) int
}

// Watcher periodically rebuilds the feed and alerts on items it has not seen
// before. The seen set lives in memory only; a restart may re-alert.
type Watcher struct {
	pipe     FeedBuilder
	notifier Notifier
	query    source.Query
	log      *slog.Logger
	tick     time.Duration
	seen     map[string]struct{}
}

// New creates a Watcher with a 1-minute check interval.
func New(pipe FeedBuilder, notifier Notifier, q source.Query, log *slog.Logger) *Watcher {
	return &Watcher{
		pipe:     pipe,
		notifier: notifier,
		query:    q,
		log:      log,
		tick:     1 * time.Minute,
		seen:     map[string]struct{}{},
	}
}

// SetTickInterval overrides the default check interval.
func (w *Watcher) SetTickInterval(d time.Duration) {
	w.tick = d
}

// Run starts the watch loop, blocking until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	w.checkOnce(ctx)

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.checkOnce(ctx)
		}
	}
}

func (w *Watcher) checkOnce(ctx context.Context) {
	result, err := w.pipe.BuildFeed(ctx, w.query)
	if err != nil {
		w.log.Error("build feed", "error", err)
		return
	}
	for id, st := range result.Status {
		if st.Err != nil {
			w.log.Warn("source failed", "source", id, "error", st.Err)
		}
	}

	fresh := make([]model.ContentItem, 0, len(result.Items))
	for _, item := range result.Items {
		if _, ok := w.seen[item.ID]; ok {
			continue
		}
		w.seen[item.ID] = struct{}{}
		if item.Detection != nil && item.Detection.HasSpoiler {
			fresh = append(fresh, item)
		}
	}

	if sent := w.notifier.Notify(fresh); sent > 0 {
		w.log.Info("sent alerts", "count", sent)
	}
}
