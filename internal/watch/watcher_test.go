package watch

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"spoilershield/internal/model"
	"spoilershield/internal/source"
)

type fakeBuilder struct {
	result model.AggregationResult
}

func (f *fakeBuilder) BuildFeed(context.Context, source.Query) (model.AggregationResult, error) {
	return f.result, nil
}

type recordingNotifier struct {
	batches [][]string
}

func (r *recordingNotifier) Notify(items []model.ContentItem) int {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	r.batches = append(r.batches, ids)
	return len(items)
}

func flagged(id string) model.ContentItem {
	return model.ContentItem{
		ID:        id,
		CreatedAt: time.Now(),
		Detection: &model.DetectionResult{HasSpoiler: true, Confidence: 0.95},
	}
}

func TestCheckOnceAlertsNewFlaggedItemsOnly(t *testing.T) {
	clean := model.ContentItem{ID: "clean", Detection: &model.DetectionResult{}}
	builder := &fakeBuilder{result: model.AggregationResult{
		Items: []model.ContentItem{flagged("a"), flagged("b"), clean},
	}}
	notifier := &recordingNotifier{}
	w := New(builder, notifier, source.Query{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	w.checkOnce(context.Background())
	// Same feed again: everything already seen.
	w.checkOnce(context.Background())

	builder.result.Items = append(builder.result.Items, flagged("c"))
	w.checkOnce(context.Background())

	want := [][]string{{"a", "b"}, {}, {"c"}}
	if diff := cmp.Diff(want, notifier.batches); diff != "" {
		t.Errorf("notified batches mismatch (-want +got):\n%s", diff)
	}
}
