package source

import (
	"context"
	"testing"
)

func TestSampleFetch(t *testing.T) {
	s := NewSample()

	items, err := s.Fetch(context.Background(), Query{})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("expected canned items")
	}
	for _, item := range items {
		if item.SourceID != "sample" {
			t.Errorf("item %s has source %s, want sample", item.ID, item.SourceID)
		}
		if item.CreatedAt.IsZero() {
			t.Errorf("item %s has zero timestamp", item.ID)
		}
	}
}

func TestSampleSearch(t *testing.T) {
	s := NewSample()

	items, err := s.Search(context.Background(), "finale", SearchOptions{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Title != "Season finale airs tonight" {
		t.Errorf("unexpected match: %s", items[0].Title)
	}
}
