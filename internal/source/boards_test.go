package source

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"spoilershield/internal/model"
)

func TestBoardsFetch(t *testing.T) {
	html := loadFixture(t, "testdata/board.html")

	b := NewBoards(&mockTransport{body: html, statusCode: 200}, &recordingLimiter{}, feedCreds("https://boards.example.com"))

	items, err := b.Fetch(context.Background(), Query{})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	// The third thread row has no title and must be skipped.
	want := []model.ContentItem{
		{
			ID:        "boards_9001",
			SourceID:  "boards",
			Title:     "Finale spoilers inside",
			Body:      "Do not open unless you have seen it.",
			Author:    "watcher42",
			CreatedAt: time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC),
			Permalink: "https://boards.example.com/t/9001",
		},
		{
			ID:        "boards_9002",
			SourceID:  "boards",
			Title:     "Weekly episode ranking",
			Body:      "Vote for your favorite episode.",
			Author:    "ranker",
			CreatedAt: time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
			Permalink: "https://boards.example.com/t/9002",
		},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestBoardsFetchErrors(t *testing.T) {
	tests := []struct {
		name      string
		transport *mockTransport
		creds     CredentialFunc
		wantKind  Kind
	}{
		{
			name:      "missing board URL",
			transport: &mockTransport{body: "", statusCode: 200},
			creds:     noCreds,
			wantKind:  Unauthenticated,
		},
		{
			name:      "board gone",
			transport: &mockTransport{body: "gone", statusCode: 404},
			creds:     feedCreds("https://boards.example.com"),
			wantKind:  NotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoards(tt.transport, &recordingLimiter{}, tt.creds)
			_, err := b.Fetch(context.Background(), Query{})
			wantKind(t, err, tt.wantKind)
		})
	}
}

func TestBoardsTopicExtendsURL(t *testing.T) {
	transport := &mockTransport{body: "<html></html>", statusCode: 200}
	b := NewBoards(transport, &recordingLimiter{}, feedCreds("https://boards.example.com/"))

	if _, err := b.Fetch(context.Background(), Query{Topic: "television"}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	want := "https://boards.example.com/television"
	if transport.gotURL != want {
		t.Errorf("fetch URL = %s, want %s", transport.gotURL, want)
	}
}
