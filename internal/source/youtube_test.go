package source

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"spoilershield/internal/model"
)

const youtubeFixture = `{
  "items": [
    {
      "id": {"videoId": "vid123"},
      "snippet": {
        "title": "Finale reaction",
        "description": "Live reaction to the season finale.",
        "channelTitle": "ReactChannel",
        "publishedAt": "2026-03-02T11:00:00Z"
      }
    }
  ]
}`

func keyCreds(key string) CredentialFunc {
	return func() (model.Credentials, bool) {
		return model.KeyCredentials{APIKey: key}, true
	}
}

func TestYouTubeSearch(t *testing.T) {
	y := NewYouTube(&mockTransport{body: youtubeFixture, statusCode: 200}, &recordingLimiter{}, keyCreds("secret"))

	items, err := y.Search(context.Background(), "finale", SearchOptions{Limit: 5})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	want := []model.ContentItem{
		{
			ID:        "youtube_vid123",
			SourceID:  "youtube",
			Title:     "Finale reaction",
			Body:      "Live reaction to the season finale.",
			Author:    "ReactChannel",
			CreatedAt: time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
			Permalink: "https://www.youtube.com/watch?v=vid123",
		},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestYouTubeRequiresKey(t *testing.T) {
	tests := []struct {
		name  string
		creds CredentialFunc
	}{
		{name: "no credentials", creds: noCreds},
		{
			name: "wrong credential kind",
			creds: func() (model.Credentials, bool) {
				return model.FeedCredentials{FeedURL: "https://example.com"}, true
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := &recordingLimiter{}
			y := NewYouTube(&mockTransport{body: youtubeFixture, statusCode: 200}, limiter, tt.creds)

			_, err := y.Fetch(context.Background(), Query{Topic: "finale"})
			wantKind(t, err, Unauthenticated)
			// Credential failures are caught before any rate-limit slot is spent.
			if len(limiter.calls) != 0 {
				t.Errorf("limiter calls = %v, want none", limiter.calls)
			}
		})
	}
}

func TestYouTubeQuotaExceeded(t *testing.T) {
	y := NewYouTube(&mockTransport{body: "quota", statusCode: 403}, &recordingLimiter{}, keyCreds("secret"))

	_, err := y.Search(context.Background(), "finale", SearchOptions{})
	wantKind(t, err, Unauthenticated)
}
