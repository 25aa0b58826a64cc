package source

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"spoilershield/internal/model"
)

func feedCreds(url string) CredentialFunc {
	return func() (model.Credentials, bool) {
		return model.FeedCredentials{FeedURL: url}, true
	}
}

func noCreds() (model.Credentials, bool) { return nil, false }

func TestRSSFetch(t *testing.T) {
	xml := loadFixture(t, "testdata/feed.xml")

	tests := []struct {
		name      string
		transport *mockTransport
		creds     CredentialFunc
		wantItems int
		wantKind  Kind
	}{
		{
			name:      "successful fetch",
			transport: &mockTransport{body: xml, statusCode: 200},
			creds:     feedCreds("https://example.com/rss"),
			wantItems: 2,
		},
		{
			name:      "missing feed URL maps to unauthenticated",
			transport: &mockTransport{body: xml, statusCode: 200},
			creds:     noCreds,
			wantKind:  Unauthenticated,
		},
		{
			name:      "wrong credential kind maps to unauthenticated",
			transport: &mockTransport{body: xml, statusCode: 200},
			creds: func() (model.Credentials, bool) {
				return model.KeyCredentials{APIKey: "k"}, true
			},
			wantKind: Unauthenticated,
		},
		{
			name:      "invalid xml maps to malformed",
			transport: &mockTransport{body: "not xml at all", statusCode: 200},
			creds:     feedCreds("https://example.com/rss"),
			wantKind:  Malformed,
		},
		{
			name:      "server error maps to transient",
			transport: &mockTransport{body: "oops", statusCode: 500},
			creds:     feedCreds("https://example.com/rss"),
			wantKind:  Transient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRSS(tt.transport, &recordingLimiter{}, tt.creds)

			items, err := r.Fetch(context.Background(), Query{})

			if tt.wantKind != "" {
				wantKind(t, err, tt.wantKind)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(items) != tt.wantItems {
				t.Fatalf("got %d items, want %d", len(items), tt.wantItems)
			}

			want := model.ContentItem{
				ID:        "rss_finale-2026",
				SourceID:  "rss",
				Title:     "Season finale airs tonight",
				Body:      "The season wraps up with a two-hour special.",
				CreatedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
				Permalink: "https://example.com/finale",
			}
			ignoreAuthor := cmpopts.IgnoreFields(model.ContentItem{}, "Author")
			if diff := cmp.Diff(want, items[0], ignoreAuthor); diff != "" {
				t.Errorf("first item mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRSSFetchRespectsLimit(t *testing.T) {
	xml := loadFixture(t, "testdata/feed.xml")
	r := NewRSS(&mockTransport{body: xml, statusCode: 200}, &recordingLimiter{}, feedCreds("https://example.com/rss"))

	items, err := r.Fetch(context.Background(), Query{Limit: 1})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("got %d items, want 1", len(items))
	}
}
