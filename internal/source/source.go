// Package source defines the content adapter contract and its concrete
// implementations, one file per external platform.
package source

import (
	"context"
	"net/http"

	"spoilershield/internal/model"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Query narrows what an adapter fetches.
type Query struct {
	// Topic is the subreddit, channel, board, or feed-specific scope.
	Topic string
	// Limit caps the number of items; adapters may return fewer. Zero means
	// the adapter default.
	Limit int
}

// SearchOptions tunes a search-capable adapter.
type SearchOptions struct {
	Limit int
}

// Adapter fetches and normalizes content from one external platform.
// Implementations must acquire their rate-limit slot before any network
// call, and must return a typed *Error (never panic) on bad payloads.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]model.ContentItem, error)
}

// Searcher is the optional search capability of an adapter. Sources that do
// not implement it are skipped by SearchAll, not treated as failing.
type Searcher interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]model.ContentItem, error)
}

// Limiter gates outbound calls per source.
type Limiter interface {
	Acquire(ctx context.Context, sourceID string) error
}

// CredentialFunc returns the configured credentials for an adapter, if any.
// Adapters read credentials lazily so Configure can take effect without
// rebuilding the adapter.
type CredentialFunc func() (model.Credentials, bool)
