// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"

	"spoilershield/internal/model"
)

// Storage is the interface for all persistence operations.
type Storage interface {
	// Watchlist terms. Terms are deduplicated case-insensitively; Add and
	// Remove report whether they changed anything.
	ListTerms(ctx context.Context) ([]string, error)
	AddTerm(ctx context.Context, term string) (bool, error)
	RemoveTerm(ctx context.Context, term string) (bool, error)
	ClearTerms(ctx context.Context) error

	// Platform lifecycle flags and credentials.
	ListPlatforms(ctx context.Context) ([]model.PlatformConfig, error)
	SavePlatform(ctx context.Context, cfg model.PlatformConfig) error
	SetCredentials(ctx context.Context, sourceID string, creds model.Credentials) error
	Credentials(ctx context.Context, sourceID string) (model.Credentials, bool, error)

	// Detection counters.
	RecordScan(ctx context.Context, hasSpoiler bool) error
	Totals(ctx context.Context) (model.ScanTotals, error)

	Close() error
}
