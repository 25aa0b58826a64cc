// Package model defines the domain types used across the application.
package model

import "time"

// ContentItem is a single normalized unit of content from any source.
// Adapters produce it; the pipeline owns it for the duration of one
// aggregation call.
type ContentItem struct {
	ID        string
	SourceID  string
	Title     string
	Body      string
	Author    string
	CreatedAt time.Time
	Permalink string
	Extra     map[string]string

	// Detection is filled in by the pipeline after scoring; nil until then.
	Detection *DetectionResult
}

// MatchType identifies which matching tier produced a Match.
type MatchType string

// Supported match types, from strongest to weakest tier.
const (
	MatchExact             MatchType = "exact"
	MatchFuzzy             MatchType = "fuzzy"
	MatchMultiWordComplete MatchType = "multi_word_complete"
	MatchMultiWordPartial  MatchType = "multi_word_partial"
	MatchContextual        MatchType = "contextual"
)

// Match records how a single watchlist term matched the analyzed text.
type Match struct {
	Term       string
	Type       MatchType
	Confidence float64
	Context    string
}

// DetectionResult is the outcome of scoring one text against the watchlist.
// It is derived and stateless; the engine recomputes it on every call.
type DetectionResult struct {
	HasSpoiler   bool
	Confidence   float64
	MatchedTerms []string
	Matches      []Match
}

// ContentType describes what part of a platform the analyzed text came from.
// It drives the per-type weight in the aggregate confidence.
type ContentType string

// Supported content types.
const (
	TypeTitle    ContentType = "title"
	TypeBody     ContentType = "body"
	TypeComment  ContentType = "comment"
	TypeUsername ContentType = "username"
	TypeTag      ContentType = "tag"
)

// AnalysisContext carries per-call hints into the detection engine.
type AnalysisContext struct {
	Type     ContentType
	IsRecent bool
}

// PlatformConfig tracks the lifecycle flags of a single source.
// Credentials are kept in the credential store, not here.
// Invariant: Enabled implies Configured.
type PlatformConfig struct {
	ID         string
	Enabled    bool
	Configured bool
}

// Health is the connection-test overlay of a platform. It changes only via
// an explicit TestConnection call, never via fetch failures.
type Health string

// Health states.
const (
	HealthUntested  Health = "untested"
	HealthHealthy   Health = "healthy"
	HealthUnhealthy Health = "unhealthy"
)

// SourceStatus reports the outcome of one source within one aggregation call.
type SourceStatus struct {
	Success bool
	Count   int
	Err     error
}

// AggregationResult is the merged feed plus per-source outcome of one
// FetchAll/SearchAll call. Built fresh per call; never cached by the core.
type AggregationResult struct {
	Items  []ContentItem
	Status map[string]SourceStatus
}

// ScanTotals are the lifetime detection counters.
type ScanTotals struct {
	Scanned int64
	Flagged int64
}
