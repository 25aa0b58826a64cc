package source

import (
	"errors"
	"fmt"
)

// Kind classifies adapter failures. The registry decides skip/report policy
// from the kind alone, never from raw error text.
type Kind string

// Error kinds.
const (
	Unauthenticated Kind = "unauthenticated"
	NotFound        Kind = "not_found"
	RateLimited     Kind = "rate_limited"
	Transient       Kind = "transient"
	Malformed       Kind = "malformed"
)

// Error is the typed error every adapter returns.
type Error struct {
	Source string
	Kind   Kind
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Source, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with a source and kind.
func NewError(sourceID string, kind Kind, err error) *Error {
	return &Error{Source: sourceID, Kind: kind, Err: err}
}

// KindOf extracts the Kind from an error chain; unknown errors (including
// context cancellation) are reported as Transient.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return Transient
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// kindFromStatus maps an HTTP status code to the error taxonomy.
func kindFromStatus(status int) Kind {
	switch {
	case status == 401 || status == 403:
		return Unauthenticated
	case status == 404:
		return NotFound
	case status == 429:
		return RateLimited
	default:
		return Transient
	}
}
