// Package ratelimit provides per-source minimum-interval throttling.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Default minimum intervals between calls, by source class.
const (
	ScrapeInterval = 1000 * time.Millisecond
	APIInterval    = 100 * time.Millisecond
)

// Limiter enforces a minimum interval between granted calls per source.
// Each source has its own independent clock: concurrent callers for the same
// source are serialized, while callers for different sources never wait on
// each other.
type Limiter struct {
	defaultInterval time.Duration

	mu      sync.Mutex
	sources map[string]*sourceClock
}

type sourceClock struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// New creates a Limiter whose unconfigured sources use defaultInterval.
func New(defaultInterval time.Duration) *Limiter {
	if defaultInterval <= 0 {
		defaultInterval = APIInterval
	}
	return &Limiter{
		defaultInterval: defaultInterval,
		sources:         map[string]*sourceClock{},
	}
}

// SetInterval overrides the minimum interval for one source.
func (l *Limiter) SetInterval(sourceID string, d time.Duration) {
	clock := l.clockFor(sourceID)
	clock.mu.Lock()
	clock.interval = d
	clock.mu.Unlock()
}

// Acquire blocks until the source's minimum interval has elapsed since its
// last granted call, then returns nil. It returns ctx.Err() if the context
// is done first; in that case no slot is consumed.
//
// Holding the per-source lock for the duration of the wait is what
// serializes same-source callers without touching other sources.
func (l *Limiter) Acquire(ctx context.Context, sourceID string) error {
	clock := l.clockFor(sourceID)

	clock.mu.Lock()
	defer clock.mu.Unlock()

	now := time.Now()
	if wait := clock.next.Sub(now); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now = <-timer.C:
		}
	}

	clock.next = now.Add(clock.interval)
	return nil
}

func (l *Limiter) clockFor(sourceID string) *sourceClock {
	l.mu.Lock()
	defer l.mu.Unlock()
	clock, ok := l.sources[sourceID]
	if !ok {
		clock = &sourceClock{interval: l.defaultInterval}
		l.sources[sourceID] = clock
	}
	return clock
}
