// Package platform tracks per-source lifecycle state and fans fetches out
// across every enabled source.
package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"spoilershield/internal/model"
	"spoilershield/internal/source"
)

// Lifecycle errors.
var (
	ErrUnknownSource = errors.New("unknown source")
	ErrInvalidState  = errors.New("invalid platform state")
)

// Store persists platform flags and credentials between runs.
type Store interface {
	SavePlatform(ctx context.Context, cfg model.PlatformConfig) error
	SetCredentials(ctx context.Context, sourceID string, creds model.Credentials) error
}

type platformState struct {
	adapter source.Adapter
	cfg     model.PlatformConfig
	creds   model.Credentials
	health  model.Health
}

// Registry owns the adapter set and its lifecycle state. All methods are safe
// for concurrent use; no lock is held across a network call.
type Registry struct {
	log   *slog.Logger
	store Store

	mu     sync.RWMutex
	states map[string]*platformState
	order  []string
}

// New creates an empty registry.
func New(store Store, log *slog.Logger) *Registry {
	return &Registry{
		log:    log,
		store:  store,
		states: make(map[string]*platformState),
	}
}

// Register adds an adapter in the unconfigured, disabled state. Registration
// order defines the default source priority. Re-registering an ID replaces
// the adapter but keeps its state.
func (r *Registry) Register(a source.Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := a.Name()
	if st, ok := r.states[id]; ok {
		st.adapter = a
		return
	}
	r.states[id] = &platformState{
		adapter: a,
		cfg:     model.PlatformConfig{ID: id},
		health:  model.HealthUntested,
	}
	r.order = append(r.order, id)
}

// Restore seeds persisted flags and credentials for an already registered
// source, without writing back to the store. Health always starts untested.
func (r *Registry) Restore(cfg model.PlatformConfig, creds model.Credentials) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[cfg.ID]
	if !ok {
		return
	}
	cfg.Enabled = cfg.Enabled && cfg.Configured
	st.cfg = cfg
	st.creds = creds
}

// Sources returns every registered source ID in registration order.
func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Config returns the lifecycle flags of one source.
func (r *Registry) Config(id string) (model.PlatformConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.states[id]
	if !ok {
		return model.PlatformConfig{}, false
	}
	return st.cfg, true
}

// Health returns the connection-test overlay of one source.
func (r *Registry) Health(id string) model.Health {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.states[id]
	if !ok {
		return model.HealthUntested
	}
	return st.health
}

// Credentials returns the configured credentials of one source.
func (r *Registry) Credentials(id string) (model.Credentials, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.states[id]
	if !ok || st.creds == nil {
		return nil, false
	}
	return st.creds, true
}

// CredentialFunc adapts Credentials into the lazy lookup adapters consume.
func (r *Registry) CredentialFunc(id string) source.CredentialFunc {
	return func() (model.Credentials, bool) {
		return r.Credentials(id)
	}
}

// Configure validates and stores credentials for a source, marking it
// configured. It never auto-enables and never touches health.
func (r *Registry) Configure(ctx context.Context, id string, creds model.Credentials) error {
	if creds == nil {
		return fmt.Errorf("configure %s: nil credentials", id)
	}
	if err := creds.Validate(); err != nil {
		return fmt.Errorf("configure %s: %w", id, err)
	}

	r.mu.Lock()
	st, ok := r.states[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("configure %s: %w", id, ErrUnknownSource)
	}
	st.creds = creds
	st.cfg.Configured = true
	cfg := st.cfg
	r.mu.Unlock()

	if err := r.store.SetCredentials(ctx, id, creds); err != nil {
		return fmt.Errorf("persist credentials for %s: %w", id, err)
	}
	if err := r.store.SavePlatform(ctx, cfg); err != nil {
		return fmt.Errorf("persist platform %s: %w", id, err)
	}
	r.log.Info("platform configured", "source", id, "kind", creds.Kind())
	return nil
}

// SetEnabled flips the enabled flag. Enabling an unconfigured source is an
// invalid transition and leaves the flag unchanged.
func (r *Registry) SetEnabled(ctx context.Context, id string, enabled bool) error {
	r.mu.Lock()
	st, ok := r.states[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("enable %s: %w", id, ErrUnknownSource)
	}
	if enabled && !st.cfg.Configured {
		r.mu.Unlock()
		return fmt.Errorf("enable %s: not configured: %w", id, ErrInvalidState)
	}
	st.cfg.Enabled = enabled
	cfg := st.cfg
	r.mu.Unlock()

	if err := r.store.SavePlatform(ctx, cfg); err != nil {
		return fmt.Errorf("persist platform %s: %w", id, err)
	}
	r.log.Info("platform toggled", "source", id, "enabled", enabled)
	return nil
}

// TestConnection performs one light fetch and records the outcome in the
// health overlay. It is the only writer of health. Unknown sources test
// false.
func (r *Registry) TestConnection(ctx context.Context, id string) bool {
	r.mu.RLock()
	st, ok := r.states[id]
	var adapter source.Adapter
	if ok {
		adapter = st.adapter
	}
	r.mu.RUnlock()
	if !ok {
		return false
	}

	_, err := adapter.Fetch(ctx, source.Query{Limit: 1})
	healthy := err == nil
	if err != nil {
		r.log.Warn("connection test failed", "source", id, "error", err)
	}

	r.mu.Lock()
	if st, ok := r.states[id]; ok {
		if healthy {
			st.health = model.HealthHealthy
		} else {
			st.health = model.HealthUnhealthy
		}
	}
	r.mu.Unlock()
	return healthy
}

// FetchAll fetches from every enabled source concurrently. Each source gets
// an independent status entry; one source failing never hides the others'
// items.
func (r *Registry) FetchAll(ctx context.Context, q source.Query) (map[string][]model.ContentItem, map[string]model.SourceStatus) {
	targets := r.enabled()

	perSource := make(map[string][]model.ContentItem, len(targets))
	status := make(map[string]model.SourceStatus, len(targets))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, a := range targets {
		wg.Add(1)
		go func(a source.Adapter) {
			defer wg.Done()
			items, err := a.Fetch(ctx, q)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.log.Warn("fetch failed", "source", a.Name(), "kind", source.KindOf(err), "error", err)
				status[a.Name()] = model.SourceStatus{Err: err}
				return
			}
			perSource[a.Name()] = items
			status[a.Name()] = model.SourceStatus{Success: true, Count: len(items)}
		}(a)
	}
	wg.Wait()
	return perSource, status
}

// SearchAll runs a search across every enabled source that supports it.
// Sources without the capability are skipped with a zero-count success.
func (r *Registry) SearchAll(ctx context.Context, query string, opts source.SearchOptions) (map[string][]model.ContentItem, map[string]model.SourceStatus) {
	targets := r.enabled()

	perSource := make(map[string][]model.ContentItem, len(targets))
	status := make(map[string]model.SourceStatus, len(targets))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, a := range targets {
		s, ok := a.(source.Searcher)
		if !ok {
			mu.Lock()
			status[a.Name()] = model.SourceStatus{Success: true}
			mu.Unlock()
			continue
		}
		wg.Add(1)
		go func(name string, s source.Searcher) {
			defer wg.Done()
			items, err := s.Search(ctx, query, opts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.log.Warn("search failed", "source", name, "kind", source.KindOf(err), "error", err)
				status[name] = model.SourceStatus{Err: err}
				return
			}
			perSource[name] = items
			status[name] = model.SourceStatus{Success: true, Count: len(items)}
		}(a.Name(), s)
	}
	wg.Wait()
	return perSource, status
}

// enabled snapshots the adapters of enabled sources in registration order.
func (r *Registry) enabled() []source.Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]source.Adapter, 0, len(r.order))
	for _, id := range r.order {
		if st := r.states[id]; st.cfg.Enabled {
			out = append(out, st.adapter)
		}
	}
	return out
}
