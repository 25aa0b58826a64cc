// Package detect implements the spoiler detection engine.
//
// The engine scores free text against a snapshot of watchlist terms using a
// fixed ladder of matching tiers. It is a pure function of its inputs: it
// holds no per-call state, never mutates the term slice, and is safe for
// concurrent use once constructed.
package detect

import (
	"math"
	"strings"

	"spoilershield/internal/model"
)

const (
	defaultLowThreshold = 0.30
	confidenceCap       = 0.95
)

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	// LowThreshold is the confidence at or above which HasSpoiler is set.
	LowThreshold float64
	// TypeWeights overrides the per-content-type weight table.
	TypeWeights map[model.ContentType]float64
}

// Engine matches text against watchlist terms. Construct once with New and
// share freely; configuration is immutable after construction.
type Engine struct {
	lowThreshold float64
	weights      map[model.ContentType]float64
	tiers        []tier
}

// New builds an Engine with the standard tier ladder.
func New(opts Options) *Engine {
	threshold := opts.LowThreshold
	if threshold <= 0 {
		threshold = defaultLowThreshold
	}

	weights := map[model.ContentType]float64{
		model.TypeTitle:    1.0,
		model.TypeBody:     0.9,
		model.TypeComment:  0.75,
		model.TypeUsername: 0.6,
		model.TypeTag:      0.6,
	}
	for k, v := range opts.TypeWeights {
		weights[k] = v
	}

	return &Engine{
		lowThreshold: threshold,
		weights:      weights,
		tiers: []tier{
			exactTier{},
			fuzzyTier{},
			multiWordCompleteTier{},
			multiWordPartialTier{},
			contextualTier{},
		},
	}
}

// Analyze scores text against the given watchlist snapshot.
// An empty watchlist or blank text short-circuits to a zero result without
// evaluating any tier.
func (e *Engine) Analyze(text string, terms []string, actx model.AnalysisContext) model.DetectionResult {
	if len(terms) == 0 || strings.TrimSpace(text) == "" {
		return model.DetectionResult{}
	}

	doc := newDocument(text)

	var (
		matches []model.Match
		matched []string
		seen    = map[string]struct{}{}
	)
	for _, raw := range terms {
		term := newTerm(raw)
		if term.normalized == "" {
			continue
		}
		if _, dup := seen[term.normalized]; dup {
			continue
		}
		seen[term.normalized] = struct{}{}

		for _, t := range e.tiers {
			m, ok := t.score(doc, term)
			if !ok {
				continue
			}
			matches = append(matches, m)
			matched = append(matched, raw)
			break
		}
	}

	if len(matches) == 0 {
		return model.DetectionResult{}
	}

	confidence := e.aggregate(matches, actx)
	return model.DetectionResult{
		HasSpoiler:   confidence >= e.lowThreshold,
		Confidence:   confidence,
		MatchedTerms: matched,
		Matches:      matches,
	}
}

func (e *Engine) aggregate(matches []model.Match, actx model.AnalysisContext) float64 {
	var sum float64
	for _, m := range matches {
		sum += m.Confidence
	}
	confidence := (sum / float64(len(matches))) * e.weightFor(actx.Type)

	if n := len(matches); n > 1 {
		confidence = capAdd(confidence, float64(n-1)*0.10)
	}
	if actx.IsRecent {
		confidence = capAdd(confidence, 0.10)
	}
	if actx.Type == model.TypeTitle {
		confidence = capAdd(confidence, 0.05)
	}

	return math.Round(confidence*100) / 100
}

func (e *Engine) weightFor(t model.ContentType) float64 {
	if w, ok := e.weights[t]; ok {
		return w
	}
	return 1.0
}

func capAdd(confidence, bonus float64) float64 {
	return math.Min(confidence+bonus, confidenceCap)
}
