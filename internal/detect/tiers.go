package detect

import (
	"math"
	"strings"
	"unicode"

	"spoilershield/internal/model"
)

// Words shorter than this, and the stopwords below, are ignored when a
// multi-word term is split for tiers 3 and 4.
const minSignificantLen = 3

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "that": {}, "this": {},
}

// signalKeywords are generic spoiler tells used by the contextual tier.
var signalKeywords = []string{
	"spoiler", "spoilers", "finale", "winner", "leaked", "reveal",
	"revealed", "ending", "eliminated", "dies",
}

// document is the normalized view of one analyzed text, computed once per
// Analyze call and shared by all tiers.
type document struct {
	text  string
	words map[string]struct{}
}

func newDocument(text string) document {
	norm := normalize(text)
	words := map[string]struct{}{}
	for _, w := range strings.Fields(norm) {
		words[w] = struct{}{}
	}
	return document{text: norm, words: words}
}

func (d document) hasWord(w string) bool {
	_, ok := d.words[w]
	return ok
}

// term is the normalized view of one watchlist entry.
type term struct {
	raw        string
	normalized string
	words      []string
	// significant are the words considered by the multi-word tiers.
	significant []string
}

func newTerm(raw string) term {
	norm := normalize(raw)
	words := strings.Fields(norm)
	var significant []string
	for _, w := range words {
		if len(w) < minSignificantLen {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		significant = append(significant, w)
	}
	return term{raw: raw, normalized: norm, words: words, significant: significant}
}

// normalize lowercases, strips punctuation, and collapses whitespace.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// tier is a single matching strategy. Tiers are tried in order per term;
// the first hit wins.
type tier interface {
	score(doc document, t term) (model.Match, bool)
}

type exactTier struct{}

func (exactTier) score(doc document, t term) (model.Match, bool) {
	if !strings.Contains(doc.text, t.normalized) {
		return model.Match{}, false
	}
	return model.Match{Term: t.raw, Type: model.MatchExact, Confidence: 0.95}, true
}

type fuzzyTier struct{}

func (fuzzyTier) score(doc document, t term) (model.Match, bool) {
	if len(t.words) != 1 {
		return model.Match{}, false
	}
	word := t.words[0]
	variants := []string{word + "s", word + "ed", word + "ing"}
	if stripped := strings.TrimSuffix(word, "s"); stripped != word && stripped != "" {
		variants = append(variants, stripped)
	}
	for _, v := range variants {
		if doc.hasWord(v) {
			return model.Match{Term: t.raw, Type: model.MatchFuzzy, Confidence: 0.70, Context: v}, true
		}
	}
	return model.Match{}, false
}

type multiWordCompleteTier struct{}

func (multiWordCompleteTier) score(doc document, t term) (model.Match, bool) {
	if len(t.words) < 2 || len(t.significant) == 0 {
		return model.Match{}, false
	}
	for _, w := range t.significant {
		if !doc.hasWord(w) {
			return model.Match{}, false
		}
	}
	return model.Match{Term: t.raw, Type: model.MatchMultiWordComplete, Confidence: 0.90}, true
}

type multiWordPartialTier struct{}

func (multiWordPartialTier) score(doc document, t term) (model.Match, bool) {
	total := len(t.significant)
	if len(t.words) < 2 || total == 0 {
		return model.Match{}, false
	}
	found := 0
	for _, w := range t.significant {
		if doc.hasWord(w) {
			found++
		}
	}
	// Threshold is ceiling-rounded: found must reach ceil(total*0.7).
	need := int(math.Ceil(float64(total) * 0.7))
	if found < need || found == total {
		return model.Match{}, false
	}
	confidence := 0.60 + (float64(found)/float64(total))*0.20
	return model.Match{Term: t.raw, Type: model.MatchMultiWordPartial, Confidence: confidence}, true
}

type contextualTier struct{}

func (contextualTier) score(doc document, t term) (model.Match, bool) {
	if len(t.words) == 0 || !doc.hasWord(t.words[0]) {
		return model.Match{}, false
	}
	for _, kw := range signalKeywords {
		if doc.hasWord(kw) {
			return model.Match{Term: t.raw, Type: model.MatchContextual, Confidence: 0.50, Context: kw}, true
		}
	}
	return model.Match{}, false
}
