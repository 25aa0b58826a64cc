// Package feed turns per-source result sets into a single ordered feed.
package feed

import (
	"sort"

	"spoilershield/internal/model"
)

// Merge flattens per-source items into one slice ordered by CreatedAt
// descending. Timestamp ties are broken by the given source priority order,
// and within one source the adapter's own item order is preserved. Sources
// missing from the priority list sort after the listed ones, by ID. Items
// are never deduplicated across sources.
func Merge(perSource map[string][]model.ContentItem, priority []string) []model.ContentItem {
	rank := make(map[string]int, len(priority))
	for i, id := range priority {
		rank[id] = i
	}
	sourceRank := func(id string) int {
		if r, ok := rank[id]; ok {
			return r
		}
		return len(priority)
	}

	total := 0
	for _, items := range perSource {
		total += len(items)
	}
	merged := make([]model.ContentItem, 0, total)

	sources := make([]string, 0, len(perSource))
	for id := range perSource {
		sources = append(sources, id)
	}
	sort.Slice(sources, func(i, j int) bool {
		ri, rj := sourceRank(sources[i]), sourceRank(sources[j])
		if ri != rj {
			return ri < rj
		}
		return sources[i] < sources[j]
	})
	for _, id := range sources {
		merged = append(merged, perSource[id]...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged
}
