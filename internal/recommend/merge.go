// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"fmt"
	"sort"
)

// Merge blends a content ranking and a collaborative ranking into one list.
//
// Content entries are inserted first with weightContent*score, then each
// collaborative entry either adds weightCollab*score to an existing entry or
// is inserted with its title resolved from the corpus. The result is sorted by
// descending accumulated score; equal scores keep insertion order, so items
// introduced by the content side precede collaborative-only items.
//
// The full merged list is returned without truncation. A collaborative item
// the corpus cannot resolve yields ErrInvariantViolation.
func Merge(content, collab []ScoredItem, weightContent, weightCollab float64, corpus *Corpus) ([]ScoredItem, error) {
	merged := make([]ScoredItem, 0, len(content)+len(collab))
	slot := make(map[int]int, len(content)+len(collab))

	for _, entry := range content {
		if pos, ok := slot[entry.ItemID]; ok {
			merged[pos].Score += weightContent * entry.Score
			continue
		}
		slot[entry.ItemID] = len(merged)
		merged = append(merged, ScoredItem{
			ItemID: entry.ItemID,
			Title:  entry.Title,
			Score:  weightContent * entry.Score,
		})
	}

	for _, entry := range collab {
		if pos, ok := slot[entry.ItemID]; ok {
			merged[pos].Score += weightCollab * entry.Score
			continue
		}
		item, ok := corpus.ItemByID(entry.ItemID)
		if !ok {
			return nil, fmt.Errorf("%w: item %d ranked for user but missing from corpus", ErrInvariantViolation, entry.ItemID)
		}
		slot[entry.ItemID] = len(merged)
		merged = append(merged, ScoredItem{
			ItemID: entry.ItemID,
			Title:  item.Title,
			Score:  weightCollab * entry.Score,
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	return merged, nil
}
