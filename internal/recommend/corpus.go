// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"fmt"
	"strings"
)

// Corpus is an immutable, ordered collection of items. Position i is the
// row/column used by the similarity index for Items()[i].
type Corpus struct {
	items   []Item
	byID    map[int]int
	byTitle map[string]int
	ids     []int
}

// NewCorpus builds a corpus and its lookup indexes.
// Duplicate item ids are rejected; duplicate titles resolve to the first one.
//
//nolint:gocritic // rangeValCopy: Item is small
func NewCorpus(items []Item) (*Corpus, error) {
	c := &Corpus{
		items:   make([]Item, len(items)),
		byID:    make(map[int]int, len(items)),
		byTitle: make(map[string]int, len(items)),
		ids:     make([]int, len(items)),
	}

	for i, item := range items {
		if prev, ok := c.byID[item.ID]; ok {
			return nil, fmt.Errorf("%w: %d at positions %d and %d", ErrDuplicateItem, item.ID, prev, i)
		}
		genres := make([]string, len(item.Genres))
		copy(genres, item.Genres)
		item.Genres = genres

		c.items[i] = item
		c.byID[item.ID] = i
		c.ids[i] = item.ID
		if _, ok := c.byTitle[item.Title]; !ok {
			c.byTitle[item.Title] = i
		}
	}

	return c, nil
}

// Len returns the number of items.
func (c *Corpus) Len() int {
	return len(c.items)
}

// At returns the item at position i.
func (c *Corpus) At(i int) Item {
	return c.items[i]
}

// Items returns the items in corpus order. The slice must not be modified.
func (c *Corpus) Items() []Item {
	return c.items
}

// IDs returns the distinct item ids in corpus order. The slice must not be modified.
func (c *Corpus) IDs() []int {
	return c.ids
}

// PositionOfTitle returns the position of the first item with exactly this title.
func (c *Corpus) PositionOfTitle(title string) (int, bool) {
	pos, ok := c.byTitle[title]
	return pos, ok
}

// PositionOfID returns the position of the item with this id.
func (c *Corpus) PositionOfID(id int) (int, bool) {
	pos, ok := c.byID[id]
	return pos, ok
}

// ItemByID returns the item with this id.
func (c *Corpus) ItemByID(id int) (Item, bool) {
	pos, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.items[pos], true
}

// SearchTitles returns titles containing q (case-insensitive) in corpus
// order, at most limit of them. An empty q matches every title.
func (c *Corpus) SearchTitles(q string, limit int) []Item {
	q = strings.ToLower(strings.TrimSpace(q))
	var out []Item
	for i := range c.items {
		if limit > 0 && len(out) >= limit {
			break
		}
		if q == "" || strings.Contains(strings.ToLower(c.items[i].Title), q) {
			out = append(out, c.items[i])
		}
	}
	return out
}

// InteractionTable holds the ratings a predictor is trained on and knows
// which users have any rating at all.
type InteractionTable struct {
	ratings   []Rating
	userCount map[int]int
	itemCount map[int]int
	scale     RatingScale
}

// NewInteractionTable validates ratings against the corpus and indexes users.
// A rating for an item absent from the corpus is an error; callers are
// expected to have filtered orphans during ingestion.
func NewInteractionTable(corpus *Corpus, ratings []Rating, scale RatingScale) (*InteractionTable, error) {
	if err := scale.Validate(); err != nil {
		return nil, err
	}

	t := &InteractionTable{
		ratings:   make([]Rating, len(ratings)),
		userCount: make(map[int]int),
		itemCount: make(map[int]int),
		scale:     scale,
	}
	copy(t.ratings, ratings)

	for i, r := range t.ratings {
		if corpus != nil {
			if _, ok := corpus.PositionOfID(r.ItemID); !ok {
				return nil, fmt.Errorf("%w: row %d item %d", ErrUnknownItem, i, r.ItemID)
			}
		}
		t.userCount[r.UserID]++
		t.itemCount[r.ItemID]++
	}

	return t, nil
}

// Ratings returns all ratings in load order. The slice must not be modified.
func (t *InteractionTable) Ratings() []Rating {
	return t.ratings
}

// Len returns the number of ratings.
func (t *InteractionTable) Len() int {
	return len(t.ratings)
}

// HasUser reports whether the user has at least one rating.
func (t *InteractionTable) HasUser(userID int) bool {
	return t.userCount[userID] > 0
}

// UserCount returns the number of distinct users.
func (t *InteractionTable) UserCount() int {
	return len(t.userCount)
}

// ItemCount returns the number of distinct rated items.
func (t *InteractionTable) ItemCount() int {
	return len(t.itemCount)
}

// Scale returns the rating scale.
func (t *InteractionTable) Scale() RatingScale {
	return t.scale
}
