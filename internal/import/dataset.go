// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

//nolint:revive // package name with underscore is intentional for clarity
package movielens_import

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
)

// Drop reasons reported to metrics.
const (
	reasonMissingField = "missing_field"
	reasonOrphan       = "orphan"
)

// Dataset is a validated corpus plus the ratings that reference it.
type Dataset struct {
	Corpus *recommend.Corpus
	Table  *recommend.InteractionTable

	// Fingerprint identifies the source files, see Fingerprint.
	Fingerprint string

	Stats LoadStats
}

// LoadStats describes one Load call.
type LoadStats struct {
	Movies         int           `json:"movies"`
	MoviesDropped  int           `json:"movies_dropped"`
	Ratings        int           `json:"ratings"`
	RatingsDropped int           `json:"ratings_dropped"`
	OrphanRatings  int           `json:"orphan_ratings"`
	Duration       time.Duration `json:"duration"`
}

// Load reads both files and builds the corpus and interaction table.
// Ratings whose movie is absent from the corpus are dropped.
func (r *Reader) Load(ctx context.Context, moviesPath, ratingsPath string, scale recommend.RatingScale) (*Dataset, error) {
	start := time.Now()

	fingerprint, err := Fingerprint(moviesPath, ratingsPath)
	if err != nil {
		return nil, err
	}

	items, moviesDropped, err := r.LoadMovies(ctx, moviesPath)
	if err != nil {
		return nil, err
	}
	corpus, err := recommend.NewCorpus(items)
	if err != nil {
		return nil, fmt.Errorf("build corpus: %w", err)
	}

	ratings, ratingsDropped, err := r.LoadRatings(ctx, ratingsPath)
	if err != nil {
		return nil, err
	}

	// Filter in place, keeping file order.
	kept := ratings[:0]
	for _, rt := range ratings {
		if _, ok := corpus.PositionOfID(rt.ItemID); ok {
			kept = append(kept, rt)
		}
	}
	orphans := len(ratings) - len(kept)

	table, err := recommend.NewInteractionTable(corpus, kept, scale)
	if err != nil {
		return nil, fmt.Errorf("build interaction table: %w", err)
	}

	metrics.RecordDroppedRows("movies", reasonMissingField, moviesDropped)
	metrics.RecordDroppedRows("ratings", reasonMissingField, ratingsDropped)
	metrics.RecordDroppedRows("ratings", reasonOrphan, orphans)

	if moviesDropped > 0 || ratingsDropped > 0 {
		r.logger.Warn().
			Int("movies_dropped", moviesDropped).
			Int("ratings_dropped", ratingsDropped).
			Msg("dropped rows with missing fields")
	}
	if orphans > 0 {
		r.logger.Warn().
			Int("orphan_ratings", orphans).
			Msg("dropped ratings for movies absent from the corpus")
	}

	stats := LoadStats{
		Movies:         corpus.Len(),
		MoviesDropped:  moviesDropped,
		Ratings:        table.Len(),
		RatingsDropped: ratingsDropped,
		OrphanRatings:  orphans,
		Duration:       time.Since(start),
	}

	r.logger.Info().
		Int("movies", stats.Movies).
		Int("ratings", stats.Ratings).
		Int("users", table.UserCount()).
		Str("fingerprint", fingerprint).
		Dur("duration", stats.Duration).
		Msg("dataset loaded")

	return &Dataset{
		Corpus:      corpus,
		Table:       table,
		Fingerprint: fingerprint,
		Stats:       stats,
	}, nil
}

// Fingerprint hashes the size and modification time of each file. It changes
// whenever either file is rewritten and is cheap enough to poll.
func Fingerprint(paths ...string) (string, error) {
	h := sha256.New()
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", p, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("%s is a directory", p)
		}
		fmt.Fprintf(h, "%s\x00%d\x00%d\x00", p, info.Size(), info.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)[:16]), nil
}
