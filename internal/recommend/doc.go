// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package recommend implements the hybrid movie recommendation core.
//
// # Architecture
//
// Two independent artifacts are built from the same data:
//
//   - a SimilaritySource answering "movies like this title" from genres
//   - a RatingPredictor answering "how would this user rate that movie"
//
// The Engine serves one immutable generation of both (an Artifacts value)
// and blends them per request with Merge:
//
//	score(item) = wc * similarity(seed, item) + wl * predicted(user, item)
//
// Items reached by only one side get only that side's term. The merged list
// is sorted by descending score with ties in insertion order, content first,
// and is returned in full.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	if err := engine.Publish(&recommend.Artifacts{
//	    Corpus:     corpus,
//	    Table:      table,
//	    Similarity: index,
//	    Predictor:  model,
//	}); err != nil {
//	    return err
//	}
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    UserID:    1,
//	    SeedTitle: "Toy Story (1995)",
//	})
//
// # Thread Safety
//
// The engine is safe for concurrent use. Published artifacts are never
// mutated; Publish swaps in a new generation atomically and clears the
// response cache, so in-flight requests finish against the generation they
// started with.
package recommend
