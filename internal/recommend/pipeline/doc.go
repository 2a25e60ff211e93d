// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package pipeline builds a servable generation of recommendation artifacts
// from the movie and rating files.
//
// A build loads the dataset, then computes the TF-IDF similarity index and
// fits the SVD model concurrently. When a snapshot store is configured the
// model is restored from a snapshot keyed by the dataset fingerprint and the
// model hyper-parameters; on a miss it is trained on the 80/20 split,
// evaluated on the holdout, saved, and older snapshots are pruned.
//
// The server, the rebuild service and the CLI all build through a Builder.
package pipeline
