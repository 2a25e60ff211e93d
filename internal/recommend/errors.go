// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import "errors"

var (
	// ErrInvariantViolation indicates an item id produced by an index or
	// model that the corpus cannot resolve. It aborts the request.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrDuplicateItem is returned when a corpus contains the same item id twice.
	ErrDuplicateItem = errors.New("duplicate item id")

	// ErrUnknownItem is returned when a rating references an item absent
	// from the corpus.
	ErrUnknownItem = errors.New("rating references unknown item")

	// ErrNotTrained is returned before any artifacts have been published.
	ErrNotTrained = errors.New("recommendation artifacts not ready")

	// ErrInvalidRequest is returned for requests with out-of-range parameters.
	ErrInvalidRequest = errors.New("invalid recommendation request")
)
