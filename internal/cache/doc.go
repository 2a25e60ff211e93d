// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package cache provides a thread-safe in-memory LRU cache with TTL support.

The recommendation engine stores complete responses keyed by the normalized
request (user, seed title, weights, k). Entries expire lazily on Get and the
least recently used entry is evicted once capacity is reached.

# Usage

	c := cache.NewLRU[*recommend.Response](10000, 5*time.Minute)
	c.Add(key, resp)
	if cached, ok := c.Get(key); ok {
	    return cached
	}

# Invalidation

The engine calls Clear whenever it publishes new artifacts, so a cached list
never outlives the model that produced it.

# Thread Safety

All methods take a single mutex. Get mutates recency order, so there is no
read-only fast path.
*/
package cache
