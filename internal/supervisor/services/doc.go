// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package services adapts Marquee components to suture's Serve(ctx) error
lifecycle.

HTTPServerService runs an *http.Server and drains it on cancellation.

RebuildService polls the fingerprint of the movie and rating files. When it
changes, the service builds a new generation of artifacts and publishes it
to the engine. A failed build or publish keeps the current generation and is
retried on the next tick. Each check is counted in
artifact_rebuilds_total by outcome (ok, unchanged, error).
*/
package services
