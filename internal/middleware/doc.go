// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package middleware provides HTTP middleware shared by the API router.

All middleware uses the func(http.Handler) http.Handler shape so it plugs
directly into chi's r.Use.

Key Components:

  - RequestID: reuses a sane upstream X-Request-ID or generates a UUID, and
    stores it in the context for logging.Ctx
  - PrometheusMetrics: request count, latency and in-flight gauge labelled by
    chi route pattern
  - Compression: gzip for bodies of at least DefaultCompressionMinSize bytes
  - PerformanceMonitor: sliding window of request samples with per-endpoint
    percentiles and slow request logging

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(perfMon.Middleware)
	r.Use(middleware.Compression(0))

Route patterns are only known once chi has routed the request, so the
metrics and performance middleware read them after calling next.
*/
package middleware
