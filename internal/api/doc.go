// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package api provides the HTTP interface of the recommendation service.

Routes are served by a chi router:

	GET /api/v1/health                                  liveness and readiness flag
	GET /api/v1/health/ready                            503 until artifacts are published
	GET /api/v1/recommendations?user_id=&title=&k=&weight_content=&weight_collab=
	GET /api/v1/items/similar?title=&k=                 content-based list
	GET /api/v1/items?q=&limit=                         title search
	GET /api/v1/users/{userID}/predictions/{itemID}     single predicted rating
	GET /api/v1/users/{userID}/top?k=                   collaborative list
	GET /api/v1/model                                   served model status and holdout accuracy
	GET /api/v1/stats/endpoints                         per-route latency percentiles
	GET /metrics                                        Prometheus exposition

Every JSON response uses the APIResponse envelope:

	{"success": true, "data": ..., "metadata": {"request_id": "...", "timestamp": "...", "duration_ms": 0}}
	{"success": false, "error": {"code": "BAD_REQUEST", "message": "...", "request_id": "..."}, "metadata": {...}}

Engine errors map to status codes in writeEngineError: recommend.ErrNotTrained
becomes 503 SERVICE_UNAVAILABLE, recommend.ErrInvalidRequest 400 BAD_REQUEST,
and anything else, including recommend.ErrInvariantViolation, 500
INTERNAL_ERROR. Parameters that fail go-playground/validator rules produce
400 VALIDATION_ERROR.

Middleware order on /api/v1: request ID, real IP, panic recovery, CORS
(go-chi/cors), per-IP rate limiting (go-chi/httprate), security headers,
Prometheus metrics, latency sampling, gzip.
*/
package api
