// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/marquee/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	perf          *middleware.PerformanceMonitor
}

// NewRouter creates a router. mw may be nil for defaults; perf may be nil to
// skip latency sampling.
func NewRouter(handler *Handler, mw *ChiMiddleware, perf *middleware.PerformanceMonitor) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
		perf:          perf,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global Middleware Stack
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(router.handler.NotFound)
	r.MethodNotAllowed(router.handler.MethodNotAllowed)

	// Health Endpoints
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Recommendation Endpoints
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		if router.perf != nil {
			r.Use(router.perf.Middleware)
		}
		r.Use(middleware.Compression(middleware.DefaultCompressionMinSize))

		r.Get("/recommendations", router.handler.Recommendations)
		r.Get("/items", router.handler.SearchItems)
		r.Get("/items/similar", router.handler.SimilarItems)
		r.Get("/users/{userID}/top", router.handler.TopForUser)
		r.Get("/users/{userID}/predictions/{itemID}", router.handler.Prediction)
		r.Get("/model", router.handler.ModelStatus)
		r.Get("/stats/endpoints", router.handler.EndpointStats)
	})

	// Prometheus
	r.Handle("/metrics", promhttp.Handler())

	return r
}
