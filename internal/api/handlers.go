// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/middleware"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/validation"
)

// defaultSearchLimit is the title listing size when limit is omitted.
const defaultSearchLimit = 20

// DefaultRequestTimeout bounds engine calls when HandlerConfig leaves it unset.
const DefaultRequestTimeout = 10 * time.Second

// Recommender is the engine surface the handlers need.
type Recommender interface {
	Ready() bool
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	SimilarTo(ctx context.Context, title string, k int) ([]recommend.ScoredItem, error)
	RankForUser(ctx context.Context, userID, k int) ([]recommend.ScoredItem, error)
	Predict(ctx context.Context, userID, itemID int) (recommend.ScoredItem, error)
	SearchTitles(q string, limit int) ([]recommend.Item, error)
	Status() recommend.ModelStatus
}

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	// RequestTimeout bounds each engine call.
	RequestTimeout time.Duration

	// Version is reported by the health endpoint.
	Version string

	// Performance, when set, backs the endpoint latency report.
	Performance *middleware.PerformanceMonitor
}

// Handler serves the recommendation API.
type Handler struct {
	engine    Recommender
	timeout   time.Duration
	version   string
	perf      *middleware.PerformanceMonitor
	startTime time.Time
}

// NewHandler creates a handler over engine.
func NewHandler(engine Recommender, cfg HandlerConfig) *Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Handler{
		engine:    engine,
		timeout:   cfg.RequestTimeout,
		version:   cfg.Version,
		perf:      cfg.Performance,
		startTime: time.Now(),
	}
}

// HealthStatus is the payload of the health endpoints.
type HealthStatus struct {
	Status        string  `json:"status"`
	Ready         bool    `json:"ready"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func (h *Handler) health() HealthStatus {
	ready := h.engine.Ready()
	status := "healthy"
	if !ready {
		status = "starting"
	}
	return HealthStatus{
		Status:        status,
		Ready:         ready,
		Version:       h.version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
}

// Health handles GET /api/v1/health. It answers 200 while the process is
// alive and reports whether artifacts are ready.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.health())
}

// HealthReady handles GET /api/v1/health/ready. It answers 503 until the
// first artifacts are published.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	status := h.health()
	if !status.Ready {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Recommendation model is still loading", status)
		return
	}
	rw.Success(status)
}

// Recommendations handles
// GET /api/v1/recommendations?user_id=&title=&k=&weight_content=&weight_collab=
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	params, err := parseRecommendationsParams(r)
	if !h.checkParams(rw, params, err) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp, err := h.engine.Recommend(ctx, recommend.Request{
		UserID:        params.UserID,
		SeedTitle:     params.Title,
		WeightContent: params.WeightContent,
		WeightCollab:  params.WeightCollab,
		K:             params.K,
		RequestID:     logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		writeEngineError(rw, err)
		return
	}

	rw.SuccessList(resp, len(resp.Items))
}

// SimilarItems handles GET /api/v1/items/similar?title=&k=
func (h *Handler) SimilarItems(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	params, err := parseSimilarParams(r)
	if !h.checkParams(rw, params, err) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.engine.SimilarTo(ctx, params.Title, params.K)
	if err != nil {
		writeEngineError(rw, err)
		return
	}
	rw.SuccessList(items, len(items))
}

// SearchItems handles GET /api/v1/items?q=&limit=
func (h *Handler) SearchItems(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	params, err := parseSearchParams(r)
	if !h.checkParams(rw, params, err) {
		return
	}

	items, err := h.engine.SearchTitles(params.Query, params.Limit)
	if err != nil {
		writeEngineError(rw, err)
		return
	}
	rw.SuccessList(items, len(items))
}

// Prediction handles GET /api/v1/users/{userID}/predictions/{itemID}
func (h *Handler) Prediction(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, err := pathInt(r, "userID")
	if !h.checkParams(rw, nil, err) {
		return
	}
	itemID, err := pathInt(r, "itemID")
	if !h.checkParams(rw, nil, err) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	prediction, err := h.engine.Predict(ctx, userID, itemID)
	if err != nil {
		writeEngineError(rw, err)
		return
	}
	rw.Success(prediction)
}

// TopForUser handles GET /api/v1/users/{userID}/top?k=
func (h *Handler) TopForUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	params, err := parseTopParams(r)
	if !h.checkParams(rw, params, err) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.engine.RankForUser(ctx, params.UserID, params.K)
	if err != nil {
		writeEngineError(rw, err)
		return
	}
	rw.SuccessList(items, len(items))
}

// ModelStatus handles GET /api/v1/model
func (h *Handler) ModelStatus(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.engine.Status())
}

// EndpointStats handles GET /api/v1/stats/endpoints
func (h *Handler) EndpointStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.perf == nil {
		rw.SuccessList([]middleware.EndpointStats{}, 0)
		return
	}
	stats := h.perf.Stats()
	rw.SuccessList(stats, len(stats))
}

// NotFound answers unknown routes with the error envelope.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).NotFound("Route not found")
}

// MethodNotAllowed answers known routes hit with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).MethodNotAllowed()
}

// checkParams writes a 400 for a parse error or a failed validation of
// params and reports whether the handler may continue. params may be nil.
func (h *Handler) checkParams(rw *ResponseWriter, params interface{}, err error) bool {
	if err != nil {
		var perr *parameterError
		if errors.As(err, &perr) {
			rw.BadRequestWithDetails(perr.Error(), perr.details())
			return false
		}
		rw.BadRequest(err.Error())
		return false
	}
	if params == nil {
		return true
	}
	if verr := validation.ValidateStruct(params); verr != nil {
		rw.ValidationError(verr)
		return false
	}
	return true
}
