// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for recommendation requests.
const (
	OutcomeOK         = "ok"
	OutcomeEmpty      = "empty"
	OutcomeCached     = "cached"
	OutcomeError      = "error"
	OutcomeNotReady   = "not_ready"
	OutcomeInvalidReq = "invalid"
)

// OutcomeUnchanged marks a rebuild check that found the input files unchanged.
const OutcomeUnchanged = "unchanged"

var (
	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests by kind and outcome",
		},
		[]string{"kind", "outcome"}, // kind: hybrid, similar, top, predict
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Recommendation latency in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"kind"},
	)

	RecommendResultSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_result_size",
			Help:    "Number of entries returned per recommendation request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 200},
		},
		[]string{"kind"},
	)

	RecommendCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_hits_total",
			Help: "Total number of recommendation response cache hits",
		},
	)

	RecommendCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_misses_total",
			Help: "Total number of recommendation response cache misses",
		},
	)

	// Artifact Build Metrics
	SimilarityBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "similarity_index_build_duration_seconds",
			Help:    "Time to build the TF-IDF similarity index",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	SimilarityProfiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "similarity_index_profiles",
			Help: "Number of distinct genre profiles in the similarity index",
		},
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "svd_training_duration_seconds",
			Help:    "Time to fit the latent factor model",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "svd_training_runs_total",
			Help: "Total number of latent factor model fits by source",
		},
		[]string{"source"}, // trained, restored
	)

	EvaluationRMSE = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "svd_evaluation_rmse",
			Help: "Root mean squared error of the served model on the held-out split",
		},
	)

	EvaluationMAE = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "svd_evaluation_mae",
			Help: "Mean absolute error of the served model on the held-out split",
		},
	)

	CorpusItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "corpus_items",
			Help: "Number of items in the served corpus",
		},
	)

	InteractionRatings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "interaction_ratings",
			Help: "Number of ratings in the served interaction table",
		},
	)

	ArtifactRebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artifact_rebuilds_total",
			Help: "Total number of artifact rebuild attempts by outcome",
		},
		[]string{"outcome"}, // ok, unchanged, error
	)

	ImportRowsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_rows_dropped_total",
			Help: "Rows dropped during ingestion by table and reason",
		},
		[]string{"table", "reason"}, // reason: null_field, orphan
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordRecommendation records one engine call.
func RecordRecommendation(kind, outcome string, duration time.Duration, resultSize int) {
	RecommendRequests.WithLabelValues(kind, outcome).Inc()
	RecommendDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if outcome == OutcomeOK || outcome == OutcomeEmpty || outcome == OutcomeCached {
		RecommendResultSize.WithLabelValues(kind).Observe(float64(resultSize))
	}
}

// RecordCacheLookup records a response cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		RecommendCacheHits.Inc()
	} else {
		RecommendCacheMisses.Inc()
	}
}

// RecordSimilarityBuild records a completed similarity index build.
func RecordSimilarityBuild(duration time.Duration, profiles int) {
	SimilarityBuildDuration.Observe(duration.Seconds())
	SimilarityProfiles.Set(float64(profiles))
}

// RecordTraining records a model fit. Restored snapshots skip the duration histogram.
func RecordTraining(duration time.Duration, restored bool) {
	if restored {
		TrainingRuns.WithLabelValues("restored").Inc()
		return
	}
	TrainingRuns.WithLabelValues("trained").Inc()
	TrainingDuration.Observe(duration.Seconds())
}

// RecordEvaluation publishes held-out accuracy.
func RecordEvaluation(rmse, mae float64) {
	EvaluationRMSE.Set(rmse)
	EvaluationMAE.Set(mae)
}

// RecordDataset publishes the size of the served dataset.
func RecordDataset(items, ratings int) {
	CorpusItems.Set(float64(items))
	InteractionRatings.Set(float64(ratings))
}

// RecordRebuild records the outcome of a rebuild cycle.
func RecordRebuild(outcome string) {
	ArtifactRebuilds.WithLabelValues(outcome).Inc()
}

// RecordDroppedRows records rows skipped during ingestion.
func RecordDroppedRows(table, reason string, n int) {
	if n <= 0 {
		return
	}
	ImportRowsDropped.WithLabelValues(table, reason).Add(float64(n))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
