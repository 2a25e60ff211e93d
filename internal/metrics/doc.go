// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package metrics provides Prometheus collectors for the recommendation service.

Collectors are registered on the default registry via promauto and exposed at
/metrics by the API router.

# Available Metrics

Recommendation:
  - recommend_requests_total{kind,outcome}
  - recommend_duration_seconds{kind}
  - recommend_result_size{kind}
  - recommend_cache_hits_total, recommend_cache_misses_total

Artifacts:
  - similarity_index_build_duration_seconds, similarity_index_profiles
  - svd_training_duration_seconds, svd_training_runs_total{source}
  - svd_evaluation_rmse, svd_evaluation_mae
  - corpus_items, interaction_ratings
  - artifact_rebuilds_total{outcome}
  - import_rows_dropped_total{table,reason}

HTTP:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
*/
package metrics
