// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"fmt"
	"time"
)

// Item represents a movie with the metadata used for content similarity.
type Item struct {
	// ID is the movie identifier (unique within a corpus).
	ID int `json:"id"`

	// Title is the display title. Lookups by title resolve to the first
	// occurrence in corpus order.
	Title string `json:"title"`

	// Genres is a slice of genre labels. May be empty.
	Genres []string `json:"genres"`
}

// Rating represents one explicit (user, item, value) observation.
type Rating struct {
	// UserID is the user identifier.
	UserID int `json:"user_id"`

	// ItemID references Item.ID.
	ItemID int `json:"item_id"`

	// Value is the rating on the configured RatingScale.
	Value float64 `json:"value"`
}

// RatingScale bounds the values a predictor may return.
type RatingScale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultRatingScale is the MovieLens half-star scale.
var DefaultRatingScale = RatingScale{Min: 0.5, Max: 5.0}

// Clip clamps v into the scale.
func (s RatingScale) Clip(v float64) float64 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// Validate checks that the scale is well formed.
func (s RatingScale) Validate() error {
	if s.Min >= s.Max {
		return fmt.Errorf("rating scale min must be < max, got [%v, %v]", s.Min, s.Max)
	}
	return nil
}

// ScoredItem is one entry of a ranked list. Content and collaborative
// rankings fill Score with similarity and predicted rating respectively;
// hybrid rankings carry the weighted accumulated score.
type ScoredItem struct {
	// ItemID is the movie identifier.
	ItemID int `json:"item_id"`

	// Title is the movie title. Collaborative rankings leave it empty until
	// the engine resolves it against the corpus.
	Title string `json:"title"`

	// Score is the ranking score, higher is better.
	Score float64 `json:"score"`
}

// Request represents a hybrid recommendation request.
type Request struct {
	// UserID seeds the collaborative contribution.
	UserID int `json:"user_id"`

	// SeedTitle seeds the content contribution.
	SeedTitle string `json:"seed_title"`

	// WeightContent scales content similarity scores.
	// Nil means Config.Weights.Content.
	WeightContent *float64 `json:"weight_content,omitempty"`

	// WeightCollab scales predicted ratings.
	// Nil means Config.Weights.Collaborative.
	WeightCollab *float64 `json:"weight_collab,omitempty"`

	// K is the per-source candidate count.
	// Defaults to Config.Limits.DefaultK if zero.
	K int `json:"k,omitempty"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// Response represents a hybrid recommendation response.
type Response struct {
	// Items is the full merged list in descending score order.
	Items []ScoredItem `json:"items"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	RequestID     string    `json:"request_id"`
	UserID        int       `json:"user_id"`
	SeedTitle     string    `json:"seed_title"`
	WeightContent float64   `json:"weight_content"`
	WeightCollab  float64   `json:"weight_collab"`
	K             int       `json:"k"`
	ContentHits   int       `json:"content_hits"`
	CollabHits    int       `json:"collab_hits"`
	LatencyMS     int64     `json:"latency_ms"`
	CacheHit      bool      `json:"cache_hit"`
	ModelVersion  int       `json:"model_version"`
	TrainedAt     time.Time `json:"trained_at"`
	Timestamp     time.Time `json:"timestamp"`
}

// SimilaritySource answers "items most similar to this title".
type SimilaritySource interface {
	// SimilarTo returns at most k items ranked by descending similarity to
	// the first item titled title, excluding that item. An unknown title
	// yields an empty result.
	SimilarTo(title string, k int) []ScoredItem
}

// RatingPredictor answers rating predictions for (user, item) pairs.
type RatingPredictor interface {
	// Predict returns the estimated rating. It always succeeds, falling back
	// to bias estimates for users or items absent from training.
	Predict(userID, itemID int) float64

	// RankForUser predicts every candidate and returns the top k in
	// descending order, ties kept in candidate order. Users without any
	// rating yield an empty result.
	RankForUser(userID int, candidates []int, k int) []ScoredItem
}

// Evaluation summarizes predictor accuracy on a held-out split.
type Evaluation struct {
	// RMSE is the root mean squared error.
	RMSE float64 `json:"rmse"`

	// MAE is the mean absolute error.
	MAE float64 `json:"mae"`

	// TrainSize is the number of ratings the model was fit on.
	TrainSize int `json:"train_size"`

	// TestSize is the number of held-out ratings.
	TestSize int `json:"test_size"`
}

// ModelStatus describes the artifacts currently served.
type ModelStatus struct {
	Ready         bool        `json:"ready"`
	Fingerprint   string      `json:"fingerprint,omitempty"`
	ItemCount     int         `json:"item_count"`
	RatingCount   int         `json:"rating_count"`
	UserCount     int         `json:"user_count"`
	ModelVersion  int         `json:"model_version"`
	TrainedAt     time.Time   `json:"trained_at"`
	Restored      bool        `json:"restored"`
	Evaluation    *Evaluation `json:"evaluation,omitempty"`
	RequestCount  int64       `json:"request_count"`
	CacheHits     int64       `json:"cache_hits"`
	CacheMisses   int64       `json:"cache_misses"`
	ErrorCount    int64       `json:"error_count"`
	RebuildCount  int64       `json:"rebuild_count"`
	LastRebuildAt time.Time   `json:"last_rebuild_at"`
}
