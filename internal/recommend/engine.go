// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// Request kinds used for metrics labels.
const (
	kindHybrid  = "hybrid"
	kindSimilar = "similar"
	kindTop     = "top"
	kindPredict = "predict"
)

// Artifacts is one immutable generation of everything a request reads.
// The engine never mutates a published generation; rebuilds publish a new one.
type Artifacts struct {
	Corpus     *Corpus
	Table      *InteractionTable
	Similarity SimilaritySource
	Predictor  RatingPredictor

	// Evaluation is the holdout accuracy of Predictor, nil if not evaluated.
	Evaluation *Evaluation

	// Fingerprint identifies the dataset the artifacts were built from.
	Fingerprint string

	// Restored is true when Predictor was loaded from a snapshot.
	Restored bool

	// TrainedAt is when Predictor was fit.
	TrainedAt time.Time
}

// validate checks that a generation is complete.
func (a *Artifacts) validate() error {
	switch {
	case a == nil:
		return errors.New("nil artifacts")
	case a.Corpus == nil:
		return errors.New("artifacts missing corpus")
	case a.Table == nil:
		return errors.New("artifacts missing interaction table")
	case a.Similarity == nil:
		return errors.New("artifacts missing similarity source")
	case a.Predictor == nil:
		return errors.New("artifacts missing rating predictor")
	}
	return nil
}

// generation pairs published artifacts with their model version.
type generation struct {
	*Artifacts
	version int
}

// Engine answers hybrid, content and collaborative queries against the
// currently published artifacts. It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	current atomic.Pointer[generation]
	version atomic.Int32

	cache *cache.LRU[*Response]

	// Metrics
	requestCount  atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
	errorCount    atomic.Int64
	rebuildCount  atomic.Int64
	lastRebuildAt atomic.Int64
}

// NewEngine creates a new recommendation engine with no artifacts.
// Queries return ErrNotTrained until Publish is called.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config: cfg.Clone(),
		logger: logger.With().Str("component", "recommend_engine").Logger(),
	}
	if cfg.Cache.Enabled {
		e.cache = cache.NewLRU[*Response](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}

	return e, nil
}

// Publish makes a as the served generation and clears the response cache.
// The first call makes the engine ready; later calls count as rebuilds.
func (e *Engine) Publish(a *Artifacts) error {
	if err := a.validate(); err != nil {
		return fmt.Errorf("publish artifacts: %w", err)
	}

	if a.TrainedAt.IsZero() {
		a.TrainedAt = time.Now()
	}

	version := int(e.version.Add(1))
	prev := e.current.Swap(&generation{Artifacts: a, version: version})
	e.clearCache()

	if prev != nil {
		e.rebuildCount.Add(1)
		e.lastRebuildAt.Store(time.Now().UnixNano())
	}

	metrics.RecordDataset(a.Corpus.Len(), a.Table.Len())
	if a.Evaluation != nil {
		metrics.RecordEvaluation(a.Evaluation.RMSE, a.Evaluation.MAE)
	}

	event := e.logger.Info().
		Int("version", version).
		Int("items", a.Corpus.Len()).
		Int("ratings", a.Table.Len()).
		Int("users", a.Table.UserCount()).
		Str("fingerprint", a.Fingerprint).
		Bool("restored", a.Restored)
	if a.Evaluation != nil {
		event = event.Float64("rmse", a.Evaluation.RMSE).Float64("mae", a.Evaluation.MAE)
	}
	event.Msg("artifacts published")

	return nil
}

// Ready reports whether artifacts have been published.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// Current returns the served artifacts, or nil before the first Publish.
func (e *Engine) Current() *Artifacts {
	gen := e.current.Load()
	if gen == nil {
		return nil
	}
	return gen.Artifacts
}

// load returns the served generation or ErrNotTrained.
func (e *Engine) load() (*generation, error) {
	gen := e.current.Load()
	if gen == nil {
		return nil, ErrNotTrained
	}
	return gen, nil
}

// Recommend returns the hybrid ranking for a user and seed title.
//
// The content side contributes up to K items similar to SeedTitle and the
// collaborative side up to K items ranked for UserID. Both lists are merged
// with the request weights; the full merged list is returned.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	gen, err := e.load()
	if err != nil {
		e.observe(kindHybrid, metrics.OutcomeNotReady, start, 0)
		return nil, err
	}

	req, err = e.prepareRequest(req)
	if err != nil {
		e.observe(kindHybrid, metrics.OutcomeInvalidReq, start, 0)
		return nil, err
	}

	logger := e.createRequestLogger(req)
	logger.Debug().Msg("processing recommendation request")

	if resp := e.tryGetCachedResponse(gen.version, req, start, logger); resp != nil {
		e.observe(kindHybrid, metrics.OutcomeCached, start, len(resp.Items))
		return resp, nil
	}

	if err := ctx.Err(); err != nil {
		e.errorCount.Add(1)
		e.observe(kindHybrid, metrics.OutcomeError, start, 0)
		return nil, err
	}

	content := gen.Similarity.SimilarTo(req.SeedTitle, req.K)
	if len(content) == 0 {
		logger.Debug().Msg("no content matches for seed title")
	}

	collab := gen.Predictor.RankForUser(req.UserID, gen.Corpus.IDs(), req.K)
	if len(collab) == 0 {
		logger.Debug().Msg("no collaborative ranking for user")
	}

	items, err := Merge(content, collab, *req.WeightContent, *req.WeightCollab, gen.Corpus)
	if err != nil {
		e.errorCount.Add(1)
		e.observe(kindHybrid, metrics.OutcomeError, start, 0)
		logger.Error().Err(err).Msg("hybrid merge failed")
		return nil, fmt.Errorf("merge rankings: %w", err)
	}

	resp := &Response{
		Items:    items,
		Metadata: e.buildResponseMetadata(req, gen, start, len(content), len(collab)),
	}
	e.cacheResponse(gen.version, req, resp)

	outcome := metrics.OutcomeOK
	if len(items) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	e.observe(kindHybrid, outcome, start, len(items))

	logger.Debug().
		Int("content_hits", len(content)).
		Int("collab_hits", len(collab)).
		Int("returned", len(items)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return e.copyResponse(resp), nil
}

// prepareRequest applies defaults, validates weights and bounds K.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) (Request, error) {
	if req.RequestID == "" {
		req.RequestID = logging.GenerateRequestID()
	}

	if req.WeightContent == nil {
		w := e.config.Weights.Content
		req.WeightContent = &w
	}
	if req.WeightCollab == nil {
		w := e.config.Weights.Collaborative
		req.WeightCollab = &w
	}
	weights := HybridWeights{Content: *req.WeightContent, Collaborative: *req.WeightCollab}
	if err := weights.Validate(); err != nil {
		return req, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if math.IsInf(weights.Content, 0) || math.IsInf(weights.Collaborative, 0) {
		return req, fmt.Errorf("%w: weights must be finite", ErrInvalidRequest)
	}

	k, err := e.resolveK(req.K)
	if err != nil {
		return req, err
	}
	req.K = k

	return req, nil
}

// resolveK maps 0 to the default and clamps to MaxK. Negative values are invalid.
func (e *Engine) resolveK(k int) (int, error) {
	switch {
	case k < 0:
		return 0, fmt.Errorf("%w: k must be non-negative, got %d", ErrInvalidRequest, k)
	case k == 0:
		return e.config.Limits.DefaultK, nil
	case k > e.config.Limits.MaxK:
		return e.config.Limits.MaxK, nil
	}
	return k, nil
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Int("user_id", req.UserID).
		Str("seed_title", req.SeedTitle).
		Int("k", req.K).
		Logger()
}

// tryGetCachedResponse attempts to retrieve a cached response.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) tryGetCachedResponse(version int, req Request, start time.Time, logger zerolog.Logger) *Response {
	if e.cache == nil {
		return nil
	}

	cached, ok := e.cache.Get(e.cacheKey(version, req))
	metrics.RecordCacheLookup(ok)
	if !ok {
		e.cacheMisses.Add(1)
		return nil
	}

	e.cacheHits.Add(1)
	resp := e.copyResponse(cached)
	resp.Metadata.RequestID = req.RequestID
	resp.Metadata.CacheHit = true
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	resp.Metadata.Timestamp = time.Now()
	logger.Debug().Msg("cache hit")
	return resp
}

// cacheResponse stores the response in cache if enabled. A response computed
// from a generation that has since been replaced is not stored.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) cacheResponse(version int, req Request, resp *Response) {
	if e.cache == nil {
		return
	}
	if cur := e.current.Load(); cur == nil || cur.version != version {
		return
	}
	e.cache.Add(e.cacheKey(version, req), resp)
}

// cacheKey generates a cache key for a normalized request against one
// artifact generation.
//
//nolint:gocritic // hugeParam: req passed by value for simplicity
func (e *Engine) cacheKey(version int, req Request) string {
	return fmt.Sprintf("rec:v%d:%d:%s:%d:%s:%s",
		version,
		req.UserID,
		strconv.Quote(req.SeedTitle),
		req.K,
		strconv.FormatFloat(*req.WeightContent, 'g', -1, 64),
		strconv.FormatFloat(*req.WeightCollab, 'g', -1, 64),
	)
}

// PruneCache drops expired response cache entries and returns how many
// were removed.
func (e *Engine) PruneCache() int {
	if e.cache == nil {
		return 0
	}
	return e.cache.CleanupExpired()
}

// clearCache removes all cached entries.
func (e *Engine) clearCache() {
	if e.cache == nil {
		return
	}
	e.cache.Clear()
	e.logger.Debug().Msg("cache cleared")
}

// copyResponse returns a response whose Items slice is not shared with resp.
func (e *Engine) copyResponse(resp *Response) *Response {
	items := make([]ScoredItem, len(resp.Items))
	copy(items, resp.Items)

	return &Response{
		Items:    items,
		Metadata: resp.Metadata,
	}
}

// buildResponseMetadata constructs response metadata.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildResponseMetadata(req Request, gen *generation, start time.Time, contentHits, collabHits int) ResponseMetadata {
	return ResponseMetadata{
		RequestID:     req.RequestID,
		UserID:        req.UserID,
		SeedTitle:     req.SeedTitle,
		WeightContent: *req.WeightContent,
		WeightCollab:  *req.WeightCollab,
		K:             req.K,
		ContentHits:   contentHits,
		CollabHits:    collabHits,
		LatencyMS:     time.Since(start).Milliseconds(),
		ModelVersion:  gen.version,
		TrainedAt:     gen.TrainedAt,
		Timestamp:     time.Now(),
	}
}

// SimilarTo returns up to k items most similar to title. k = 0 selects the
// default; values above MaxK are clamped.
func (e *Engine) SimilarTo(ctx context.Context, title string, k int) ([]ScoredItem, error) {
	start := time.Now()
	e.requestCount.Add(1)

	gen, err := e.load()
	if err != nil {
		e.observe(kindSimilar, metrics.OutcomeNotReady, start, 0)
		return nil, err
	}
	if k, err = e.resolveK(k); err != nil {
		e.observe(kindSimilar, metrics.OutcomeInvalidReq, start, 0)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		e.observe(kindSimilar, metrics.OutcomeError, start, 0)
		return nil, err
	}

	items := gen.Similarity.SimilarTo(title, k)
	if items == nil {
		items = []ScoredItem{}
	}

	e.observe(kindSimilar, outcomeFor(items), start, len(items))
	return items, nil
}

// RankForUser returns the top k collaborative predictions for userID over the
// whole corpus, with titles resolved.
func (e *Engine) RankForUser(ctx context.Context, userID, k int) ([]ScoredItem, error) {
	start := time.Now()
	e.requestCount.Add(1)

	gen, err := e.load()
	if err != nil {
		e.observe(kindTop, metrics.OutcomeNotReady, start, 0)
		return nil, err
	}
	if k, err = e.resolveK(k); err != nil {
		e.observe(kindTop, metrics.OutcomeInvalidReq, start, 0)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		e.observe(kindTop, metrics.OutcomeError, start, 0)
		return nil, err
	}

	ranked := gen.Predictor.RankForUser(userID, gen.Corpus.IDs(), k)
	items := make([]ScoredItem, len(ranked))
	for i, entry := range ranked {
		item, ok := gen.Corpus.ItemByID(entry.ItemID)
		if !ok {
			e.errorCount.Add(1)
			e.observe(kindTop, metrics.OutcomeError, start, 0)
			return nil, fmt.Errorf("%w: item %d ranked for user but missing from corpus", ErrInvariantViolation, entry.ItemID)
		}
		items[i] = ScoredItem{ItemID: entry.ItemID, Title: item.Title, Score: entry.Score}
	}

	e.observe(kindTop, outcomeFor(items), start, len(items))
	return items, nil
}

// Predict returns the estimated rating of itemID by userID. Any pair is
// valid; the title is empty when itemID is not in the corpus.
func (e *Engine) Predict(ctx context.Context, userID, itemID int) (ScoredItem, error) {
	start := time.Now()
	e.requestCount.Add(1)

	gen, err := e.load()
	if err != nil {
		e.observe(kindPredict, metrics.OutcomeNotReady, start, 0)
		return ScoredItem{}, err
	}
	if err := ctx.Err(); err != nil {
		e.observe(kindPredict, metrics.OutcomeError, start, 0)
		return ScoredItem{}, err
	}

	result := ScoredItem{ItemID: itemID, Score: gen.Predictor.Predict(userID, itemID)}
	if item, ok := gen.Corpus.ItemByID(itemID); ok {
		result.Title = item.Title
	}

	e.observe(kindPredict, metrics.OutcomeOK, start, 1)
	return result, nil
}

// SearchTitles lists corpus items whose title contains q.
func (e *Engine) SearchTitles(q string, limit int) ([]Item, error) {
	gen, err := e.load()
	if err != nil {
		return nil, err
	}
	items := gen.Corpus.SearchTitles(q, limit)
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// Status describes the served artifacts and engine counters.
func (e *Engine) Status() ModelStatus {
	status := ModelStatus{
		RequestCount: e.requestCount.Load(),
		CacheHits:    e.cacheHits.Load(),
		CacheMisses:  e.cacheMisses.Load(),
		ErrorCount:   e.errorCount.Load(),
		RebuildCount: e.rebuildCount.Load(),
	}
	if ns := e.lastRebuildAt.Load(); ns != 0 {
		status.LastRebuildAt = time.Unix(0, ns)
	}

	gen := e.current.Load()
	if gen == nil {
		return status
	}

	status.Ready = true
	status.Fingerprint = gen.Fingerprint
	status.ItemCount = gen.Corpus.Len()
	status.RatingCount = gen.Table.Len()
	status.UserCount = gen.Table.UserCount()
	status.ModelVersion = gen.version
	status.TrainedAt = gen.TrainedAt
	status.Restored = gen.Restored
	if gen.Evaluation != nil {
		eval := *gen.Evaluation
		status.Evaluation = &eval
	}
	return status
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// observe records request metrics.
func (e *Engine) observe(kind, outcome string, start time.Time, size int) {
	metrics.RecordRecommendation(kind, outcome, time.Since(start), size)
}

func outcomeFor(items []ScoredItem) string {
	if len(items) == 0 {
		return metrics.OutcomeEmpty
	}
	return metrics.OutcomeOK
}
