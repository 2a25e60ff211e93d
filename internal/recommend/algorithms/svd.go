// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package algorithms

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/marquee/internal/recommend"
)

// SVDConfig contains configuration for the latent factor model.
type SVDConfig struct {
	// Factors is the dimension of the user and item factor vectors.
	// Default: 100.
	Factors int

	// Epochs is the number of passes over the training ratings.
	// Default: 20.
	Epochs int

	// InitMean is the mean of the normal distribution factors start from.
	// Default: 0.
	InitMean float64

	// InitStdDev is the standard deviation of factor initialization.
	// Default: 0.1. Negative values get the default.
	InitStdDev float64

	// LearningRate is the SGD step size.
	// Default: 0.005.
	LearningRate float64

	// Regularization is the L2 penalty on biases and factors.
	// Default: 0.02. Negative values get the default.
	Regularization float64

	// Scale bounds predictions.
	// Default: [0.5, 5.0].
	Scale recommend.RatingScale

	// Seed for reproducible initialization.
	// If 0, uses a default seed.
	Seed int64
}

// DefaultSVDConfig returns default SVD configuration.
func DefaultSVDConfig() SVDConfig {
	return SVDConfig{
		Factors:        100,
		Epochs:         20,
		InitMean:       0,
		InitStdDev:     0.1,
		LearningRate:   0.005,
		Regularization: 0.02,
		Scale:          recommend.DefaultRatingScale,
		Seed:           42,
	}
}

// SVDConfigFrom maps engine configuration onto model configuration.
func SVDConfigFrom(cfg *recommend.Config) SVDConfig {
	return SVDConfig{
		Factors:        cfg.SVD.Factors,
		Epochs:         cfg.SVD.Epochs,
		InitMean:       cfg.SVD.InitMean,
		InitStdDev:     cfg.SVD.InitStdDev,
		LearningRate:   cfg.SVD.LearningRate,
		Regularization: cfg.SVD.Regularization,
		Scale:          cfg.Scale,
		Seed:           cfg.Seed,
	}
}

// SVD is a biased matrix factorization model fit by stochastic gradient
// descent, in the style popularized by the Netflix Prize:
//
//	r̂(u,i) = μ + b_u + b_i + p_u · q_i
//
// For every training rating, with e = r - r̂(u,i):
//
//	b_u += γ (e - λ b_u)
//	b_i += γ (e - λ b_i)
//	p_u += γ (e q_i - λ p_u)
//	q_i += γ (e p_u - λ q_i)
//
// Predict never fails. Terms for a user or item absent from training are
// dropped: an unknown user gets μ + b_i, an unknown item μ + b_u, and an
// unknown pair μ. Results are clipped to the rating scale.
type SVD struct {
	BaseAlgorithm
	config SVDConfig
	logger zerolog.Logger

	globalMean float64

	// userIndex maps user ID to factor row
	userIndex map[int]int

	// itemIndex maps item ID to factor row
	itemIndex map[int]int

	indexToUser []int
	indexToItem []int

	userBias    []float64
	itemBias    []float64
	userFactors [][]float64
	itemFactors [][]float64

	// knownUsers holds every user with at least one rating in the full
	// interaction table, including users whose ratings were all held out.
	knownUsers map[int]struct{}

	trainSize int
}

// NewSVD creates a new SVD model with the given configuration.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSVD(cfg SVDConfig, logger zerolog.Logger) *SVD {
	defaults := DefaultSVDConfig()
	if cfg.Factors <= 0 {
		cfg.Factors = defaults.Factors
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = defaults.Epochs
	}
	if cfg.InitStdDev < 0 {
		cfg.InitStdDev = defaults.InitStdDev
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = defaults.LearningRate
	}
	if cfg.Regularization < 0 {
		cfg.Regularization = defaults.Regularization
	}
	if cfg.Scale == (recommend.RatingScale{}) {
		cfg.Scale = defaults.Scale
	}
	if cfg.Seed == 0 {
		cfg.Seed = defaults.Seed
	}

	return &SVD{
		BaseAlgorithm: NewBaseAlgorithm("svd"),
		config:        cfg,
		logger:        logger.With().Str("component", "svd").Logger(),
		userIndex:     make(map[int]int),
		itemIndex:     make(map[int]int),
		knownUsers:    make(map[int]struct{}),
	}
}

// Config returns the effective configuration.
func (m *SVD) Config() SVDConfig {
	return m.config
}

// Train fits the model on trainset. table is the full interaction table and
// defines which users RankForUser considers known; a nil trainset trains on
// every rating in table.
//
//nolint:gocyclo // ML training loops are inherently branchy
func (m *SVD) Train(ctx context.Context, table *recommend.InteractionTable, trainset []recommend.Rating) error {
	m.acquireTrainLock()
	defer m.releaseTrainLock()

	if ContextCancelled(ctx) {
		return ctx.Err()
	}

	if trainset == nil {
		trainset = table.Ratings()
	}

	// Index users and items in order of first appearance.
	userIndex := make(map[int]int)
	itemIndex := make(map[int]int)
	var indexToUser, indexToItem []int
	var sum float64

	type sample struct {
		u, i  int
		value float64
	}
	samples := make([]sample, len(trainset))

	for n, r := range trainset {
		u, ok := userIndex[r.UserID]
		if !ok {
			u = len(indexToUser)
			userIndex[r.UserID] = u
			indexToUser = append(indexToUser, r.UserID)
		}
		i, ok := itemIndex[r.ItemID]
		if !ok {
			i = len(indexToItem)
			itemIndex[r.ItemID] = i
			indexToItem = append(indexToItem, r.ItemID)
		}
		samples[n] = sample{u: u, i: i, value: r.Value}
		sum += r.Value
	}

	globalMean := (m.config.Scale.Min + m.config.Scale.Max) / 2
	if len(samples) > 0 {
		globalMean = sum / float64(len(samples))
	}

	numFactors := m.config.Factors
	//nolint:gosec // G404: math/rand is acceptable for ML initialization (not security)
	rng := rand.New(rand.NewSource(m.config.Seed))

	initFactors := func(rows int) [][]float64 {
		out := make([][]float64, rows)
		for r := range out {
			out[r] = make([]float64, numFactors)
			for f := range out[r] {
				out[r][f] = m.config.InitMean + rng.NormFloat64()*m.config.InitStdDev
			}
		}
		return out
	}

	userBias := make([]float64, len(indexToUser))
	itemBias := make([]float64, len(indexToItem))
	userFactors := initFactors(len(indexToUser))
	itemFactors := initFactors(len(indexToItem))

	lr := m.config.LearningRate
	reg := m.config.Regularization
	progress := rate.Sometimes{First: 1, Interval: 5 * time.Second}
	start := time.Now()

	for epoch := 0; epoch < m.config.Epochs; epoch++ {
		if ContextCancelled(ctx) {
			return ctx.Err()
		}

		progress.Do(func() {
			m.logger.Debug().
				Int("epoch", epoch+1).
				Int("epochs", m.config.Epochs).
				Dur("elapsed", time.Since(start)).
				Msg("training epoch")
		})

		for n, s := range samples {
			if n&0xFFFF == 0 && ContextCancelled(ctx) {
				return ctx.Err()
			}

			pu := userFactors[s.u]
			qi := itemFactors[s.i]

			err := s.value - (globalMean + userBias[s.u] + itemBias[s.i] + dot(pu, qi))

			userBias[s.u] += lr * (err - reg*userBias[s.u])
			itemBias[s.i] += lr * (err - reg*itemBias[s.i])

			for f := 0; f < numFactors; f++ {
				puf := pu[f]
				qif := qi[f]
				pu[f] += lr * (err*qif - reg*puf)
				qi[f] += lr * (err*puf - reg*qif)
			}
		}
	}

	knownUsers := make(map[int]struct{}, table.UserCount())
	for _, r := range table.Ratings() {
		knownUsers[r.UserID] = struct{}{}
	}

	m.globalMean = globalMean
	m.userIndex = userIndex
	m.itemIndex = itemIndex
	m.indexToUser = indexToUser
	m.indexToItem = indexToItem
	m.userBias = userBias
	m.itemBias = itemBias
	m.userFactors = userFactors
	m.itemFactors = itemFactors
	m.knownUsers = knownUsers
	m.trainSize = len(samples)
	m.markTrained()

	m.logger.Info().
		Int("ratings", len(samples)).
		Int("users", len(indexToUser)).
		Int("items", len(indexToItem)).
		Int("factors", numFactors).
		Int("epochs", m.config.Epochs).
		Float64("global_mean", globalMean).
		Dur("duration", time.Since(start)).
		Int("version", m.version).
		Msg("svd model trained")

	return nil
}

// Predict returns the estimated rating of item by user, clipped to the scale.
func (m *SVD) Predict(userID, itemID int) float64 {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	return m.predict(userID, itemID)
}

// predict must be called with the predict lock held.
func (m *SVD) predict(userID, itemID int) float64 {
	est := m.globalMean

	u, userKnown := m.userIndex[userID]
	i, itemKnown := m.itemIndex[itemID]

	if userKnown {
		est += m.userBias[u]
	}
	if itemKnown {
		est += m.itemBias[i]
	}
	if userKnown && itemKnown {
		est += dot(m.userFactors[u], m.itemFactors[i])
	}

	return m.config.Scale.Clip(est)
}

// RankForUser predicts every candidate for userID and returns the top k by
// descending estimate, ties kept in candidate order. Users with no rating in
// the interaction table, and k <= 0, yield an empty result.
func (m *SVD) RankForUser(userID int, candidates []int, k int) []recommend.ScoredItem {
	m.acquirePredictLock()
	defer m.releasePredictLock()

	if !m.trained || k <= 0 {
		return nil
	}
	if _, ok := m.knownUsers[userID]; !ok {
		m.logger.Debug().Int("user_id", userID).Msg("user has no ratings")
		return nil
	}

	scored := make([]recommend.ScoredItem, len(candidates))
	for n, itemID := range candidates {
		scored[n] = recommend.ScoredItem{ItemID: itemID, Score: m.predict(userID, itemID)}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// KnowsUser reports whether userID has any rating in the interaction table.
func (m *SVD) KnowsUser(userID int) bool {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	_, ok := m.knownUsers[userID]
	return ok
}

// TrainSize returns the number of ratings the model was fit on.
func (m *SVD) TrainSize() int {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	return m.trainSize
}

// GlobalMean returns the mean training rating.
func (m *SVD) GlobalMean() float64 {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	return m.globalMean
}

// SVDSnapshot is the serializable state of a trained SVD model.
type SVDSnapshot struct {
	Config      SVDConfig
	GlobalMean  float64
	Users       []int
	Items       []int
	UserBias    []float64
	ItemBias    []float64
	UserFactors [][]float64
	ItemFactors [][]float64
	TrainSize   int
	TrainedAt   time.Time
}

// Snapshot returns a deep copy of the trained parameters.
func (m *SVD) Snapshot() (*SVDSnapshot, error) {
	m.acquirePredictLock()
	defer m.releasePredictLock()

	if !m.trained {
		return nil, recommend.ErrNotTrained
	}

	return &SVDSnapshot{
		Config:      m.config,
		GlobalMean:  m.globalMean,
		Users:       append([]int(nil), m.indexToUser...),
		Items:       append([]int(nil), m.indexToItem...),
		UserBias:    append([]float64(nil), m.userBias...),
		ItemBias:    append([]float64(nil), m.itemBias...),
		UserFactors: copyMatrix(m.userFactors),
		ItemFactors: copyMatrix(m.itemFactors),
		TrainSize:   m.trainSize,
		TrainedAt:   m.lastTrainedAt,
	}, nil
}

// Restore loads trained parameters from snap. table supplies the set of
// known users, exactly as in Train.
func (m *SVD) Restore(snap *SVDSnapshot, table *recommend.InteractionTable) error {
	if err := validateSnapshot(snap); err != nil {
		return err
	}

	m.acquireTrainLock()
	defer m.releaseTrainLock()

	m.config = snap.Config
	m.globalMean = snap.GlobalMean
	m.indexToUser = append([]int(nil), snap.Users...)
	m.indexToItem = append([]int(nil), snap.Items...)
	m.userIndex = make(map[int]int, len(snap.Users))
	for u, id := range snap.Users {
		m.userIndex[id] = u
	}
	m.itemIndex = make(map[int]int, len(snap.Items))
	for i, id := range snap.Items {
		m.itemIndex[id] = i
	}
	m.userBias = append([]float64(nil), snap.UserBias...)
	m.itemBias = append([]float64(nil), snap.ItemBias...)
	m.userFactors = copyMatrix(snap.UserFactors)
	m.itemFactors = copyMatrix(snap.ItemFactors)
	m.trainSize = snap.TrainSize

	m.knownUsers = make(map[int]struct{}, table.UserCount())
	for _, r := range table.Ratings() {
		m.knownUsers[r.UserID] = struct{}{}
	}

	m.markTrained()
	if !snap.TrainedAt.IsZero() {
		m.lastTrainedAt = snap.TrainedAt
	}

	m.logger.Info().
		Int("users", len(snap.Users)).
		Int("items", len(snap.Items)).
		Int("version", m.version).
		Msg("svd model restored from snapshot")

	return nil
}

func validateSnapshot(snap *SVDSnapshot) error {
	if snap == nil {
		return fmt.Errorf("nil svd snapshot")
	}
	if len(snap.UserBias) != len(snap.Users) || len(snap.UserFactors) != len(snap.Users) {
		return fmt.Errorf("svd snapshot user dimensions mismatch: %d users, %d biases, %d factor rows",
			len(snap.Users), len(snap.UserBias), len(snap.UserFactors))
	}
	if len(snap.ItemBias) != len(snap.Items) || len(snap.ItemFactors) != len(snap.Items) {
		return fmt.Errorf("svd snapshot item dimensions mismatch: %d items, %d biases, %d factor rows",
			len(snap.Items), len(snap.ItemBias), len(snap.ItemFactors))
	}
	for _, rows := range [][][]float64{snap.UserFactors, snap.ItemFactors} {
		for _, row := range rows {
			if len(row) != snap.Config.Factors {
				return fmt.Errorf("svd snapshot factor row has %d entries, want %d", len(row), snap.Config.Factors)
			}
		}
	}
	return snap.Config.Scale.Validate()
}

func copyMatrix(src [][]float64) [][]float64 {
	if src == nil {
		return nil
	}
	out := make([][]float64, len(src))
	for i := range src {
		out[i] = append([]float64(nil), src[i]...)
	}
	return out
}
