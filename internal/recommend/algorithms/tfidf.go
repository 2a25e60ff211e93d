// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package algorithms

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/recommend"
)

// SimilarityIndex is a TF-IDF vector space over item genres with a
// precomputed pairwise cosine similarity matrix.
//
// Each genre label is tokenized into words (see tokenize), each token is
// weighted by raw count times smoothed inverse document frequency
//
//	idf(t) = ln((1 + n) / (1 + df(t))) + 1
//
// and each item vector is L2-normalized, so cosine similarity is a dot product.
//
// Items with the same token multiset have identical vectors. The matrix is
// therefore stored per distinct profile (P x P, P << n) together with an
// item -> profile map; At(i, j) gives the same value the dense n x n matrix
// would. Rows follow corpus order for the lifetime of the index.
type SimilarityIndex struct {
	BaseAlgorithm
	logger zerolog.Logger

	corpus *recommend.Corpus

	vocabulary []string
	idf        []float64

	// itemProfile maps corpus position to profile row.
	itemProfile []int

	// profileVectors holds one normalized TF-IDF vector per profile.
	profileVectors [][]float64

	// profileZero marks profiles with no vocabulary tokens.
	profileZero []bool

	// sim is the row-major P x P profile similarity matrix.
	sim []float64
}

// NewSimilarityIndex creates an empty index. Call Build before querying.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSimilarityIndex(logger zerolog.Logger) *SimilarityIndex {
	return &SimilarityIndex{
		BaseAlgorithm: NewBaseAlgorithm("tfidf"),
		logger:        logger.With().Str("component", "similarity_index").Logger(),
	}
}

// Build vectorizes every item in corpus and computes the similarity matrix.
// It replaces any previously built state.
//
//nolint:gocyclo // vectorization and matrix construction in one pass
func (s *SimilarityIndex) Build(ctx context.Context, corpus *recommend.Corpus) error {
	s.acquireTrainLock()
	defer s.releaseTrainLock()

	if ContextCancelled(ctx) {
		return ctx.Err()
	}

	n := corpus.Len()

	// Tokenize, group items by token multiset, count document frequency.
	profileIndex := make(map[string]int)
	var profileTokens [][]string
	itemProfile := make([]int, n)
	df := make(map[string]int)

	for pos := 0; pos < n; pos++ {
		tokens := tokenize(corpus.At(pos).Genres)

		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}

		sorted := append([]string(nil), tokens...)
		sort.Strings(sorted)
		key := strings.Join(sorted, " ")

		p, ok := profileIndex[key]
		if !ok {
			p = len(profileTokens)
			profileIndex[key] = p
			profileTokens = append(profileTokens, sorted)
		}
		itemProfile[pos] = p
	}

	if ContextCancelled(ctx) {
		return ctx.Err()
	}

	vocabulary := make([]string, 0, len(df))
	for tok := range df {
		vocabulary = append(vocabulary, tok)
	}
	sort.Strings(vocabulary)

	termIndex := make(map[string]int, len(vocabulary))
	idf := make([]float64, len(vocabulary))
	for i, tok := range vocabulary {
		termIndex[tok] = i
		idf[i] = math.Log(float64(1+n)/float64(1+df[tok])) + 1
	}

	numProfiles := len(profileTokens)
	vectors := make([][]float64, numProfiles)
	zero := make([]bool, numProfiles)
	for p, tokens := range profileTokens {
		vec := make([]float64, len(vocabulary))
		for _, tok := range tokens {
			vec[termIndex[tok]]++
		}
		for t := range vec {
			vec[t] *= idf[t]
		}
		l2Normalize(vec)
		vectors[p] = vec
		zero[p] = len(tokens) == 0
	}

	sim := make([]float64, numProfiles*numProfiles)
	for p := 0; p < numProfiles; p++ {
		if ContextCancelled(ctx) {
			return ctx.Err()
		}
		for q := p; q < numProfiles; q++ {
			var v float64
			switch {
			case zero[p] || zero[q]:
				v = 0
			case p == q:
				v = 1
			default:
				v = clampUnit(dot(vectors[p], vectors[q]))
			}
			sim[p*numProfiles+q] = v
			sim[q*numProfiles+p] = v
		}
	}

	s.corpus = corpus
	s.vocabulary = vocabulary
	s.idf = idf
	s.itemProfile = itemProfile
	s.profileVectors = vectors
	s.profileZero = zero
	s.sim = sim
	s.markTrained()

	s.logger.Info().
		Int("items", n).
		Int("vocabulary", len(vocabulary)).
		Int("profiles", numProfiles).
		Int("version", s.version).
		Msg("similarity index built")

	return nil
}

// clampUnit bounds floating-point drift to [0, 1].
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Len returns the number of indexed items.
func (s *SimilarityIndex) Len() int {
	s.acquirePredictLock()
	defer s.releasePredictLock()
	return len(s.itemProfile)
}

// Profiles returns the number of distinct genre profiles.
func (s *SimilarityIndex) Profiles() int {
	s.acquirePredictLock()
	defer s.releasePredictLock()
	return len(s.profileVectors)
}

// Vocabulary returns the sorted vocabulary.
func (s *SimilarityIndex) Vocabulary() []string {
	s.acquirePredictLock()
	defer s.releasePredictLock()
	return append([]string(nil), s.vocabulary...)
}

// IDF returns the inverse document frequency of token and whether it is in
// the vocabulary.
func (s *SimilarityIndex) IDF(token string) (float64, bool) {
	s.acquirePredictLock()
	defer s.releasePredictLock()
	i := sort.SearchStrings(s.vocabulary, token)
	if i >= len(s.vocabulary) || s.vocabulary[i] != token {
		return 0, false
	}
	return s.idf[i], true
}

// Vector returns a copy of the normalized TF-IDF vector of the item at pos,
// indexed like Vocabulary.
func (s *SimilarityIndex) Vector(pos int) []float64 {
	s.acquirePredictLock()
	defer s.releasePredictLock()
	return append([]float64(nil), s.profileVectors[s.itemProfile[pos]]...)
}

// At returns the cosine similarity between the items at corpus positions i and j.
func (s *SimilarityIndex) At(i, j int) float64 {
	s.acquirePredictLock()
	defer s.releasePredictLock()
	return s.at(i, j)
}

// at must be called with the predict lock held.
func (s *SimilarityIndex) at(i, j int) float64 {
	if i == j {
		return 1
	}
	p, q := s.itemProfile[i], s.itemProfile[j]
	return s.sim[p*len(s.profileVectors)+q]
}

// SimilarTo returns at most k items ranked by descending similarity to the
// first item titled title. The seed itself is excluded by position; equal
// scores keep corpus order. Unknown titles and k <= 0 yield an empty result.
func (s *SimilarityIndex) SimilarTo(title string, k int) []recommend.ScoredItem {
	s.acquirePredictLock()
	defer s.releasePredictLock()

	if !s.trained || k <= 0 {
		return nil
	}

	seed, ok := s.corpus.PositionOfTitle(title)
	if !ok {
		s.logger.Debug().Str("title", title).Msg("seed title not in corpus")
		return nil
	}

	n := len(s.itemProfile)
	type candidate struct {
		pos   int
		score float64
	}
	candidates := make([]candidate, 0, n-1)
	for pos := 0; pos < n; pos++ {
		if pos == seed {
			continue
		}
		candidates = append(candidates, candidate{pos: pos, score: s.at(seed, pos)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]recommend.ScoredItem, len(candidates))
	for i, c := range candidates {
		item := s.corpus.At(c.pos)
		results[i] = recommend.ScoredItem{
			ItemID: item.ID,
			Title:  item.Title,
			Score:  c.score,
		}
	}
	return results
}
