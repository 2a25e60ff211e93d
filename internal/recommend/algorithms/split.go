// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package algorithms

import (
	"math"
	"math/rand"

	"github.com/tomtom215/marquee/internal/recommend"
)

// TrainTestSplit shuffles ratings with seed and holds out ceil(frac * n) of
// them. The same inputs always produce the same split. frac <= 0 returns
// every rating as training data; frac >= 1 holds out everything.
func TrainTestSplit(ratings []recommend.Rating, frac float64, seed int64) (train, test []recommend.Rating) {
	n := len(ratings)
	if n == 0 {
		return []recommend.Rating{}, []recommend.Rating{}
	}

	nTest := 0
	switch {
	case frac >= 1:
		nTest = n
	case frac > 0:
		nTest = int(math.Ceil(frac * float64(n)))
	}

	//nolint:gosec // G404: math/rand is acceptable for data splitting (not security)
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	test = make([]recommend.Rating, 0, nTest)
	train = make([]recommend.Rating, 0, n-nTest)
	for i, idx := range perm {
		if i < nTest {
			test = append(test, ratings[idx])
		} else {
			train = append(train, ratings[idx])
		}
	}
	return train, test
}

// Evaluate scores predictor against held-out ratings. An empty test set
// yields zero errors.
func Evaluate(predictor recommend.RatingPredictor, test []recommend.Rating) recommend.Evaluation {
	eval := recommend.Evaluation{TestSize: len(test)}
	if len(test) == 0 {
		return eval
	}

	var sq, abs float64
	for _, r := range test {
		diff := r.Value - predictor.Predict(r.UserID, r.ItemID)
		sq += diff * diff
		abs += math.Abs(diff)
	}

	n := float64(len(test))
	eval.RMSE = math.Sqrt(sq / n)
	eval.MAE = abs / n
	return eval
}
