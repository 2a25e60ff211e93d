// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package algorithms

import (
	"math"
	"reflect"
	"sort"
	"testing"

	"github.com/tomtom215/marquee/internal/recommend"
)

func sequentialRatings(n int) []recommend.Rating {
	ratings := make([]recommend.Rating, n)
	for i := range ratings {
		ratings[i] = recommend.Rating{UserID: i % 7, ItemID: i, Value: float64(i%5) + 0.5}
	}
	return ratings
}

func TestTrainTestSplit_Sizes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		n         int
		frac      float64
		wantTrain int
		wantTest  int
	}{
		{"eighty twenty", 100, 0.2, 80, 20},
		{"test size rounds up", 11, 0.2, 8, 3},
		{"single rating", 1, 0.2, 0, 1},
		{"zero fraction", 10, 0, 10, 0},
		{"full fraction", 10, 1, 0, 10},
		{"empty input", 0, 0.2, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			train, test := TrainTestSplit(sequentialRatings(tt.n), tt.frac, 42)
			if len(train) != tt.wantTrain || len(test) != tt.wantTest {
				t.Errorf("split sizes = (%d, %d), want (%d, %d)", len(train), len(test), tt.wantTrain, tt.wantTest)
			}
		})
	}
}

func TestTrainTestSplit_Partition(t *testing.T) {
	t.Parallel()

	ratings := sequentialRatings(57)
	train, test := TrainTestSplit(ratings, 0.2, 42)

	var ids []int
	for _, r := range append(append([]recommend.Rating(nil), train...), test...) {
		ids = append(ids, r.ItemID)
	}
	sort.Ints(ids)
	for i, id := range ids {
		if id != i {
			t.Fatalf("split is not a partition of the input: got ids %v", ids)
		}
	}
}

func TestTrainTestSplit_Deterministic(t *testing.T) {
	t.Parallel()

	ratings := sequentialRatings(40)
	train1, test1 := TrainTestSplit(ratings, 0.2, 7)
	train2, test2 := TrainTestSplit(ratings, 0.2, 7)
	if !reflect.DeepEqual(train1, train2) || !reflect.DeepEqual(test1, test2) {
		t.Error("same seed produced different splits")
	}

	_, test3 := TrainTestSplit(ratings, 0.2, 8)
	if reflect.DeepEqual(test1, test3) {
		t.Error("different seeds produced identical test sets")
	}
}

// constantPredictor predicts the same value for every pair.
type constantPredictor float64

func (c constantPredictor) Predict(_, _ int) float64 { return float64(c) }

func (c constantPredictor) RankForUser(_ int, _ []int, _ int) []recommend.ScoredItem { return nil }

func TestEvaluate(t *testing.T) {
	t.Parallel()

	test := []recommend.Rating{
		{UserID: 1, ItemID: 1, Value: 4},
		{UserID: 1, ItemID: 2, Value: 2},
		{UserID: 2, ItemID: 1, Value: 3},
		{UserID: 2, ItemID: 3, Value: 5},
	}

	// Errors against 3: 1, -1, 0, 2.
	got := Evaluate(constantPredictor(3), test)

	if want := math.Sqrt(6.0 / 4.0); math.Abs(got.RMSE-want) > epsilon {
		t.Errorf("RMSE = %v, want %v", got.RMSE, want)
	}
	if want := 1.0; math.Abs(got.MAE-want) > epsilon {
		t.Errorf("MAE = %v, want %v", got.MAE, want)
	}
	if got.TestSize != 4 {
		t.Errorf("TestSize = %d, want 4", got.TestSize)
	}

	empty := Evaluate(constantPredictor(3), nil)
	if empty.RMSE != 0 || empty.MAE != 0 || empty.TestSize != 0 {
		t.Errorf("Evaluate(empty) = %+v, want zero", empty)
	}
}
