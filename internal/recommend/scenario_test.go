// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend_test

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/recommend/algorithms"
)

// buildEngine trains real artifacts over a three-movie corpus where user 1
// prefers the drama "C" over the comedies.
func buildEngine(t *testing.T) (*recommend.Engine, *algorithms.SVD, *recommend.Corpus) {
	t.Helper()
	ctx := context.Background()

	corpus, err := recommend.NewCorpus([]recommend.Item{
		{ID: 1, Title: "A", Genres: []string{"Comedy"}},
		{ID: 2, Title: "B", Genres: []string{"Comedy"}},
		{ID: 3, Title: "C", Genres: []string{"Drama"}},
	})
	if err != nil {
		t.Fatalf("NewCorpus() error = %v", err)
	}

	table, err := recommend.NewInteractionTable(corpus, []recommend.Rating{
		{UserID: 1, ItemID: 1, Value: 1},
		{UserID: 1, ItemID: 3, Value: 5},
		{UserID: 2, ItemID: 1, Value: 1.5},
		{UserID: 2, ItemID: 2, Value: 2},
		{UserID: 2, ItemID: 3, Value: 5},
		{UserID: 3, ItemID: 2, Value: 3},
		{UserID: 3, ItemID: 3, Value: 4.5},
	}, recommend.DefaultRatingScale)
	if err != nil {
		t.Fatalf("NewInteractionTable() error = %v", err)
	}

	index := algorithms.NewSimilarityIndex(zerolog.Nop())
	if err := index.Build(ctx, corpus); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	cfg := algorithms.DefaultSVDConfig()
	cfg.Factors = 10
	cfg.Epochs = 50
	svd := algorithms.NewSVD(cfg, zerolog.Nop())
	if err := svd.Train(ctx, table, nil); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	engineCfg := recommend.DefaultConfig()
	engineCfg.Cache.Enabled = false
	engine, err := recommend.NewEngine(engineCfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.Publish(&recommend.Artifacts{
		Corpus:     corpus,
		Table:      table,
		Similarity: index,
		Predictor:  svd,
	}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	return engine, svd, corpus
}

func TestScenario_ContentAndCollaborativeBlend(t *testing.T) {
	t.Parallel()

	engine, svd, _ := buildEngine(t)
	ctx := context.Background()

	similar, err := engine.SimilarTo(ctx, "A", 1)
	if err != nil {
		t.Fatalf("SimilarTo() error = %v", err)
	}
	if len(similar) != 1 || similar[0].Title != "B" || similar[0].Score <= 0 {
		t.Fatalf("SimilarTo(A, 1) = %+v, want [B with positive similarity]", similar)
	}

	wc, wl := 0.4, 0.6
	resp, err := engine.Recommend(ctx, recommend.Request{
		UserID:        1,
		SeedTitle:     "A",
		WeightContent: &wc,
		WeightCollab:  &wl,
		K:             2,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	scores := make(map[int]float64)
	for _, item := range resp.Items {
		scores[item.ItemID] = item.Score
	}
	if _, ok := scores[2]; !ok {
		t.Errorf("item 2 missing from %+v", resp.Items)
	}
	got, ok := scores[3]
	if !ok {
		t.Fatalf("item 3 missing from %+v", resp.Items)
	}
	// "C" shares no genre with "A", so its whole score is collaborative.
	if want := wl * svd.Predict(1, 3); math.Abs(got-want) > 1e-9 {
		t.Errorf("item 3 score = %v, want collaborative contribution %v", got, want)
	}
}

func TestScenario_UnknownSeedKnownUser(t *testing.T) {
	t.Parallel()

	engine, svd, corpus := buildEngine(t)
	wl := 0.6

	resp, err := engine.Recommend(context.Background(), recommend.Request{
		UserID:       1,
		SeedTitle:    "Not In Corpus",
		WeightCollab: &wl,
		K:            3,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	want := svd.RankForUser(1, corpus.IDs(), 3)
	if len(resp.Items) != len(want) {
		t.Fatalf("got %d items, want %d", len(resp.Items), len(want))
	}
	for i := range want {
		if resp.Items[i].ItemID != want[i].ItemID {
			t.Errorf("position %d: item %d, want %d", i, resp.Items[i].ItemID, want[i].ItemID)
		}
		if math.Abs(resp.Items[i].Score-wl*want[i].Score) > 1e-9 {
			t.Errorf("position %d: score %v, want %v", i, resp.Items[i].Score, wl*want[i].Score)
		}
	}
}

func TestScenario_UnknownSeedUnknownUser(t *testing.T) {
	t.Parallel()

	engine, _, _ := buildEngine(t)

	resp, err := engine.Recommend(context.Background(), recommend.Request{
		UserID:    404,
		SeedTitle: "Not In Corpus",
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Items) != 0 {
		t.Errorf("Recommend() = %+v, want empty", resp.Items)
	}
}
