// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tomtom215/marquee/internal/recommend"
)

func TestPrintRecommendations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		items []recommend.ScoredItem
		want  string
	}{
		{
			name:  "empty",
			items: nil,
			want:  "No recommendations found for this user.\n",
		},
		{
			name: "two decimals",
			items: []recommend.ScoredItem{
				{ItemID: 2, Title: "Jumanji (1995)", Score: 2.3456},
				{ItemID: 3, Title: "Heat (1995)", Score: 0.4},
			},
			want: "Top Hybrid Recommendations for User 7 based on 'Toy Story (1995)':\n" +
				"1. Jumanji (1995) (Score: 2.35)\n" +
				"2. Heat (1995) (Score: 0.40)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := printRecommendations(&buf, 7, "Toy Story (1995)", tt.items); err != nil {
				t.Fatalf("printRecommendations() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("output =\n%s\nwant\n%s", buf.String(), tt.want)
			}
		})
	}
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"title required", []string{"-user", "1"}, "-title is required"},
		{"negative k", []string{"-title", "Heat", "-k", "-1"}, "-k must not be negative"},
		{"stray argument", []string{"-title", "Heat", "extra"}, "unexpected arguments"},
		{"unknown flag", []string{"-bogus"}, "flag provided but not defined"},
		{"valid", []string{"-title", "Heat (1995)", "-user", "3", "-k", "10", "-weight-collab", "0"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts, err := parseFlags(tt.args, io.Discard)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("parseFlags() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFlags() error = %v", err)
			}
			if opts.userID != 3 || opts.k != 10 || opts.title != "Heat (1995)" {
				t.Errorf("opts = %+v", opts)
			}
			if !opts.set["weight-collab"] || opts.set["weight-content"] {
				t.Errorf("set = %v, want only explicit flags", opts.set)
			}
		})
	}
}

const (
	testMovies = `movieId,title,genres
1,Toy Story (1995),Adventure|Animation|Children|Comedy|Fantasy
2,Jumanji (1995),Adventure|Children|Fantasy
3,Heat (1995),Action|Crime|Thriller
4,Toy Story 2 (1999),Adventure|Animation|Children|Comedy|Fantasy
`
	testRatings = `userId,movieId,rating,timestamp
1,1,4.0,964982703
1,2,3.5,964981247
2,2,3.0,964982224
2,3,5.0,964982931
2,4,4.0,964982931
3,1,2.5,964982931
3,4,4.5,964982931
`
)

func writeDataset(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	movies := filepath.Join(dir, "movies.csv")
	ratings := filepath.Join(dir, "ratings.csv")
	if err := os.WriteFile(movies, []byte(testMovies), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ratings, []byte(testRatings), 0o600); err != nil {
		t.Fatal(err)
	}
	return movies, ratings
}

// run initializes the global logger, so these tests are not parallel.

func TestRun_PrintsRecommendations(t *testing.T) {
	movies, ratings := writeDataset(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-movies", movies,
		"-ratings", ratings,
		"-user", "1",
		"-title", "Toy Story (1995)",
		"-k", "3",
		"-log-level", "error",
	}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("run() = %d, stderr:\n%s", code, stderr.String())
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if lines[0] != "Top Hybrid Recommendations for User 1 based on 'Toy Story (1995)':" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) < 2 || !strings.HasPrefix(lines[1], "1. ") || !strings.Contains(lines[1], "(Score: ") {
		t.Errorf("output =\n%s", stdout.String())
	}
	if !strings.Contains(stdout.String(), "Toy Story 2 (1999)") {
		t.Errorf("most similar title missing from output:\n%s", stdout.String())
	}
}

func TestRun_ContentOnlyUnknownUser(t *testing.T) {
	movies, ratings := writeDataset(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-movies", movies,
		"-ratings", ratings,
		"-user", "999",
		"-title", "Unknown Movie",
		"-log-level", "error",
	}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("run() = %d, stderr:\n%s", code, stderr.String())
	}
	if stdout.String() != "No recommendations found for this user.\n" {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestRun_Errors(t *testing.T) {
	movies, _ := writeDataset(t)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"missing title", []string{"-user", "1"}, 2},
		{"bad log level", []string{"-title", "x", "-log-level", "loud"}, 2},
		{"negative weight", []string{"-title", "x", "-weight-content", "-1", "-movies", movies}, 1},
		{"missing ratings file", []string{"-title", "x", "-movies", movies, "-ratings", filepath.Join(t.TempDir(), "nope.csv"), "-log-level", "error"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if got := run(context.Background(), tt.args, &stdout, &stderr); got != tt.want {
				t.Errorf("run() = %d, want %d (stderr: %s)", got, tt.want, stderr.String())
			}
			if stdout.Len() != 0 {
				t.Errorf("unexpected stdout: %q", stdout.String())
			}
		})
	}
}
