// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package algorithms

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		genres []string
		want   []string
	}{
		{
			name:   "single word genres are lowercased",
			genres: []string{"Adventure", "Comedy"},
			want:   []string{"adventure", "comedy"},
		},
		{
			name:   "hyphenated genre splits into words",
			genres: []string{"Sci-Fi", "Film-Noir"},
			want:   []string{"sci", "fi", "film", "noir"},
		},
		{
			name:   "stop words and punctuation removed",
			genres: []string{"(no genres listed)"},
			want:   []string{"genres", "listed"},
		},
		{
			name:   "single characters dropped",
			genres: []string{"A", "B-Movie"},
			want:   []string{"movie"},
		},
		{
			name:   "repeated tokens kept for term frequency",
			genres: []string{"Drama", "drama"},
			want:   []string{"drama", "drama"},
		},
		{
			name:   "empty genres",
			genres: nil,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tokenize(tt.genres)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tokenize(%q) = %q, want %q", tt.genres, got, tt.want)
			}
		})
	}
}

func TestIsStopWord(t *testing.T) {
	t.Parallel()

	for _, w := range []string{"the", "no", "and", "of", "fire", "found"} {
		if !isStopWord(w) {
			t.Errorf("isStopWord(%q) = false, want true", w)
		}
	}
	for _, w := range []string{"comedy", "thriller", "imax", "western"} {
		if isStopWord(w) {
			t.Errorf("isStopWord(%q) = true, want false", w)
		}
	}

	if got := len(englishStopWords); got != 318 {
		t.Errorf("stop word count = %d, want 318", got)
	}
}
