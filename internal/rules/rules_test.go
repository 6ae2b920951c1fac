// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package rules

import (
	"reflect"
	"testing"

	"github.com/tomtom215/fitlens/internal/models"
)

func TestPaletteFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		temp  string
		first string
		last  string
		size  int
	}{
		{"warm", "olive", "tan", 8},
		{"cool", "navy", "white", 8},
		{"neutral", "taupe", "olive", 7},
		{"", "taupe", "olive", 7},
	}

	for _, tt := range tests {
		t.Run(tt.temp, func(t *testing.T) {
			got := PaletteFor(models.Traits{SkinTemperature: tt.temp})
			if len(got) != tt.size {
				t.Fatalf("len = %d, want %d (%v)", len(got), tt.size, got)
			}
			if got[0] != tt.first || got[len(got)-1] != tt.last {
				t.Errorf("palette = %v", got)
			}
		})
	}
}

func TestPaletteForReturnsCopy(t *testing.T) {
	t.Parallel()

	p := PaletteFor(models.Traits{SkinTemperature: "warm"})
	p[0] = "changed"
	if PaletteFor(models.Traits{SkinTemperature: "warm"})[0] != "olive" {
		t.Error("PaletteFor must not expose the shared table")
	}
}

func TestFitTagsFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		traits models.Traits
		style  models.Style
		want   []string
	}{
		{
			name:   "regular avg average",
			traits: models.Traits{Frame: "regular", HeightBucket: "avg", Shoulders: "average"},
			style:  models.StyleCasual,
			want:   []string{"regular", "casual"},
		},
		{
			name:   "slim tall narrow",
			traits: models.Traits{Frame: "slim", HeightBucket: "tall", Shoulders: "narrow"},
			style:  models.StyleTraditional,
			want: []string{"slim", "regular", "structured-shoulder", "longline", "layer-friendly",
				"mandarin", "crew", "stand-collar", "traditional"},
		},
		{
			name:   "fuller short broad",
			traits: models.Traits{Frame: "fuller", HeightBucket: "short", Shoulders: "broad"},
			style:  models.StyleCasual,
			want: []string{"relaxed", "straight", "drape", "no-cling", "regular-length", "cropped",
				"v-neck", "henley", "short-mandarin", "casual"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitTagsFor(tt.traits, tt.style)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FitTagsFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAvoidTagsFor(t *testing.T) {
	t.Parallel()

	got := AvoidTagsFor(models.Traits{Frame: "fuller", HeightBucket: "short"}, models.StyleCasual)
	want := []string{"clingy", "heavy-shine", "extra-long"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AvoidTagsFor() = %v, want %v", got, want)
	}

	if got := AvoidTagsFor(models.Traits{Frame: "slim", HeightBucket: "tall"}, models.StyleCasual); len(got) != 0 {
		t.Errorf("Expected no avoid tags, got %v", got)
	}
}

func TestCategoryAllowed(t *testing.T) {
	t.Parallel()

	if got := CategoryAllowed(models.StyleTraditional); !reflect.DeepEqual(got, []string{"traditional"}) {
		t.Errorf("CategoryAllowed(traditional) = %v", got)
	}
	if got := CategoryAllowed(models.StyleCasual); !reflect.DeepEqual(got, []string{"casual"}) {
		t.Errorf("CategoryAllowed(casual) = %v", got)
	}
}

func TestAllColors(t *testing.T) {
	t.Parallel()

	if got := len(AllColors()); got != 19 {
		t.Errorf("AllColors() has %d entries, want 19", got)
	}
}
