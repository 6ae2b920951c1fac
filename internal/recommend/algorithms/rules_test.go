// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package algorithms

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/tomtom215/fitlens/internal/models"
	"github.com/tomtom215/fitlens/internal/recommend"
)

func intPtr(v int) *int { return &v }

func testProduct(id string, price int, tags []string, sizes ...string) models.Product {
	return models.Product{
		ID:       id,
		Title:    id,
		Tags:     tags,
		Sizes:    sizes,
		HasPrice: true,
		InStock:  true,
		Price:    intPtr(price),
	}
}

func casualProfile() recommend.Profile {
	return recommend.Profile{Traits: models.DefaultTraits(), Style: models.StyleCasual}
}

func TestRuleScorer_ScoreProduct(t *testing.T) {
	t.Parallel()

	cfg := recommend.DefaultConfig().Rules

	fuller := casualProfile()
	fuller.Traits.Frame = "fuller"

	withSize := casualProfile()
	withSize.Size = "M"
	withSize.Budget = intPtr(1000)

	budget := casualProfile()
	budget.Budget = intPtr(1000)

	zeroBudget := casualProfile()
	zeroBudget.Budget = intPtr(0)

	tests := []struct {
		name      string
		profile   recommend.Profile
		product   models.Product
		wantScore float64
		wantWhy   []string
	}{
		{
			name:      "palette and fit hit without budget",
			profile:   casualProfile(),
			product:   testProduct("p1", 999, []string{"Navy", "casual"}),
			wantScore: 0.45 + 0.35 + 0.15*0.6 + 0.05*0.1,
			wantWhy:   []string{ReasonPalette, ReasonFit},
		},
		{
			name:      "no hits falls back to overall match",
			profile:   casualProfile(),
			product:   testProduct("p2", 999, []string{"red"}),
			wantScore: 0.15*0.6 + 0.05*0.1,
			wantWhy:   []string{ReasonOverallMatch},
		},
		{
			name:      "avoid tag overrides hits",
			profile:   fuller,
			product:   testProduct("p3", 999, []string{"navy", "casual", "Clingy"}),
			wantScore: AvoidScore,
			wantWhy:   []string{ReasonAvoid},
		},
		{
			name:      "requested size missing",
			profile:   withSize,
			product:   testProduct("p4", 800, []string{"navy"}, "S", "L"),
			wantScore: NoSizeScore,
			wantWhy:   []string{ReasonNoSize},
		},
		{
			name:      "size present and within budget",
			profile:   withSize,
			product:   testProduct("p5", 800, []string{"red"}, "M"),
			wantScore: 0.15*1.0 + 0.05*0.1,
			wantWhy:   []string{ReasonSizeInStock, "within budget (₹800)"},
		},
		{
			name:      "slightly over budget",
			profile:   budget,
			product:   testProduct("p6", 1200, []string{"red"}),
			wantScore: 0.15*0.8 + 0.05*0.1,
			wantWhy:   []string{ReasonNearBudget},
		},
		{
			name:      "far over budget floors price score",
			profile:   budget,
			product:   testProduct("p7", 5000, []string{"red"}),
			wantScore: 0.15*0.2 + 0.05*0.1,
			wantWhy:   []string{ReasonOverallMatch},
		},
		{
			name:      "zero budget means no budget",
			profile:   zeroBudget,
			product:   testProduct("p8", 5000, []string{"red"}),
			wantScore: 0.15*0.6 + 0.05*0.1,
			wantWhy:   []string{ReasonOverallMatch},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			score, why := ScoreProduct(cfg, tt.profile, tt.product)
			if math.Abs(score-tt.wantScore) > 1e-9 {
				t.Errorf("score = %v, want %v", score, tt.wantScore)
			}
			if !reflect.DeepEqual(why, tt.wantWhy) {
				t.Errorf("why = %v, want %v", why, tt.wantWhy)
			}
		})
	}
}

func TestRuleScorer_Score(t *testing.T) {
	t.Parallel()

	r := NewRuleScorer()
	if r.Name() != recommend.ScorerRules {
		t.Errorf("Name() = %q", r.Name())
	}
	if !r.IsTrained() {
		t.Error("IsTrained() = false, want true")
	}

	candidates := []models.Product{
		testProduct("a", 999, []string{"red"}),
		testProduct("b", 999, []string{"navy", "casual"}),
	}
	scored, err := r.Score(context.Background(), casualProfile(), candidates)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if len(scored) != 2 {
		t.Fatalf("len(scored) = %d, want 2", len(scored))
	}
	if scored[0].Product.ID != "a" || scored[1].Product.ID != "b" {
		t.Error("Score() must preserve candidate order")
	}
	if scored[1].Score <= scored[0].Score {
		t.Errorf("palette match scored %v <= %v", scored[1].Score, scored[0].Score)
	}
}

func TestRuleScorer_Configure(t *testing.T) {
	t.Parallel()

	r := NewRuleScorer()
	cfg := recommend.DefaultConfig()
	cfg.Rules.Weights = recommend.ScoreWeights{Color: 1}
	r.Configure(cfg)
	r.Configure(nil)

	scored, err := r.Score(context.Background(), casualProfile(), []models.Product{
		testProduct("a", 999, []string{"navy"}),
	})
	if err != nil {
		t.Fatal(err)
	}
	if scored[0].Score != 1 {
		t.Errorf("Score = %v, want 1 with color-only weights", scored[0].Score)
	}
}

func TestRuleScorer_ScoreCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRuleScorer().Score(ctx, casualProfile(), []models.Product{testProduct("a", 1, nil)})
	if err == nil {
		t.Error("Score() with canceled context = nil error")
	}
}
