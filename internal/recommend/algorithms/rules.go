// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package algorithms

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/fitlens/internal/models"
	"github.com/tomtom215/fitlens/internal/recommend"
	"github.com/tomtom215/fitlens/internal/rules"
)

// Reasons emitted by the rule scorer.
const (
	ReasonPalette      = "matches your color palette"
	ReasonFit          = "fit/neckline suits your build"
	ReasonAvoid        = "not ideal for your build"
	ReasonNoSize       = "size unavailable"
	ReasonSizeInStock  = "in stock in your size"
	ReasonNearBudget   = "near your budget"
	ReasonOverallMatch = "good overall match"
)

// Fixed scores for rejected products.
const (
	AvoidScore  = -1.0
	NoSizeScore = -0.5
)

// RuleScorer scores products with a weighted blend of hand-written signals:
//
//	score = w_color*color + w_fit*fit + w_price*price + w_diversity*diversity
//
// Color and fit are 0/1 hits against the palette and fit tags for the user's
// traits. Products carrying an avoid tag, or missing the requested size,
// receive a fixed negative score. The scorer needs no training.
type RuleScorer struct {
	BaseAlgorithm

	cfg recommend.RulesConfig
}

// NewRuleScorer creates a rule scorer with the default weights.
func NewRuleScorer() *RuleScorer {
	r := &RuleScorer{
		BaseAlgorithm: NewBaseAlgorithm(recommend.ScorerRules),
		cfg:           recommend.DefaultConfig().Rules,
	}
	r.markTrained(0, time.Time{})
	return r
}

// Configure picks up the rules section of cfg.
func (r *RuleScorer) Configure(cfg *recommend.Config) {
	if cfg == nil {
		return
	}
	r.acquireTrainLock()
	r.cfg = cfg.Rules
	r.releaseTrainLock()
}

// Score scores every candidate for the profile.
func (r *RuleScorer) Score(ctx context.Context, profile recommend.Profile, candidates []models.Product) ([]recommend.ScoredProduct, error) {
	r.acquirePredictLock()
	cfg := r.cfg
	r.releasePredictLock()

	m := newRuleMatcher(profile)
	out := make([]recommend.ScoredProduct, len(candidates))
	for i := range candidates {
		if i%checkEvery == 0 && ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		score, why := m.score(&cfg, candidates[i])
		out[i] = recommend.ScoredProduct{Product: candidates[i], Score: score, Why: why}
	}
	return out, nil
}

// ScoreProduct scores one product with the given rules configuration.
//
//nolint:gocritic // hugeParam: product passed by value for a convenient API
func ScoreProduct(cfg recommend.RulesConfig, profile recommend.Profile, p models.Product) (float64, []string) {
	return newRuleMatcher(profile).score(&cfg, p)
}

// ruleMatcher holds the tag sets derived from one profile.
type ruleMatcher struct {
	profile recommend.Profile
	palette map[string]struct{}
	fits    map[string]struct{}
	avoid   map[string]struct{}
}

func newRuleMatcher(profile recommend.Profile) *ruleMatcher {
	return &ruleMatcher{
		profile: profile,
		palette: toSet(rules.PaletteFor(profile.Traits)),
		fits:    toSet(rules.FitTagsFor(profile.Traits, profile.Style)),
		avoid:   toSet(rules.AvoidTagsFor(profile.Traits, profile.Style)),
	}
}

//nolint:gocritic // hugeParam: product passed by value for immutability
func (m *ruleMatcher) score(cfg *recommend.RulesConfig, p models.Product) (float64, []string) {
	tags := p.LowerTags()
	why := make([]string, 0, 4)

	var colorHit, fitHit float64
	if anyIn(tags, m.palette) {
		colorHit = 1
		why = append(why, ReasonPalette)
	}
	if anyIn(tags, m.fits) {
		fitHit = 1
		why = append(why, ReasonFit)
	}
	if anyIn(tags, m.avoid) {
		return AvoidScore, []string{ReasonAvoid}
	}

	if size := m.profile.Size; size != "" {
		if !p.HasSize(size) {
			return NoSizeScore, []string{ReasonNoSize}
		}
		why = append(why, ReasonSizeInStock)
	}

	priceScore, priceWhy := m.priceScore(cfg, p.PriceValue())
	if priceWhy != "" {
		why = append(why, priceWhy)
	}

	w := cfg.Weights
	score := w.Color*colorHit + w.Fit*fitHit + w.Price*priceScore + w.Diversity*cfg.DiversityBonus

	if len(why) == 0 {
		why = append(why, ReasonOverallMatch)
	}
	return score, why
}

// priceScore rates price against the profile budget.
func (m *ruleMatcher) priceScore(cfg *recommend.RulesConfig, price int) (float64, string) {
	if !m.profile.HasBudget() {
		return cfg.NoBudgetPriceScore, ""
	}
	budget := *m.profile.Budget
	if price <= budget {
		return 1.0, fmt.Sprintf("within budget (₹%d)", price)
	}

	over := float64(price-budget) / float64(budget)
	score := math.Max(cfg.MinPriceScore, 1-over)
	if score > 0.6 {
		return score, ReasonNearBudget
	}
	return score, ""
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func anyIn(tags []string, set map[string]struct{}) bool {
	for _, t := range tags {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}
