// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package recommend

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Scorer names accepted by Config.Scorer.
const (
	ScorerRules = "rules"
	ScorerML    = "ml"
)

// weightTolerance is how far the rule weights may drift from summing to 1.
const weightTolerance = 0.001

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Scorer selects the active scorer: "rules" or "ml".
	// Default: "ml".
	Scorer string `json:"scorer" koanf:"scorer"`

	// FallbackToRules scores with the rule scorer when the active scorer fails.
	// Default: true.
	FallbackToRules bool `json:"fallback_to_rules" koanf:"fallback_to_rules"`

	// Rules contains parameters for the rule-based scorer.
	Rules RulesConfig `json:"rules" koanf:"rules"`

	// Logistic contains parameters for the logistic regression scorer.
	Logistic LogisticConfig `json:"logistic" koanf:"logistic"`

	// Diversity contains parameters for diversity reranking.
	Diversity DiversityConfig `json:"diversity" koanf:"diversity"`

	// Training contains training schedule parameters.
	Training TrainingConfig `json:"training" koanf:"training"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// Cache contains caching parameters.
	Cache CacheConfig `json:"cache" koanf:"cache"`
}

// ScoreWeights are the rule scorer signal weights. They must sum to 1.
type ScoreWeights struct {
	Color     float64 `json:"color" koanf:"color"`
	Fit       float64 `json:"fit" koanf:"fit"`
	Price     float64 `json:"price" koanf:"price"`
	Diversity float64 `json:"diversity" koanf:"diversity"`
}

// Sum returns the total of all weights.
func (w ScoreWeights) Sum() float64 {
	return w.Color + w.Fit + w.Price + w.Diversity
}

// ToMap returns the weights as a string-keyed map.
func (w ScoreWeights) ToMap() map[string]float64 {
	return map[string]float64{
		"color":     w.Color,
		"fit":       w.Fit,
		"price":     w.Price,
		"diversity": w.Diversity,
	}
}

// Validate checks each weight is in [0,1] and that they sum to 1.
func (w ScoreWeights) Validate() error {
	for name, v := range w.ToMap() {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("rules.weights.%s must be in [0, 1], got %f", name, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("rules.weights must sum to 1.0, got %.4f", sum)
	}
	return nil
}

// RulesConfig contains parameters for the rule-based scorer.
type RulesConfig struct {
	// Weights are the per-signal weights.
	// Default: color 0.45, fit 0.35, price 0.15, diversity 0.05.
	Weights ScoreWeights `json:"weights" koanf:"weights"`

	// DiversityBonus is the constant diversity signal every product receives.
	// Default: 0.1.
	DiversityBonus float64 `json:"diversity_bonus" koanf:"diversity_bonus"`

	// NoBudgetPriceScore is the price signal when no budget is stated.
	// Default: 0.6.
	NoBudgetPriceScore float64 `json:"no_budget_price_score" koanf:"no_budget_price_score"`

	// MinPriceScore is the floor of the over-budget price signal.
	// Default: 0.2.
	MinPriceScore float64 `json:"min_price_score" koanf:"min_price_score"`
}

// LogisticConfig contains parameters for the logistic regression scorer.
type LogisticConfig struct {
	// C is the inverse L2 regularization strength.
	// Default: 1.0.
	C float64 `json:"c" koanf:"c"`

	// LearningRate is the gradient descent step size on standardized features.
	// Default: 0.5.
	LearningRate float64 `json:"learning_rate" koanf:"learning_rate"`

	// MaxIterations caps the number of full-batch gradient steps.
	// Default: 1000.
	MaxIterations int `json:"max_iterations" koanf:"max_iterations"`

	// Tolerance stops training when the loss improves by less than this.
	// Default: 1e-6.
	Tolerance float64 `json:"tolerance" koanf:"tolerance"`

	// ValidationFraction is the stratified holdout used to report AUC.
	// Default: 0.2.
	ValidationFraction float64 `json:"validation_fraction" koanf:"validation_fraction"`

	// Seed drives the train/validation split.
	// Default: 42.
	Seed int64 `json:"seed" koanf:"seed"`

	// ModelName is the name the model is stored under.
	// Default: "reco_lr".
	ModelName string `json:"model_name" koanf:"model_name"`
}

// DiversityConfig contains parameters for diversity reranking.
type DiversityConfig struct {
	// Enabled applies MMR reranking over product tags.
	// Default: false.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// MMRLambda balances relevance vs. diversity in MMR reranking.
	// 1.0 = pure relevance, 0.0 = pure diversity.
	// Default: 0.7.
	MMRLambda float64 `json:"mmr_lambda" koanf:"mmr_lambda"`
}

// TrainingConfig contains training schedule parameters.
type TrainingConfig struct {
	// Interval is the time between scheduled training runs. Zero disables
	// scheduled training.
	// Default: 24h.
	Interval time.Duration `json:"interval" koanf:"interval"`

	// OnStartup trains once when the server starts.
	// Default: false.
	OnStartup bool `json:"on_startup" koanf:"on_startup"`

	// MinInteractions is the minimum number of labeled rows required to train.
	// Default: 100.
	MinInteractions int `json:"min_interactions" koanf:"min_interactions"`

	// Timeout is the maximum time allowed for a training run.
	// Default: 10m.
	Timeout time.Duration `json:"timeout" koanf:"timeout"`

	// RetainVersions is the number of model versions to retain.
	// Default: 3.
	RetainVersions int `json:"retain_versions" koanf:"retain_versions"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultK is the default number of recommendations to return.
	// Default: 12.
	DefaultK int `json:"default_k" koanf:"default_k"`

	// MaxK is the maximum allowed K value.
	// Default: 100.
	MaxK int `json:"max_k" koanf:"max_k"`

	// MaxCandidates is the candidate count above which a request logs a
	// warning. It never drops products; every candidate is scored and only
	// the result list is capped at K.
	// Default: 5000.
	MaxCandidates int `json:"max_candidates" koanf:"max_candidates"`

	// ScoringTimeout is the maximum time for scoring one request.
	// Default: 5s.
	ScoringTimeout time.Duration `json:"scoring_timeout" koanf:"scoring_timeout"`
}

// CacheConfig contains caching parameters.
type CacheConfig struct {
	// Enabled controls whether caching is active.
	// Default: true.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 5m.
	TTL time.Duration `json:"ttl" koanf:"ttl"`

	// MaxEntries is the maximum number of cached entries (memory cache only).
	// Default: 10000.
	MaxEntries int `json:"max_entries" koanf:"max_entries"`

	// InvalidateOnTrain controls whether cache is cleared after training.
	// Default: true.
	InvalidateOnTrain bool `json:"invalidate_on_train" koanf:"invalidate_on_train"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		Scorer:          ScorerML,
		FallbackToRules: true,
		Rules: RulesConfig{
			Weights: ScoreWeights{
				Color:     0.45,
				Fit:       0.35,
				Price:     0.15,
				Diversity: 0.05,
			},
			DiversityBonus:     0.1,
			NoBudgetPriceScore: 0.6,
			MinPriceScore:      0.2,
		},
		Logistic: LogisticConfig{
			C:                  1.0,
			LearningRate:       0.5,
			MaxIterations:      1000,
			Tolerance:          1e-6,
			ValidationFraction: 0.2,
			Seed:               42,
			ModelName:          "reco_lr",
		},
		Diversity: DiversityConfig{
			Enabled:   false,
			MMRLambda: 0.7,
		},
		Training: TrainingConfig{
			Interval:        24 * time.Hour,
			MinInteractions: 100,
			Timeout:         10 * time.Minute,
			RetainVersions:  3,
		},
		Limits: LimitsConfig{
			DefaultK:       12,
			MaxK:           100,
			MaxCandidates:  5000,
			ScoringTimeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:           true,
			TTL:               5 * time.Minute,
			MaxEntries:        10000,
			InvalidateOnTrain: true,
		},
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if c.Scorer != ScorerRules && c.Scorer != ScorerML {
		return fmt.Errorf("scorer must be %q or %q, got %q", ScorerRules, ScorerML, c.Scorer)
	}

	if err := c.Rules.Weights.Validate(); err != nil {
		return err
	}
	if c.Rules.DiversityBonus < 0 || c.Rules.DiversityBonus > 1 {
		return fmt.Errorf("rules.diversity_bonus must be in [0, 1], got %f", c.Rules.DiversityBonus)
	}
	if c.Rules.MinPriceScore < 0 || c.Rules.MinPriceScore > 1 {
		return fmt.Errorf("rules.min_price_score must be in [0, 1], got %f", c.Rules.MinPriceScore)
	}
	if c.Rules.NoBudgetPriceScore < 0 || c.Rules.NoBudgetPriceScore > 1 {
		return fmt.Errorf("rules.no_budget_price_score must be in [0, 1], got %f", c.Rules.NoBudgetPriceScore)
	}

	if c.Logistic.C <= 0 {
		return fmt.Errorf("logistic.c must be positive, got %f", c.Logistic.C)
	}
	if c.Logistic.LearningRate <= 0 {
		return fmt.Errorf("logistic.learning_rate must be positive, got %f", c.Logistic.LearningRate)
	}
	if c.Logistic.MaxIterations < 1 {
		return fmt.Errorf("logistic.max_iterations must be positive, got %d", c.Logistic.MaxIterations)
	}
	if c.Logistic.ValidationFraction <= 0 || c.Logistic.ValidationFraction >= 1 {
		return fmt.Errorf("logistic.validation_fraction must be in (0, 1), got %f", c.Logistic.ValidationFraction)
	}
	if c.Logistic.ModelName == "" {
		return fmt.Errorf("logistic.model_name is required")
	}

	if c.Diversity.MMRLambda < 0 || c.Diversity.MMRLambda > 1 {
		return fmt.Errorf("diversity.mmr_lambda must be in [0, 1], got %f", c.Diversity.MMRLambda)
	}

	if c.Training.MinInteractions < 0 {
		return fmt.Errorf("training.min_interactions must be non-negative, got %d", c.Training.MinInteractions)
	}
	if c.Training.Timeout <= 0 {
		return fmt.Errorf("training.timeout must be positive, got %v", c.Training.Timeout)
	}
	if c.Training.Interval < 0 {
		return fmt.Errorf("training.interval must be non-negative, got %v", c.Training.Interval)
	}

	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= limits.default_k, got %d < %d", c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Limits.MaxCandidates < 1 {
		return fmt.Errorf("limits.max_candidates must be positive, got %d", c.Limits.MaxCandidates)
	}
	if c.Limits.ScoringTimeout <= 0 {
		return fmt.Errorf("limits.scoring_timeout must be positive, got %v", c.Limits.ScoringTimeout)
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when cache is enabled, got %v", c.Cache.TTL)
	}
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	clone := *c
	return &clone
}

type trainingJSON struct {
	Interval        string `json:"interval"`
	OnStartup       bool   `json:"on_startup"`
	MinInteractions int    `json:"min_interactions"`
	Timeout         string `json:"timeout"`
	RetainVersions  int    `json:"retain_versions"`
}

type limitsJSON struct {
	DefaultK       int    `json:"default_k"`
	MaxK           int    `json:"max_k"`
	MaxCandidates  int    `json:"max_candidates"`
	ScoringTimeout string `json:"scoring_timeout"`
}

type cacheJSON struct {
	Enabled           bool   `json:"enabled"`
	TTL               string `json:"ttl"`
	MaxEntries        int    `json:"max_entries"`
	InvalidateOnTrain bool   `json:"invalidate_on_train"`
}

// MarshalJSON implements custom JSON marshaling for duration fields.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		Training trainingJSON `json:"training"`
		Limits   limitsJSON   `json:"limits"`
		Cache    cacheJSON    `json:"cache"`
	}{
		Alias: (*Alias)(c),
		Training: trainingJSON{
			Interval:        c.Training.Interval.String(),
			OnStartup:       c.Training.OnStartup,
			MinInteractions: c.Training.MinInteractions,
			Timeout:         c.Training.Timeout.String(),
			RetainVersions:  c.Training.RetainVersions,
		},
		Limits: limitsJSON{
			DefaultK:       c.Limits.DefaultK,
			MaxK:           c.Limits.MaxK,
			MaxCandidates:  c.Limits.MaxCandidates,
			ScoringTimeout: c.Limits.ScoringTimeout.String(),
		},
		Cache: cacheJSON{
			Enabled:           c.Cache.Enabled,
			TTL:               c.Cache.TTL.String(),
			MaxEntries:        c.Cache.MaxEntries,
			InvalidateOnTrain: c.Cache.InvalidateOnTrain,
		},
	})
}

// UnmarshalJSON accepts the MarshalJSON form. Fields absent from data keep
// their current value, so decoding onto a clone of the live config applies a
// partial update.
func (c *Config) UnmarshalJSON(data []byte) error {
	type Alias Config
	aux := struct {
		*Alias
		Training trainingJSON `json:"training"`
		Limits   limitsJSON   `json:"limits"`
		Cache    cacheJSON    `json:"cache"`
	}{
		Alias: (*Alias)(c),
	}
	c.fillSections(&aux.Training, &aux.Limits, &aux.Cache)

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	c.Training.OnStartup = aux.Training.OnStartup
	c.Training.MinInteractions = aux.Training.MinInteractions
	c.Training.RetainVersions = aux.Training.RetainVersions
	if c.Training.Interval, err = parseDuration("training.interval", aux.Training.Interval); err != nil {
		return err
	}
	if c.Training.Timeout, err = parseDuration("training.timeout", aux.Training.Timeout); err != nil {
		return err
	}

	c.Limits.DefaultK = aux.Limits.DefaultK
	c.Limits.MaxK = aux.Limits.MaxK
	c.Limits.MaxCandidates = aux.Limits.MaxCandidates
	if c.Limits.ScoringTimeout, err = parseDuration("limits.scoring_timeout", aux.Limits.ScoringTimeout); err != nil {
		return err
	}

	c.Cache.Enabled = aux.Cache.Enabled
	c.Cache.MaxEntries = aux.Cache.MaxEntries
	c.Cache.InvalidateOnTrain = aux.Cache.InvalidateOnTrain
	if c.Cache.TTL, err = parseDuration("cache.ttl", aux.Cache.TTL); err != nil {
		return err
	}
	return nil
}

// fillSections seeds the JSON views with the current values.
func (c *Config) fillSections(t *trainingJSON, l *limitsJSON, ca *cacheJSON) {
	*t = trainingJSON{
		Interval:        c.Training.Interval.String(),
		OnStartup:       c.Training.OnStartup,
		MinInteractions: c.Training.MinInteractions,
		Timeout:         c.Training.Timeout.String(),
		RetainVersions:  c.Training.RetainVersions,
	}
	*l = limitsJSON{
		DefaultK:       c.Limits.DefaultK,
		MaxK:           c.Limits.MaxK,
		MaxCandidates:  c.Limits.MaxCandidates,
		ScoringTimeout: c.Limits.ScoringTimeout.String(),
	}
	*ca = cacheJSON{
		Enabled:           c.Cache.Enabled,
		TTL:               c.Cache.TTL.String(),
		MaxEntries:        c.Cache.MaxEntries,
		InvalidateOnTrain: c.Cache.InvalidateOnTrain,
	}
}

func parseDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}
