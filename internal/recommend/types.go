// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package recommend

import (
	"context"
	"strings"
	"time"

	"github.com/tomtom215/fitlens/internal/models"
)

// Profile is what a scorer knows about the user for one request.
type Profile struct {
	// Traits are the inferred body and coloring attributes.
	Traits models.Traits `json:"traits"`

	// Style is the requested outfit category.
	Style models.Style `json:"style"`

	// Size is the requested size, empty when not given.
	Size string `json:"size,omitempty"`

	// Budget is the stated budget in rupees. Nil or <= 0 means no budget.
	Budget *int `json:"budget,omitempty"`
}

// HasBudget reports whether a positive budget was stated.
func (p Profile) HasBudget() bool {
	return p.Budget != nil && *p.Budget > 0
}

// Request represents a recommendation request.
type Request struct {
	Profile

	// K is the number of recommendations to return.
	// Defaults to Config.Limits.DefaultK if zero.
	K int `json:"k,omitempty"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// ScoredProduct is a product with its ranking score and explanation.
type ScoredProduct struct {
	// Product is the catalog row that was scored.
	Product models.Product `json:"product"`

	// Score is the ranking score (higher is better). Rule scores may be
	// negative for gated products; model scores are probabilities.
	Score float64 `json:"score"`

	// Why lists human-readable reasons for the score.
	Why []string `json:"why"`
}

// Response represents a recommendation response.
type Response struct {
	// Items is the ordered list of recommended products.
	Items []models.ProductOut `json:"items"`

	// TotalCandidates is the number of products that were scored.
	TotalCandidates int `json:"total_candidates"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	RequestID    string    `json:"request_id"`
	Scorer       string    `json:"scorer"`
	Fallback     bool      `json:"fallback,omitempty"`
	LatencyMS    int64     `json:"latency_ms"`
	CacheHit     bool      `json:"cache_hit"`
	ModelVersion int       `json:"model_version"`
	Timestamp    time.Time `json:"timestamp"`
}

// Algorithm scores candidate products for a user profile.
//
// Implementations must be safe for concurrent use and must return exactly
// one ScoredProduct per candidate, in candidate order.
type Algorithm interface {
	// Name returns the scorer identifier ("rules", "ml").
	Name() string

	// Score scores all candidates in one batch.
	Score(ctx context.Context, profile Profile, candidates []models.Product) ([]ScoredProduct, error)

	// IsTrained returns whether the scorer is ready to score.
	IsTrained() bool

	// Version returns the model version (incremented on each train).
	Version() int

	// LastTrainedAt returns when the model was last trained.
	LastTrainedAt() time.Time
}

// Trainable is an Algorithm that learns from labeled rows.
type Trainable interface {
	Algorithm

	// Train fits the model on rows and persists it.
	Train(ctx context.Context, rows []TrainingRow) (*TrainingResult, error)
}

// Configurable is implemented by scorers and rerankers that read engine
// configuration.
// Configure is called on registration and after every config update.
type Configurable interface {
	Configure(cfg *Config)
}

// Reranker modifies a ranked list for diversity or other objectives.
type Reranker interface {
	// Name returns the reranker identifier (e.g., "mmr").
	Name() string

	// Rerank reorders items already sorted by relevance and returns up to k.
	Rerank(ctx context.Context, items []ScoredProduct, k int) []ScoredProduct
}

// CatalogProvider loads scoring candidates. Implemented by the database layer.
type CatalogProvider interface {
	// ListProducts returns every product left-joined with its price row.
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// TrainingDataProvider loads labeled rows for training.
type TrainingDataProvider interface {
	GetTrainingRows(ctx context.Context) ([]TrainingRow, error)
}

// Observer receives engine events for metrics export.
type Observer interface {
	ObserveRecommendation(scorer string, latency time.Duration, cacheHit, fallback bool)
	ObserveTraining(scorer string, duration time.Duration, result *TrainingResult, err error)
}

// FeatureRow is the model input for one (product, profile) pair.
type FeatureRow struct {
	Price           int    `json:"price"`
	HasSize         int    `json:"has_size"`
	Style           string `json:"style"`
	SkinTemperature string `json:"skin_temperature"`
	SkinDepth       string `json:"skin_depth"`
	Frame           string `json:"frame"`
	HeightBucket    string `json:"height_bucket"`
	Shoulders       string `json:"shoulders"`
	ColorTags       string `json:"color_tags"`
	FitTags         string `json:"fit_tags"`
	AvoidTags       string `json:"avoid_tags"`
}

// NewFeatureRow builds the model input for product p and profile.
// Both tag columns carry the same ";"-joined lowercase tags.
func NewFeatureRow(p models.Product, profile Profile) FeatureRow {
	hasSize := 0
	if p.HasSize(profile.Size) {
		hasSize = 1
	}
	tags := strings.Join(p.LowerTags(), ";")

	return FeatureRow{
		Price:           p.PriceValue(),
		HasSize:         hasSize,
		Style:           string(profile.Style),
		SkinTemperature: profile.Traits.SkinTemperature,
		SkinDepth:       profile.Traits.SkinDepth,
		Frame:           profile.Traits.Frame,
		HeightBucket:    profile.Traits.HeightBucket,
		Shoulders:       profile.Traits.Shoulders,
		ColorTags:       tags,
		FitTags:         tags,
		AvoidTags:       "",
	}
}

// TrainingRow is one labeled impression from a training slate.
type TrainingRow struct {
	FeatureRow

	SessionID   string `json:"session_id"`
	SlateID     string `json:"slate_id"`
	ProductID   string `json:"product_id"`
	Label       int    `json:"label"`
	RankInSlate int    `json:"rank_in_slate"`
}

// TrainingResult summarizes one training run.
type TrainingResult struct {
	Rows          int       `json:"rows"`
	TrainRows     int       `json:"train_rows"`
	ValidRows     int       `json:"valid_rows"`
	Positives     int       `json:"positives"`
	ValidationAUC float64   `json:"validation_auc"`
	Features      int       `json:"features"`
	Version       int       `json:"version"`
	TrainedAt     time.Time `json:"trained_at"`
}

// TrainingStatus represents the current training state.
type TrainingStatus struct {
	// IsTraining indicates whether training is currently in progress.
	IsTraining bool `json:"is_training"`

	// ActiveScorer is the scorer used for recommendations.
	ActiveScorer string `json:"active_scorer"`

	// LastTrainedAt is when training last completed.
	LastTrainedAt time.Time `json:"last_trained_at"`

	// LastTrainingDurationMS is how long the last training took.
	LastTrainingDurationMS int64 `json:"last_training_duration_ms"`

	// LastError contains the last training error, if any.
	LastError string `json:"last_error,omitempty"`

	// RowCount is the number of rows in the last training set.
	RowCount int `json:"row_count"`

	// ValidationAUC is the ROC AUC on the held-out split of the last run.
	ValidationAUC float64 `json:"validation_auc"`

	// ModelVersion is the current model version.
	ModelVersion int `json:"model_version"`
}

// Metrics contains recommendation system metrics for observability.
type Metrics struct {
	RequestCount   int64            `json:"request_count"`
	CacheHits      int64            `json:"cache_hits"`
	CacheMisses    int64            `json:"cache_misses"`
	ErrorCount     int64            `json:"error_count"`
	FallbackCount  int64            `json:"fallback_count"`
	TrainingCount  int64            `json:"training_count"`
	ScorerRequests map[string]int64 `json:"scorer_requests"`
}
