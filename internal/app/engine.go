// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fitlens/internal/config"
	"github.com/tomtom215/fitlens/internal/dataset"
	"github.com/tomtom215/fitlens/internal/metrics"
	"github.com/tomtom215/fitlens/internal/recommend"
	"github.com/tomtom215/fitlens/internal/recommend/algorithms"
	"github.com/tomtom215/fitlens/internal/recommend/reranking"
	"github.com/tomtom215/fitlens/internal/recommend/storage"
	"github.com/tomtom215/fitlens/internal/supervisor/services"
)

// NewEngine builds the recommendation engine with both scorers, the MMR
// reranker and the Prometheus observer. catalog is usually a
// database.CatalogBreaker; c may be nil for the engine's default memory
// cache.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewEngine(cfg *config.RecommendConfig, catalog recommend.CatalogProvider, c recommend.Cache, logger zerolog.Logger) (*recommend.Engine, error) {
	engineCfg := cfg.Engine()

	engine, err := recommend.NewEngine(engineCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}

	modelStore, err := storage.NewStore(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("open model store: %w", err)
	}

	engine.SetCatalog(catalog)
	if cfg.TrainingCSV != "" {
		engine.SetTrainingDataProvider(dataset.NewFileSource(cfg.TrainingCSV))
	}
	if c != nil {
		engine.SetCache(c)
	}
	engine.SetObserver(metrics.RecommendObserver{})

	engine.RegisterAlgorithm(algorithms.NewRuleScorer())
	engine.RegisterAlgorithm(algorithms.NewLogisticScorer(modelStore))
	engine.RegisterReranker(reranking.NewMMR(engineCfg.Diversity.MMRLambda))

	logger.Info().
		Str("scorer", engineCfg.Scorer).
		Bool("fallback_to_rules", engineCfg.FallbackToRules).
		Str("model_path", modelStore.Dir()).
		Str("training_csv", cfg.TrainingCSV).
		Strs("algorithms", engine.Algorithms()).
		Msg("Recommendation engine initialized")

	return engine, nil
}

// trainerConfig maps the training schedule onto the trainer service.
func trainerConfig(cfg recommend.TrainingConfig) services.TrainerConfig {
	return services.TrainerConfig{
		OnStartup: cfg.OnStartup,
		Interval:  cfg.Interval,
		Timeout:   cfg.Timeout,
	}
}
