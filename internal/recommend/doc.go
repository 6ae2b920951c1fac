// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

// Package recommend ranks clothing products for a user profile.
//
// # Architecture
//
// The Engine loads candidates from a CatalogProvider, scores them in one
// batch with the active Algorithm and returns the top K with explanations:
//
//   - rules: a weighted sum of color, fit, price and diversity signals
//     derived from the trait rule tables (algorithms.RuleScorer)
//   - ml: a logistic regression over one-hot traits and bag-of-tags
//     features (algorithms.LogisticScorer)
//
// The active scorer is chosen by Config.Scorer and can be switched at
// runtime through UpdateConfig. When the active scorer fails and
// Config.FallbackToRules is set, the request is scored with the rules.
//
// Ranking is deterministic: scores descending, ties by product ID ascending.
// An optional MMR reranker trades relevance for tag diversity.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	engine.SetCatalog(store)
//	engine.RegisterAlgorithm(algorithms.NewRuleScorer())
//	engine.RegisterAlgorithm(algorithms.NewLogisticScorer(modelStore))
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    Profile: recommend.Profile{Traits: traits, Style: models.StyleCasual},
//	})
//
// # Thread Safety
//
// The engine is safe for concurrent use. Training runs are serialized with a
// try-lock so a second Train returns ErrTrainingInProgress immediately, and
// status reads never block on a running training.
package recommend
