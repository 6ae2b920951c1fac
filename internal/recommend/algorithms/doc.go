// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

// Package algorithms implements the product scorers for the recommendation
// engine.
//
// Two scorers are provided, both implementing recommend.Algorithm:
//
//   - RuleScorer: a weighted blend of color palette match, fit/neckline
//     match, price fit and a constant diversity signal. Always available.
//   - LogisticScorer: a binary logistic regression over a vectorized feature
//     row, trained on labeled slates and persisted in the model store.
//
// Every scorer returns human-readable reasons alongside each score.
//
// # Thread Safety
//
// Scorers are safe for concurrent use. Training acquires an exclusive lock
// while scoring uses a shared lock.
package algorithms
