// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

// Package reranking implements post-processing of ranked product lists.
//
// Rerankers run after the scorer and the score sort:
//
//	Scorer -> Sort (score desc, id asc) -> Rerankers -> Truncate to K
//
// # Maximal Marginal Relevance (MMR)
//
// MMR greedily picks the product maximizing
//
//	lambda * score(i) - (1-lambda) * max sim(i, s) over selected s
//
// where sim is the Jaccard similarity of lowercased product tags. A lambda
// of 1.0 keeps the score order; lower values push apart products that share
// colors and fits. The engine only applies rerankers when
// diversity.enabled is set.
package reranking
