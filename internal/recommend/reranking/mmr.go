// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package reranking

import (
	"context"
	"math"
	"sync"

	"github.com/tomtom215/fitlens/internal/recommend"
)

// maxRerankSize bounds k; the engine also clamps it to limits.max_k.
const maxRerankSize = 10000

// MMR implements Maximal Marginal Relevance reranking over product tags.
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct {
	mu sync.RWMutex
	// Lambda balances relevance vs. diversity (0.0 to 1.0)
	lambda float64
}

var _ recommend.Configurable = (*MMR)(nil)

// NewMMR creates a new MMR reranker. lambda is clamped to [0, 1].
func NewMMR(lambda float64) *MMR {
	return &MMR{lambda: clampLambda(lambda)}
}

func clampLambda(lambda float64) float64 {
	if lambda < 0 {
		return 0
	}
	if lambda > 1 {
		return 1
	}
	return lambda
}

// Configure picks up diversity.mmr_lambda.
func (m *MMR) Configure(cfg *recommend.Config) {
	if cfg == nil {
		return
	}
	m.mu.Lock()
	m.lambda = clampLambda(cfg.Diversity.MMRLambda)
	m.mu.Unlock()
}

// Name returns the reranker identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Lambda returns the relevance weight.
func (m *MMR) Lambda() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lambda
}

// Rerank selects k items from the score-sorted list. Items past k are
// dropped. Ties keep the input order.
func (m *MMR) Rerank(ctx context.Context, items []recommend.ScoredProduct, k int) []recommend.ScoredProduct {
	if len(items) == 0 || k <= 0 {
		return items
	}
	if k > maxRerankSize {
		k = maxRerankSize
	}
	if k > len(items) {
		k = len(items)
	}

	lambda := m.Lambda()
	if lambda >= 1.0 {
		return items[:k]
	}

	sets := make([]map[string]struct{}, len(items))
	for i := range items {
		sets[i] = tagSet(items[i].Product.LowerTags())
	}

	// maxSim[i] is the highest similarity of item i to any selected item.
	maxSim := make([]float64, len(items))
	taken := make([]bool, len(items))
	selected := make([]recommend.ScoredProduct, 0, k)

	for len(selected) < k {
		if ctx.Err() != nil {
			break
		}

		bestIdx := -1
		bestMMR := math.Inf(-1)
		for i := range items {
			if taken[i] {
				continue
			}
			score := lambda*items[i].Score - (1-lambda)*maxSim[i]
			if score > bestMMR {
				bestMMR = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}

		taken[bestIdx] = true
		selected = append(selected, items[bestIdx])
		for i := range items {
			if taken[i] {
				continue
			}
			if sim := jaccard(sets[i], sets[bestIdx]); sim > maxSim[i] {
				maxSim[i] = sim
			}
		}
	}

	// Cancellation keeps the remaining items in score order.
	for i := range items {
		if len(selected) >= k {
			break
		}
		if !taken[i] {
			selected = append(selected, items[i])
		}
	}

	return selected
}

func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

// jaccard returns |a ∩ b| / |a ∪ b|, or 0 when both are empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Ensure MMR implements the interface.
var _ recommend.Reranker = (*MMR)(nil)
