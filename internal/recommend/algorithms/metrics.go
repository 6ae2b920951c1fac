// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package algorithms

import (
	"math"
	"math/rand"
	"sort"
)

// ROCAUC returns the area under the ROC curve for binary labels and scores,
// computed from the Mann-Whitney rank statistic with tied scores sharing
// their average rank. Returns 0.5 when either class is absent.
func ROCAUC(labels []int, scores []float64) float64 {
	n := len(labels)
	if n == 0 || n != len(scores) {
		return 0.5
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && scores[order[j+1]] == scores[order[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}

	var pos, neg int
	var rankSum float64
	for i, y := range labels {
		if y == 1 {
			pos++
			rankSum += ranks[i]
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0.5
	}

	p := float64(pos)
	return (rankSum - p*(p+1)/2) / (p * float64(neg))
}

// StratifiedSplit shuffles indexes per class with a seeded source and moves
// round(fraction*count) of each class into the validation set, keeping at
// least one row of each class for training.
func StratifiedSplit(labels []int, fraction float64, seed int64) (train, valid []int) {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic split, not security

	byClass := map[int][]int{}
	for i, y := range labels {
		byClass[y] = append(byClass[y], i)
	}

	for _, class := range []int{0, 1} {
		idx := byClass[class]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		nValid := int(math.Round(fraction * float64(len(idx))))
		if nValid >= len(idx) {
			nValid = len(idx) - 1
		}
		if nValid < 0 {
			nValid = 0
		}
		valid = append(valid, idx[:nValid]...)
		train = append(train, idx[nValid:]...)
	}

	sort.Ints(train)
	sort.Ints(valid)
	return train, valid
}

// sigmoid is numerically stable for large |z|.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
