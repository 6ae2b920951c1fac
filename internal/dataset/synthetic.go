// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Columns is the header of a training CSV, in order.
var Columns = []string{
	"session_id", "slate_id", "product_id", "label",
	"price", "has_size", "style", "skin_temperature", "skin_depth", "frame", "height_bucket", "shoulders",
	"color_tags", "fit_tags", "avoid_tags", "rank_in_slate",
}

// SyntheticOptions controls GenerateSynthetic.
type SyntheticOptions struct {
	Sessions        int
	ItemsPerSession int
	// Seed makes the output reproducible.
	Seed uint64
}

// DefaultSyntheticOptions returns 200 sessions of 16 items each.
func DefaultSyntheticOptions() SyntheticOptions {
	return SyntheticOptions{Sessions: 200, ItemsPerSession: 16}
}

var (
	synthStyles       = []string{"casual", "traditional"}
	synthSkinTemps    = []string{"warm", "cool", "neutral"}
	synthSkinDepths   = []string{"light", "medium", "deep"}
	synthFrames       = []string{"slim", "regular", "fuller"}
	synthHeights      = []string{"short", "avg", "tall"}
	synthShoulders    = []string{"narrow", "average", "broad"}
	synthBudgets      = []int{799, 999, 1299, 1499, 1999, 2499, 2999}
	synthPrices       = []int{599, 799, 999, 1299, 1499, 1799, 1999, 2499, 2999, 3499}
	synthSizes        = []string{"S", "M", "L", "XL"}
	synthUserSizes    = []string{"", "S", "M", "L", "XL"}
	synthAllColors    = []string{"olive", "mustard", "rust", "warm beige", "cream", "maroon", "brown", "tan", "navy", "charcoal", "cool gray", "emerald", "wine", "ice blue", "black", "white", "taupe", "sand", "stone"}
	synthAllFits      = []string{"slim", "regular", "structured-shoulder", "relaxed", "straight", "drape", "no-cling"}
	synthAllNecklines = []string{"mandarin", "crew", "stand-collar", "v-neck", "henley", "short-mandarin"}

	synthColorVocab = map[string][]string{
		"warm":    {"olive", "mustard", "rust", "warm beige", "cream", "maroon", "brown", "tan"},
		"cool":    {"navy", "charcoal", "cool gray", "emerald", "wine", "ice blue", "black", "white"},
		"neutral": {"taupe", "sand", "stone", "black", "white", "navy", "olive"},
	}
	synthFitTags = map[string][]string{
		"slim":    {"slim", "regular", "structured-shoulder"},
		"regular": {"regular"},
		"fuller":  {"relaxed", "straight", "drape", "no-cling"},
	}
	synthHeightTags   = map[string][]string{"short": {"regular-length", "cropped"}, "avg": {}, "tall": {"longline", "layer-friendly"}}
	synthShoulderTags = map[string][]string{"narrow": {"mandarin", "crew", "stand-collar"}, "average": {}, "broad": {"v-neck", "henley", "short-mandarin"}}
)

type synthUser struct {
	style, skinTemp, skinDepth, frame, height, shoulders string
	budget                                               int
	size                                                 string
}

type synthProduct struct {
	id    string
	price int
	sizes []string
	tags  []string
}

// generator draws users, products and labels from one seeded source.
type generator struct {
	rng *rand.Rand
}

func (g *generator) pick(values []string) string {
	return values[g.rng.IntN(len(values))]
}

// sample returns k distinct values in random order.
func (g *generator) sample(values []string, k int) []string {
	perm := g.rng.Perm(len(values))
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = values[perm[i]]
	}
	return out
}

func (g *generator) id(prefix string) string {
	return fmt.Sprintf("%s_%08x", prefix, g.rng.Uint32())
}

func (g *generator) user() synthUser {
	return synthUser{
		style:     g.pick(synthStyles),
		skinTemp:  g.pick(synthSkinTemps),
		skinDepth: g.pick(synthSkinDepths),
		frame:     g.pick(synthFrames),
		height:    g.pick(synthHeights),
		shoulders: g.pick(synthShoulders),
		budget:    synthBudgets[g.rng.IntN(len(synthBudgets))],
		size:      g.pick(synthUserSizes),
	}
}

func (g *generator) product(style string) synthProduct {
	p := synthProduct{
		id:    g.id("p"),
		price: synthPrices[g.rng.IntN(len(synthPrices))],
		sizes: g.sample(synthSizes, 1+g.rng.IntN(4)),
	}

	seen := map[string]struct{}{}
	add := func(tags ...string) {
		for _, t := range tags {
			if _, ok := seen[t]; ok || t == "" {
				continue
			}
			seen[t] = struct{}{}
			p.tags = append(p.tags, t)
		}
	}
	add(style)
	add(g.sample(synthAllColors, 1+g.rng.IntN(3))...)
	add(g.sample(synthAllFits, 1+g.rng.IntN(2))...)
	add(g.sample(synthAllNecklines, g.rng.IntN(2))...)
	return p
}

func anyTag(tags, wanted []string) bool {
	for _, t := range tags {
		for _, w := range wanted {
			if strings.EqualFold(t, w) {
				return true
			}
		}
	}
	return false
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// label scores a (user, product) pair and draws a click from the implied
// probability p = clamp(0.15 + 0.2*score, 0, 1).
func (g *generator) label(u synthUser, p synthProduct) (label, hasSize int) {
	score := 0.0
	if anyTag(p.tags, synthColorVocab[u.skinTemp]) {
		score += 0.8
	}
	if anyTag(p.tags, synthFitTags[u.frame]) {
		score += 0.6
	}
	if anyTag(p.tags, synthHeightTags[u.height]) {
		score += 0.25
	}
	if anyTag(p.tags, synthShoulderTags[u.shoulders]) {
		score += 0.25
	}
	if u.size != "" && containsString(p.sizes, u.size) {
		hasSize = 1
		score += 0.5
	}
	if p.price <= u.budget {
		score += 0.4
	} else {
		over := float64(p.price-u.budget) / float64(max(1, u.budget))
		score -= min(0.6, over)
	}
	score += g.rng.Float64()*0.4 - 0.2

	prob := max(0.0, min(1.0, 0.15+0.2*score))
	if g.rng.Float64() < prob {
		label = 1
	}
	return label, hasSize
}

// GenerateSynthetic writes a labeled training CSV drawn from a simple user
// preference model and returns the number of data rows written.
func GenerateSynthetic(w io.Writer, opts SyntheticOptions) (int, error) {
	if opts.Sessions <= 0 || opts.ItemsPerSession <= 0 {
		return 0, fmt.Errorf("sessions and items per session must be positive")
	}

	g := &generator{rng: rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))}
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	rows := 0
	for s := 0; s < opts.Sessions; s++ {
		sessionID := g.id("s")
		slateID := g.id("sl")
		u := g.user()

		products := make([]synthProduct, opts.ItemsPerSession)
		for i := range products {
			products[i] = g.product(u.style)
		}
		g.rng.Shuffle(len(products), func(i, j int) { products[i], products[j] = products[j], products[i] })

		for rank, p := range products {
			label, hasSize := g.label(u, p)
			tags := strings.Join(p.tags, ";")
			record := []string{
				sessionID, slateID, p.id, strconv.Itoa(label),
				strconv.Itoa(p.price), strconv.Itoa(hasSize), u.style, u.skinTemp, u.skinDepth,
				u.frame, u.height, u.shoulders,
				tags, tags, "", strconv.Itoa(rank),
			}
			if err := cw.Write(record); err != nil {
				return rows, fmt.Errorf("write row: %w", err)
			}
			rows++
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return rows, fmt.Errorf("flush csv: %w", err)
	}
	return rows, nil
}
