// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package algorithms

import (
	"sort"
	"strings"

	"github.com/tomtom215/fitlens/internal/recommend"
)

// NoneToken stands in for an empty tag column.
const NoneToken = "__none__"

// Column names, shared with the training CSV header.
var (
	numericColumns     = []string{"price", "has_size"}
	categoricalColumns = []string{"style", "skin_temperature", "skin_depth", "frame", "height_bucket", "shoulders"}
	tagColumns         = []string{"color_tags", "fit_tags", "avoid_tags"}
)

// Vectorizer turns feature rows into dense numeric vectors: numeric columns
// pass through, categorical columns are one-hot encoded and tag columns
// become a binary bag of tokens. Values unseen during Fit are ignored.
type Vectorizer struct {
	categories map[string][]string
	tokens     map[string][]string

	// column offsets, built from the vocabularies
	index    map[string]int
	features []string
}

// NewVectorizer creates a vectorizer from a stored vocabulary.
func NewVectorizer(categories, tokens map[string][]string) *Vectorizer {
	v := &Vectorizer{categories: categories, tokens: tokens}
	v.buildIndex()
	return v
}

// FitVectorizer learns the vocabulary of rows.
func FitVectorizer(rows []recommend.FeatureRow) *Vectorizer {
	catSeen := make(map[string]map[string]struct{}, len(categoricalColumns))
	tokSeen := make(map[string]map[string]struct{}, len(tagColumns))
	for _, c := range categoricalColumns {
		catSeen[c] = make(map[string]struct{})
	}
	for _, c := range tagColumns {
		tokSeen[c] = make(map[string]struct{})
	}

	for i := range rows {
		cats := categoricalValues(&rows[i])
		for j, c := range categoricalColumns {
			catSeen[c][cats[j]] = struct{}{}
		}
		tags := tagValues(&rows[i])
		for j, c := range tagColumns {
			for _, tok := range Tokenize(tags[j]) {
				tokSeen[c][tok] = struct{}{}
			}
		}
	}

	return NewVectorizer(sortedKeys(catSeen), sortedKeys(tokSeen))
}

func (v *Vectorizer) buildIndex() {
	v.index = make(map[string]int)
	v.features = v.features[:0]
	add := func(name string) {
		v.index[name] = len(v.features)
		v.features = append(v.features, name)
	}

	for _, c := range numericColumns {
		add(c)
	}
	for _, c := range categoricalColumns {
		for _, val := range v.categories[c] {
			add(c + "=" + val)
		}
	}
	for _, c := range tagColumns {
		for _, tok := range v.tokens[c] {
			add(c + ":" + tok)
		}
	}
}

// Len returns the vector width.
func (v *Vectorizer) Len() int {
	return len(v.features)
}

// FeatureNames returns the column names in vector order.
func (v *Vectorizer) FeatureNames() []string {
	out := make([]string, len(v.features))
	copy(out, v.features)
	return out
}

// Categories returns the one-hot vocabulary per categorical column.
func (v *Vectorizer) Categories() map[string][]string { return v.categories }

// Tokens returns the token vocabulary per tag column.
func (v *Vectorizer) Tokens() map[string][]string { return v.tokens }

// Transform vectorizes one row.
func (v *Vectorizer) Transform(row *recommend.FeatureRow) []float64 {
	x := make([]float64, len(v.features))
	x[v.index["price"]] = float64(row.Price)
	x[v.index["has_size"]] = float64(row.HasSize)

	cats := categoricalValues(row)
	for j, c := range categoricalColumns {
		if i, ok := v.index[c+"="+cats[j]]; ok {
			x[i] = 1
		}
	}

	tags := tagValues(row)
	for j, c := range tagColumns {
		for _, tok := range Tokenize(tags[j]) {
			if i, ok := v.index[c+":"+tok]; ok {
				x[i] = 1
			}
		}
	}
	return x
}

// TransformAll vectorizes rows.
func (v *Vectorizer) TransformAll(rows []recommend.FeatureRow) [][]float64 {
	out := make([][]float64, len(rows))
	for i := range rows {
		out[i] = v.Transform(&rows[i])
	}
	return out
}

// Tokenize splits a ";"-joined tag value into trimmed lowercase tokens.
// An empty value yields NoneToken.
func Tokenize(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ";") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return []string{NoneToken}
	}
	return out
}

func categoricalValues(r *recommend.FeatureRow) [6]string {
	return [6]string{r.Style, r.SkinTemperature, r.SkinDepth, r.Frame, r.HeightBucket, r.Shoulders}
}

func tagValues(r *recommend.FeatureRow) [3]string {
	return [3]string{r.ColorTags, r.FitTags, r.AvoidTags}
}

func sortedKeys(sets map[string]map[string]struct{}) map[string][]string {
	out := make(map[string][]string, len(sets))
	for col, set := range sets {
		vals := make([]string, 0, len(set))
		for v := range set {
			vals = append(vals, v)
		}
		sort.Strings(vals)
		out[col] = vals
	}
	return out
}
