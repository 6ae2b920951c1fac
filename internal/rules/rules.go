// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

// Package rules maps user traits and a requested style to the attribute sets
// (colors, fits, necklines) a product should carry to suit the user.
//
// The tables are small and fixed. Every function returns a fresh slice so
// callers may append to or reorder the result.
package rules

import "github.com/tomtom215/fitlens/internal/models"

var palettes = map[string][]string{
	"warm":    {"olive", "mustard", "rust", "warm beige", "cream", "maroon", "brown", "tan"},
	"cool":    {"navy", "charcoal", "cool gray", "emerald", "wine", "ice blue", "black", "white"},
	"neutral": {"taupe", "sand", "stone", "black", "white", "navy", "olive"},
}

var frameFits = map[string][]string{
	"slim":    {"slim", "regular", "structured-shoulder"},
	"regular": {"regular"},
	"fuller":  {"relaxed", "straight", "drape", "no-cling"},
}

var heightFits = map[string][]string{
	"short": {"regular-length", "cropped"},
	"tall":  {"longline", "layer-friendly"},
}

var shoulderFits = map[string][]string{
	"narrow": {"mandarin", "crew", "stand-collar"},
	"broad":  {"v-neck", "henley", "short-mandarin"},
}

// PaletteFor returns the preferred colors for the user's skin undertone.
// Any undertone other than warm or cool gets the neutral palette.
func PaletteFor(t models.Traits) []string {
	p, ok := palettes[t.SkinTemperature]
	if !ok {
		p = palettes["neutral"]
	}
	return clone(p)
}

// FrameFitsFor returns the fit tags for the user's frame alone.
// Unknown frames are treated as fuller.
func FrameFitsFor(frame string) []string {
	f, ok := frameFits[frame]
	if !ok {
		f = frameFits["fuller"]
	}
	return clone(f)
}

// HeightFitsFor returns the length tags for a height bucket (none for avg).
func HeightFitsFor(height string) []string { return clone(heightFits[height]) }

// ShoulderFitsFor returns the neckline tags for a shoulder type (none for average).
func ShoulderFitsFor(shoulders string) []string { return clone(shoulderFits[shoulders]) }

// FitTagsFor returns the positive fit, length, neckline and category tags
// in that order.
func FitTagsFor(t models.Traits, s models.Style) []string {
	tags := FrameFitsFor(t.Frame)
	tags = append(tags, heightFits[t.HeightBucket]...)
	tags = append(tags, shoulderFits[t.Shoulders]...)
	return append(tags, categoryTag(s))
}

// AvoidTagsFor returns tags that make a product unsuitable for the user.
func AvoidTagsFor(t models.Traits, _ models.Style) []string {
	var avoid []string
	if t.Frame == "fuller" {
		avoid = append(avoid, "clingy", "heavy-shine")
	}
	if t.HeightBucket == "short" {
		avoid = append(avoid, "extra-long")
	}
	return avoid
}

// CategoryAllowed returns the product categories allowed for a style.
func CategoryAllowed(s models.Style) []string {
	return []string{categoryTag(s)}
}

// AllColors returns every color known to the palettes, without duplicates,
// in table order (warm, cool, neutral).
func AllColors() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, key := range []string{"warm", "cool", "neutral"} {
		for _, c := range palettes[key] {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

func categoryTag(s models.Style) string {
	if s == models.StyleCasual {
		return string(models.StyleCasual)
	}
	return string(models.StyleTraditional)
}

func clone(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
