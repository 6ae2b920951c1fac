// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package models

import "strings"

// Style is the outfit category a user asks for.
type Style string

const (
	// StyleCasual selects everyday wear.
	StyleCasual Style = "casual"
	// StyleTraditional selects ethnic/occasion wear.
	StyleTraditional Style = "traditional"
)

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	return s == StyleCasual || s == StyleTraditional
}

// Traits are the body and coloring attributes inferred for a user.
// Every field is constrained to a closed vocabulary; see the oneof tags.
type Traits struct {
	SkinTemperature string `json:"skin_temperature" validate:"required,oneof=warm cool neutral"`
	SkinDepth       string `json:"skin_depth" validate:"required,oneof=light medium deep"`
	HairType        string `json:"hair_type" validate:"omitempty,oneof=straight wavy curly unknown"`
	HairColor       string `json:"hair_color" validate:"omitempty,oneof=dark brown blonde other unknown"`
	Frame           string `json:"frame" validate:"required,oneof=slim regular fuller"`
	HeightBucket    string `json:"height_bucket" validate:"required,oneof=short avg tall"`
	Shoulders       string `json:"shoulders" validate:"required,oneof=narrow broad average"`
}

// DefaultTraits returns the traits used when nothing better is known.
// Skin depth defaults to medium.
func DefaultTraits() Traits {
	return Traits{
		SkinTemperature: "neutral",
		SkinDepth:       "medium",
		HairType:        "unknown",
		HairColor:       "unknown",
		Frame:           "regular",
		HeightBucket:    "avg",
		Shoulders:       "average",
	}
}

// WithDefaults fills empty optional fields with "unknown".
func (t Traits) WithDefaults() Traits {
	if t.HairType == "" {
		t.HairType = "unknown"
	}
	if t.HairColor == "" {
		t.HairColor = "unknown"
	}
	return t
}

// Product is a catalog row joined with its price row.
//
// HasPrice is false when the product has no row in the prices table; such
// products are never recommended. Price and MRP are nil when the price row
// carries NULLs.
type Product struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Store string   `json:"store"`
	URL   string   `json:"url"`
	Image string   `json:"image"`
	Tags  []string `json:"tags"`

	HasPrice bool     `json:"-"`
	Price    *int     `json:"price"`
	MRP      *int     `json:"mrp,omitempty"`
	Sizes    []string `json:"sizes"`
	InStock  bool     `json:"in_stock"`
}

// LowerTags returns the product tags trimmed and lowercased, skipping entries
// that are empty after trimming.
func (p Product) LowerTags() []string {
	out := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// HasSize reports whether size is non-empty and offered for the product.
func (p Product) HasSize(size string) bool {
	if size == "" {
		return false
	}
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// PriceValue returns the price, or 0 when unknown.
func (p Product) PriceValue() int {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}

// ProductOut is one recommended product as returned to clients.
type ProductOut struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Store string   `json:"store"`
	URL   string   `json:"url"`
	Image string   `json:"image"`
	Price int      `json:"price"`
	MRP   *int     `json:"mrp,omitempty"`
	Sizes []string `json:"sizes"`
	Tags  []string `json:"tags"`
	Why   []string `json:"why"`
}

// NewProductOut converts a scored product into its public form.
func NewProductOut(p Product, why []string) ProductOut {
	out := ProductOut{
		ID:    p.ID,
		Title: p.Title,
		Store: p.Store,
		URL:   p.URL,
		Image: p.Image,
		Price: p.PriceValue(),
		Sizes: p.Sizes,
		Tags:  p.Tags,
		Why:   why,
	}
	if p.MRP != nil {
		mrp := *p.MRP
		out.MRP = &mrp
	}
	if out.Sizes == nil {
		out.Sizes = []string{}
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out
}

// RecommendResponse is the body of /analyze-and-recommend.
type RecommendResponse struct {
	Items []ProductOut `json:"items"`
}

// Event kinds accepted by /track.
const (
	EventClick = "click"
	EventLike  = "like"
	EventHide  = "hide"
)

// TrackEvent is an engagement event reported by a client.
type TrackEvent struct {
	Event     string `json:"event" validate:"required,oneof=click like hide"`
	ProductID string `json:"product_id" validate:"required,max=256"`
	SessionID string `json:"session_id" validate:"required,max=256"`
}

// StoredEvent is a tracked event as persisted in the clicks/likes tables.
type StoredEvent struct {
	Table     string `json:"table"`
	ProductID string `json:"product_id"`
	SessionID string `json:"session_id"`
	Timestamp int64  `json:"ts"`
}
