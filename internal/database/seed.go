// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package database

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fitlens/internal/logging"
	"github.com/tomtom215/fitlens/internal/models"
)

// SeedProduct is one catalog entry in a seed file. A product carries a
// price row when any of price, sizes or in_stock is present; in_stock
// defaults to true.
type SeedProduct struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Store   string   `json:"store"`
	URL     string   `json:"url"`
	Image   string   `json:"image"`
	Tags    []string `json:"tags"`
	Price   *int     `json:"price"`
	MRP     *int     `json:"mrp"`
	Sizes   []string `json:"sizes"`
	InStock *bool    `json:"in_stock"`
}

// Product converts the entry to a catalog product.
func (s SeedProduct) Product() models.Product {
	p := models.Product{
		ID:    s.ID,
		Title: s.Title,
		Store: s.Store,
		URL:   s.URL,
		Image: s.Image,
		Tags:  s.Tags,
		Price: s.Price,
		MRP:   s.MRP,
		Sizes: s.Sizes,
	}
	p.HasPrice = s.Price != nil || s.Sizes != nil || s.InStock != nil
	p.InStock = s.InStock == nil || *s.InStock
	return p
}

// ReadSeed decodes a JSON array of SeedProduct.
func ReadSeed(r io.Reader) ([]models.Product, error) {
	var entries []SeedProduct
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode seed catalog: %w", err)
	}
	products := make([]models.Product, 0, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: entry %d has no id", ErrInvalidProduct, i)
		}
		products = append(products, e.Product())
	}
	return products, nil
}

// Seed upserts every product and returns how many were written.
func (db *DB) Seed(ctx context.Context, products []models.Product) (int, error) {
	for i, p := range products {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := db.UpsertProduct(ctx, p); err != nil {
			return i, err
		}
	}
	return len(products), nil
}

// SeedFile loads a JSON catalog from path into the store.
func (db *DB) SeedFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return 0, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer closeQuietly(f)

	products, err := ReadSeed(f)
	if err != nil {
		return 0, err
	}
	n, err := db.Seed(ctx, products)
	if err != nil {
		return n, err
	}
	logging.Info().Str("file", path).Int("products", n).Msg("Seeded catalog")
	return n, nil
}
