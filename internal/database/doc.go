// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

// Package database stores the product catalog and engagement events.
//
// # Backends
//
// The driver is chosen by database.driver:
//
//   - duckdb (default): file path or :memory:
//   - postgres: pgx stdlib driver, any Postgres or Supabase URL
//   - sqlite: modernc.org/sqlite, file path or :memory:
//
// Queries are written once with ? placeholders and rebound to $n for
// postgres.
//
// # Schema
//
// Four plain tables are created with CREATE TABLE IF NOT EXISTS:
//
//	products(id, title, store, url, image, tags)
//	prices(product_id, price, mrp, sizes, in_stock)
//	clicks(product_id, session_id, ts)
//	likes(product_id, session_id, ts)
//
// List columns (tags, sizes) are stored ;-joined. ts is unix seconds.
//
// # Resilience
//
// CatalogBreaker wraps any recommend.CatalogProvider with a gobreaker
// circuit breaker and exports its state as fitlens_circuit_breaker_state.
package database
