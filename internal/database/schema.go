// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package database

import (
	"context"
	"fmt"
	"strings"
)

// Event tables.
const (
	TableClicks = "clicks"
	TableLikes  = "likes"
)

// schemaStatements is valid DDL for duckdb, postgres and sqlite alike.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		store TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		image TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS prices (
		product_id TEXT PRIMARY KEY,
		price INTEGER,
		mrp INTEGER,
		sizes TEXT NOT NULL DEFAULT '',
		in_stock BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS clicks (
		product_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		ts BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS likes (
		product_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		ts BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clicks_ts ON clicks (ts)`,
	`CREATE INDEX IF NOT EXISTS idx_likes_ts ON likes (ts)`,
}

func (db *DB) createSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// joinList stores a string slice as a ;-joined column.
func joinList(values []string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ";")
}

// splitList is the inverse of joinList. An empty column yields an empty slice.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
