// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

// Package testinfra starts real dependencies in Docker for integration
// tests, using testcontainers-go.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/testinfra/...
//
// # PostgreSQL
//
// NewPostgresContainer starts PostgreSQL and returns a pgx DSN that
// database.New accepts with driver "postgres". The unit tests in
// internal/database cover the embedded drivers (duckdb, sqlite); the
// integration test here runs the same catalog and events operations
// against a server.
//
// Tests are skipped when Docker is unavailable or with -short. The first
// run pulls the image.
package testinfra
