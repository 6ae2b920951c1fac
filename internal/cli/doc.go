// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

// Package cli implements the fitlens command.
//
//	fitlens serve                                  run the API server
//	fitlens generate --out train.csv --sessions 200 --items 16 --seed 42
//	fitlens train --csv train.csv --model-dir ./models
//	fitlens export --out events.parquet --since 168h
//	fitlens seed --file catalog.json
//	fitlens mcp                                    MCP tool server on stdio
//	fitlens version
//
// Every command except generate and version reads the same configuration
// as the server (defaults, config file, environment).
package cli
