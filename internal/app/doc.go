// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

// Package app wires the FitLens server together.
//
// New opens the store, builds the recommendation engine and the HTTP
// handler; Run places the long-running parts in a supervisor tree and
// blocks until the context is canceled:
//
//	data-layer       cache GC (badger backend), embedded NATS (optional)
//	messaging-layer  event tap, model trainer
//	api-layer        HTTP server
//
// Usage:
//
//	a, err := app.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//	return a.Run(ctx)
//
// OpenDatabase and NewEngine are exported for the CLI commands that need
// the store or the engine without the HTTP server.
package app
