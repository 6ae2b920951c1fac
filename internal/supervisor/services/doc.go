// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

// Package services adapts FitLens components to suture.Service.
//
//   - HTTPService: ListenAndServe/Shutdown lifecycle of *http.Server
//   - TrainerService: scheduled recommend.Engine training
//   - CacheGCService: Badger value-log GC loop
//
// The embedded NATS server and the event tap already implement
// suture.Service and are added to the tree directly.
package services
