// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

/*
Package metrics defines the Prometheus metrics exported on /metrics.

All collectors are registered with the default registry through promauto
at package init. Metric families:

  - fitlens_db_*: catalog and event query latency and failures
  - fitlens_api_*: request counts, latency, in-flight requests, rate limiting
  - fitlens_image_*: photo decoding and trait inference
  - fitlens_recommendations_*, fitlens_training_*, fitlens_model_*: engine
    activity, exported through RecommendObserver
  - fitlens_events_*: click and like events through the message bus
  - fitlens_circuit_breaker_*: database breaker state
  - fitlens_cache_*: recommendation cache efficiency

Wire the engine with:

	engine.SetObserver(metrics.RecommendObserver{})
*/
package metrics
