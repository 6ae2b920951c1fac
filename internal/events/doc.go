// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

// Package events records click, like and hide events and publishes them
// through Watermill.
//
// Recorder.Record validates a models.TrackEvent, writes it to the clicks
// or likes table and then publishes an Event to <prefix>.<event>. Publishing
// is best-effort: failures are logged and counted in
// fitlens_events_published_total but never fail the request.
//
// Transports:
//
//   - gochannel: in-process, no broker required
//   - nats: core NATS via watermill-nats with JetStream disabled
//
// EmbeddedServer runs nats-server inside the process when no external
// broker is available. Tap subscribes to all event topics and counts
// deliveries.
package events
