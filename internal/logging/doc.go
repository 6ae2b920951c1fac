// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

/*
Package logging provides the zerolog-based logging used throughout FitLens.

Init configures the global logger from LOG_LEVEL, LOG_FORMAT and LOG_CALLER
(see internal/config). Components take a child logger:

	log := logging.WithComponent("events")
	log.Info().Str("topic", topic).Msg("publisher ready")

Request-scoped logging picks up the request ID set by the HTTP middleware:

	logging.Ctx(r.Context()).Warn().Err(err).Msg("scorer fell back to rules")

Adapters route third-party loggers into the same stream:

  - NewSlogLogger for sutureslog (supervisor tree events)
  - NewWatermillAdapter for watermill publishers and routers

Always terminate a chain with Msg or Send or nothing is written.
*/
package logging
