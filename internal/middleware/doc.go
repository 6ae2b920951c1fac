// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

/*
Package middleware provides the HTTP middleware FitLens installs on its chi
router alongside the stock chi, cors and httprate middleware.

  - RequestID: propagates X-Request-ID into the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern
  - AccessLog: one zerolog line per request, escalated for slow or failed
    requests

All three have the func(http.Handler) http.Handler shape expected by
chi.Router.Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(time.Second))
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
