// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

/*
Package api provides the HTTP layer of FitLens.

Routes:

  - GET  /health                  liveness, always {"ok":true}
  - GET  /health/ready            store ping, 503 when unavailable
  - POST /analyze-and-recommend   multipart photo + style/size/budget, ranked items
  - POST /track                   click, like or hide event
  - GET  /recommend/status        training status and engine counters
  - GET  /recommend/config        live engine configuration
  - PUT  /recommend/config        partial configuration update
  - POST /recommend/train         background retrain, 202 / 409 / 429
  - GET  /metrics                 Prometheus exposition

Every error is written as models.APIError:

	{"detail": "Unsupported image type", "code": "UNSUPPORTED_IMAGE"}

Validation failures carry a "fields" map in addition.

Middleware (in order): request and correlation IDs, RealIP, Recoverer,
CORS, access log, Prometheus. The photo and tracking routes plus the
/recommend group sit behind a per-IP httprate limiter; probes and /metrics
do not.

Usage:

	handler := api.NewHandler(api.HandlerDeps{
	    Engine:   engine,
	    Recorder: recorder,
	    Store:    db,
	})
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Security)))
	srv := &http.Server{Addr: ":8000", Handler: router.Setup()}
*/
package api
