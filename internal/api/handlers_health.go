// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package api

import (
	"context"
	"net/http"
	"time"
)

// Health handles GET /health. It reports liveness only.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondOK(w, http.StatusOK)
}

// ReadinessResponse is the body of GET /health/ready.
type ReadinessResponse struct {
	Ready         bool   `json:"ready"`
	Store         string `json:"store"`
	ModelVersion  int    `json:"model_version"`
	ActiveScorer  string `json:"active_scorer"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Ready handles GET /health/ready. It pings the store and returns 503 when
// the ping fails.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	status := h.engine.GetStatus()
	resp := ReadinessResponse{
		Ready:         true,
		Store:         "ok",
		ModelVersion:  status.ModelVersion,
		ActiveScorer:  status.ActiveScorer,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}

	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			resp.Ready = false
			resp.Store = "unavailable"
			respondJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	} else {
		resp.Store = "not_configured"
	}

	respondJSON(w, http.StatusOK, resp)
}
