// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fitlens/internal/logging"
	"github.com/tomtom215/fitlens/internal/models"
	"github.com/tomtom215/fitlens/internal/validation"
)

// Track handles POST /track.
//
// Body: {"event": "click"|"like"|"hide", "product_id": "...", "session_id": "..."}.
// The event is stored before the response is written; publishing to the
// event bus never fails the request.
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	var ev models.TrackEvent
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBodyBytes)).Decode(&ev); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body", err)
		return
	}

	recorded, err := h.recorder.Record(r.Context(), ev)
	if err != nil {
		var verr *validation.RequestValidationError
		if errors.As(err, &verr) {
			respondValidation(w, verr)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeStore, "Failed to record event", err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("event", recorded.Event).
		Str("table", recorded.Table).
		Str("event_id", recorded.EventID).
		Msg("event tracked")
	respondOK(w, http.StatusOK)
}
