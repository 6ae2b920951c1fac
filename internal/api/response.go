// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package api

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fitlens/internal/logging"
	"github.com/tomtom215/fitlens/internal/models"
	"github.com/tomtom215/fitlens/internal/validation"
)

// Error codes for API responses
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeUnsupportedImage   = "UNSUPPORTED_IMAGE"
	ErrCodeInvalidImage       = "INVALID_IMAGE"
	ErrCodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeInvalidConfig      = "INVALID_CONFIG"
	ErrCodeRecommendation     = "RECOMMENDATION_ERROR"
	ErrCodeStore              = "STORE_ERROR"
	ErrCodeTrainingConflict   = "TRAINING_IN_PROGRESS"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// respondJSON writes v as JSON with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondOK writes {"ok":true}.
func respondOK(w http.ResponseWriter, status int) {
	respondJSON(w, status, models.OKResponse{OK: true})
}

// respondError writes an APIError body. When err is non-nil it is logged
// with the request's logger; the client only sees detail.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, detail string, err error) {
	if err != nil {
		event := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.
			Str("code", sanitizeLogValue(code)).
			Str("error", sanitizeLogValue(err.Error())).
			Int("status", status).
			Msg("API error")
	}

	respondJSON(w, status, &models.APIError{
		Detail: detail,
		Code:   code,
	})
}

// respondValidation writes a 400 VALIDATION_ERROR with per-field messages.
func respondValidation(w http.ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondJSON(w, http.StatusBadRequest, &models.APIError{
		Detail: apiErr.Message,
		Code:   apiErr.Code,
		Fields: apiErr.Fields,
	})
}

// respondFieldError writes a 400 VALIDATION_ERROR for a single field.
func respondFieldError(w http.ResponseWriter, field, message string) {
	respondJSON(w, http.StatusBadRequest, &models.APIError{
		Detail: message,
		Code:   ErrCodeValidation,
		Fields: map[string]string{field: message},
	})
}

// sanitizeLogValue strips line breaks and bounds the length of
// client-influenced values before they are logged.
func sanitizeLogValue(s string) string {
	const maxLen = 512
	s = strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}
