// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fitlens/internal/logging"
	"github.com/tomtom215/fitlens/internal/metrics"
	"github.com/tomtom215/fitlens/internal/middleware"
	"github.com/tomtom215/fitlens/internal/models"
	"github.com/tomtom215/fitlens/internal/recommend"
	"github.com/tomtom215/fitlens/internal/traits"
	"github.com/tomtom215/fitlens/internal/validation"
)

// multipartMemory is the part of an upload kept in memory before spilling
// to temporary files.
const multipartMemory = 8 << 20

// Response headers describing how a recommendation was produced.
const (
	HeaderScorer       = "X-FitLens-Scorer"
	HeaderModelVersion = "X-FitLens-Model-Version"
)

// AnalyzeAndRecommend handles POST /analyze-and-recommend.
//
// Multipart fields: image (required), style (casual|traditional), size and
// budget (integer). Traits are inferred from the photo and the catalog is
// ranked for them.
func (h *Handler) AnalyzeAndRecommend(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			metrics.RecordImageAnalysis("too_large", 0)
			respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "Upload too large", err)
			return
		}
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "Request must be multipart/form-data", err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	style := strings.TrimSpace(r.FormValue("style"))
	if verr := validation.ValidateVar("style", style, "required,oneof=casual traditional"); verr != nil {
		respondValidation(w, verr)
		return
	}

	var budget *int
	if raw := strings.TrimSpace(r.FormValue("budget")); raw != "" {
		b, err := strconv.Atoi(raw)
		if err != nil {
			respondFieldError(w, "budget", "budget must be an integer")
			return
		}
		budget = &b
	}
	size := strings.TrimSpace(r.FormValue("size"))

	file, header, err := r.FormFile("image")
	if err != nil {
		respondFieldError(w, "image", "image is required")
		return
	}
	defer func() { _ = file.Close() }()

	userTraits, ok := h.analyzeImage(w, r, header.Header.Get("Content-Type"), file)
	if !ok {
		return
	}

	resp, err := h.engine.Recommend(r.Context(), recommend.Request{
		Profile: recommend.Profile{
			Traits: userTraits,
			Style:  models.Style(style),
			Size:   size,
			Budget: budget,
		},
		RequestID: middleware.GetRequestID(r.Context()),
	})
	if err != nil {
		if errors.Is(err, recommend.ErrInvalidRequest) {
			respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), err)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeRecommendation, "Failed to generate recommendations", err)
		return
	}

	w.Header().Set(HeaderScorer, resp.Metadata.Scorer)
	w.Header().Set(HeaderModelVersion, strconv.Itoa(resp.Metadata.ModelVersion))
	respondJSON(w, http.StatusOK, models.RecommendResponse{Items: resp.Items})
}

// analyzeImage decodes the upload and infers traits. On failure it writes
// the error response and returns false.
func (h *Handler) analyzeImage(w http.ResponseWriter, r *http.Request, contentType string, body io.Reader) (models.Traits, bool) {
	start := time.Now()
	img, err := traits.Decode(contentType, body)
	switch {
	case errors.Is(err, traits.ErrUnsupportedType):
		metrics.RecordImageAnalysis("unsupported_type", 0)
		respondError(w, r, http.StatusBadRequest, ErrCodeUnsupportedImage, "Unsupported image type", nil)
		return models.Traits{}, false
	case err != nil:
		metrics.RecordImageAnalysis("decode_error", 0)
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidImage, "Invalid image file", err)
		return models.Traits{}, false
	}

	t := traits.Extract(img)
	metrics.RecordImageAnalysis("ok", time.Since(start))
	logging.Ctx(r.Context()).Debug().
		Str("skin_depth", t.SkinDepth).
		Dur("duration", time.Since(start)).
		Msg("traits extracted")
	return t, true
}

// RecommendStatusResponse is the body of GET /recommend/status.
type RecommendStatusResponse struct {
	Training   recommend.TrainingStatus `json:"training"`
	Metrics    recommend.Metrics        `json:"metrics"`
	Algorithms []string                 `json:"algorithms"`
}

// RecommendStatus handles GET /recommend/status.
func (h *Handler) RecommendStatus(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, RecommendStatusResponse{
		Training:   h.engine.GetStatus(),
		Metrics:    h.engine.GetMetrics(),
		Algorithms: h.engine.Algorithms(),
	})
}

// GetRecommendConfig handles GET /recommend/config.
func (h *Handler) GetRecommendConfig(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.GetConfig())
}

// UpdateRecommendConfig handles PUT /recommend/config.
//
// The body is decoded onto the live configuration, so a partial document
// such as {"scorer":"rules"} changes only the fields it names.
func (h *Handler) UpdateRecommendConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.engine.GetConfig()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBodyBytes))
	if err := dec.Decode(cfg); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidJSON, "Invalid JSON body", err)
		return
	}

	if err := h.engine.UpdateConfig(cfg); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidConfig, err.Error(), err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("scorer", cfg.Scorer).
		Msg("recommend configuration updated via API")
	respondJSON(w, http.StatusOK, h.engine.GetConfig())
}

// TrainAcceptedResponse is the body of a 202 from POST /recommend/train.
type TrainAcceptedResponse struct {
	Status       string `json:"status"`
	ModelVersion int    `json:"model_version"`
}

// TriggerTraining handles POST /recommend/train. Training runs in the
// background; the response only acknowledges that it started.
func (h *Handler) TriggerTraining(w http.ResponseWriter, r *http.Request) {
	if h.engine.GetStatus().IsTraining {
		respondError(w, r, http.StatusConflict, ErrCodeTrainingConflict, "Training is already in progress", nil)
		return
	}
	if !h.trainLimiter.Allow() {
		respondError(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequests, "Training was triggered too recently", nil)
		return
	}

	correlationID := logging.CorrelationIDFromContext(r.Context())
	version := h.engine.ModelVersion()

	h.trainWG.Add(1)
	go func() {
		defer h.trainWG.Done()
		ctx := logging.ContextWithCorrelationID(h.baseCtx, correlationID)
		h.runTraining(ctx)
	}()

	respondJSON(w, http.StatusAccepted, TrainAcceptedResponse{
		Status:       "training_started",
		ModelVersion: version,
	})
}

func (h *Handler) runTraining(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, h.trainTimeout)
	defer cancel()

	logger := logging.Ctx(ctx)
	if err := h.engine.Train(ctx); err != nil {
		if errors.Is(err, recommend.ErrTrainingInProgress) {
			logger.Info().Msg("training already running, trigger ignored")
			return
		}
		logger.Error().Err(err).Msg("recommendation training failed")
		return
	}
	logger.Info().Int("model_version", h.engine.ModelVersion()).Msg("recommendation training completed")
}
