// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package api

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/fitlens/internal/events"
	"github.com/tomtom215/fitlens/internal/models"
	"github.com/tomtom215/fitlens/internal/recommend"
)

const (
	defaultMaxUploadBytes = 10 << 20
	defaultTrainTimeout   = 30 * time.Minute
	maxJSONBodyBytes      = 64 << 10
)

// EventRecorder stores and publishes engagement events. Implemented by
// events.Recorder.
type EventRecorder interface {
	Record(ctx context.Context, ev models.TrackEvent) (events.Event, error)
}

// Pinger reports store health. Implemented by database.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandlerDeps are the collaborators of Handler. Engine and Recorder are
// required; Store enables the readiness probe.
type HandlerDeps struct {
	Engine   *recommend.Engine
	Recorder EventRecorder
	Store    Pinger

	// MaxUploadBytes caps the multipart body of /analyze-and-recommend.
	MaxUploadBytes int64

	// TrainLimiter throttles POST /recommend/train. Nil allows every call.
	TrainLimiter *rate.Limiter

	// TrainTimeout bounds one background training run.
	TrainTimeout time.Duration
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_health.go: liveness and readiness
//   - handlers_recommend.go: analyze-and-recommend and the /recommend admin endpoints
//   - handlers_track.go: engagement tracking
type Handler struct {
	engine       *recommend.Engine
	recorder     EventRecorder
	store        Pinger
	maxUpload    int64
	trainLimiter *rate.Limiter
	trainTimeout time.Duration
	startTime    time.Time

	// baseCtx outlives requests so background training is not cancelled
	// when the triggering request returns.
	baseCtx context.Context
	cancel  context.CancelFunc
	trainWG sync.WaitGroup
}

// NewHandler creates a handler from deps.
func NewHandler(deps HandlerDeps) *Handler {
	maxUpload := deps.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	trainTimeout := deps.TrainTimeout
	if trainTimeout <= 0 {
		trainTimeout = defaultTrainTimeout
	}
	limiter := deps.TrainLimiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		engine:       deps.Engine,
		recorder:     deps.Recorder,
		store:        deps.Store,
		maxUpload:    maxUpload,
		trainLimiter: limiter,
		trainTimeout: trainTimeout,
		startTime:    time.Now(),
		baseCtx:      ctx,
		cancel:       cancel,
	}
}

// NewTrainLimiter allows burst training triggers and then one per interval.
// A non-positive interval disables throttling.
func NewTrainLimiter(interval time.Duration, burst int) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(interval), burst)
}

// Close cancels background training started through the API and waits for
// it to return.
func (h *Handler) Close() {
	h.cancel()
	h.trainWG.Wait()
}
