// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fitlens/internal/recommend"
)

// Trainer is the part of recommend.Engine the trainer service drives.
type Trainer interface {
	Train(ctx context.Context) error
}

// TrainerConfig controls TrainerService.
type TrainerConfig struct {
	// OnStartup trains once as soon as the service starts.
	OnStartup bool

	// Interval between scheduled runs. Zero or negative disables the
	// schedule; the service then only trains on startup (if enabled).
	Interval time.Duration

	// Timeout bounds a single run. Default: 30m.
	Timeout time.Duration
}

// TrainerService retrains the recommendation model on a schedule.
//
// A failed run is logged and retried at the next tick; it never makes the
// service fail, so suture does not restart it over missing training data.
type TrainerService struct {
	trainer Trainer
	config  TrainerConfig
	logger  zerolog.Logger
}

// NewTrainerService creates a trainer service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewTrainerService(trainer Trainer, cfg TrainerConfig, logger zerolog.Logger) *TrainerService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	return &TrainerService{
		trainer: trainer,
		config:  cfg,
		logger:  logger.With().Str("service", "trainer").Logger(),
	}
}

// Serve implements suture.Service.
func (s *TrainerService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("on_startup", s.config.OnStartup).
		Dur("interval", s.config.Interval).
		Msg("trainer starting")

	if s.config.OnStartup {
		s.train(ctx, "startup")
	}

	if s.config.Interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("trainer shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.train(ctx, "schedule")
		}
	}
}

func (s *TrainerService) train(ctx context.Context, trigger string) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	err := s.trainer.Train(runCtx)
	switch {
	case err == nil:
		s.logger.Info().Str("trigger", trigger).Dur("duration", time.Since(start)).Msg("model training complete")
	case errors.Is(err, recommend.ErrTrainingInProgress):
		s.logger.Debug().Str("trigger", trigger).Msg("training already running, skipped")
	case ctx.Err() != nil:
		// shutting down
	default:
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("model training failed")
	}
}

// String implements fmt.Stringer for suture's logs.
func (s *TrainerService) String() string {
	return "recommend-trainer"
}
