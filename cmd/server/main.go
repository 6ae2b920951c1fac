// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/fitlens/internal/app"
	"github.com/tomtom215/fitlens/internal/config"
	"github.com/tomtom215/fitlens/internal/logging"
	"github.com/tomtom215/fitlens/internal/metrics"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logging is not configured yet; the default logger writes JSON to stderr.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	metrics.SetAppInfo(version)

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_driver", cfg.Database.Driver).
		Str("cache_backend", cfg.Cache.Backend).
		Str("scorer", cfg.Recommend.Scorer).
		Msg("Starting FitLens")

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Strs("origins", cfg.Security.CORSOrigins).Msg("CORS allows any origin in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize server")
	}

	runErr := a.Run(ctx)
	a.Close()

	if runErr != nil {
		logging.Error().Err(runErr).Msg("Server stopped with error")
		os.Exit(1)
	}
	logging.Info().Msg("Server stopped gracefully")
}
