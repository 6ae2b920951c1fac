// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/fitlens/internal/api"
	"github.com/tomtom215/fitlens/internal/config"
	"github.com/tomtom215/fitlens/internal/database"
	"github.com/tomtom215/fitlens/internal/events"
	"github.com/tomtom215/fitlens/internal/logging"
	"github.com/tomtom215/fitlens/internal/recommend"
	"github.com/tomtom215/fitlens/internal/supervisor"
	"github.com/tomtom215/fitlens/internal/supervisor/services"
)

const shutdownTimeout = 10 * time.Second

// App is a fully wired FitLens server.
type App struct {
	Config  *config.Config
	DB      *database.DB
	Catalog *database.CatalogBreaker
	Engine  *recommend.Engine
	Handler *api.Handler

	cache  *responseCache
	events *eventComponents
	server *http.Server
}

// New opens every dependency and builds the HTTP handler. Nothing runs
// until Run is called. On error, whatever was opened is closed again.
func New(ctx context.Context, cfg *config.Config) (a *App, err error) {
	a = &App{Config: cfg}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	a.DB, err = OpenDatabase(ctx, &cfg.Database)
	if err != nil {
		return a, fmt.Errorf("initialize database: %w", err)
	}
	a.Catalog = database.NewCatalogBreaker(a.DB, cfg.Database.Breaker)

	a.cache, err = newResponseCache(cfg.Cache, cfg.Recommend.Cache)
	if err != nil {
		return a, err
	}

	a.Engine, err = NewEngine(&cfg.Recommend, a.Catalog, a.cache.cache, logging.WithComponent("recommend"))
	if err != nil {
		return a, err
	}

	a.events, err = initEvents(cfg.Events)
	if err != nil {
		return a, err
	}
	recorder := events.NewRecorder(a.DB, a.events.eventPublisher(), cfg.Events.TopicPrefix)

	a.Handler = api.NewHandler(api.HandlerDeps{
		Engine:         a.Engine,
		Recorder:       recorder,
		Store:          a.DB,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		TrainLimiter:   api.NewTrainLimiter(cfg.Security.TrainInterval, cfg.Security.TrainBurst),
		TrainTimeout:   cfg.Recommend.Training.Timeout,
	})

	router := api.NewRouter(a.Handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Security)))
	a.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// buildTree adds every long-running component to a supervisor tree:
// storage maintenance and the embedded broker in the data layer, the event
// tap and model trainer in the messaging layer, the HTTP server in the API
// layer.
func (a *App) buildTree() *supervisor.Tree {
	tree := supervisor.NewTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: shutdownTimeout,
	})

	if a.cache != nil && a.cache.badger != nil {
		tree.AddDataService(services.NewCacheGCService(a.cache.badger, 0))
	}
	if a.events != nil && a.events.server != nil {
		tree.AddDataService(a.events.server)
	}

	if a.events != nil && a.events.tap != nil {
		tree.AddMessagingService(a.events.tap)
	}
	tree.AddMessagingService(services.NewTrainerService(
		a.Engine,
		trainerConfig(a.Config.Recommend.Training),
		logging.WithComponent("trainer"),
	))

	httpSvc := services.NewHTTPService(a.server, shutdownTimeout)
	httpSvc.OnShutdown(a.Handler.Close)
	tree.AddAPIService(httpSvc)

	return tree
}

// Run serves until ctx is canceled and then waits for every service to
// stop. It does not release dependencies; call Close afterwards.
func (a *App) Run(ctx context.Context) error {
	tree := a.buildTree()
	a.watchConfig(config.ConfigFile())

	logging.Info().Str("addr", a.server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// The tree returns once ctx is canceled and every layer has stopped.
	var runErr error
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
		runErr = err
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	return runErr
}

// watchConfig reloads the recommend section into the engine whenever the
// config file changes. Other sections need a restart.
func (a *App) watchConfig(path string) {
	if path == "" {
		return
	}
	err := config.WatchConfigFile(path, func() {
		cfg, err := config.Load()
		if err != nil {
			logging.Warn().Err(err).Str("file", path).Msg("Ignoring invalid config change")
			return
		}
		if err := a.Engine.UpdateConfig(cfg.Recommend.Engine()); err != nil {
			logging.Warn().Err(err).Str("file", path).Msg("Rejected recommend config change")
			return
		}
		logging.Info().Str("file", path).Str("scorer", cfg.Recommend.Scorer).Msg("Recommend config reloaded")
	})
	if err != nil {
		logging.Warn().Err(err).Str("file", path).Msg("Config file watch disabled")
	}
}

// Close releases the event bus, cache and database. It is safe on a
// partially built App.
func (a *App) Close() {
	if a == nil {
		return
	}
	a.events.Close()
	if err := a.cache.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing response cache")
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}
}
