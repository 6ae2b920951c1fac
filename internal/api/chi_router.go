// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/fitlens/internal/middleware"
	"github.com/tomtom215/fitlens/internal/models"
)

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil mw uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // before routing so preflight is answered
	r.Use(middleware.AccessLog(middleware.DefaultSlowRequestThreshold))
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusNotFound, &models.APIError{Detail: "Not Found", Code: ErrCodeNotFound})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusMethodNotAllowed, &models.APIError{Detail: "Method Not Allowed", Code: ErrCodeMethodNotAllowed})
	})

	// Probes and scraping are exempt from rate limiting.
	r.Get("/health", router.handler.Health)
	r.Get("/health/ready", router.handler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())

		r.Post("/analyze-and-recommend", router.handler.AnalyzeAndRecommend)
		r.Post("/track", router.handler.Track)

		r.Route("/recommend", func(r chi.Router) {
			r.Get("/status", router.handler.RecommendStatus)
			r.Get("/config", router.handler.GetRecommendConfig)
			r.Put("/config", router.handler.UpdateRecommendConfig)
			r.Post("/train", router.handler.TriggerTraining)
		})
	})

	return r
}
