// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPServer matches the lifecycle methods of *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPService runs an HTTP server as a supervised service.
//
// ListenAndServe runs in a goroutine; when ctx is canceled the server is
// shut down gracefully within shutdownTimeout and the OnShutdown hooks run
// in registration order.
//
//	srv := &http.Server{Addr: ":8000", Handler: router.Setup()}
//	svc := services.NewHTTPService(srv, 10*time.Second)
//	svc.OnShutdown(handler.Close)
//	tree.AddAPIService(svc)
type HTTPService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	onShutdown      []func()
}

// NewHTTPService wraps server. A non-positive timeout defaults to 10s.
func NewHTTPService(server HTTPServer, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
	}
}

// OnShutdown registers fn to run after the server has stopped accepting
// requests. Call before the service is started.
func (h *HTTPService) OnShutdown(fn func()) {
	h.onShutdown = append(h.onShutdown, fn)
}

// Serve implements suture.Service. http.ErrServerClosed is not a failure.
func (h *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// ctx is already canceled; shut down on a fresh one.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		err := h.server.Shutdown(shutdownCtx)
		<-errCh
		for _, fn := range h.onShutdown {
			fn()
		}
		if err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		return ctx.Err()
	}
}

// String implements fmt.Stringer for suture's logs.
func (h *HTTPService) String() string {
	return "http-server"
}
