// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

// ErrServerStopped is returned by Serve when the server exits on its own.
var ErrServerStopped = errors.New("embedded NATS server stopped")

// ServerConfig configures the embedded NATS server.
type ServerConfig struct {
	Host string
	// Port -1 picks a random free port.
	Port int
}

// EmbeddedServer runs a core NATS server inside the process for single
// instance deployments that have no external broker.
type EmbeddedServer struct {
	cfg ServerConfig

	mu     sync.Mutex
	server *server.Server
}

// NewEmbeddedServer creates and starts an embedded NATS server. It fails
// if the server is not ready for connections within 30 seconds.
func NewEmbeddedServer(cfg ServerConfig) (*EmbeddedServer, error) {
	s := &EmbeddedServer{cfg: cfg}
	if err := s.start(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *EmbeddedServer) start() error {
	opts := &server.Options{
		ServerName: "fitlens-events",
		Host:       s.cfg.Host,
		Port:       s.cfg.Port,
		NoLog:      true,
		NoSigs:     true,
		MaxPayload: 1024 * 1024,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return fmt.Errorf("create NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return fmt.Errorf("NATS server not ready within timeout")
	}

	s.mu.Lock()
	s.server = ns
	s.mu.Unlock()
	return nil
}

// ClientURL returns the connection URL for clients.
func (s *EmbeddedServer) ClientURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server.ClientURL()
}

// IsRunning reports server health.
func (s *EmbeddedServer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server != nil && s.server.Running()
}

// Serve keeps the server running until ctx is canceled, then shuts it
// down. A server that died is restarted on entry, so a supervisor restart
// brings it back. It implements suture.Service.
func (s *EmbeddedServer) Serve(ctx context.Context) error {
	if !s.IsRunning() {
		if err := s.start(); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Shutdown()
			return ctx.Err()
		case <-ticker.C:
			if !s.IsRunning() {
				return ErrServerStopped
			}
		}
	}
}

// Shutdown stops the server and waits for it to exit.
func (s *EmbeddedServer) Shutdown() {
	s.mu.Lock()
	ns := s.server
	s.mu.Unlock()
	if ns == nil {
		return
	}
	ns.Shutdown()
	ns.WaitForShutdown()
}

// String implements fmt.Stringer for supervisor logs.
func (s *EmbeddedServer) String() string {
	return "nats-server"
}
