// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/fitlens/internal/config"
	"github.com/tomtom215/fitlens/internal/database"
	"github.com/tomtom215/fitlens/internal/events"
	"github.com/tomtom215/fitlens/internal/recommend"
)

const testSeed = `[
	{"id": "p1", "title": "Navy Kurta", "tags": ["casual", "navy", "regular"], "price": 999, "sizes": ["M"]},
	{"id": "p2", "title": "Olive Tee", "tags": ["casual", "olive"], "price": 799, "sizes": ["L"]}
]`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	seed := filepath.Join(dir, "seed.json")
	if err := os.WriteFile(seed, []byte(testSeed), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Defaults()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Database.Driver = database.DriverSQLite
	cfg.Database.DSN = filepath.Join(dir, "db", "fitlens.sqlite")
	cfg.Database.SeedFile = seed
	cfg.Cache.Backend = CacheMemory
	cfg.Events.Enabled = true
	cfg.Events.Transport = events.TransportGoChannel
	cfg.Security.RateLimitDisabled = true
	cfg.Recommend.ModelPath = filepath.Join(dir, "models")
	cfg.Recommend.TrainingCSV = ""
	cfg.Recommend.Scorer = recommend.ScorerRules
	cfg.Recommend.Training.OnStartup = false
	return cfg
}

func TestNew_ServesRequests(t *testing.T) {
	a, err := New(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(a.Close)
	t.Cleanup(a.Handler.Close)

	n, err := a.DB.CountProducts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("seeded products = %d, want 2", n)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"ready", http.MethodGet, "/health/ready", "", http.StatusOK},
		{"track", http.MethodPost, "/track", `{"event":"click","product_id":"p1","session_id":"s1"}`, http.StatusOK},
		{"status", http.MethodGet, "/recommend/status", "", http.StatusOK},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()
			a.server.Handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("%s %s = %d, want %d: %s", tt.method, tt.path, rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	clicks, err := a.DB.CountEvents(context.Background(), database.TableClicks)
	if err != nil {
		t.Fatal(err)
	}
	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown driver", func(c *config.Config) { c.Database.Driver = "oracle" }},
		{"missing seed file", func(c *config.Config) { c.Database.SeedFile = "/nonexistent/seed.json" }},
		{"unknown cache backend", func(c *config.Config) { c.Cache.Backend = "redis" }},
		{"unknown scorer", func(c *config.Config) { c.Recommend.Scorer = "neural" }},
		{"unknown transport", func(c *config.Config) { c.Events.Transport = "kafka" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)
			a, err := New(context.Background(), cfg)
			if err == nil {
				a.Close()
				t.Fatal("New() error = nil")
			}
			if a != nil {
				t.Error("New() returned a non-nil App with an error")
			}
		})
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Backend = CacheBadger
	cfg.Cache.Path = ""

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(a.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestNewResponseCache(t *testing.T) {
	engineCfg := recommend.DefaultConfig().Cache

	tests := []struct {
		name       string
		backend    string
		wantBadger bool
		wantErr    bool
	}{
		{"default", "", false, false},
		{"memory", CacheMemory, false, false},
		{"badger in memory", CacheBadger, true, false},
		{"unknown", "memcached", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := newResponseCache(config.CacheConfig{Backend: tt.backend}, engineCfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newResponseCache() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer c.Close()
			if (c.badger != nil) != tt.wantBadger {
				t.Errorf("badger = %v, want %v", c.badger != nil, tt.wantBadger)
			}
			if c.cache == nil {
				t.Error("cache is nil")
			}
		})
	}
}

func TestInitEvents(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		comps, err := initEvents(config.EventsConfig{Enabled: false})
		if err != nil {
			t.Fatal(err)
		}
		if comps != nil {
			t.Error("disabled events should return nil components")
		}
		// A nil *events.Publisher must not become a non-nil interface.
		if pub := comps.eventPublisher(); pub != nil {
			t.Errorf("eventPublisher() = %v, want nil", pub)
		}
		comps.Close()
	})

	t.Run("gochannel", func(t *testing.T) {
		comps, err := initEvents(config.EventsConfig{
			Enabled:     true,
			Transport:   events.TransportGoChannel,
			TopicPrefix: "test.events",
		})
		if err != nil {
			t.Fatal(err)
		}
		defer comps.Close()
		if comps.eventPublisher() == nil || comps.tap == nil {
			t.Error("gochannel transport should have a publisher and a tap")
		}
		if comps.server != nil || comps.subscriber != nil {
			t.Error("gochannel transport should not start a server or a separate subscriber")
		}
	})

	t.Run("embedded nats", func(t *testing.T) {
		comps, err := initEvents(config.EventsConfig{
			Enabled:        true,
			Transport:      events.TransportNATS,
			EmbeddedServer: true,
			EmbeddedHost:   "127.0.0.1",
			EmbeddedPort:   -1,
			TopicPrefix:    "test.events",
		})
		if err != nil {
			t.Fatal(err)
		}
		defer comps.Close()
		if comps.server == nil || !comps.server.IsRunning() {
			t.Fatal("embedded server not running")
		}
		if comps.subscriber == nil {
			t.Error("nats transport should own a subscriber")
		}
	})
}

func TestTrainerConfig(t *testing.T) {
	got := trainerConfig(recommend.TrainingConfig{OnStartup: true, Interval: time.Hour, Timeout: time.Minute})
	if !got.OnStartup || got.Interval != time.Hour || got.Timeout != time.Minute {
		t.Errorf("trainerConfig() = %+v", got)
	}
}

func TestOpenDatabase_SeedErrorClosesStore(t *testing.T) {
	cfg := testConfig(t).Database
	cfg.SeedFile = filepath.Join(t.TempDir(), "missing.json")

	_, err := OpenDatabase(context.Background(), &cfg)
	if err == nil {
		t.Fatal("OpenDatabase() error = nil")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("OpenDatabase() error = %v, want os.ErrNotExist", err)
	}
}
