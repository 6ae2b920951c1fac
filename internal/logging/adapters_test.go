// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

func TestSlogHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandler(NewTestLogger(&buf)))

	logger.With("service", "http").WithGroup("restart").Info("service restarted",
		"attempt", 2,
		"backoff", time.Second,
		"err", errors.New("boom"),
	)

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	if m["message"] != "service restarted" {
		t.Errorf("message = %v", m["message"])
	}
	if m["level"] != "info" {
		t.Errorf("level = %v", m["level"])
	}
	if m["service"] != "http" {
		t.Errorf("service = %v", m["service"])
	}
	if m["restart.attempt"] != float64(2) {
		t.Errorf("restart.attempt = %v", m["restart.attempt"])
	}
	if m["restart.err"] != "boom" {
		t.Errorf("restart.err = %v", m["restart.err"])
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	h := NewSlogHandler(zerolog.Nop().Level(zerolog.WarnLevel))
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
		{slog.LevelError + 4, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			if got := slogToZerologLevel(tt.in); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWatermillAdapter(t *testing.T) {
	prevLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prevLevel) })

	var buf bytes.Buffer
	zl := NewTestLogger(&buf).Level(zerolog.TraceLevel)
	adapter := NewWatermillAdapter(zl).With(watermill.LogFields{"topic": "fitlens.events.click"})

	adapter.Error("publish failed", errors.New("nats down"), watermill.LogFields{"attempt": 3})
	adapter.Info("published", nil)
	adapter.Trace("trace", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	first := decodeLine(t, lines[0])
	if first["level"] != "error" || first["error"] != "nats down" {
		t.Errorf("error line = %v", first)
	}
	if first["topic"] != "fitlens.events.click" || first["attempt"] != float64(3) {
		t.Errorf("fields missing: %v", first)
	}
	if decodeLine(t, lines[2])["level"] != "trace" {
		t.Errorf("trace line = %s", lines[2])
	}
}

func TestRedactDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"url with password", "postgres://fit:secret@db:5432/fitlens", "postgres://fit:REDACTED@db:5432/fitlens"},
		{"url without password", "postgres://fit@db/fitlens", "postgres://fit@db/fitlens"},
		{"password query", "postgres://db/fitlens?password=secret", "postgres://db/fitlens?password=REDACTED"},
		{"key value", "host=db user=fit password=secret dbname=fitlens", "host=db user=fit password=REDACTED dbname=fitlens"},
		{"file path", "/data/fitlens.duckdb", "/data/fitlens.duckdb"},
		{"memory", ":memory:", ":memory:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactDSN(tt.in); got != tt.want {
				t.Errorf("RedactDSN(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
