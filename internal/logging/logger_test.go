// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// captureGlobal swaps the global logger for one writing to a buffer.
func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Logger()
	prevLevel := zerolog.GlobalLevel()
	SetLogger(NewTestLogger(&buf))
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() {
		SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	})
	return &buf
}

func decodeLine(t *testing.T, line string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", line, err)
	}
	return m
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInit_JSONOutput(t *testing.T) {
	prev := Logger()
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	Debug().Str("style", "casual").Msg("hello")

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	if m["message"] != "hello" {
		t.Errorf("message = %v", m["message"])
	}
	if m["service"] != "fitlens" {
		t.Errorf("service = %v", m["service"])
	}
	if m["style"] != "casual" {
		t.Errorf("style = %v", m["style"])
	}
	if _, ok := m["time"]; !ok {
		t.Error("missing time field")
	}
}

func TestInit_LevelFilters(t *testing.T) {
	prev := Logger()
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	Info().Msg("dropped")
	Warn().Msg("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "kept") {
		t.Error("warn message missing")
	}
}

func TestWithComponent(t *testing.T) {
	buf := captureGlobal(t)
	l := WithComponent("trainer")
	l.Info().Msg("x")

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	if m["component"] != "trainer" {
		t.Errorf("component = %v", m["component"])
	}
}

func TestCtx_RequestID(t *testing.T) {
	buf := captureGlobal(t)

	ctx := ContextWithRequestID(context.Background(), "req-123")
	ctx = ContextWithCorrelationID(ctx, "corr0001")
	Ctx(ctx).Info().Msg("with id")
	Ctx(context.Background()).Info().Msg("without id")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	first := decodeLine(t, lines[0])
	if first["request_id"] != "req-123" || first["correlation_id"] != "corr0001" {
		t.Errorf("ids = %v / %v", first["request_id"], first["correlation_id"])
	}
	if _, ok := decodeLine(t, lines[1])["request_id"]; ok {
		t.Error("request_id should be absent")
	}
}

func TestCtx_StoredLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf).With().Str("k", "v").Logger())
	Ctx(ctx).Info().Msg("stored")

	if got := decodeLine(t, strings.TrimSpace(buf.String()))["k"]; got != "v" {
		t.Errorf("k = %v", got)
	}
}

func TestGenerateRequestID_Unique(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	if a == b || len(a) != 36 {
		t.Errorf("ids %q %q should be distinct UUIDs", a, b)
	}
	if got := GenerateCorrelationID(); len(got) != 8 {
		t.Errorf("correlation id %q should be 8 chars", got)
	}
	if RequestIDFromContext(context.Background()) != "" {
		t.Error("empty context should have no request ID")
	}
}
