// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// mockService implements suture.Service. It fails the first failures
// calls and then runs until canceled.
type mockService struct {
	name     string
	failures int32
	starts   atomic.Int32
	running  atomic.Bool
}

func (m *mockService) Serve(ctx context.Context) error {
	n := m.starts.Add(1)
	if n <= m.failures {
		return errors.New("simulated failure")
	}
	m.running.Store(true)
	defer m.running.Store(false)
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string { return m.name }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTreeConfigDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   TreeConfig
		want TreeConfig
	}{
		{"zero value", TreeConfig{}, DefaultTreeConfig()},
		{
			name: "explicit values kept",
			in:   TreeConfig{FailureThreshold: 2, FailureDecay: 1, FailureBackoff: time.Second, ShutdownTimeout: 3 * time.Second},
			want: TreeConfig{FailureThreshold: 2, FailureDecay: 1, FailureBackoff: time.Second, ShutdownTimeout: 3 * time.Second},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := NewTree(testLogger(), tt.in)
			if tree.config != tt.want {
				t.Errorf("config = %+v, want %+v", tree.config, tt.want)
			}
		})
	}
}

func TestTree_RunsServicesInEveryLayer(t *testing.T) {
	tree := NewTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})

	data := &mockService{name: "data"}
	messaging := &mockService{name: "messaging"}
	api := &mockService{name: "api"}
	tree.AddDataService(data)
	tree.AddMessagingService(messaging)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitFor(t, func() bool { return data.running.Load() && messaging.running.Load() && api.running.Load() })

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}
	if api.running.Load() {
		t.Error("api service still running after shutdown")
	}
}

func TestTree_RestartsFailedService(t *testing.T) {
	tree := NewTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	flaky := &mockService{name: "flaky", failures: 2}
	if _, err := tree.Add(LayerMessaging, flaky); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)

	waitFor(t, flaky.running.Load)
	if got := flaky.starts.Load(); got != 3 {
		t.Errorf("starts = %d, want 3", got)
	}
}

func TestTree_AddAndRemove(t *testing.T) {
	tree := NewTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})

	if _, err := tree.Add(Layer("storage"), &mockService{name: "x"}); err == nil {
		t.Error("Add() to unknown layer should fail")
	}

	svc := &mockService{name: "removable"}
	token, err := tree.Add(LayerAPI, svc)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)
	waitFor(t, svc.running.Load)

	if err := tree.Remove(LayerAPI, token); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	waitFor(t, func() bool { return !svc.running.Load() })

	if err := tree.Remove(Layer("storage"), token); err == nil {
		t.Error("Remove() from unknown layer should fail")
	}
}
