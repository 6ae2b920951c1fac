// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/fitlens/internal/config"
	"github.com/tomtom215/fitlens/internal/models"
)

func testEvent() Event {
	ev := NewEvent(models.TrackEvent{Event: "click", ProductID: "p1", SessionID: "s1"}, fixedNow())
	ev.CorrelationID = "corr-9"
	return ev
}

// publishUntilReceived republishes ev until a message arrives on msgs.
// Subscriptions on both transports become active asynchronously.
func publishUntilReceived(t *testing.T, pub *Publisher, topic string, ev Event, msgs <-chan *message.Message) *message.Message {
	t.Helper()
	deadline := time.After(10 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := pub.PublishEvent(context.Background(), topic, ev); err != nil {
			t.Fatalf("PublishEvent() error = %v", err)
		}
		select {
		case msg := <-msgs:
			msg.Ack()
			return msg
		case <-ticker.C:
		case <-deadline:
			t.Fatal("timed out waiting for message")
			return nil
		}
	}
}

func TestNewPublisher_UnknownTransport(t *testing.T) {
	_, err := NewPublisher(config.EventsConfig{Transport: "kafka"}, nil)
	if !errors.Is(err, ErrUnknownTransport) {
		t.Errorf("NewPublisher() error = %v, want ErrUnknownTransport", err)
	}
	if _, err := NewSubscriber(config.EventsConfig{Transport: "kafka"}, nil, nil); !errors.Is(err, ErrUnknownTransport) {
		t.Errorf("NewSubscriber() error = %v, want ErrUnknownTransport", err)
	}
}

func TestPublisher_GoChannel(t *testing.T) {
	cfg := config.EventsConfig{Transport: TransportGoChannel}
	pub, err := NewPublisher(cfg, nil)
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	t.Cleanup(func() { _ = pub.Close() })

	sub, err := NewSubscriber(cfg, pub, nil)
	if err != nil {
		t.Fatalf("NewSubscriber() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := sub.Subscribe(ctx, "fitlens.events.click")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	ev := testEvent()
	msg := publishUntilReceived(t, pub, "fitlens.events.click", ev, msgs)

	got, err := UnmarshalEvent(msg.Payload)
	if err != nil {
		t.Fatalf("UnmarshalEvent() error = %v", err)
	}
	if got != ev {
		t.Errorf("payload = %+v, want %+v", got, ev)
	}
	if msg.UUID != ev.EventID {
		t.Errorf("message UUID = %q, want event id %q", msg.UUID, ev.EventID)
	}
	if id := middleware.MessageCorrelationID(msg); id != "corr-9" {
		t.Errorf("correlation id = %q, want corr-9", id)
	}
}

func TestPublisher_Close(t *testing.T) {
	pub, err := NewPublisher(config.EventsConfig{Transport: TransportGoChannel}, nil)
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := pub.PublishEvent(context.Background(), "t", testEvent()); !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("PublishEvent() after close = %v, want ErrPublisherClosed", err)
	}
}

func TestEmbeddedServer_NATSRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a NATS server")
	}

	srv, err := NewEmbeddedServer(ServerConfig{Host: "127.0.0.1", Port: -1})
	if err != nil {
		t.Fatalf("NewEmbeddedServer() error = %v", err)
	}
	t.Cleanup(srv.Shutdown)

	if !srv.IsRunning() {
		t.Fatal("server should be running")
	}

	cfg := config.EventsConfig{Transport: TransportNATS, URL: srv.ClientURL()}
	pub, err := NewPublisher(cfg, nil)
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	t.Cleanup(func() { _ = pub.Close() })

	sub, err := NewSubscriber(cfg, pub, nil)
	if err != nil {
		t.Fatalf("NewSubscriber() error = %v", err)
	}
	t.Cleanup(func() { _ = sub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := sub.Subscribe(ctx, "fitlens.events.like")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	ev := testEvent()
	ev.Event = "like"
	msg := publishUntilReceived(t, pub, "fitlens.events.like", ev, msgs)

	got, err := UnmarshalEvent(msg.Payload)
	if err != nil {
		t.Fatalf("UnmarshalEvent() error = %v", err)
	}
	if got.Event != "like" || got.ProductID != "p1" {
		t.Errorf("payload = %+v", got)
	}
}

func TestEmbeddedServer_ServeStopsOnCancel(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a NATS server")
	}

	srv, err := NewEmbeddedServer(ServerConfig{Host: "127.0.0.1", Port: -1})
	if err != nil {
		t.Fatalf("NewEmbeddedServer() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if srv.IsRunning() {
		t.Error("server should be stopped after Serve returns")
	}
}
