// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package events

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/fitlens/internal/logging"
	"github.com/tomtom215/fitlens/internal/metrics"
)

// Tap subscribes to every event topic and counts what arrives. It confirms
// end to end that published events reach the bus and exposes the last
// delivery time for health reporting.
type Tap struct {
	subscriber message.Subscriber
	topics     []string
	logger     zerolog.Logger

	received     atomic.Int64
	lastReceived atomic.Int64
	handler      func(Event)
}

// NewTap creates a tap over the topics of prefix.
func NewTap(sub message.Subscriber, prefix string) *Tap {
	return &Tap{
		subscriber: sub,
		topics:     Topics(prefix),
		logger:     logging.WithComponent("event-tap"),
	}
}

// OnEvent registers fn to be called for every decoded event. It must be
// set before Serve.
func (t *Tap) OnEvent(fn func(Event)) {
	t.handler = fn
}

// Serve consumes until ctx is canceled. It implements suture.Service.
func (t *Tap) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, topic := range t.topics {
		msgs, err := t.subscriber.Subscribe(ctx, topic)
		if err != nil {
			cancel()
			wg.Wait()
			return fmt.Errorf("subscribe to %s: %w", topic, err)
		}
		wg.Add(1)
		go func(topic string, msgs <-chan *message.Message) {
			defer wg.Done()
			for msg := range msgs {
				t.handle(topic, msg)
			}
		}(topic, msgs)
	}

	<-ctx.Done()
	wg.Wait()
	return ctx.Err()
}

func (t *Tap) handle(topic string, msg *message.Message) {
	ev, err := UnmarshalEvent(msg.Payload)
	metrics.RecordEventConsume(msg.Metadata.Get("event"), err)
	if err != nil {
		t.logger.Warn().Err(err).Str("topic", topic).Str("message_id", msg.UUID).Msg("Dropping undecodable event")
		msg.Ack()
		return
	}

	t.received.Add(1)
	t.lastReceived.Store(time.Now().Unix())
	t.logger.Debug().
		Str("topic", topic).
		Str("event_id", ev.EventID).
		Str("correlation_id", middleware.MessageCorrelationID(msg)).
		Msg("Event received")

	if t.handler != nil {
		t.handler(ev)
	}
	msg.Ack()
}

// Received returns how many events were consumed.
func (t *Tap) Received() int64 {
	return t.received.Load()
}

// LastReceived returns when the last event arrived, zero if none has.
func (t *Tap) LastReceived() time.Time {
	ts := t.lastReceived.Load()
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// String implements fmt.Stringer for supervisor logs.
func (t *Tap) String() string {
	return "event-tap"
}
