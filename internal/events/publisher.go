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

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/fitlens/internal/config"
	"github.com/tomtom215/fitlens/internal/logging"
)

// Transports accepted by config.EventsConfig.Transport.
const (
	TransportGoChannel = "gochannel"
	TransportNATS      = "nats"
)

var (
	// ErrPublisherClosed is returned by Publish after Close.
	ErrPublisherClosed = errors.New("publisher is closed")

	// ErrUnknownTransport is returned for unsupported transports.
	ErrUnknownTransport = errors.New("unknown event transport")
)

// Publisher wraps a Watermill publisher for engagement events.
type Publisher struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	transport  string
	logger     watermill.LoggerAdapter

	mu     sync.RWMutex
	closed bool
}

// NewPublisher creates the publisher selected by cfg.Transport. The
// gochannel transport keeps events in-process; nats publishes on core NATS
// subjects with JetStream disabled.
func NewPublisher(cfg config.EventsConfig, logger watermill.LoggerAdapter) (*Publisher, error) {
	if logger == nil {
		logger = logging.NewWatermillAdapter(logging.WithComponent("events"))
	}

	switch cfg.Transport {
	case TransportGoChannel:
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger)
		return &Publisher{publisher: ch, subscriber: ch, transport: cfg.Transport, logger: logger}, nil

	case TransportNATS:
		pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
			URL:         cfg.URL,
			NatsOptions: natsOptions(logger, "publisher"),
			Marshaler:   &wmNats.NATSMarshaler{},
			JetStream:   wmNats.JetStreamConfig{Disabled: true},
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create watermill publisher: %w", err)
		}
		return &Publisher{publisher: pub, transport: cfg.Transport, logger: logger}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, cfg.Transport)
	}
}

// natsOptions returns connection options with reconnection handling.
func natsOptions(logger watermill.LoggerAdapter, role string) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name("fitlens-" + role),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, watermill.LogFields{"role": role})
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"role": role, "url": nc.ConnectedUrl()})
		}),
	}
}

// Transport returns the configured transport name.
func (p *Publisher) Transport() string {
	return p.transport
}

// Subscriber returns the in-process subscriber for the gochannel transport
// and nil otherwise.
func (p *Publisher) Subscriber() message.Subscriber {
	return p.subscriber
}

// Publish sends msg to topic.
func (p *Publisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	msg.SetContext(ctx)
	return p.publisher.Publish(topic, msg)
}

// PublishEvent serializes ev and publishes it to topic. The event ID is the
// message UUID and the correlation ID travels as message metadata.
func (p *Publisher) PublishEvent(ctx context.Context, topic string, ev Event) error {
	data, err := ev.Marshal()
	if err != nil {
		return err
	}

	msg := message.NewMessage(ev.EventID, data)
	msg.Metadata.Set("event", ev.Event)
	if ev.CorrelationID != "" {
		middleware.SetCorrelationID(ev.CorrelationID, msg)
	}
	return p.Publish(ctx, topic, msg)
}

// Close shuts down the publisher. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
