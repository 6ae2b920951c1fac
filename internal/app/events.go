// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package app

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/fitlens/internal/config"
	"github.com/tomtom215/fitlens/internal/events"
	"github.com/tomtom215/fitlens/internal/logging"
)

// eventComponents holds the optional event bus pieces.
type eventComponents struct {
	server    *events.EmbeddedServer
	publisher *events.Publisher
	tap       *events.Tap

	// subscriber is closed separately only for remote transports; the
	// gochannel subscriber is the publisher itself.
	subscriber message.Subscriber
}

// initEvents starts the event bus described by cfg. It returns nil when
// events are disabled. With the nats transport and EmbeddedServer set, an
// in-process NATS server is started first and cfg.URL is pointed at it.
func initEvents(cfg config.EventsConfig) (*eventComponents, error) {
	if !cfg.Enabled {
		logging.Info().Msg("Event publishing disabled")
		return nil, nil
	}

	comps := &eventComponents{}
	wmLogger := logging.NewWatermillAdapter(logging.WithComponent("events"))

	if cfg.Transport == events.TransportNATS && cfg.EmbeddedServer {
		srv, err := events.NewEmbeddedServer(events.ServerConfig{
			Host: cfg.EmbeddedHost,
			Port: cfg.EmbeddedPort,
		})
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		comps.server = srv
		cfg.URL = srv.ClientURL()
		logging.Info().Str("url", cfg.URL).Msg("Embedded NATS server started")
	}

	pub, err := events.NewPublisher(cfg, wmLogger)
	if err != nil {
		comps.Close()
		return nil, fmt.Errorf("create event publisher: %w", err)
	}
	comps.publisher = pub

	sub, err := events.NewSubscriber(cfg, pub, wmLogger)
	if err != nil {
		comps.Close()
		return nil, fmt.Errorf("create event subscriber: %w", err)
	}
	if cfg.Transport != events.TransportGoChannel {
		comps.subscriber = sub
	}
	comps.tap = events.NewTap(sub, cfg.TopicPrefix)

	logging.Info().
		Str("transport", pub.Transport()).
		Str("topic_prefix", cfg.TopicPrefix).
		Msg("Event publishing enabled")
	return comps, nil
}

// eventPublisher returns the publisher as a recorder dependency. A nil
// *events.Publisher must not be wrapped in a non-nil interface.
func (c *eventComponents) eventPublisher() events.EventPublisher {
	if c == nil || c.publisher == nil {
		return nil
	}
	return c.publisher
}

// Close releases the publisher and stops the embedded server.
func (c *eventComponents) Close() {
	if c == nil {
		return
	}
	if c.subscriber != nil {
		if err := c.subscriber.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing event subscriber")
		}
	}
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing event publisher")
		}
	}
	if c.server != nil {
		c.server.Shutdown()
	}
}
