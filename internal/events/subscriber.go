// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/fitlens/internal/config"
	"github.com/tomtom215/fitlens/internal/logging"
)

// NewSubscriber returns a subscriber for the configured transport. For
// gochannel it reuses the publisher's channel, since in-process messages
// are only visible to subscribers of the same instance.
func NewSubscriber(cfg config.EventsConfig, pub *Publisher, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	if logger == nil {
		logger = logging.NewWatermillAdapter(logging.WithComponent("events"))
	}

	switch cfg.Transport {
	case TransportGoChannel:
		if pub == nil || pub.Subscriber() == nil {
			return nil, fmt.Errorf("gochannel subscriber requires a gochannel publisher")
		}
		return pub.Subscriber(), nil

	case TransportNATS:
		sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
			URL:              cfg.URL,
			SubscribersCount: 1,
			AckWaitTimeout:   30 * time.Second,
			CloseTimeout:     10 * time.Second,
			NatsOptions:      natsOptions(logger, "subscriber"),
			Unmarshaler:      &wmNats.NATSMarshaler{},
			JetStream:        wmNats.JetStreamConfig{Disabled: true},
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create watermill subscriber: %w", err)
		}
		return sub, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, cfg.Transport)
	}
}
