// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/fitlens/internal/logging"
	"github.com/tomtom215/fitlens/internal/metrics"
	"github.com/tomtom215/fitlens/internal/models"
	"github.com/tomtom215/fitlens/internal/validation"
)

// ErrStore wraps failures to persist an event.
var ErrStore = errors.New("event store failure")

// Store persists engagement rows. Implemented by database.DB.
type Store interface {
	InsertEvent(ctx context.Context, table, productID, sessionID string, ts int64) error
}

// EventPublisher publishes recorded events. Implemented by Publisher.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, ev Event) error
}

// Recorder validates, stores and publishes engagement events.
type Recorder struct {
	store     Store
	publisher EventPublisher
	prefix    string
	now       func() time.Time
}

// NewRecorder creates a recorder. publisher may be nil to disable
// publishing.
func NewRecorder(store Store, publisher EventPublisher, topicPrefix string) *Recorder {
	return &Recorder{
		store:     store,
		publisher: publisher,
		prefix:    topicPrefix,
		now:       time.Now,
	}
}

// Record stores ev and then publishes it best-effort. Validation failures
// are returned as *validation.RequestValidationError; store failures wrap
// ErrStore. Publish failures are logged and counted only.
func (r *Recorder) Record(ctx context.Context, ev models.TrackEvent) (Event, error) {
	if verr := validation.ValidateStruct(&ev); verr != nil {
		return Event{}, verr
	}

	out := NewEvent(ev, r.now())
	out.CorrelationID = logging.CorrelationIDFromContext(ctx)

	if err := r.store.InsertEvent(ctx, out.Table, out.ProductID, out.SessionID, out.Timestamp); err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrStore, err)
	}
	metrics.EventsRecorded.WithLabelValues(out.Event).Inc()

	r.publish(ctx, out)
	return out, nil
}

func (r *Recorder) publish(ctx context.Context, ev Event) {
	if r.publisher == nil {
		return
	}
	topic := Topic(r.prefix, ev.Event)
	err := r.publisher.PublishEvent(ctx, topic, ev)
	metrics.RecordEventPublish(ev.Event, err)
	if err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("topic", topic).
			Str("event_id", ev.EventID).
			Msg("Failed to publish tracked event")
	}
}
