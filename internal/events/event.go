// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/fitlens/internal/database"
	"github.com/tomtom215/fitlens/internal/models"
)

// SchemaVersion is the current event payload version.
const SchemaVersion = 1

// Event is the payload published for every recorded engagement event.
type Event struct {
	SchemaVersion int    `json:"schema_version"`
	EventID       string `json:"event_id"`
	Event         string `json:"event"`
	Table         string `json:"table"`
	ProductID     string `json:"product_id"`
	SessionID     string `json:"session_id"`
	Timestamp     int64  `json:"ts"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// NewEvent builds the payload for a tracked event stored at ts.
func NewEvent(ev models.TrackEvent, ts time.Time) Event {
	return Event{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.NewString(),
		Event:         ev.Event,
		Table:         TableFor(ev.Event),
		ProductID:     ev.ProductID,
		SessionID:     ev.SessionID,
		Timestamp:     ts.Unix(),
	}
}

// TableFor maps an event kind to its storage table. Hide events share the
// likes table; anything not a click lands there too.
func TableFor(event string) string {
	if event == models.EventClick {
		return database.TableClicks
	}
	return database.TableLikes
}

// Topic returns the topic an event kind is published on.
func Topic(prefix, event string) string {
	return prefix + "." + event
}

// Topics returns the topics of every event kind.
func Topics(prefix string) []string {
	return []string{
		Topic(prefix, models.EventClick),
		Topic(prefix, models.EventLike),
		Topic(prefix, models.EventHide),
	}
}

// Marshal serializes the event.
func (e Event) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// UnmarshalEvent parses a published payload.
func UnmarshalEvent(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return e, fmt.Errorf("unmarshal event: %w", err)
	}
	return e, nil
}
