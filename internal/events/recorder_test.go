// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/fitlens/internal/database"
	"github.com/tomtom215/fitlens/internal/logging"
	"github.com/tomtom215/fitlens/internal/models"
	"github.com/tomtom215/fitlens/internal/validation"
)

type insertCall struct {
	table, productID, sessionID string
	ts                          int64
}

type fakeStore struct {
	mu    sync.Mutex
	calls []insertCall
	err   error
}

func (s *fakeStore) InsertEvent(_ context.Context, table, productID, sessionID string, ts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, insertCall{table, productID, sessionID, ts})
	return nil
}

type publishCall struct {
	topic string
	ev    Event
}

type fakePublisher struct {
	mu    sync.Mutex
	calls []publishCall
	err   error
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic string, ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, publishCall{topic, ev})
	return p.err
}

func fixedNow() time.Time { return time.Unix(1700000000, 0) }

func TestTableFor(t *testing.T) {
	tests := []struct {
		event string
		want  string
	}{
		{models.EventClick, database.TableClicks},
		{models.EventLike, database.TableLikes},
		{models.EventHide, database.TableLikes},
	}
	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			if got := TableFor(tt.event); got != tt.want {
				t.Errorf("TableFor(%q) = %q, want %q", tt.event, got, tt.want)
			}
		})
	}
}

func TestTopics(t *testing.T) {
	got := Topics("fitlens.events")
	want := []string{"fitlens.events.click", "fitlens.events.like", "fitlens.events.hide"}
	if len(got) != len(want) {
		t.Fatalf("Topics() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Topics()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRecorder_Record(t *testing.T) {
	tests := []struct {
		event     string
		wantTable string
	}{
		{models.EventClick, database.TableClicks},
		{models.EventLike, database.TableLikes},
		{models.EventHide, database.TableLikes},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			store := &fakeStore{}
			pub := &fakePublisher{}
			r := NewRecorder(store, pub, "fitlens.events")
			r.now = fixedNow

			ctx := logging.ContextWithCorrelationID(context.Background(), "corr-1")
			ev, err := r.Record(ctx, models.TrackEvent{Event: tt.event, ProductID: "p1", SessionID: "s1"})
			if err != nil {
				t.Fatalf("Record() error = %v", err)
			}

			if len(store.calls) != 1 {
				t.Fatalf("store calls = %d, want 1", len(store.calls))
			}
			want := insertCall{tt.wantTable, "p1", "s1", 1700000000}
			if store.calls[0] != want {
				t.Errorf("insert = %+v, want %+v", store.calls[0], want)
			}

			if len(pub.calls) != 1 {
				t.Fatalf("publish calls = %d, want 1", len(pub.calls))
			}
			if pub.calls[0].topic != "fitlens.events."+tt.event {
				t.Errorf("topic = %q", pub.calls[0].topic)
			}
			if pub.calls[0].ev.CorrelationID != "corr-1" {
				t.Errorf("correlation id = %q", pub.calls[0].ev.CorrelationID)
			}
			if ev.EventID == "" || ev.SchemaVersion != SchemaVersion {
				t.Errorf("event = %+v", ev)
			}
		})
	}
}

func TestRecorder_ValidationError(t *testing.T) {
	tests := []struct {
		name string
		ev   models.TrackEvent
	}{
		{"unknown event", models.TrackEvent{Event: "share", ProductID: "p", SessionID: "s"}},
		{"missing product", models.TrackEvent{Event: "click", SessionID: "s"}},
		{"missing session", models.TrackEvent{Event: "click", ProductID: "p"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			r := NewRecorder(store, nil, "fitlens.events")

			_, err := r.Record(context.Background(), tt.ev)
			var verr *validation.RequestValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Record() error = %v, want validation error", err)
			}
			if len(store.calls) != 0 {
				t.Error("invalid events must not be stored")
			}
		})
	}
}

func TestRecorder_StoreErrorSkipsPublish(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	pub := &fakePublisher{}
	r := NewRecorder(store, pub, "fitlens.events")

	_, err := r.Record(context.Background(), models.TrackEvent{Event: "click", ProductID: "p", SessionID: "s"})
	if !errors.Is(err, ErrStore) {
		t.Fatalf("Record() error = %v, want ErrStore", err)
	}
	if len(pub.calls) != 0 {
		t.Error("failed inserts must not be published")
	}
}

func TestRecorder_PublishFailureIsBestEffort(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{err: errors.New("broker down")}
	r := NewRecorder(store, pub, "fitlens.events")

	if _, err := r.Record(context.Background(), models.TrackEvent{Event: "like", ProductID: "p", SessionID: "s"}); err != nil {
		t.Fatalf("Record() error = %v, want nil", err)
	}
	if len(store.calls) != 1 {
		t.Error("event should still be stored")
	}
}
