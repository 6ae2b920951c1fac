// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/fitlens/internal/logging"
)

// ErrClosed is returned by BadgerStore operations after Close.
var ErrClosed = errors.New("cache store is closed")

// DefaultGCRatio is the value-log discard ratio used by RunGC.
const DefaultGCRatio = 0.5

// BadgerStore is a persistent JSON key/value store with per-key TTL.
// Every key is namespaced under prefix so several stores can share one
// database directory.
type BadgerStore struct {
	db     *badger.DB
	prefix []byte

	mu     sync.RWMutex
	closed bool
}

// OpenBadger opens (or creates) a store at path. An empty path opens an
// in-memory database that is lost on Close.
func OpenBadger(path, prefix string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}

	logging.Info().
		Str("path", path).
		Str("prefix", prefix).
		Bool("in_memory", path == "").
		Msg("cache store opened")

	return &BadgerStore{db: db, prefix: []byte(prefix)}, nil
}

func (s *BadgerStore) key(k string) []byte {
	out := make([]byte, 0, len(s.prefix)+len(k))
	out = append(out, s.prefix...)
	return append(out, k...)
}

func (s *BadgerStore) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// GetJSON decodes the value stored under key into dst. It reports false
// when the key is missing or expired.
func (s *BadgerStore) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}

	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dst)
		})
	})
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	return found, nil
}

// SetJSON stores v under key. A ttl <= 0 stores the value without expiry.
func (s *BadgerStore) SetJSON(_ context.Context, key string, v any, ttl time.Duration) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(s.key(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete removes key. Missing keys are not an error.
func (s *BadgerStore) Delete(_ context.Context, key string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(s.key(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Clear removes every key under the store prefix.
func (s *BadgerStore) Clear(_ context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if len(s.prefix) == 0 {
		return s.db.DropAll()
	}
	return s.db.DropPrefix(s.prefix)
}

// Len counts live keys under the prefix.
func (s *BadgerStore) Len() int {
	if s.checkOpen() != nil {
		return 0
	}
	count := 0
	_ = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = s.prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count
}

// RunGC reclaims value-log space until badger reports nothing to rewrite.
func (s *BadgerStore) RunGC() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	for {
		err := s.db.RunValueLogGC(DefaultGCRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run value log GC: %w", err)
		}
	}
}

// Serve runs RunGC every interval until ctx is canceled. It matches the
// supervisor service signature.
func (s *BadgerStore) Serve(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := logging.WithComponent("cache")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunGC(); err != nil {
				if errors.Is(err, ErrClosed) {
					return err
				}
				log.Warn().Err(err).Msg("cache GC failed")
			}
		}
	}
}

// Close flushes and closes the database. Subsequent calls are no-ops.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
