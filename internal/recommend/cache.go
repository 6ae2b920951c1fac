// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/fitlens/internal/cache"
	"github.com/tomtom215/fitlens/internal/logging"
	"github.com/tomtom215/fitlens/internal/models"
)

// Cache stores recommendation responses keyed by request fingerprint.
// Implementations must be safe for concurrent use and must return copies.
type Cache interface {
	Get(ctx context.Context, key string) (*Response, bool)
	Set(ctx context.Context, key string, resp *Response, ttl time.Duration)
	Clear(ctx context.Context) error
	Len() int
}

// MemoryCache is an in-process LRU cache with per-entry TTL.
type MemoryCache struct {
	lru *cache.LRU[*Response]
}

// NewMemoryCache creates a memory cache holding at most maxEntries entries.
// The least recently used entry is evicted when it is full.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &MemoryCache{lru: cache.NewLRU[*Response](maxEntries)}
}

// Get returns a copy of the cached response if present and not expired.
func (c *MemoryCache) Get(_ context.Context, key string) (*Response, bool) {
	resp, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return copyResponse(resp), true
}

// Set stores a copy of resp under key.
func (c *MemoryCache) Set(_ context.Context, key string, resp *Response, ttl time.Duration) {
	c.lru.Set(key, copyResponse(resp), ttl)
}

// Clear removes all cached entries.
func (c *MemoryCache) Clear(context.Context) error {
	c.lru.Clear()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

// KVStore is a JSON key/value store with TTL, implemented by cache.BadgerStore.
type KVStore interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Clear(ctx context.Context) error
	Len() int
}

// PersistentCache stores responses in a KVStore so they survive restarts.
// Store errors degrade to cache misses.
type PersistentCache struct {
	store KVStore
}

// NewPersistentCache wraps store as a response cache.
func NewPersistentCache(store KVStore) *PersistentCache {
	return &PersistentCache{store: store}
}

// Get decodes the cached response under key.
func (c *PersistentCache) Get(ctx context.Context, key string) (*Response, bool) {
	var resp Response
	found, err := c.store.GetJSON(ctx, key, &resp)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache read failed")
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &resp, true
}

// Set stores resp under key for ttl.
func (c *PersistentCache) Set(ctx context.Context, key string, resp *Response, ttl time.Duration) {
	if err := c.store.SetJSON(ctx, key, resp, ttl); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Clear removes all cached responses.
func (c *PersistentCache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// Len returns the number of stored responses.
func (c *PersistentCache) Len() int {
	return c.store.Len()
}

// copyResponse creates a copy of a cached response.
func copyResponse(resp *Response) *Response {
	items := make([]models.ProductOut, len(resp.Items))
	copy(items, resp.Items)

	return &Response{
		Items:           items,
		TotalCandidates: resp.TotalCandidates,
		Metadata:        resp.Metadata,
	}
}
