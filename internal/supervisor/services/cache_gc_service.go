// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package services

import (
	"context"
	"time"
)

// GCRunner is a store with a periodic maintenance loop, such as
// cache.BadgerStore.
type GCRunner interface {
	Serve(ctx context.Context, interval time.Duration) error
}

// CacheGCService runs a GCRunner's loop under supervision.
type CacheGCService struct {
	store    GCRunner
	interval time.Duration
}

// NewCacheGCService creates the service. A non-positive interval defaults
// to 10 minutes.
func NewCacheGCService(store GCRunner, interval time.Duration) *CacheGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &CacheGCService{store: store, interval: interval}
}

// Serve implements suture.Service.
func (s *CacheGCService) Serve(ctx context.Context) error {
	return s.store.Serve(ctx, s.interval)
}

// String implements fmt.Stringer for suture's logs.
func (s *CacheGCService) String() string {
	return "cache-gc"
}
