// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

/*
Package cache provides the storage behind the recommendation response cache.

LRU is an in-process, generic least-recently-used cache with per-entry TTL.
It backs recommend.MemoryCache, the default (CACHE_BACKEND=memory).

BadgerStore persists JSON values in BadgerDB with native TTLs so cached
rankings survive restarts (CACHE_BACKEND=badger, CACHE_PATH=/data/cache).
Its Serve method runs value-log garbage collection and is supervised like
any other long-running service.

	store, err := cache.OpenBadger("/data/cache", "rec:")
	if err != nil {
	    return err
	}
	defer store.Close()
	engine.SetCache(recommend.NewPersistentCache(store))
*/
package cache
