// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package app

import (
	"context"
	"fmt"

	"github.com/tomtom215/fitlens/internal/cache"
	"github.com/tomtom215/fitlens/internal/config"
	"github.com/tomtom215/fitlens/internal/database"
	"github.com/tomtom215/fitlens/internal/logging"
	"github.com/tomtom215/fitlens/internal/recommend"
)

// Cache backends accepted by config.CacheConfig.Backend.
const (
	CacheMemory = "memory"
	CacheBadger = "badger"
)

const badgerCachePrefix = "recommend:"

// OpenDatabase opens the catalog and events store and loads the seed
// catalog when one is configured. A seed failure closes the store.
func OpenDatabase(ctx context.Context, cfg *config.DatabaseConfig) (*database.DB, error) {
	db, err := database.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.SeedFile == "" {
		return db, nil
	}

	n, err := db.SeedFile(ctx, cfg.SeedFile)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing database")
		}
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	logging.Info().Int("products", n).Str("file", cfg.SeedFile).Msg("Catalog seeded")
	return db, nil
}

// responseCache is the engine cache plus the Badger store behind it, if any.
type responseCache struct {
	cache  recommend.Cache
	badger *cache.BadgerStore
}

// newResponseCache builds the cache selected by cfg.Backend.
func newResponseCache(cfg config.CacheConfig, engineCfg recommend.CacheConfig) (*responseCache, error) {
	switch cfg.Backend {
	case "", CacheMemory:
		return &responseCache{cache: recommend.NewMemoryCache(engineCfg.MaxEntries)}, nil

	case CacheBadger:
		store, err := cache.OpenBadger(cfg.Path, badgerCachePrefix)
		if err != nil {
			return nil, fmt.Errorf("open badger cache: %w", err)
		}
		logging.Info().
			Str("path", cfg.Path).
			Bool("in_memory", cfg.Path == "").
			Msg("Badger response cache opened")
		return &responseCache{cache: recommend.NewPersistentCache(store), badger: store}, nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func (c *responseCache) Close() error {
	if c == nil || c.badger == nil {
		return nil
	}
	return c.badger.Close()
}
