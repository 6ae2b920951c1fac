// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

// Package storage persists trained scorer models across restarts.
//
// Each version of a model is one file:
//
//	filename: {name}_v{version}.gob.gz
//
//	structure:
//	  - Metadata (ModelMetadata)
//	  - CompressedData (gzip-compressed gob-encoded model state)
//
// The SHA-256 of the uncompressed payload is stored in the metadata and
// verified on every Load. Saves go through a temporary file and a rename.
//
// # Usage
//
//	store, err := storage.NewStore("./data/models")
//	if err != nil {
//	    return err
//	}
//
//	err = store.Save(ctx, "reco_lr", 3, state, storage.ModelMetadata{RowCount: n})
//
//	var state storage.LogisticModelState
//	meta, err := store.Load(ctx, "reco_lr", 0, &state) // 0 = latest
//	if errors.Is(err, storage.ErrNotFound) {
//	    // nothing trained yet
//	}
//
//	removed, err := store.Prune(ctx, "reco_lr", 3)
package storage
