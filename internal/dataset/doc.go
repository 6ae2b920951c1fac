// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

// Package dataset produces and reads the files around model training: the
// labeled slate CSV consumed by the logistic scorer and Parquet exports of
// tracked events.
package dataset
