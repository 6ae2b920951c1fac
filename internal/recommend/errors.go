// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package recommend

import "errors"

var (
	// ErrTrainingInProgress is returned by Train when another run holds the lock.
	ErrTrainingInProgress = errors.New("training already in progress")

	// ErrNoScorer is returned when the configured scorer is not registered.
	ErrNoScorer = errors.New("scorer not registered")

	// ErrModelNotTrained is returned by scorers that need a trained model
	// when none is available in memory or in the model store.
	ErrModelNotTrained = errors.New("model not trained")

	// ErrInvalidRequest wraps request validation failures.
	ErrInvalidRequest = errors.New("invalid recommendation request")

	// ErrInsufficientData is returned when training data is below the configured minimum.
	ErrInsufficientData = errors.New("insufficient training data")

	// ErrNoCatalog is returned when the engine has no catalog provider.
	ErrNoCatalog = errors.New("catalog provider not set")

	// ErrNoTrainingData is returned when the engine has no training data provider.
	ErrNoTrainingData = errors.New("training data provider not set")
)
