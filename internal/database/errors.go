// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/fitlens/internal/logging"
)

var (
	// ErrUnknownDriver is returned by New for an unsupported driver.
	ErrUnknownDriver = errors.New("unknown database driver")

	// ErrUnknownTable is returned for event tables other than clicks and likes.
	ErrUnknownTable = errors.New("unknown event table")

	// ErrInvalidProduct is returned when a product cannot be stored.
	ErrInvalidProduct = errors.New("invalid product")
)

// closeWithLog closes a resource and logs any error.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use it in error paths where Close errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
