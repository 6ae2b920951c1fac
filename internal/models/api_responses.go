// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package models

// APIError is the body returned by every failing endpoint.
//
// Example:
//
//	{"detail": "Unsupported image type", "code": "UNSUPPORTED_IMAGE"}
type APIError struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`

	// Fields lists per-field validation failures when Code is VALIDATION_ERROR.
	Fields map[string]string `json:"fields,omitempty"`
}

// OKResponse is the body of /health and /track.
type OKResponse struct {
	OK bool `json:"ok"`
}
