// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

// Package validation provides struct validation using go-playground/validator v10.
//
// The package keeps a thread-safe singleton validator (struct info is cached
// after first use) and translates field errors into the messages returned in
// the VALIDATION_ERROR API error. Field names are reported by their json tag,
// so a bad trait reads "skin_temperature must be one of: warm cool neutral".
//
// Usage:
//
//	if verr := validation.ValidateStruct(&traits); verr != nil {
//	    return verr
//	}
package validation
