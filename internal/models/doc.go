// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

/*
Package models defines the data structures shared across FitLens.

It is the single source of truth for the shapes that cross package
boundaries: user traits inferred from a photo, catalog products joined with
their price rows, the recommendation response returned to clients and the
engagement events recorded by the tracker.

Key Components:

  - Traits: inferred body and coloring attributes (validated with oneof tags)
  - Style: the requested outfit category (casual or traditional)
  - Product: a catalog row joined with its price/stock row
  - ProductOut / RecommendResponse: the public recommendation payload
  - TrackEvent: a click, like or hide reported by a client
  - APIError: the error body returned by every endpoint

Thread Safety:

Model values are plain data and carry no synchronization. Callers that share
a value between goroutines must copy it or coordinate access themselves.
*/
package models
