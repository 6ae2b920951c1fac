// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package database

import (
	"context"
	"errors"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/fitlens/internal/config"
	"github.com/tomtom215/fitlens/internal/logging"
	"github.com/tomtom215/fitlens/internal/metrics"
	"github.com/tomtom215/fitlens/internal/models"
	"github.com/tomtom215/fitlens/internal/recommend"
)

// CatalogBreakerName labels the catalog breaker in metrics and logs.
const CatalogBreakerName = "catalog"

// ErrCatalogUnavailable wraps rejections from an open breaker.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// CatalogBreaker guards catalog reads with a circuit breaker so a failing
// store is not hammered on every recommendation request.
//
// The breaker uses wall-clock time for its interval and timeout. Tests
// should trip it with failures rather than by manipulating time.
type CatalogBreaker struct {
	next recommend.CatalogProvider
	cb   *gobreaker.CircuitBreaker[[]models.Product]
	name string
}

var _ recommend.CatalogProvider = (*CatalogBreaker)(nil)

// NewCatalogBreaker wraps next. The breaker opens once MinRequests have been
// seen in the current interval and the failure ratio reaches FailureRatio.
func NewCatalogBreaker(next recommend.CatalogProvider, cfg config.BreakerConfig) *CatalogBreaker {
	name := CatalogBreakerName
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]models.Product](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_ratio", ratio).
					Msg("[CIRCUIT BREAKER] Opening catalog circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &CatalogBreaker{next: next, cb: cb, name: name}
}

// ListProducts implements recommend.CatalogProvider.
func (b *CatalogBreaker) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := b.cb.Execute(func() ([]models.Product, error) {
		return b.next.ListProducts(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		logging.Ctx(ctx).Warn().Err(err).Msg("[CIRCUIT BREAKER] Catalog request rejected")
		return nil, errors.Join(ErrCatalogUnavailable, err)
	}
	return products, err
}

// State returns the current breaker state ("closed", "half-open", "open").
func (b *CatalogBreaker) State() string {
	return b.cb.State().String()
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
