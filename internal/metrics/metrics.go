// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package metrics

import (
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/fitlens/internal/recommend"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitlens_db_query_duration_seconds",
			Help:    "Duration of catalog and event queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitlens_db_query_errors_total",
			Help: "Total number of failed database queries",
		},
		[]string{"operation", "table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitlens_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitlens_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitlens_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitlens_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Photo analysis
	ImageAnalyses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitlens_image_analyses_total",
			Help: "Photos analyzed, by outcome",
		},
		[]string{"result"}, // "ok", "decode_error", "too_large"
	)

	ImageAnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fitlens_image_analysis_duration_seconds",
			Help:    "Time spent decoding a photo and inferring traits",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitlens_recommendations_total",
			Help: "Recommendation requests served",
		},
		[]string{"scorer", "cache_hit", "fallback"},
	)

	RecommendationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitlens_recommendation_latency_seconds",
			Help:    "Time to rank candidates for one request",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"scorer"},
	)

	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitlens_training_runs_total",
			Help: "Model training runs, by outcome",
		},
		[]string{"scorer", "result"},
	)

	TrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitlens_training_duration_seconds",
			Help:    "Model training wall time",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"scorer"},
	)

	ModelVersion = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fitlens_model_version",
			Help: "Version of the most recently trained model",
		},
		[]string{"scorer"},
	)

	ModelValidationAUC = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fitlens_model_validation_auc",
			Help: "Validation ROC AUC of the most recently trained model",
		},
		[]string{"scorer"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitlens_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitlens_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	// Interaction events
	EventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitlens_events_recorded_total",
			Help: "Click and like events accepted by the API",
		},
		[]string{"event_type"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitlens_events_published_total",
			Help: "Events published to the message bus",
		},
		[]string{"event_type", "result"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitlens_events_consumed_total",
			Help: "Events consumed from the message bus and persisted",
		},
		[]string{"event_type", "result"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fitlens_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitlens_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Application Info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fitlens_app_info",
			Help: "Build information, always 1",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitlens_app_uptime_seconds",
			Help: "Seconds since the process started",
		},
	)
)

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordImageAnalysis records one photo analysis.
func RecordImageAnalysis(result string, duration time.Duration) {
	ImageAnalyses.WithLabelValues(result).Inc()
	if result == "ok" {
		ImageAnalysisDuration.Observe(duration.Seconds())
	}
}

// RecordEventPublish records the outcome of publishing an interaction event.
func RecordEventPublish(eventType string, err error) {
	EventsPublished.WithLabelValues(eventType, resultLabel(err)).Inc()
}

// RecordEventConsume records the outcome of persisting a consumed event.
func RecordEventConsume(eventType string, err error) {
	EventsConsumed.WithLabelValues(eventType, resultLabel(err)).Inc()
}

// SetAppInfo publishes build information.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecommendObserver exports engine events as Prometheus metrics.
type RecommendObserver struct{}

var _ recommend.Observer = RecommendObserver{}

// ObserveRecommendation implements recommend.Observer.
func (RecommendObserver) ObserveRecommendation(scorer string, latency time.Duration, cacheHit, fallback bool) {
	RecommendationsTotal.WithLabelValues(scorer, strconv.FormatBool(cacheHit), strconv.FormatBool(fallback)).Inc()
	RecommendationLatency.WithLabelValues(scorer).Observe(latency.Seconds())
	if cacheHit {
		CacheHits.WithLabelValues("recommendations").Inc()
	} else {
		CacheMisses.WithLabelValues("recommendations").Inc()
	}
}

// ObserveTraining implements recommend.Observer.
func (RecommendObserver) ObserveTraining(scorer string, duration time.Duration, result *recommend.TrainingResult, err error) {
	TrainingDuration.WithLabelValues(scorer).Observe(duration.Seconds())
	TrainingRuns.WithLabelValues(scorer, resultLabel(err)).Inc()
	if err != nil || result == nil {
		return
	}
	ModelVersion.WithLabelValues(scorer).Set(float64(result.Version))
	ModelValidationAUC.WithLabelValues(scorer).Set(result.ValidationAUC)
}
