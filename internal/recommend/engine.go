// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fitlens/internal/models"
	"github.com/tomtom215/fitlens/internal/validation"
)

// Engine ranks catalog products for a user profile with the active scorer.
// It is safe for concurrent use.
type Engine struct {
	config   *Config
	configMu sync.RWMutex
	logger   zerolog.Logger

	// Registered scorers and rerankers
	algorithms map[string]Algorithm
	rerankers  []Reranker
	algMu      sync.RWMutex

	// Training state. trainMu serializes runs; statusMu guards trainStatus
	// so status reads never wait for a run to finish.
	trainMu      sync.Mutex
	statusMu     sync.RWMutex
	trainStatus  TrainingStatus
	modelVersion atomic.Int32

	// Metrics
	requestCount   atomic.Int64
	cacheHits      atomic.Int64
	cacheMisses    atomic.Int64
	errorCount     atomic.Int64
	fallbackCount  atomic.Int64
	trainingCount  atomic.Int64
	scorerRequests map[string]int64
	scorerMu       sync.Mutex

	cache        Cache
	catalog      CatalogProvider
	trainingData TrainingDataProvider
	observer     Observer

	// Random source for request IDs (protected by rngMu for concurrent access)
	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewEngine creates a new recommendation engine with an in-memory cache.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config:         cfg,
		logger:         logger.With().Str("component", "recommend").Logger(),
		algorithms:     make(map[string]Algorithm),
		rerankers:      make([]Reranker, 0),
		scorerRequests: make(map[string]int64),
		cache:          NewMemoryCache(cfg.Cache.MaxEntries),
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // request IDs only
	}, nil
}

// SetCatalog sets the provider of scoring candidates.
func (e *Engine) SetCatalog(cp CatalogProvider) {
	e.catalog = cp
}

// SetTrainingDataProvider sets the provider of labeled training rows.
func (e *Engine) SetTrainingDataProvider(tp TrainingDataProvider) {
	e.trainingData = tp
}

// SetCache replaces the response cache.
func (e *Engine) SetCache(c Cache) {
	if c != nil {
		e.cache = c
	}
}

// SetObserver sets the metrics observer.
func (e *Engine) SetObserver(o Observer) {
	e.observer = o
}

// RegisterAlgorithm adds a scorer. A scorer with the same name is replaced.
func (e *Engine) RegisterAlgorithm(alg Algorithm) {
	e.algMu.Lock()
	defer e.algMu.Unlock()

	if c, ok := alg.(Configurable); ok {
		c.Configure(e.currentConfig())
	}
	e.algorithms[alg.Name()] = alg
	e.logger.Info().
		Str("algorithm", alg.Name()).
		Msg("registered algorithm")
}

// RegisterReranker adds a reranker to the post-processing pipeline.
// Rerankers only run while diversity.enabled is set.
func (e *Engine) RegisterReranker(rr Reranker) {
	e.algMu.Lock()
	defer e.algMu.Unlock()

	if c, ok := rr.(Configurable); ok {
		c.Configure(e.currentConfig())
	}
	e.rerankers = append(e.rerankers, rr)
	e.logger.Info().
		Str("reranker", rr.Name()).
		Msg("registered reranker")
}

// Algorithms returns the names of the registered scorers, sorted.
func (e *Engine) Algorithms() []string {
	e.algMu.RLock()
	defer e.algMu.RUnlock()

	names := make([]string, 0, len(e.algorithms))
	for name := range e.algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Recommend ranks the catalog for the request's profile and returns the top K.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)
	cfg := e.currentConfig()

	req, err := e.prepareRequest(req, cfg)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}
	logger := e.createRequestLogger(req, cfg)
	logger.Debug().Msg("processing recommendation request")

	active, err := e.activeAlgorithm(cfg)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	cacheKey := e.cacheKey(req, active, cfg)
	if resp := e.tryGetCachedResponse(ctx, cfg, cacheKey, start, logger); resp != nil {
		e.observe(resp.Metadata.Scorer, start, true, false)
		return resp, nil
	}

	candidates, err := e.getCandidates(ctx, cfg)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("get candidates: %w", err)
	}

	if len(candidates) == 0 {
		logger.Debug().Msg("no candidates available")
		return e.emptyResponse(req, active.Name(), start), nil
	}

	scored, used, fallback, err := e.scoreCandidates(ctx, cfg, req, active, candidates, logger)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("score candidates: %w", err)
	}
	e.countScorer(used.Name())

	ranked := e.rankItems(ctx, cfg, scored, req.K)

	resp := e.buildResponse(req, ranked, used, fallback, len(candidates), start)
	if !fallback {
		e.cacheResponse(ctx, cfg, cacheKey, resp)
	}
	e.observe(used.Name(), start, false, fallback)

	logger.Debug().
		Int("candidates", len(candidates)).
		Int("returned", len(resp.Items)).
		Str("scorer", used.Name()).
		Bool("fallback", fallback).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// prepareRequest applies defaults and validates the profile.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request, cfg *Config) (Request, error) {
	if !req.Style.Valid() {
		return req, fmt.Errorf("%w: style must be one of: casual traditional", ErrInvalidRequest)
	}

	req.Traits = req.Traits.WithDefaults()
	if verr := validation.ValidateStruct(&req.Traits); verr != nil {
		return req, fmt.Errorf("%w: %s", ErrInvalidRequest, verr.Error())
	}

	if req.RequestID == "" {
		req.RequestID = e.generateRequestID()
	}

	if req.K <= 0 {
		req.K = cfg.Limits.DefaultK
	}
	if req.K > cfg.Limits.MaxK {
		req.K = cfg.Limits.MaxK
	}

	return req, nil
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request, cfg *Config) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Str("style", string(req.Style)).
		Str("scorer", cfg.Scorer).
		Int("k", req.K).
		Logger()
}

// activeAlgorithm returns the configured scorer, or the rule scorer when the
// configured one is missing and fallback is enabled.
func (e *Engine) activeAlgorithm(cfg *Config) (Algorithm, error) {
	if alg, ok := e.getAlgorithm(cfg.Scorer); ok {
		return alg, nil
	}
	if cfg.FallbackToRules {
		if alg, ok := e.getAlgorithm(ScorerRules); ok {
			return alg, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoScorer, cfg.Scorer)
}

// tryGetCachedResponse attempts to retrieve a cached response.
func (e *Engine) tryGetCachedResponse(ctx context.Context, cfg *Config, key string, start time.Time, logger zerolog.Logger) *Response {
	if !cfg.Cache.Enabled {
		return nil
	}

	resp, ok := e.cache.Get(ctx, key)
	if !ok {
		e.cacheMisses.Add(1)
		return nil
	}

	e.cacheHits.Add(1)
	resp.Metadata.CacheHit = true
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	logger.Debug().Msg("cache hit")
	return resp
}

// getCandidates loads the catalog and keeps products that can be recommended:
// a price row exists, the product is in stock and the price is known.
func (e *Engine) getCandidates(ctx context.Context, cfg *Config) ([]models.Product, error) {
	if e.catalog == nil {
		return nil, ErrNoCatalog
	}

	products, err := e.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	// Every candidate is scored. The catalog is ordered by ID, so cutting it
	// here would hide late IDs regardless of score.
	candidates := FilterCandidates(products)
	if len(candidates) > cfg.Limits.MaxCandidates {
		e.logger.Warn().
			Int("candidates", len(candidates)).
			Int("max_candidates", cfg.Limits.MaxCandidates).
			Msg("candidate set above max_candidates; scoring all")
	}
	return candidates, nil
}

// FilterCandidates drops products without a price row, out of stock or with
// an unknown price.
func FilterCandidates(products []models.Product) []models.Product {
	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !p.HasPrice || !p.InStock || p.Price == nil {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// scoreCandidates scores all candidates in one batch with the active scorer,
// falling back to the rule scorer on failure when configured.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) scoreCandidates(ctx context.Context, cfg *Config, req Request, active Algorithm,
	candidates []models.Product, logger zerolog.Logger) ([]ScoredProduct, Algorithm, bool, error) {
	scoreCtx, cancel := context.WithTimeout(ctx, cfg.Limits.ScoringTimeout)
	defer cancel()

	scored, err := e.runScorer(scoreCtx, active, req.Profile, candidates)
	if err == nil {
		return scored, active, false, nil
	}

	if !cfg.FallbackToRules || active.Name() == ScorerRules || ctx.Err() != nil {
		return nil, active, false, err
	}
	rules, ok := e.getAlgorithm(ScorerRules)
	if !ok {
		return nil, active, false, err
	}

	logger.Warn().
		Err(err).
		Str("failed_scorer", active.Name()).
		Msg("scorer failed, falling back to rules")
	e.fallbackCount.Add(1)

	scored, err = e.runScorer(scoreCtx, rules, req.Profile, candidates)
	if err != nil {
		return nil, rules, true, err
	}
	return scored, rules, true, nil
}

// runScorer calls alg and checks it scored every candidate.
func (e *Engine) runScorer(ctx context.Context, alg Algorithm, profile Profile, candidates []models.Product) ([]ScoredProduct, error) {
	scored, err := alg.Score(ctx, profile, candidates)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", alg.Name(), err)
	}
	if len(scored) != len(candidates) {
		return nil, fmt.Errorf("%s: scored %d of %d candidates", alg.Name(), len(scored), len(candidates))
	}
	return scored, nil
}

// rankItems sorts by score, applies rerankers when diversity is enabled and
// truncates to k.
func (e *Engine) rankItems(ctx context.Context, cfg *Config, items []ScoredProduct, k int) []ScoredProduct {
	SortScored(items)

	if cfg.Diversity.Enabled {
		items = e.applyRerankers(ctx, items, k)
	}

	if len(items) > k {
		items = items[:k]
	}
	return items
}

// SortScored orders items by score descending, ties by product ID ascending.
func SortScored(items []ScoredProduct) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Product.ID < items[j].Product.ID
	})
}

// applyRerankers applies post-processing rerankers to the scored items.
func (e *Engine) applyRerankers(ctx context.Context, items []ScoredProduct, k int) []ScoredProduct {
	e.algMu.RLock()
	rerankers := e.rerankers
	e.algMu.RUnlock()

	for _, rr := range rerankers {
		items = rr.Rerank(ctx, items, k)
	}

	return items
}

// buildResponse constructs the final response.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildResponse(req Request, ranked []ScoredProduct, used Algorithm, fallback bool, total int, start time.Time) *Response {
	items := make([]models.ProductOut, len(ranked))
	for i, sp := range ranked {
		items[i] = models.NewProductOut(sp.Product, sp.Why)
	}

	return &Response{
		Items:           items,
		TotalCandidates: total,
		Metadata: ResponseMetadata{
			RequestID:    req.RequestID,
			Scorer:       used.Name(),
			Fallback:     fallback,
			LatencyMS:    time.Since(start).Milliseconds(),
			ModelVersion: used.Version(),
			Timestamp:    time.Now(),
		},
	}
}

// cacheResponse stores the response in cache if enabled.
func (e *Engine) cacheResponse(ctx context.Context, cfg *Config, key string, resp *Response) {
	if cfg.Cache.Enabled {
		e.cache.Set(ctx, key, resp, cfg.Cache.TTL)
	}
}

// emptyResponse returns an empty response for cases with no candidates.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) emptyResponse(req Request, scorer string, start time.Time) *Response {
	return &Response{
		Items:           []models.ProductOut{},
		TotalCandidates: 0,
		Metadata: ResponseMetadata{
			RequestID: req.RequestID,
			Scorer:    scorer,
			LatencyMS: time.Since(start).Milliseconds(),
			Timestamp: time.Now(),
		},
	}
}

// Train trains every trainable scorer on the rows from the training data
// provider. Returns ErrTrainingInProgress if a run is already active.
func (e *Engine) Train(ctx context.Context) error {
	if !e.trainMu.TryLock() {
		return ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	if e.trainingData == nil {
		return ErrNoTrainingData
	}

	cfg := e.currentConfig()
	start := time.Now()
	e.initializeTrainingStatus()
	e.logger.Info().Msg("starting model training")

	result, err := e.train(ctx, cfg)
	e.finalizeTrainingStatus(start, result, err)
	if err != nil {
		e.logger.Error().Err(err).Msg("model training failed")
		return err
	}

	e.completeTraining(ctx, cfg, result)

	e.logger.Info().
		Int("version", result.Version).
		Int("rows", result.Rows).
		Float64("validation_auc", result.ValidationAUC).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("model training complete")

	return nil
}

func (e *Engine) train(ctx context.Context, cfg *Config) (*TrainingResult, error) {
	trainCtx, cancel := context.WithTimeout(ctx, cfg.Training.Timeout)
	defer cancel()

	rows, err := e.trainingData.GetTrainingRows(trainCtx)
	if err != nil {
		return nil, fmt.Errorf("get training rows: %w", err)
	}
	if len(rows) < cfg.Training.MinInteractions {
		return nil, fmt.Errorf("%w: %d rows < %d", ErrInsufficientData, len(rows), cfg.Training.MinInteractions)
	}

	trainables := e.getTrainables()
	if len(trainables) == 0 {
		return nil, fmt.Errorf("%w: no trainable scorer registered", ErrNoScorer)
	}

	var (
		last   *TrainingResult
		errs   []error
		failed int
	)
	for _, t := range trainables {
		algStart := time.Now()
		res, err := t.Train(trainCtx, rows)
		if e.observer != nil {
			e.observer.ObserveTraining(t.Name(), time.Since(algStart), res, err)
		}
		if err != nil {
			e.logger.Error().
				Str("algorithm", t.Name()).
				Err(err).
				Msg("algorithm training failed")
			errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
			failed++
			continue
		}
		last = res
	}

	if failed == len(trainables) {
		return nil, errors.Join(errs...)
	}
	return last, nil
}

// initializeTrainingStatus marks a run as started.
func (e *Engine) initializeTrainingStatus() {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.trainStatus.IsTraining = true
	e.trainStatus.LastError = ""
}

// finalizeTrainingStatus records the outcome of a run.
func (e *Engine) finalizeTrainingStatus(start time.Time, result *TrainingResult, err error) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.trainStatus.IsTraining = false
	e.trainStatus.LastTrainingDurationMS = time.Since(start).Milliseconds()
	if err != nil {
		e.trainStatus.LastError = err.Error()
		return
	}
	e.trainStatus.RowCount = result.Rows
	e.trainStatus.ValidationAUC = result.ValidationAUC
	e.trainStatus.LastTrainedAt = result.TrainedAt
}

// completeTraining bumps the model version and invalidates the cache.
func (e *Engine) completeTraining(ctx context.Context, cfg *Config, result *TrainingResult) {
	e.modelVersion.Store(int32(result.Version)) //nolint:gosec // versions are small
	e.trainingCount.Add(1)

	if cfg.Cache.InvalidateOnTrain {
		e.clearCache(ctx)
	}
}

// getTrainables returns the registered scorers that can be trained.
func (e *Engine) getTrainables() []Trainable {
	e.algMu.RLock()
	defer e.algMu.RUnlock()

	names := make([]string, 0, len(e.algorithms))
	for name := range e.algorithms {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Trainable, 0, len(names))
	for _, name := range names {
		if t, ok := e.algorithms[name].(Trainable); ok {
			out = append(out, t)
		}
	}
	return out
}

// GetStatus returns the current training status.
func (e *Engine) GetStatus() TrainingStatus {
	e.statusMu.RLock()
	status := e.trainStatus
	e.statusMu.RUnlock()

	cfg := e.currentConfig()
	status.ActiveScorer = cfg.Scorer
	status.ModelVersion = e.ModelVersion()
	return status
}

// ModelVersion returns the newest version among trainable scorers, including
// models loaded lazily from the store.
func (e *Engine) ModelVersion() int {
	v := int(e.modelVersion.Load())
	for _, t := range e.getTrainables() {
		if tv := t.Version(); tv > v {
			v = tv
		}
	}
	return v
}

// GetMetrics returns a snapshot of the engine counters.
func (e *Engine) GetMetrics() Metrics {
	e.scorerMu.Lock()
	perScorer := make(map[string]int64, len(e.scorerRequests))
	for k, v := range e.scorerRequests {
		perScorer[k] = v
	}
	e.scorerMu.Unlock()

	return Metrics{
		RequestCount:   e.requestCount.Load(),
		CacheHits:      e.cacheHits.Load(),
		CacheMisses:    e.cacheMisses.Load(),
		ErrorCount:     e.errorCount.Load(),
		FallbackCount:  e.fallbackCount.Load(),
		TrainingCount:  e.trainingCount.Load(),
		ScorerRequests: perScorer,
	}
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.currentConfig().Clone()
}

// UpdateConfig validates and installs cfg. The scorer it names must be registered.
func (e *Engine) UpdateConfig(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, ok := e.getAlgorithm(cfg.Scorer); !ok {
		return fmt.Errorf("invalid config: %w: %s", ErrNoScorer, cfg.Scorer)
	}

	e.configMu.Lock()
	prev := e.config
	e.config = cfg.Clone()
	e.configMu.Unlock()

	e.algMu.RLock()
	for _, alg := range e.algorithms {
		if c, ok := alg.(Configurable); ok {
			c.Configure(cfg)
		}
	}
	for _, rr := range e.rerankers {
		if c, ok := rr.(Configurable); ok {
			c.Configure(cfg)
		}
	}
	e.algMu.RUnlock()

	if prev.Scorer != cfg.Scorer || prev.Rules != cfg.Rules || prev.Diversity != cfg.Diversity {
		e.clearCache(context.Background())
	}

	e.logger.Info().
		Str("scorer", cfg.Scorer).
		Bool("fallback_to_rules", cfg.FallbackToRules).
		Msg("configuration updated")

	return nil
}

func (e *Engine) currentConfig() *Config {
	e.configMu.RLock()
	defer e.configMu.RUnlock()
	return e.config
}

func (e *Engine) getAlgorithm(name string) (Algorithm, bool) {
	e.algMu.RLock()
	defer e.algMu.RUnlock()
	alg, ok := e.algorithms[name]
	return alg, ok
}

func (e *Engine) countScorer(name string) {
	e.scorerMu.Lock()
	e.scorerRequests[name]++
	e.scorerMu.Unlock()
}

func (e *Engine) observe(scorer string, start time.Time, cacheHit, fallback bool) {
	if e.observer != nil {
		e.observer.ObserveRecommendation(scorer, time.Since(start), cacheHit, fallback)
	}
}

// cacheKey fingerprints everything that affects the ranking.
//
//nolint:gocritic // hugeParam: req passed by value for simplicity
func (e *Engine) cacheKey(req Request, alg Algorithm, cfg *Config) string {
	budget := "-"
	if req.HasBudget() {
		budget = strconv.Itoa(*req.Budget)
	}
	diversity := "-"
	if cfg.Diversity.Enabled {
		diversity = strconv.FormatFloat(cfg.Diversity.MMRLambda, 'g', -1, 64)
	}
	t := req.Traits
	return strings.Join([]string{
		"rec", alg.Name(), strconv.Itoa(alg.Version()),
		string(req.Style), req.Size, budget, strconv.Itoa(req.K),
		t.SkinTemperature, t.SkinDepth, t.Frame, t.HeightBucket, t.Shoulders,
		diversity,
	}, ":")
}

// clearCache removes all cached entries.
func (e *Engine) clearCache(ctx context.Context) {
	if err := e.cache.Clear(ctx); err != nil {
		e.logger.Warn().Err(err).Msg("failed to clear cache")
		return
	}
	e.logger.Debug().Msg("cache cleared")
}

// generateRequestID generates a unique request ID for tracing.
// This method is safe for concurrent use.
func (e *Engine) generateRequestID() string {
	e.rngMu.Lock()
	n := e.rng.Intn(10000)
	e.rngMu.Unlock()
	return fmt.Sprintf("rec-%d-%d", time.Now().UnixNano(), n)
}
