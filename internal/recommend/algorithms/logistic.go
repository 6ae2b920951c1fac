// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/fitlens/internal/models"
	"github.com/tomtom215/fitlens/internal/recommend"
	"github.com/tomtom215/fitlens/internal/recommend/storage"
)

// Reasons emitted by the logistic scorer.
const (
	ReasonPredicted = "good predicted match"
)

// LogisticScorer is a binary logistic regression over vectorized feature
// rows. Features are standardized, classes are weighted as n/(2*count) and
// the weights are fit by full-batch gradient descent with an L2 penalty of
// 1/(C*n).
//
// Trained models are written to the model store when one is set. Until a
// model is in memory every prediction checks the store again, so a model
// written by another process is picked up without a restart.
type LogisticScorer struct {
	BaseAlgorithm

	cfg    recommend.LogisticConfig
	retain int
	store  *storage.Store

	model *logisticModel
}

// saveAttempts bounds the retries when another writer claims the chosen
// version first.
const saveAttempts = 5

// logisticModel is a fitted model ready for prediction.
type logisticModel struct {
	vec       *Vectorizer
	mean      []float64
	scale     []float64
	weights   []float64
	intercept float64
}

// NewLogisticScorer creates an untrained logistic scorer. store may be nil,
// in which case models live only in memory.
func NewLogisticScorer(store *storage.Store) *LogisticScorer {
	def := recommend.DefaultConfig()
	return &LogisticScorer{
		BaseAlgorithm: NewBaseAlgorithm(recommend.ScorerML),
		cfg:           def.Logistic,
		retain:        def.Training.RetainVersions,
		store:         store,
	}
}

// Configure picks up the logistic and training sections of cfg.
func (l *LogisticScorer) Configure(cfg *recommend.Config) {
	if cfg == nil {
		return
	}
	l.acquireTrainLock()
	defer l.releaseTrainLock()

	if cfg.Logistic.ModelName != l.cfg.ModelName {
		l.model = nil
	}
	l.cfg = cfg.Logistic
	l.retain = cfg.Training.RetainVersions
}

// Train fits a new model on a stratified split of rows, reports the
// validation AUC and persists the model.
func (l *LogisticScorer) Train(ctx context.Context, rows []recommend.TrainingRow) (*recommend.TrainingResult, error) {
	start := time.Now()

	l.acquirePredictLock()
	cfg := l.cfg
	current := l.version
	l.releasePredictLock()

	labels := make([]int, len(rows))
	positives := 0
	for i := range rows {
		if rows[i].Label > 0 {
			labels[i] = 1
			positives++
		}
	}
	if positives == 0 || positives == len(rows) {
		return nil, fmt.Errorf("%w: training rows contain a single class", recommend.ErrInsufficientData)
	}

	trainIdx, validIdx := StratifiedSplit(labels, cfg.ValidationFraction, cfg.Seed)

	trainRows := make([]recommend.FeatureRow, len(trainIdx))
	trainLabels := make([]int, len(trainIdx))
	for i, idx := range trainIdx {
		trainRows[i] = rows[idx].FeatureRow
		trainLabels[i] = labels[idx]
	}

	model, iterations, err := fitLogistic(ctx, trainRows, trainLabels, cfg)
	if err != nil {
		return nil, err
	}

	auc := 0.5
	if len(validIdx) > 0 {
		validRows := make([]recommend.FeatureRow, len(validIdx))
		validLabels := make([]int, len(validIdx))
		for i, idx := range validIdx {
			validRows[i] = rows[idx].FeatureRow
			validLabels[i] = labels[idx]
		}
		auc = ROCAUC(validLabels, model.predict(validRows))
	}

	version := current + 1
	trainedAt := time.Now()

	if l.store != nil {
		meta := storage.ModelMetadata{
			TrainedAt:          trainedAt,
			RowCount:           len(rows),
			PositiveCount:      positives,
			FeatureCount:       model.vec.Len(),
			ValidationAUC:      auc,
			TrainingDurationMS: time.Since(start).Milliseconds(),
		}
		version, err = l.save(ctx, cfg.ModelName, current, model.state(cfg, iterations), meta)
		if err != nil {
			return nil, err
		}
		if _, err := l.store.Prune(ctx, cfg.ModelName, l.retain); err != nil {
			return nil, fmt.Errorf("prune models: %w", err)
		}
	}

	result := &recommend.TrainingResult{
		Rows:          len(rows),
		TrainRows:     len(trainIdx),
		ValidRows:     len(validIdx),
		Positives:     positives,
		ValidationAUC: auc,
		Features:      model.vec.Len(),
		Version:       version,
		TrainedAt:     trainedAt,
	}

	l.acquireTrainLock()
	l.model = model
	l.markTrained(version, trainedAt)
	l.releaseTrainLock()

	return result, nil
}

// save stores state under the first version above both current and the
// latest version on disk, and returns that version.
//
//nolint:gocritic // meta passed by value like storage.Store.Save
func (l *LogisticScorer) save(ctx context.Context, name string, current int, state storage.LogisticModelState, meta storage.ModelMetadata) (int, error) {
	for range saveAttempts {
		version := current + 1
		if latest, ok := l.store.GetLatestVersion(name); ok && latest >= version {
			version = latest + 1
		}
		err := l.store.Save(ctx, name, version, state, meta)
		if err == nil {
			return version, nil
		}
		if !errors.Is(err, storage.ErrVersionExists) {
			return 0, fmt.Errorf("save model: %w", err)
		}
	}
	return 0, fmt.Errorf("save model: %w after %d attempts", storage.ErrVersionExists, saveAttempts)
}

// Score predicts P(like) for every candidate in one batch.
// Returns recommend.ErrModelNotTrained when no model is available.
func (l *LogisticScorer) Score(ctx context.Context, profile recommend.Profile, candidates []models.Product) ([]recommend.ScoredProduct, error) {
	model, err := l.ensureModel(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]recommend.FeatureRow, len(candidates))
	for i := range candidates {
		rows[i] = recommend.NewFeatureRow(candidates[i], profile)
	}
	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}
	probs := model.predict(rows)

	out := make([]recommend.ScoredProduct, len(candidates))
	for i := range candidates {
		out[i] = recommend.ScoredProduct{
			Product: candidates[i],
			Score:   probs[i],
			Why:     predictedReasons(candidates[i], profile),
		}
	}
	return out, nil
}

// PredictProba returns P(label=1) for each row.
func (l *LogisticScorer) PredictProba(ctx context.Context, rows []recommend.FeatureRow) ([]float64, error) {
	model, err := l.ensureModel(ctx)
	if err != nil {
		return nil, err
	}
	return model.predict(rows), nil
}

// ensureModel returns the in-memory model, loading the latest stored one
// when none is held yet.
func (l *LogisticScorer) ensureModel(ctx context.Context) (*logisticModel, error) {
	l.acquirePredictLock()
	model := l.model
	l.releasePredictLock()
	if model != nil {
		return model, nil
	}
	if l.store == nil {
		return nil, recommend.ErrModelNotTrained
	}

	l.acquireTrainLock()
	defer l.releaseTrainLock()
	if l.model != nil {
		return l.model, nil
	}

	var state storage.LogisticModelState
	meta, err := l.store.Load(ctx, l.cfg.ModelName, 0, &state)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, recommend.ErrModelNotTrained
		}
		return nil, fmt.Errorf("load model: %w", err)
	}

	model, err = modelFromState(&state)
	if err != nil {
		return nil, fmt.Errorf("load model %s v%d: %w", meta.Name, meta.Version, err)
	}
	l.model = model
	l.markTrained(meta.Version, meta.TrainedAt)
	return l.model, nil
}

// Reload drops the in-memory model so the next prediction loads the latest
// stored version.
func (l *LogisticScorer) Reload() {
	l.acquireTrainLock()
	l.model = nil
	l.releaseTrainLock()
}

// FeatureWeight is one coefficient of a fitted model, in standardized units.
type FeatureWeight struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

// TopWeights returns the n coefficients with the largest magnitude, ties
// by feature name. It returns recommend.ErrModelNotTrained before the
// first fit or load.
func (l *LogisticScorer) TopWeights(ctx context.Context, n int) ([]FeatureWeight, error) {
	model, err := l.ensureModel(ctx)
	if err != nil {
		return nil, err
	}

	names := model.vec.FeatureNames()
	out := make([]FeatureWeight, len(names))
	for i, name := range names {
		out[i] = FeatureWeight{Feature: name, Weight: model.weights[i]}
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Weight), math.Abs(out[j].Weight)
		if ai != aj {
			return ai > aj
		}
		return out[i].Feature < out[j].Feature
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out, nil
}

//nolint:gocritic // hugeParam: product passed by value for immutability
func predictedReasons(p models.Product, profile recommend.Profile) []string {
	var why []string
	if profile.Size != "" && p.HasSize(profile.Size) {
		why = append(why, ReasonSizeInStock)
	}
	if p.Price != nil {
		why = append(why, fmt.Sprintf("price ₹%d", *p.Price))
	}
	if len(why) == 0 {
		why = []string{ReasonPredicted}
	}
	return why
}

// fitLogistic vectorizes, standardizes and fits rows. It returns the model
// and the number of gradient steps taken.
func fitLogistic(ctx context.Context, rows []recommend.FeatureRow, labels []int, cfg recommend.LogisticConfig) (*logisticModel, int, error) {
	vec := FitVectorizer(rows)
	X := vec.TransformAll(rows)
	n, d := len(X), vec.Len()

	mean, scale := standardizer(X, d)
	for _, x := range X {
		standardize(x, mean, scale)
	}

	var pos int
	for _, y := range labels {
		pos += y
	}
	sampleWeight := [2]float64{
		float64(n) / (2 * float64(n-pos)),
		float64(n) / (2 * float64(pos)),
	}

	lambda := 1 / (cfg.C * float64(n))
	w := make([]float64, d)
	var b float64
	grad := make([]float64, d)
	prevLoss := math.Inf(1)

	iter := 0
	for iter < cfg.MaxIterations {
		if ContextCancelled(ctx) {
			return nil, iter, ctx.Err()
		}
		iter++

		for j := range grad {
			grad[j] = 0
		}
		var gradB, loss float64

		for i, x := range X {
			p := sigmoid(dot(w, x) + b)
			y := float64(labels[i])
			sw := sampleWeight[labels[i]]

			loss -= sw * (y*math.Log(math.Max(p, 1e-15)) + (1-y)*math.Log(math.Max(1-p, 1e-15)))
			diff := sw * (p - y)
			for j, xj := range x {
				grad[j] += diff * xj
			}
			gradB += diff
		}

		inv := 1 / float64(n)
		var reg float64
		for j := range w {
			reg += w[j] * w[j]
			grad[j] = grad[j]*inv + lambda*w[j]
		}
		loss = loss*inv + lambda/2*reg

		for j := range w {
			w[j] -= cfg.LearningRate * grad[j]
		}
		b -= cfg.LearningRate * gradB * inv

		if math.Abs(prevLoss-loss) < cfg.Tolerance {
			break
		}
		prevLoss = loss
	}

	return &logisticModel{vec: vec, mean: mean, scale: scale, weights: w, intercept: b}, iter, nil
}

// standardizer returns the per-feature mean and standard deviation. Constant
// features get a scale of 1.
func standardizer(X [][]float64, d int) (mean, scale []float64) {
	mean = make([]float64, d)
	scale = make([]float64, d)
	n := float64(len(X))
	for _, x := range X {
		for j, v := range x {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}
	for _, x := range X {
		for j, v := range x {
			dv := v - mean[j]
			scale[j] += dv * dv
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / n)
		if scale[j] == 0 {
			scale[j] = 1
		}
	}
	return mean, scale
}

func standardize(x, mean, scale []float64) {
	for j := range x {
		x[j] = (x[j] - mean[j]) / scale[j]
	}
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func (m *logisticModel) predict(rows []recommend.FeatureRow) []float64 {
	out := make([]float64, len(rows))
	for i := range rows {
		x := m.vec.Transform(&rows[i])
		standardize(x, m.mean, m.scale)
		out[i] = sigmoid(dot(m.weights, x) + m.intercept)
	}
	return out
}

func (m *logisticModel) state(cfg recommend.LogisticConfig, iterations int) storage.LogisticModelState {
	return storage.LogisticModelState{
		Features:   m.vec.FeatureNames(),
		Categories: m.vec.Categories(),
		Tokens:     m.vec.Tokens(),
		Mean:       m.mean,
		Scale:      m.scale,
		Weights:    m.weights,
		Intercept:  m.intercept,
		C:          cfg.C,
		Seed:       cfg.Seed,
		Iterations: iterations,
	}
}

func modelFromState(s *storage.LogisticModelState) (*logisticModel, error) {
	vec := NewVectorizer(s.Categories, s.Tokens)
	d := vec.Len()
	if len(s.Mean) != d || len(s.Scale) != d || len(s.Weights) != d {
		return nil, fmt.Errorf("corrupt model: %d features, %d weights", d, len(s.Weights))
	}
	return &logisticModel{
		vec:       vec,
		mean:      s.Mean,
		scale:     s.Scale,
		weights:   s.Weights,
		intercept: s.Intercept,
	}, nil
}
