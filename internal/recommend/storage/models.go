// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when no stored version exists for a model name.
var ErrNotFound = errors.New("model not found")

// ErrVersionExists is returned by Save when the version is already on disk.
var ErrVersionExists = errors.New("model version already exists")

const modelExt = ".gob.gz"

// ModelMetadata describes one stored model version.
type ModelMetadata struct {
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	TrainedAt time.Time `json:"trained_at"`
	SavedAt   time.Time `json:"saved_at"`

	// Training set shape
	RowCount      int `json:"row_count"`
	PositiveCount int `json:"positive_count"`
	FeatureCount  int `json:"feature_count"`

	ValidationAUC float64 `json:"validation_auc"`

	// Checksum is the SHA-256 of the uncompressed gob payload.
	Checksum           string `json:"checksum"`
	SizeBytes          int64  `json:"size_bytes"`
	TrainingDurationMS int64  `json:"training_duration_ms"`
}

// Store persists versioned models as gzip-compressed gob files named
// {name}_v{version}.gob.gz. It is safe for concurrent use.
//
// The directory is the source of truth: other processes (the CLI trainer)
// may write into it, so latest-version lookups rescan it.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// latest version per model name, as of the last scan
	versions map[string]int
}

// NewStore creates a store rooted at baseDir, creating the directory and
// indexing any models already present.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}

	if err := s.refresh(); err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}
	return s, nil
}

// refresh rebuilds the latest-version index from the directory.
// The caller must hold the write lock.
func (s *Store) refresh() error {
	all, err := s.scanVersions()
	if err != nil {
		return err
	}
	versions := make(map[string]int, len(all))
	for name, vs := range all {
		versions[name] = vs[0]
	}
	s.versions = versions
	return nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.baseDir
}

// scanVersions lists every stored version per model, newest first.
func (s *Store) scanVersions() (map[string][]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, version, ok := parseModelFilename(entry.Name())
		if !ok {
			continue
		}
		out[name] = append(out[name], version)
	}
	for name := range out {
		sort.Sort(sort.Reverse(sort.IntSlice(out[name])))
	}
	return out, nil
}

// parseModelFilename splits "reco_lr_v3.gob.gz" into ("reco_lr", 3).
func parseModelFilename(filename string) (name string, version int, ok bool) {
	base, found := strings.CutSuffix(filename, modelExt)
	if !found {
		return "", 0, false
	}
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0, false
	}
	version, err := strconv.Atoi(base[idx+2:])
	if err != nil || version < 1 {
		return "", 0, false
	}
	return base[:idx], version, true
}

// storedFile is the on-disk format for model files.
type storedFile struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// Save writes data as the given version of name. The file is written to a
// temporary path and then linked into place, so readers never see a partial
// model and an existing version is never replaced. Returns
// ErrVersionExists when the version is already stored.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) Save(ctx context.Context, name string, version int, data any, meta ModelMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if version < 1 {
		return fmt.Errorf("invalid model version %d", version)
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(data); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	hash := sha256.Sum256(raw.Bytes())

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	meta.Name = name
	meta.Version = version
	meta.Checksum = hex.EncodeToString(hash[:])
	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.modelPath(name, version)
	tmp := path + ".tmp"
	f, err := os.Create(tmp) //nolint:gosec // path is built from the model name
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}

	encErr := gob.NewEncoder(f).Encode(storedFile{Metadata: meta, CompressedData: compressed.Bytes()})
	closeErr := f.Close()
	if encErr != nil || closeErr != nil {
		_ = os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("write model file: %w", errors.Join(encErr, closeErr))
	}
	// Link fails if path exists, even when another process created it.
	linkErr := os.Link(tmp, path)
	_ = os.Remove(tmp) //nolint:errcheck // best-effort cleanup
	if linkErr != nil {
		if errors.Is(linkErr, os.ErrExist) {
			return fmt.Errorf("%w: %s v%d", ErrVersionExists, name, version)
		}
		return fmt.Errorf("install model file: %w", linkErr)
	}

	if current, ok := s.versions[name]; !ok || version > current {
		s.versions[name] = version
	}
	return nil
}

// Load decodes a stored model into target. Version 0 loads the latest
// version on disk. Returns ErrNotFound when nothing is stored under name.
func (s *Store) Load(ctx context.Context, name string, version int, target any) (*ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if version == 0 {
		latest, ok := s.GetLatestVersion(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		version = latest
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sf, err := readStoredFile(s.modelPath(name, version))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s v%d", ErrNotFound, name, version)
		}
		return nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // read-only

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(raw)
	if got := hex.EncodeToString(hash[:]); got != sf.Metadata.Checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, got)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	return &sf.Metadata, nil
}

func readStoredFile(path string) (*storedFile, error) {
	f, err := os.Open(path) //nolint:gosec // path is built from the model name
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return &sf, nil
}

// GetLatestVersion rescans the directory and returns the latest stored
// version of name. If the scan fails the last known version is returned.
func (s *Store) GetLatestVersion(name string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.refresh() //nolint:errcheck // fall back to the previous index
	version, ok := s.versions[name]
	return version, ok
}

// ListModels returns metadata for the latest version of every model, sorted by name.
func (s *Store) ListModels(ctx context.Context) ([]ModelMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	names := make([]string, 0, len(s.versions))
	for name := range s.versions {
		names = append(names, name)
	}
	sort.Strings(names)

	models := make([]ModelMetadata, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sf, err := readStoredFile(s.modelPath(name, s.versions[name]))
		if err != nil {
			continue
		}
		models = append(models, sf.Metadata)
	}
	return models, nil
}

// Delete removes one version. If it was the latest, the next newest becomes latest.
func (s *Store) Delete(ctx context.Context, name string, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.modelPath(name, version)); err != nil {
		return fmt.Errorf("delete model: %w", err)
	}
	if err := s.refresh(); err != nil {
		return fmt.Errorf("read directory: %w", err)
	}
	return nil
}

// Prune keeps the newest keepVersions versions of name and removes the rest.
func (s *Store) Prune(ctx context.Context, name string, keepVersions int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keepVersions < 1 {
		keepVersions = 1
	}

	all, err := s.scanVersions()
	if err != nil {
		return 0, fmt.Errorf("read directory: %w", err)
	}

	removed := 0
	vs := all[name]
	for i := keepVersions; i < len(vs); i++ {
		if err := os.Remove(s.modelPath(name, vs[i])); err == nil {
			removed++
		}
	}
	return removed, nil
}

func (s *Store) modelPath(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", name, version, modelExt))
}

// LogisticModelState is the serializable state of a trained logistic
// regression scorer: vocabulary, scaler and coefficients.
type LogisticModelState struct {
	// Feature names in column order
	Features []string

	// One-hot vocabulary per categorical column
	Categories map[string][]string

	// Token vocabulary per tag column
	Tokens map[string][]string

	// Standardization parameters per feature
	Mean  []float64
	Scale []float64

	Weights   []float64
	Intercept float64

	// Hyperparameters used for the fit
	C          float64
	Seed       int64
	Iterations int
}

//nolint:gochecknoinits // gob.Register must be called in init for type registration
func init() {
	gob.Register(LogisticModelState{})
	gob.Register(ModelMetadata{})
	gob.Register(storedFile{})
}
