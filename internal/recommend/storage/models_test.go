// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package storage

import (
	"context"
	"encoding/gob"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func testState() LogisticModelState {
	return LogisticModelState{
		Features:   []string{"price", "has_size", "style=casual"},
		Categories: map[string][]string{"style": {"casual", "traditional"}},
		Tokens:     map[string][]string{"color_tags": {"__none__", "navy"}},
		Mean:       []float64{1500, 0.5, 0.5},
		Scale:      []float64{700, 0.5, 0.5},
		Weights:    []float64{-0.3, 1.2, 0.1},
		Intercept:  -0.8,
		C:          1,
		Seed:       42,
		Iterations: 120,
	}
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{
			name: "creates directory if not exists",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nested", "models")
			},
		},
		{
			name: "uses existing directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			store, err := NewStore(dir)
			if err != nil {
				t.Fatalf("NewStore() error = %v", err)
			}
			if store.Dir() != dir {
				t.Errorf("Dir() = %q, want %q", store.Dir(), dir)
			}
			if _, err := os.Stat(dir); err != nil {
				t.Errorf("directory not created: %v", err)
			}
		})
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	ctx := context.Background()

	trainedAt := time.Now().Add(-time.Minute).Truncate(time.Second)
	meta := ModelMetadata{TrainedAt: trainedAt, RowCount: 1000, PositiveCount: 210, FeatureCount: 3, ValidationAUC: 0.71}
	if err := store.Save(ctx, "reco_lr", 1, testState(), meta); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var loaded LogisticModelState
	got, err := store.Load(ctx, "reco_lr", 1, &loaded)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got.Name != "reco_lr" || got.Version != 1 {
		t.Errorf("metadata name/version = %s/%d", got.Name, got.Version)
	}
	if got.RowCount != 1000 || got.PositiveCount != 210 || got.ValidationAUC != 0.71 {
		t.Errorf("metadata = %+v", got)
	}
	if !got.TrainedAt.Equal(trainedAt) {
		t.Errorf("TrainedAt = %v, want %v", got.TrainedAt, trainedAt)
	}
	if got.Checksum == "" || got.SizeBytes == 0 || got.SavedAt.IsZero() {
		t.Errorf("Save did not fill checksum/size/saved_at: %+v", got)
	}

	want := testState()
	if loaded.Intercept != want.Intercept || len(loaded.Weights) != len(want.Weights) {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.Tokens["color_tags"][1] != "navy" || loaded.Categories["style"][0] != "casual" {
		t.Errorf("vocabulary not restored: %+v", loaded)
	}

	if _, err := os.Stat(filepath.Join(store.Dir(), "reco_lr_v1.gob.gz")); err != nil {
		t.Errorf("model file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), "reco_lr_v1.gob.gz.tmp")); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}
}

func TestStore_LoadLatest(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for v := 1; v <= 3; v++ {
		state := testState()
		state.Iterations = v * 10
		if err := store.Save(ctx, "reco_lr", v, state, ModelMetadata{}); err != nil {
			t.Fatalf("Save(v%d) error = %v", v, err)
		}
	}

	var loaded LogisticModelState
	meta, err := store.Load(ctx, "reco_lr", 0, &loaded)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if meta.Version != 3 || loaded.Iterations != 30 {
		t.Errorf("loaded version %d with iterations %d, want 3/30", meta.Version, loaded.Iterations)
	}
}

func TestStore_LoadNotFound(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var loaded LogisticModelState
	if _, err := store.Load(context.Background(), "reco_lr", 0, &loaded); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(latest) error = %v, want ErrNotFound", err)
	}
	if _, err := store.Load(context.Background(), "reco_lr", 4, &loaded); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(v4) error = %v, want ErrNotFound", err)
	}
}

func TestStore_SaveInvalid(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Save(context.Background(), "reco_lr", 0, testState(), ModelMetadata{}); err == nil {
		t.Error("Save(v0) = nil, want error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Save(ctx, "reco_lr", 1, testState(), ModelMetadata{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Save(canceled) error = %v", err)
	}
}

func TestStore_ScanExisting(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []int{2, 7, 5} {
		if err := first.Save(ctx, "reco_lr", v, testState(), ModelMetadata{}); err != nil {
			t.Fatal(err)
		}
	}
	// Unrelated files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if v, ok := reopened.GetLatestVersion("reco_lr"); !ok || v != 7 {
		t.Errorf("GetLatestVersion() = %d, %v; want 7, true", v, ok)
	}
	if _, ok := reopened.GetLatestVersion("other"); ok {
		t.Error("GetLatestVersion(other) = true, want false")
	}
}

func TestStore_SeesOtherHandleWrites(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	reader, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	writer, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	var loaded LogisticModelState
	if _, err := reader.Load(ctx, "reco_lr", 0, &loaded); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() on empty store error = %v, want ErrNotFound", err)
	}

	for v := 1; v <= 2; v++ {
		if err := writer.Save(ctx, "reco_lr", v, testState(), ModelMetadata{RowCount: v * 10}); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name  string
		check func(t *testing.T)
	}{
		{"latest version", func(t *testing.T) {
			if v, ok := reader.GetLatestVersion("reco_lr"); !ok || v != 2 {
				t.Errorf("GetLatestVersion() = %d, %v; want 2, true", v, ok)
			}
		}},
		{"load latest", func(t *testing.T) {
			meta, err := reader.Load(ctx, "reco_lr", 0, &loaded)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if meta.Version != 2 || meta.RowCount != 20 {
				t.Errorf("Load() meta = %+v", meta)
			}
		}},
		{"list", func(t *testing.T) {
			models, err := reader.ListModels(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(models) != 1 || models[0].Version != 2 {
				t.Errorf("ListModels() = %+v", models)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, tt.check)
	}

	// Removal by another handle is seen as well.
	if err := writer.Delete(ctx, "reco_lr", 2); err != nil {
		t.Fatal(err)
	}
	if v, _ := reader.GetLatestVersion("reco_lr"); v != 1 {
		t.Errorf("latest after external delete = %d, want 1", v)
	}
}

func TestStore_SaveRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := first.Save(ctx, "reco_lr", 1, testState(), ModelMetadata{RowCount: 100}); err != nil {
		t.Fatal(err)
	}
	err = second.Save(ctx, "reco_lr", 1, testState(), ModelMetadata{RowCount: 5})
	if !errors.Is(err, ErrVersionExists) {
		t.Fatalf("Save(existing) error = %v, want ErrVersionExists", err)
	}

	var loaded LogisticModelState
	meta, err := second.Load(ctx, "reco_lr", 1, &loaded)
	if err != nil {
		t.Fatal(err)
	}
	if meta.RowCount != 100 {
		t.Errorf("RowCount = %d, want the original 100", meta.RowCount)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestParseModelFilename(t *testing.T) {
	tests := []struct {
		filename    string
		wantName    string
		wantVersion int
		wantOK      bool
	}{
		{"reco_lr_v3.gob.gz", "reco_lr", 3, true},
		{"a_v_v12.gob.gz", "a_v", 12, true},
		{"reco_lr_v3.gob", "", 0, false},
		{"reco_lr.gob.gz", "", 0, false},
		{"_v1.gob.gz", "", 0, false},
		{"reco_lr_vx.gob.gz", "", 0, false},
		{"reco_lr_v0.gob.gz", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			name, version, ok := parseModelFilename(tt.filename)
			if name != tt.wantName || version != tt.wantVersion || ok != tt.wantOK {
				t.Errorf("parseModelFilename(%q) = %q, %d, %v", tt.filename, name, version, ok)
			}
		})
	}
}

func TestStore_ListModels(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	_ = store.Save(ctx, "reco_lr", 1, testState(), ModelMetadata{RowCount: 10})
	_ = store.Save(ctx, "reco_lr", 2, testState(), ModelMetadata{RowCount: 20})
	_ = store.Save(ctx, "alt", 1, testState(), ModelMetadata{RowCount: 5})

	models, err := store.ListModels(ctx)
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("ListModels() returned %d models, want 2", len(models))
	}
	if models[0].Name != "alt" || models[1].Name != "reco_lr" {
		t.Errorf("names = %s, %s", models[0].Name, models[1].Name)
	}
	if models[1].Version != 2 || models[1].RowCount != 20 {
		t.Errorf("reco_lr = %+v, want latest version", models[1])
	}
}

func TestStore_Delete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	_ = store.Save(ctx, "reco_lr", 1, testState(), ModelMetadata{})
	_ = store.Save(ctx, "reco_lr", 2, testState(), ModelMetadata{})

	if err := store.Delete(ctx, "reco_lr", 2); err != nil {
		t.Fatalf("Delete(v2) error = %v", err)
	}
	if v, _ := store.GetLatestVersion("reco_lr"); v != 1 {
		t.Errorf("latest after deleting v2 = %d, want 1", v)
	}

	if err := store.Delete(ctx, "reco_lr", 1); err != nil {
		t.Fatalf("Delete(v1) error = %v", err)
	}
	if _, ok := store.GetLatestVersion("reco_lr"); ok {
		t.Error("model still tracked after deleting every version")
	}

	if err := store.Delete(ctx, "reco_lr", 9); err == nil {
		t.Error("Delete(missing) = nil, want error")
	}
}

func TestStore_Prune(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for v := 1; v <= 5; v++ {
		if err := store.Save(ctx, "reco_lr", v, testState(), ModelMetadata{}); err != nil {
			t.Fatal(err)
		}
	}
	_ = store.Save(ctx, "alt", 1, testState(), ModelMetadata{})

	removed, err := store.Prune(ctx, "reco_lr", 2)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 3 {
		t.Errorf("Prune() removed %d, want 3", removed)
	}

	for v := 1; v <= 5; v++ {
		_, statErr := os.Stat(store.modelPath("reco_lr", v))
		exists := statErr == nil
		if want := v >= 4; exists != want {
			t.Errorf("v%d exists = %v, want %v", v, exists, want)
		}
	}
	if _, err := os.Stat(store.modelPath("alt", 1)); err != nil {
		t.Errorf("other model pruned: %v", err)
	}
	if v, _ := store.GetLatestVersion("reco_lr"); v != 5 {
		t.Errorf("latest = %d, want 5", v)
	}

	// keepVersions below 1 keeps the newest.
	removed, _ = store.Prune(ctx, "reco_lr", 0)
	if removed != 1 {
		t.Errorf("Prune(0) removed %d, want 1", removed)
	}
}

func TestStore_ChecksumValidation(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "reco_lr", 1, testState(), ModelMetadata{}); err != nil {
		t.Fatal(err)
	}

	// Rewrite the file with a tampered checksum.
	sf, err := readStoredFile(store.modelPath("reco_lr", 1))
	if err != nil {
		t.Fatal(err)
	}
	sf.Metadata.Checksum = "deadbeef"
	f, err := os.Create(store.modelPath("reco_lr", 1))
	if err != nil {
		t.Fatal(err)
	}
	if err := gob.NewEncoder(f).Encode(sf); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	var loaded LogisticModelState
	if _, err := store.Load(ctx, "reco_lr", 1, &loaded); err == nil {
		t.Error("Load() with bad checksum = nil error")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	var wg sync.WaitGroup
	for v := 1; v <= 8; v++ {
		wg.Add(2)
		go func(v int) {
			defer wg.Done()
			if err := store.Save(ctx, "reco_lr", v, testState(), ModelMetadata{}); err != nil {
				t.Errorf("Save(v%d) error = %v", v, err)
			}
		}(v)
		go func() {
			defer wg.Done()
			var loaded LogisticModelState
			_, _ = store.Load(ctx, "reco_lr", 0, &loaded)
			_, _ = store.ListModels(ctx)
		}()
	}
	wg.Wait()

	if v, _ := store.GetLatestVersion("reco_lr"); v != 8 {
		t.Errorf("latest = %d, want 8", v)
	}
}
