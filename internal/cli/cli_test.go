// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/tomtom215/fitlens/internal/config"
	"github.com/tomtom215/fitlens/internal/database"
)

// run executes the command tree with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// testEnv points the configuration at a temporary sqlite store.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yaml"))
	t.Setenv("DATABASE_DRIVER", database.DriverSQLite)
	t.Setenv("DATABASE_DSN", filepath.Join(dir, "fitlens.sqlite"))
	t.Setenv("DATABASE_SEED_FILE", "")
	t.Setenv("RECOMMEND_MODEL_PATH", filepath.Join(dir, "models"))
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func TestGenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.csv")

	out, err := run(t, "generate", "--out", path, "--sessions", "3", "--items", "4", "--seed", "7")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "Wrote 12 rows") {
		t.Errorf("output = %q, want row count", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 13 {
		t.Errorf("file has %d lines, want header + 12 rows", len(lines))
	}
}

func TestGenerate_Stdout(t *testing.T) {
	out, err := run(t, "generate", "--out", "-", "--sessions", "1", "--items", "2")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if strings.Contains(out, "Wrote") {
		t.Errorf("stdout mode should only emit CSV, got %q", out)
	}
	if n := strings.Count(strings.TrimSpace(out), "\n"); n != 2 {
		t.Errorf("got %d newlines, want 2", n)
	}
}

func TestTrain(t *testing.T) {
	dir := testEnv(t)
	csvPath := filepath.Join(dir, "train.csv")

	if _, err := run(t, "generate", "--out", csvPath, "--sessions", "20", "--items", "8"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	out, err := run(t, "train", "--csv", csvPath)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	for _, want := range []string{"Validation AUC", "Model version", "Feature", "Showing top"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	entries, err := os.ReadDir(filepath.Join(dir, "models"))
	if err != nil {
		t.Fatalf("model store: %v", err)
	}
	if len(entries) == 0 {
		t.Error("no model files written")
	}
}

func TestTrain_InsufficientData(t *testing.T) {
	dir := testEnv(t)
	csvPath := filepath.Join(dir, "train.csv")

	if _, err := run(t, "generate", "--out", csvPath, "--sessions", "2", "--items", "3"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	_, err := run(t, "train", "--csv", csvPath)
	if err == nil || !strings.Contains(err.Error(), "need 100") {
		t.Errorf("err = %v, want insufficient data", err)
	}
}

func TestSeedAndExport(t *testing.T) {
	dir := testEnv(t)

	seed := filepath.Join(dir, "catalog.json")
	catalog := `[
		{"id": "p1", "title": "Navy Kurta", "tags": ["traditional", "navy"], "price": 999},
		{"id": "p2", "title": "Olive Tee", "tags": ["casual", "olive"], "price": 799}
	]`
	if err := os.WriteFile(seed, []byte(catalog), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "seed", "--file", seed)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "Seeded 2 products") || !strings.Contains(out, "(2 in catalog)") {
		t.Errorf("seed output = %q", out)
	}

	// Record an event directly so the export has something to write.
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	store, err := openStore(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.InsertEvent(context.Background(), database.TableClicks, "p1", "s1", 1700000000); err != nil {
		t.Fatal(err)
	}
	closeStore(store)

	parquetPath := filepath.Join(dir, "events.parquet")
	out, err = run(t, "export", "--out", parquetPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "Exported 1 events") {
		t.Errorf("export output = %q", out)
	}
	if info, err := os.Stat(parquetPath); err != nil || info.Size() == 0 {
		t.Errorf("parquet file missing or empty: %v", err)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	for _, want := range []string{"Version: dev", "Commit:  none", runtime.Version()} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRequiredFlags(t *testing.T) {
	testEnv(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"seed without file", []string{"seed"}, "--file is required"},
		{"export without out", []string{"export"}, "--out is required"},
		{"train without csv", []string{"train"}, "--csv is required"},
		{"unknown command", []string{"bogus"}, "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RECOMMEND_TRAINING_CSV", "")
			_, err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}
