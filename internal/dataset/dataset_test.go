// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package dataset

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/tomtom215/fitlens/internal/models"
	"github.com/tomtom215/fitlens/internal/recommend"
)

func TestGenerateSynthetic(t *testing.T) {
	var buf bytes.Buffer
	n, err := GenerateSynthetic(&buf, SyntheticOptions{Sessions: 20, ItemsPerSession: 8, Seed: 7})
	if err != nil {
		t.Fatalf("GenerateSynthetic() error = %v", err)
	}
	if n != 160 {
		t.Errorf("rows = %d, want 160", n)
	}

	header, _, _ := strings.Cut(buf.String(), "\n")
	if header != strings.Join(Columns, ",") {
		t.Errorf("header = %q", header)
	}

	rows, err := ReadTrainingCSV(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadTrainingCSV() error = %v", err)
	}
	if len(rows) != 160 {
		t.Fatalf("read %d rows, want 160", len(rows))
	}

	positives := 0
	for i, r := range rows {
		if r.Label != 0 && r.Label != 1 {
			t.Fatalf("row %d label = %d", i, r.Label)
		}
		positives += r.Label
		if r.HasSize != 0 && r.HasSize != 1 {
			t.Errorf("row %d has_size = %d", i, r.HasSize)
		}
		if r.Price < 599 || r.Price > 3499 {
			t.Errorf("row %d price = %d", i, r.Price)
		}
		if r.ColorTags != r.FitTags || r.AvoidTags != "" {
			t.Errorf("row %d tags = %q/%q/%q", i, r.ColorTags, r.FitTags, r.AvoidTags)
		}
		if !strings.Contains(r.ColorTags, r.Style) {
			t.Errorf("row %d tags %q lack style %q", i, r.ColorTags, r.Style)
		}
		if r.RankInSlate != i%8 {
			t.Errorf("row %d rank = %d, want %d", i, r.RankInSlate, i%8)
		}
	}
	if positives == 0 || positives == len(rows) {
		t.Errorf("positives = %d of %d, want a mix", positives, len(rows))
	}
}

func TestGenerateSynthetic_Deterministic(t *testing.T) {
	opts := SyntheticOptions{Sessions: 5, ItemsPerSession: 4, Seed: 42}
	var a, b bytes.Buffer
	if _, err := GenerateSynthetic(&a, opts); err != nil {
		t.Fatal(err)
	}
	if _, err := GenerateSynthetic(&b, opts); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Error("same seed produced different output")
	}

	opts.Seed = 43
	var c bytes.Buffer
	if _, err := GenerateSynthetic(&c, opts); err != nil {
		t.Fatal(err)
	}
	if a.String() == c.String() {
		t.Error("different seeds produced identical output")
	}
}

func TestGenerateSynthetic_InvalidOptions(t *testing.T) {
	var buf bytes.Buffer
	if _, err := GenerateSynthetic(&buf, SyntheticOptions{Sessions: 0, ItemsPerSession: 1}); err == nil {
		t.Error("expected error for zero sessions")
	}
}

func TestReadTrainingCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		check   func(t *testing.T, rows []recommend.TrainingRow)
	}{
		{
			name:    "missing label column",
			input:   "price,has_size\n100,1\n",
			wantErr: ErrMissingLabel,
		},
		{
			name:    "empty file",
			input:   "",
			wantErr: ErrMissingLabel,
		},
		{
			name:    "bad label",
			input:   "label,price\nyes,100\n",
			wantErr: ErrInvalidLabel,
		},
		{
			name:  "non numeric price and has_size become zero",
			input: "label,price,has_size,style\n1,abc,,casual\n0,1299.0,1,traditional\n",
			check: func(t *testing.T, rows []recommend.TrainingRow) {
				if len(rows) != 2 {
					t.Fatalf("rows = %d", len(rows))
				}
				if rows[0].Price != 0 || rows[0].HasSize != 0 || rows[0].Label != 1 {
					t.Errorf("row 0 = %+v", rows[0])
				}
				if rows[1].Price != 1299 || rows[1].HasSize != 1 || rows[1].Style != "traditional" {
					t.Errorf("row 1 = %+v", rows[1])
				}
			},
		},
		{
			name:  "columns in any order with missing tag columns",
			input: "style,label,color_tags\ncasual,1,navy;slim\n",
			check: func(t *testing.T, rows []recommend.TrainingRow) {
				if rows[0].ColorTags != "navy;slim" || rows[0].FitTags != "" || rows[0].Style != "casual" {
					t.Errorf("row = %+v", rows[0])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ReadTrainingCSV(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadTrainingCSV() error = %v", err)
			}
			tt.check(t, rows)
		})
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "train.csv")

	src := NewFileSource(path)
	if _, err := src.GetTrainingRows(context.Background()); !errors.Is(err, recommend.ErrNoTrainingData) {
		t.Fatalf("missing file error = %v, want ErrNoTrainingData", err)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := GenerateSynthetic(f, SyntheticOptions{Sessions: 3, ItemsPerSession: 4, Seed: 1}); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	rows, err := src.GetTrainingRows(context.Background())
	if err != nil {
		t.Fatalf("GetTrainingRows() error = %v", err)
	}
	if len(rows) != 12 {
		t.Errorf("rows = %d, want 12", len(rows))
	}
}

func TestExportParquet(t *testing.T) {
	events := []models.StoredEvent{
		{Table: "clicks", ProductID: "p1", SessionID: "s1", Timestamp: 1700000000},
		{Table: "likes", ProductID: "p2", SessionID: "s1", Timestamp: 1700000100},
	}

	path := filepath.Join(t.TempDir(), "events.parquet")
	if err := ExportParquetFile(path, events); err != nil {
		t.Fatalf("ExportParquetFile() error = %v", err)
	}

	got, err := parquet.ReadFile[EventRecord](path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d records, want 2", len(got))
	}
	if got[1].Table != "likes" || got[1].ProductID != "p2" || got[1].Timestamp != 1700000100 {
		t.Errorf("record = %+v", got[1])
	}
	if !got[0].RecordedAt.Equal(got[0].RecordedAt.UTC()) || got[0].RecordedAt.Unix() != 1700000000 {
		t.Errorf("recorded_at = %v", got[0].RecordedAt)
	}

	schema := parquet.SchemaOf(new(EventRecord))
	for _, col := range []string{"table", "product_id", "session_id", "ts", "recorded_at"} {
		if _, ok := schema.Lookup(col); !ok {
			t.Errorf("column %s missing from schema", col)
		}
	}
}

func TestExportParquet_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportParquet(&buf, nil); err != nil {
		t.Fatalf("ExportParquet() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected a valid parquet file with no rows")
	}
}
