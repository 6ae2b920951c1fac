// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tomtom215/fitlens/internal/recommend"
)

// FileSource reads training rows from a CSV file on every call, so a
// regenerated file is picked up by the next training run.
type FileSource struct {
	Path string
}

var _ recommend.TrainingDataProvider = (*FileSource)(nil)

// NewFileSource returns a source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// GetTrainingRows implements recommend.TrainingDataProvider. A missing file
// is reported as recommend.ErrNoTrainingData.
func (s *FileSource) GetTrainingRows(ctx context.Context) ([]recommend.TrainingRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: training CSV not found at %s", recommend.ErrNoTrainingData, s.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("open training CSV: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := ReadTrainingCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return rows, nil
}
