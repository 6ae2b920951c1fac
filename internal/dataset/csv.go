// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/tomtom215/fitlens/internal/recommend"
)

var (
	// ErrMissingLabel is returned when a training CSV has no label column.
	ErrMissingLabel = errors.New("CSV must include a 'label' column with 1/0")

	// ErrInvalidLabel is returned for a label that is not a number.
	ErrInvalidLabel = errors.New("invalid label")
)

// ReadTrainingCSV parses a training CSV. Columns are located by header name
// and may appear in any order; missing feature columns read as empty. A
// non-numeric price or has_size reads as 0.
func ReadTrainingCSV(r io.Reader) ([]recommend.TrainingRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingLabel
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	if _, ok := idx["label"]; !ok {
		return nil, ErrMissingLabel
	}

	var rows []recommend.TrainingRow
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		field := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		label, err := parseLabel(field("label"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rows = append(rows, recommend.TrainingRow{
			FeatureRow: recommend.FeatureRow{
				Price:           numericOrZero(field("price")),
				HasSize:         numericOrZero(field("has_size")),
				Style:           field("style"),
				SkinTemperature: field("skin_temperature"),
				SkinDepth:       field("skin_depth"),
				Frame:           field("frame"),
				HeightBucket:    field("height_bucket"),
				Shoulders:       field("shoulders"),
				ColorTags:       field("color_tags"),
				FitTags:         field("fit_tags"),
				AvoidTags:       field("avoid_tags"),
			},
			SessionID:   field("session_id"),
			SlateID:     field("slate_id"),
			ProductID:   field("product_id"),
			Label:       label,
			RankInSlate: numericOrZero(field("rank_in_slate")),
		})
	}
	return rows, nil
}

func parseLabel(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLabel, s)
	}
	return int(f), nil
}

// numericOrZero parses s as a number, truncating decimals. Anything
// unparsable is 0.
func numericOrZero(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}
