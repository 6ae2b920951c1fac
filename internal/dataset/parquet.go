// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package dataset

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/tomtom215/fitlens/internal/models"
)

// EventRecord is one tracked event as written to Parquet.
type EventRecord struct {
	// Table is the source table, clicks or likes.
	Table string `parquet:"table,snappy,dict"`

	ProductID string `parquet:"product_id,snappy"`
	SessionID string `parquet:"session_id,snappy"`

	// Timestamp is the event time in unix seconds.
	Timestamp int64 `parquet:"ts,snappy"`

	// RecordedAt is Timestamp as a TIMESTAMP column for query engines.
	RecordedAt time.Time `parquet:"recorded_at,snappy"`
}

// ConvertEvents maps stored events to Parquet records.
func ConvertEvents(events []models.StoredEvent) []EventRecord {
	out := make([]EventRecord, len(events))
	for i, e := range events {
		out[i] = EventRecord{
			Table:      e.Table,
			ProductID:  e.ProductID,
			SessionID:  e.SessionID,
			Timestamp:  e.Timestamp,
			RecordedAt: time.Unix(e.Timestamp, 0).UTC(),
		}
	}
	return out
}

// ExportParquet writes events to w as a snappy-compressed Parquet file.
func ExportParquet(w io.Writer, events []models.StoredEvent) error {
	writer := parquet.NewGenericWriter[EventRecord](w)
	if _, err := writer.Write(ConvertEvents(events)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write events to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ExportParquetFile writes events to a new file at path.
func ExportParquetFile(path string, events []models.StoredEvent) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return ExportParquet(f, events)
}
