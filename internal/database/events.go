// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/fitlens/internal/metrics"
	"github.com/tomtom215/fitlens/internal/models"
)

// eventTables whitelists the tables an event may be written to. Table
// names are interpolated into SQL, so nothing else is accepted.
var eventTables = map[string]struct{}{
	TableClicks: {},
	TableLikes:  {},
}

func checkTable(table string) error {
	if _, ok := eventTables[table]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return nil
}

// InsertEvent appends one engagement row to table (clicks or likes).
func (db *DB) InsertEvent(ctx context.Context, table, productID, sessionID string, ts int64) (err error) {
	if err := checkTable(table); err != nil {
		return err
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert_event", table, time.Since(start), err) }()

	query := db.rebind(`INSERT INTO ` + table + ` (product_id, session_id, ts) VALUES (?, ?, ?)`)
	if _, err = db.conn.ExecContext(ctx, query, productID, sessionID, ts); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

// CountEvents returns the number of rows in table.
func (db *DB) CountEvents(ctx context.Context, table string) (n int64, err error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("count_events", table, time.Since(start), err) }()

	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

const listEventsQuery = `
SELECT 'clicks' AS tbl, product_id, session_id, ts FROM clicks WHERE ts >= ?
UNION ALL
SELECT 'likes' AS tbl, product_id, session_id, ts FROM likes WHERE ts >= ?
ORDER BY ts, tbl, product_id`

// ListEvents returns clicks and likes recorded at or after since (unix
// seconds), oldest first.
func (db *DB) ListEvents(ctx context.Context, since int64) (events []models.StoredEvent, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list_events", "events", time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx, db.rebind(listEventsQuery), since, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer closeWithLog(rows, "event rows")

	for rows.Next() {
		var ev models.StoredEvent
		if err := rows.Scan(&ev.Table, &ev.ProductID, &ev.SessionID, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
