// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/tomtom215/fitlens/internal/config"
	"github.com/tomtom215/fitlens/internal/logging"
)

// Supported values of config.DatabaseConfig.Driver.
const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DB is the catalog and events store. All queries are written with ?
// placeholders and rebound for the active driver.
type DB struct {
	conn   *sql.DB
	driver string
}

// New opens the store selected by cfg.Driver and creates the schema.
func New(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	driverName, err := sqlDriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	if cfg.Driver != DriverPostgres {
		if err := ensureDir(cfg.DSN); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	db := &DB{conn: conn, driver: cfg.Driver}
	db.configureConnectionPool(cfg.MaxOpenConns)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}

	if err := db.createSchema(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().
		Str("driver", cfg.Driver).
		Str("dsn", logging.RedactDSN(cfg.DSN)).
		Msg("Database opened")

	return db, nil
}

func sqlDriverName(driver string) (string, error) {
	switch driver {
	case DriverDuckDB:
		return "duckdb", nil
	case DriverPostgres:
		return "pgx", nil
	case DriverSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// ensureDir creates the parent directory of a file-backed database.
func ensureDir(dsn string) error {
	path := strings.SplitN(dsn, "?", 2)[0]
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}

func (db *DB) configureConnectionPool(maxOpen int) {
	switch db.driver {
	case DriverSQLite:
		// Every sqlite connection to :memory: is a separate database.
		db.conn.SetMaxOpenConns(1)
	default:
		if maxOpen > 0 {
			db.conn.SetMaxOpenConns(maxOpen)
		}
		db.conn.SetMaxIdleConns(2)
	}
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// Driver returns the configured driver name.
func (db *DB) Driver() string {
	return db.driver
}

// Conn returns the underlying connection pool.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping verifies the store is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the connection pool.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// rebind rewrites ? placeholders to $1..$n for postgres.
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	return rebindDollar(query)
}

func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
