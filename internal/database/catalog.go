// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/fitlens/internal/metrics"
	"github.com/tomtom215/fitlens/internal/models"
)

const listProductsQuery = `
SELECT p.id, p.title, p.store, p.url, p.image, p.tags,
       pr.product_id, pr.price, pr.mrp, pr.sizes, pr.in_stock
FROM products p
LEFT JOIN prices pr ON pr.product_id = p.id
ORDER BY p.id`

// ListProducts returns every product left-joined with its price row.
// Products without a price row have HasPrice=false.
func (db *DB) ListProducts(ctx context.Context) (products []models.Product, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list_products", "products", time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx, listProductsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer closeWithLog(rows, "product rows")

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

func scanProduct(rows *sql.Rows) (models.Product, error) {
	var (
		p        models.Product
		tags     string
		priceRow sql.NullString
		price    sql.NullInt64
		mrp      sql.NullInt64
		sizes    sql.NullString
		inStock  sql.NullBool
	)
	if err := rows.Scan(&p.ID, &p.Title, &p.Store, &p.URL, &p.Image, &tags,
		&priceRow, &price, &mrp, &sizes, &inStock); err != nil {
		return p, fmt.Errorf("failed to scan product: %w", err)
	}

	p.Tags = splitList(tags)
	p.Sizes = splitList(sizes.String)
	p.HasPrice = priceRow.Valid
	p.InStock = inStock.Valid && inStock.Bool
	p.Price = intPtr(price)
	p.MRP = intPtr(mrp)
	return p, nil
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

const (
	upsertProductQuery = `
INSERT INTO products (id, title, store, url, image, tags)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	title = excluded.title,
	store = excluded.store,
	url = excluded.url,
	image = excluded.image,
	tags = excluded.tags`

	upsertPriceQuery = `
INSERT INTO prices (product_id, price, mrp, sizes, in_stock)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (product_id) DO UPDATE SET
	price = excluded.price,
	mrp = excluded.mrp,
	sizes = excluded.sizes,
	in_stock = excluded.in_stock`

	deletePriceQuery = `DELETE FROM prices WHERE product_id = ?`
)

// UpsertProduct inserts or replaces a product and its price row in one
// transaction. A product with HasPrice=false has its price row removed.
func (db *DB) UpsertProduct(ctx context.Context, p models.Product) (err error) {
	if p.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidProduct)
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert_product", "products", time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, db.rebind(upsertProductQuery),
		p.ID, p.Title, p.Store, p.URL, p.Image, joinList(p.Tags)); err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", p.ID, err)
	}

	if p.HasPrice {
		_, err = tx.ExecContext(ctx, db.rebind(upsertPriceQuery),
			p.ID, nullInt(p.Price), nullInt(p.MRP), joinList(p.Sizes), p.InStock)
	} else {
		_, err = tx.ExecContext(ctx, db.rebind(deletePriceQuery), p.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to write price for %s: %w", p.ID, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product %s: %w", p.ID, err)
	}
	return nil
}

// CountProducts returns the number of catalog rows.
func (db *DB) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}
