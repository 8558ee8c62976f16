//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-retailmetrics/internal/loader"
	"github.com/pgEdge/pgedge-retailmetrics/internal/logging"
	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
	"github.com/pgEdge/pgedge-retailmetrics/pkg/version"
)

// ImportConfig configures batch copy behavior.
type ImportConfig struct {
	// BatchSize is the number of rows per COPY.
	BatchSize int

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64

	// Source names where the data came from. It is stored as metadata.
	Source string
}

// DefaultImportConfig returns default import configuration.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		BatchSize:        5000,
		ProgressInterval: 100000,
	}
}

// ImportStats summarises one import.
type ImportStats struct {
	Rows      map[string]int64
	Signature loader.Signature
	Duration  time.Duration
}

// Import replaces the contents of the retail tables with ds. All tables
// are replaced in one transaction, so a Source never sees a partial
// import.
func Import(ctx context.Context, d DB, ds *model.Dataset, cfg ImportConfig) (ImportStats, error) {
	start := time.Now()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultImportConfig().BatchSize
	}

	if err := CreateSchema(ctx, d); err != nil {
		return ImportStats{}, err
	}

	tx, err := d.Begin(ctx)
	if err != nil {
		return ImportStats{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stats := ImportStats{Rows: make(map[string]int64, len(model.Tables))}
	for _, table := range model.Tables {
		n, err := copyTable(ctx, tx, table, copyRows(ds, table), cfg)
		if err != nil {
			return ImportStats{}, err
		}
		stats.Rows[table] = n
	}

	stats.Signature = loader.Signature(uuid.NewString())
	err = SaveMetadata(ctx, tx, map[string]string{
		MetaSignature:  string(stats.Signature),
		MetaVersion:    version.Short(),
		MetaImportedAt: time.Now().UTC().Format(time.RFC3339),
		MetaSource:     cfg.Source,
	})
	if err != nil {
		return ImportStats{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return ImportStats{}, fmt.Errorf("failed to commit import: %w", err)
	}

	stats.Duration = time.Since(start)
	logging.Info().
		Str("signature", string(stats.Signature)).
		Dur("duration", stats.Duration).
		Msg("Import complete")
	return stats, nil
}

func copyTable(ctx context.Context, tx pgx.Tx, table string, rows [][]any, cfg ImportConfig) (int64, error) {
	name := TableName(table)
	if _, err := tx.Exec(ctx, "TRUNCATE "+name); err != nil {
		return 0, fmt.Errorf("failed to truncate %s: %w", name, err)
	}

	progress := NewProgressReporter(name, int64(len(rows)), cfg.ProgressInterval)
	cols := ColumnNames(table)
	for start := 0; start < len(rows); start += cfg.BatchSize {
		batch := rows[start:min(start+cfg.BatchSize, len(rows))]
		n, err := tx.CopyFrom(ctx, pgx.Identifier{name}, cols, pgx.CopyFromRows(batch))
		if err != nil {
			return 0, fmt.Errorf("failed to copy into %s: %w", name, err)
		}
		progress.Update(n)
	}
	progress.Done()
	return progress.Rows(), nil
}

// copyRows converts one table of ds to COPY rows in ColumnNames order.
func copyRows(ds *model.Dataset, table string) [][]any {
	var rows [][]any
	switch table {
	case model.TableCustomers:
		rows = make([][]any, len(ds.Customers))
		for i, c := range ds.Customers {
			var age any
			if c.Age != nil {
				age = int32(*c.Age)
			}
			rows[i] = []any{c.ID, c.Name, age, c.Gender, c.Location, pgDate(c.SignupDate)}
		}
	case model.TableProducts:
		rows = make([][]any, len(ds.Products))
		for i, p := range ds.Products {
			rows[i] = []any{p.ID, p.Name, p.Category, pgNumeric(p.Price)}
		}
	case model.TableStores:
		rows = make([][]any, len(ds.Stores))
		for i, s := range ds.Stores {
			rows[i] = []any{s.ID, s.Name, s.City, s.Region}
		}
	case model.TableSales:
		rows = make([][]any, len(ds.Sales))
		for i, s := range ds.Sales {
			rows[i] = []any{s.ID, s.CustomerID, s.ProductID, s.StoreID, s.Quantity, pgDate(s.Date)}
		}
	case model.TableInventory:
		rows = make([][]any, len(ds.Inventory))
		for i, inv := range ds.Inventory {
			rows[i] = []any{inv.ProductID, inv.StockQuantity, pgDate(inv.LastUpdated)}
		}
	}
	return rows
}

func pgDate(d model.Date) pgtype.Date {
	if !d.Valid() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.Time(), Valid: true}
}

func pgNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}
