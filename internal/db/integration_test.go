//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

//go:build integration
// +build integration

// Integration tests for the PostgreSQL source.
// Run with: go test -tags=integration ./internal/db/...
// Requires PostgreSQL to be available.
// Set PGEDGE_TEST_CONN environment variable to override connection string.

package db_test

import (
	"context"
	"testing"

	"github.com/pgEdge/pgedge-retailmetrics/internal/catalog"
	"github.com/pgEdge/pgedge-retailmetrics/internal/db"
	"github.com/pgEdge/pgedge-retailmetrics/internal/loader"
	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
	"github.com/pgEdge/pgedge-retailmetrics/internal/snapshot"
	"github.com/pgEdge/pgedge-retailmetrics/internal/testutil"
)

func TestImportRoundTrip(t *testing.T) {
	baseConnStr := testutil.SkipIfNoPostgres(t)

	tdb := testutil.NewTestDB(t, baseConnStr, "import")

	ctx := context.Background()
	pool, err := db.Connect(ctx, tdb.ConnString, 4)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	tdb.Track(pool)

	src := db.NewSource(pool, tdb.Name)

	t.Run("SignatureBeforeImport", func(t *testing.T) {
		if err := db.CreateSchema(ctx, pool); err != nil {
			t.Fatalf("CreateSchema failed: %v", err)
		}
		if _, err := src.Signature(ctx); err == nil {
			t.Error("Expected error before first import")
		}
	})

	want := testutil.RetailDataset()
	var first loader.Signature

	t.Run("Import", func(t *testing.T) {
		stats, err := db.Import(ctx, pool, want, db.DefaultImportConfig())
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if stats.Rows[model.TableSales] != int64(len(want.Sales)) {
			t.Errorf("Expected %d sales, got %d", len(want.Sales), stats.Rows[model.TableSales])
		}
		first = stats.Signature
	})

	t.Run("LoadMatchesDataset", func(t *testing.T) {
		got, _, err := loader.Load(ctx, src)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		for table, n := range want.RowCounts() {
			if got.RowCounts()[table] != n {
				t.Errorf("%s: expected %d rows, got %d", table, n, got.RowCounts()[table])
			}
		}

		r, _ := catalog.Get(catalog.MonthlyKPI)
		a := r.Execute(want, catalog.DefaultParams())
		b := r.Execute(got, catalog.DefaultParams())
		if a.RowCount != b.RowCount {
			t.Errorf("Expected %d months, got %d", a.RowCount, b.RowCount)
		}
	})

	t.Run("ReimportChangesSignature", func(t *testing.T) {
		store := snapshot.NewStore(src)
		if changed, err := store.Refresh(ctx); err != nil || !changed {
			t.Fatalf("Initial refresh: changed=%v err=%v", changed, err)
		}
		if changed, _ := store.Refresh(ctx); changed {
			t.Error("Expected no change without a new import")
		}

		stats, err := db.Import(ctx, pool, testutil.NewDatasetBuilder().Build(), db.DefaultImportConfig())
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if stats.Signature == first {
			t.Error("Expected a new signature")
		}
		if changed, err := store.Refresh(ctx); err != nil || !changed {
			t.Fatalf("Refresh after import: changed=%v err=%v", changed, err)
		}
		if n := len(store.Current().Data.Sales); n != 0 {
			t.Errorf("Expected empty sales after reimport, got %d", n)
		}
	})

	t.Run("Metadata", func(t *testing.T) {
		meta, err := db.GetAllMetadata(ctx, pool)
		if err != nil {
			t.Fatalf("GetAllMetadata failed: %v", err)
		}
		if meta[db.MetaVersion] == "" {
			t.Error("Expected version metadata")
		}
		exists, err := db.MetadataExists(ctx, pool)
		if err != nil || !exists {
			t.Errorf("Expected metadata table: exists=%v err=%v", exists, err)
		}
	})

	t.Run("DropSchema", func(t *testing.T) {
		if err := db.DropSchema(ctx, pool); err != nil {
			t.Fatalf("DropSchema failed: %v", err)
		}
	})
}
