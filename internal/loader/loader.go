//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package loader turns named tabular sources into a typed model.Dataset.
package loader

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-retailmetrics/internal/logging"
	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
)

// Stats summarises one load.
type Stats struct {
	// Rows is the number of rows kept per table.
	Rows map[string]int

	// Skipped is the number of rows dropped per table because a key or
	// numeric field could not be parsed, or because the key repeats an
	// earlier row.
	Skipped map[string]int

	// NullDates is the number of kept rows whose date did not parse.
	NullDates map[string]int

	Duration time.Duration
}

func newStats() Stats {
	return Stats{
		Rows:      make(map[string]int, len(model.Tables)),
		Skipped:   make(map[string]int, len(model.Tables)),
		NullDates: make(map[string]int, len(model.Tables)),
	}
}

// Load reads every table from src and builds a new Dataset. It never merges
// with earlier state. Errors are *LoadError values wrapping
// ErrSourceUnavailable or ErrSchemaMismatch, or the context error.
func Load(ctx context.Context, src Source) (*model.Dataset, Stats, error) {
	start := time.Now()
	stats := newStats()

	tables := make(map[string]*RawTable, len(model.Tables))
	indexes := make(map[string]columnIndex, len(model.Tables))
	for _, name := range model.Tables {
		t, err := src.ReadTable(ctx, name)
		if err != nil {
			return nil, stats, err
		}
		t.Name = name
		idx, err := indexColumns(t)
		if err != nil {
			return nil, stats, err
		}
		tables[name] = t
		indexes[name] = idx
	}

	customers := parseCustomers(tables[model.TableCustomers], indexes[model.TableCustomers], &stats)
	products := parseProducts(tables[model.TableProducts], indexes[model.TableProducts], &stats)
	stores := parseStores(tables[model.TableStores], indexes[model.TableStores], &stats)
	sales := parseSales(tables[model.TableSales], indexes[model.TableSales], &stats)
	inventory := parseInventory(tables[model.TableInventory], indexes[model.TableInventory], &stats)

	ds := model.NewDataset(customers, products, stores, sales, inventory)
	stats.Duration = time.Since(start)

	for _, name := range model.Tables {
		ev := logging.Debug()
		if stats.Skipped[name] > 0 {
			ev = logging.Warn()
		}
		ev.Str("source", src.Name()).
			Str("table", name).
			Int("rows", stats.Rows[name]).
			Int("skipped", stats.Skipped[name]).
			Int("null_dates", stats.NullDates[name]).
			Msg("Loaded table")
	}

	return ds, stats, nil
}

// keySet tracks the primary keys kept so far; the first row with a key
// wins.
type keySet map[int64]struct{}

func (k keySet) add(id int64) bool {
	if _, dup := k[id]; dup {
		return false
	}
	k[id] = struct{}{}
	return true
}

func parseCustomers(t *RawTable, idx columnIndex, stats *Stats) []model.Customer {
	out := make([]model.Customer, 0, len(t.Rows))
	keys := make(keySet, len(t.Rows))
	for _, row := range t.Rows {
		id, err := parseInt(idx.cell(row, ColCustomerID))
		if err != nil || !keys.add(id) {
			stats.Skipped[t.Name]++
			continue
		}
		c := model.Customer{
			ID:       id,
			Name:     idx.cell(row, ColName),
			Gender:   idx.cell(row, ColGender),
			Location: idx.cell(row, ColLocation),
		}
		if age, err := parseInt(idx.cell(row, ColAge)); err == nil && age >= 0 {
			a := int(age)
			c.Age = &a
		}
		c.SignupDate, _ = model.ParseDate(idx.cell(row, ColSignupDate))
		out = append(out, c)
	}
	stats.Rows[t.Name] = len(out)
	return out
}

func parseProducts(t *RawTable, idx columnIndex, stats *Stats) []model.Product {
	out := make([]model.Product, 0, len(t.Rows))
	keys := make(keySet, len(t.Rows))
	for _, row := range t.Rows {
		id, err := parseInt(idx.cell(row, ColProductID))
		if err != nil {
			stats.Skipped[t.Name]++
			continue
		}
		price, err := decimal.NewFromString(idx.cell(row, ColPrice))
		if err != nil || price.IsNegative() || !keys.add(id) {
			stats.Skipped[t.Name]++
			continue
		}
		out = append(out, model.Product{
			ID:       id,
			Name:     idx.cell(row, ColProductName),
			Category: idx.cell(row, ColCategory),
			Price:    price,
		})
	}
	stats.Rows[t.Name] = len(out)
	return out
}

func parseStores(t *RawTable, idx columnIndex, stats *Stats) []model.Store {
	out := make([]model.Store, 0, len(t.Rows))
	keys := make(keySet, len(t.Rows))
	for _, row := range t.Rows {
		id, err := parseInt(idx.cell(row, ColStoreID))
		if err != nil || !keys.add(id) {
			stats.Skipped[t.Name]++
			continue
		}
		out = append(out, model.Store{
			ID:     id,
			Name:   idx.cell(row, ColStoreName),
			City:   idx.cell(row, ColCity),
			Region: idx.cell(row, ColRegion),
		})
	}
	stats.Rows[t.Name] = len(out)
	return out
}

func parseSales(t *RawTable, idx columnIndex, stats *Stats) []model.Sale {
	out := make([]model.Sale, 0, len(t.Rows))
	keys := make(keySet, len(t.Rows))
	for _, row := range t.Rows {
		var (
			s    model.Sale
			errs [5]error
		)
		s.ID, errs[0] = parseInt(idx.cell(row, ColSaleID))
		s.CustomerID, errs[1] = parseInt(idx.cell(row, ColCustomerID))
		s.ProductID, errs[2] = parseInt(idx.cell(row, ColProductID))
		s.StoreID, errs[3] = parseInt(idx.cell(row, ColStoreID))
		s.Quantity, errs[4] = parseInt(idx.cell(row, ColQuantity))
		if errors.Join(errs[:]...) != nil || s.Quantity <= 0 || !keys.add(s.ID) {
			stats.Skipped[t.Name]++
			continue
		}

		var ok bool
		if s.Date, ok = model.ParseDate(idx.cell(row, ColSaleDate)); !ok {
			stats.NullDates[t.Name]++
		}
		out = append(out, s)
	}
	stats.Rows[t.Name] = len(out)
	return out
}

func parseInventory(t *RawTable, idx columnIndex, stats *Stats) []model.InventorySnapshot {
	out := make([]model.InventorySnapshot, 0, len(t.Rows))
	for _, row := range t.Rows {
		productID, err1 := parseInt(idx.cell(row, ColProductID))
		stock, err2 := parseInt(idx.cell(row, ColStockQuantity))
		if err1 != nil || err2 != nil || stock < 0 {
			stats.Skipped[t.Name]++
			continue
		}

		snap := model.InventorySnapshot{ProductID: productID, StockQuantity: stock}
		var ok bool
		if snap.LastUpdated, ok = model.ParseDate(idx.cell(row, ColLastUpdated)); !ok {
			stats.NullDates[t.Name]++
		}
		out = append(out, snap)
	}
	stats.Rows[t.Name] = len(out)
	return out
}

// parseInt accepts plain integers and whole floats such as "12.0", which
// spreadsheet exports commonly produce.
func parseInt(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt64/2 {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return int64(f), nil
}
