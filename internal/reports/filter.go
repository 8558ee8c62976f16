//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package reports implements the aggregation engine: one pure function per
// named report over an immutable model.Dataset. Results are typed rows in a
// fixed order, and an empty slice is a valid result.
package reports

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
)

// Filter restricts the sales a report aggregates over.
type Filter struct {
	// StoreName keeps sales of the store with exactly this name. An unknown
	// name matches nothing.
	StoreName string

	// Since keeps sales dated on or after this date. Sales without a date
	// are then dropped.
	Since model.Date

	// Categories keeps sales of products in these categories. Empty means
	// every category.
	Categories []string
}

func (f Filter) categorySet() map[string]struct{} {
	if len(f.Categories) == 0 {
		return nil
	}
	return lo.SliceToMap(f.Categories, func(c string) (string, struct{}) {
		return c, struct{}{}
	})
}

// matchesCategory applies only the category part of the filter.
func (f Filter) matchesCategory(category string) bool {
	if len(f.Categories) == 0 {
		return true
	}
	return lo.Contains(f.Categories, category)
}

// line is a sale joined with its product, and with its store when the store
// exists.
type line struct {
	sale    *model.Sale
	product *model.Product
	store   *model.Store
	revenue decimal.Decimal
}

func (l line) month() (model.Month, bool) {
	if !l.sale.Date.Valid() {
		return model.Month{}, false
	}
	return l.sale.Date.MonthOf(), true
}

// lines inner-joins sales with products and applies f. Sales whose product
// is unknown are dropped because they have no price. The store is looked up
// but only required when f names a store.
func lines(ds *model.Dataset, f Filter) []line {
	var wantStore int64
	if f.StoreName != "" {
		s, ok := ds.StoreByName(f.StoreName)
		if !ok {
			return nil
		}
		wantStore = s.ID
	}
	categories := f.categorySet()

	out := make([]line, 0, len(ds.Sales))
	for i := range ds.Sales {
		s := &ds.Sales[i]
		if f.StoreName != "" && s.StoreID != wantStore {
			continue
		}
		if f.Since.Valid() && (!s.Date.Valid() || s.Date.Before(f.Since)) {
			continue
		}
		p, ok := ds.Product(s.ProductID)
		if !ok {
			continue
		}
		if categories != nil {
			if _, ok := categories[p.Category]; !ok {
				continue
			}
		}
		st, _ := ds.Store(s.StoreID)
		out = append(out, line{sale: s, product: p, store: st, revenue: s.Revenue(p.Price)})
	}
	return out
}

// idSet counts distinct ids.
type idSet map[int64]struct{}

func (s idSet) add(id int64) {
	s[id] = struct{}{}
}

// totals accumulates the revenue, distinct orders and units of a group.
type totals struct {
	revenue decimal.Decimal
	orders  idSet
	units   int64
}

func newTotals() *totals {
	return &totals{revenue: decimal.Zero, orders: make(idSet)}
}

func (t *totals) add(l line) {
	t.revenue = t.revenue.Add(l.revenue)
	t.orders.add(l.sale.ID)
	t.units += l.sale.Quantity
}

func (t *totals) orderCount() int64 {
	return int64(len(t.orders))
}

// group returns the totals for key, creating them on first use.
func group[K comparable](m map[K]*totals, key K) *totals {
	t, ok := m[key]
	if !ok {
		t = newTotals()
		m[key] = t
	}
	return t
}
