//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package reports

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-retailmetrics/internal/metrics"
	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
)

// MonthlyKPI holds the headline figures of one calendar month.
type MonthlyKPI struct {
	Month             model.Month         `json:"month"`
	TotalRevenue      decimal.Decimal     `json:"total_revenue"`
	TotalOrders       int64               `json:"total_orders"`
	UnitsSold         int64               `json:"units_sold"`
	AverageOrderValue decimal.NullDecimal `json:"average_order_value"`
}

// MonthlyKPIs groups sales by the calendar month of their sale date, in
// ascending month order. Sales without a date cannot be bucketed and are
// left out.
func MonthlyKPIs(ds *model.Dataset, f Filter) []MonthlyKPI {
	byMonth := make(map[model.Month]*totals)
	for _, l := range lines(ds, f) {
		m, ok := l.month()
		if !ok {
			continue
		}
		group(byMonth, m).add(l)
	}

	out := make([]MonthlyKPI, 0, len(byMonth))
	for m, t := range byMonth {
		out = append(out, MonthlyKPI{
			Month:             m,
			TotalRevenue:      t.revenue,
			TotalOrders:       t.orderCount(),
			UnitsSold:         t.units,
			AverageOrderValue: metrics.AOV(t.revenue, t.orderCount()),
		})
	}
	slices.SortFunc(out, func(a, b MonthlyKPI) int {
		return a.Month.Compare(b.Month)
	})
	return out
}

// StoreMonthlyKPIs is MonthlyKPIs for a single store, matched by exact
// name. An empty or unknown name yields no rows.
func StoreMonthlyKPIs(ds *model.Dataset, storeName string, f Filter) []MonthlyKPI {
	if storeName == "" {
		return []MonthlyKPI{}
	}
	f.StoreName = storeName
	return MonthlyKPIs(ds, f)
}

// StoreSummary totals one store over the whole filtered period.
type StoreSummary struct {
	StoreID           int64               `json:"store_id"`
	StoreName         string              `json:"store_name"`
	City              string              `json:"city"`
	Region            string              `json:"region"`
	TotalRevenue      decimal.Decimal     `json:"total_revenue"`
	TotalOrders       int64               `json:"total_orders"`
	UnitsSold         int64               `json:"units_sold"`
	Customers         int                 `json:"distinct_customers"`
	AverageOrderValue decimal.NullDecimal `json:"average_order_value"`
}

// StoreSummaries lists every store, including stores without matching
// sales which report zero totals and a null AOV. Rows are ordered by
// revenue descending, then store id.
func StoreSummaries(ds *model.Dataset, f Filter) []StoreSummary {
	byStore := make(map[int64]*totals)
	customers := make(map[int64]idSet)
	for _, l := range lines(ds, f) {
		if l.store == nil {
			continue
		}
		group(byStore, l.store.ID).add(l)
		if customers[l.store.ID] == nil {
			customers[l.store.ID] = make(idSet)
		}
		customers[l.store.ID].add(l.sale.CustomerID)
	}

	out := make([]StoreSummary, 0, len(ds.Stores))
	seen := make(idSet, len(ds.Stores))
	for _, s := range ds.Stores {
		if f.StoreName != "" && s.Name != f.StoreName {
			continue
		}
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen.add(s.ID)

		row := StoreSummary{
			StoreID:      s.ID,
			StoreName:    s.Name,
			City:         s.City,
			Region:       s.Region,
			TotalRevenue: decimal.Zero,
		}
		if t, ok := byStore[s.ID]; ok {
			row.TotalRevenue = t.revenue
			row.TotalOrders = t.orderCount()
			row.UnitsSold = t.units
			row.Customers = len(customers[s.ID])
			row.AverageOrderValue = metrics.AOV(t.revenue, t.orderCount())
		}
		out = append(out, row)
	}

	slices.SortFunc(out, func(a, b StoreSummary) int {
		if c := b.TotalRevenue.Cmp(a.TotalRevenue); c != 0 {
			return c
		}
		return cmp.Compare(a.StoreID, b.StoreID)
	})
	return out
}
