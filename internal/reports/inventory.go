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

	"github.com/samber/lo"

	"github.com/pgEdge/pgedge-retailmetrics/internal/metrics"
	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
)

// Parameter bounds for LowStockRisk.
const (
	MinRiskCutoffPct = 5
	MaxRiskCutoffPct = 50
)

// InventoryCoverage relates a product's stock to its sales rate.
type InventoryCoverage struct {
	ProductID       int64    `json:"product_id"`
	ProductName     string   `json:"product_name"`
	Category        string   `json:"category"`
	Snapshots       int      `json:"snapshots"`
	AvgStock        float64  `json:"avg_stock"`
	AvgMonthlySales float64  `json:"avg_monthly_sales"`
	StockCoverage   *float64 `json:"stock_coverage"`
}

// InventoryCoverages covers every known product with at least one inventory
// snapshot. avg_stock is the mean stock over its snapshots; avg_monthly_sales
// is the mean of per-month summed quantity over the months in which the
// product sold, and 0 when it never sold within f. Coverage is
// avg_stock/avg_monthly_sales and null when the product has no sales.
// Ordered by category then product id. An unknown store name gives an
// empty result.
func InventoryCoverages(ds *model.Dataset, f Filter) []InventoryCoverage {
	if f.StoreName != "" {
		if _, ok := ds.StoreByName(f.StoreName); !ok {
			return []InventoryCoverage{}
		}
	}

	type stock struct {
		sum   int64
		count int
	}
	stocks := make(map[int64]*stock)
	for _, snap := range ds.Inventory {
		s, ok := stocks[snap.ProductID]
		if !ok {
			s = &stock{}
			stocks[snap.ProductID] = s
		}
		s.sum += snap.StockQuantity
		s.count++
	}

	type productMonth struct {
		product int64
		month   model.Month
	}
	monthly := make(map[productMonth]int64)
	for _, l := range lines(ds, f) {
		m, ok := l.month()
		if !ok {
			continue
		}
		monthly[productMonth{l.product.ID, m}] += l.sale.Quantity
	}
	type sales struct {
		units  int64
		months int
	}
	byProduct := make(map[int64]*sales)
	for k, units := range monthly {
		s, ok := byProduct[k.product]
		if !ok {
			s = &sales{}
			byProduct[k.product] = s
		}
		s.units += units
		s.months++
	}

	out := make([]InventoryCoverage, 0, len(stocks))
	for _, id := range lo.Keys(stocks) {
		p, ok := ds.Product(id)
		if !ok || !f.matchesCategory(p.Category) {
			continue
		}
		st := stocks[id]
		row := InventoryCoverage{
			ProductID:   id,
			ProductName: p.Name,
			Category:    p.Category,
			Snapshots:   st.count,
			AvgStock:    float64(st.sum) / float64(st.count),
		}
		if s, ok := byProduct[id]; ok {
			row.AvgMonthlySales = float64(s.units) / float64(s.months)
		}
		row.StockCoverage = metrics.Ratio(row.AvgStock, row.AvgMonthlySales)
		out = append(out, row)
	}

	slices.SortFunc(out, func(a, b InventoryCoverage) int {
		if c := cmp.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	return out
}

// CategoryInventory rolls coverage up to the category level.
type CategoryInventory struct {
	Category        string  `json:"category"`
	AvgStock        float64 `json:"avg_stock"`
	AvgMonthlySales float64 `json:"avg_monthly_sales"`
	SKUCount        int     `json:"sku_count"`
}

// CategoryInventories averages InventoryCoverages per category.
func CategoryInventories(ds *model.Dataset, f Filter) []CategoryInventory {
	var out []CategoryInventory
	for _, rows := range chunkByCategory(InventoryCoverages(ds, f)) {
		ci := CategoryInventory{Category: rows[0].Category, SKUCount: len(rows)}
		for _, r := range rows {
			ci.AvgStock += r.AvgStock
			ci.AvgMonthlySales += r.AvgMonthlySales
		}
		ci.AvgStock /= float64(len(rows))
		ci.AvgMonthlySales /= float64(len(rows))
		out = append(out, ci)
	}
	if out == nil {
		return []CategoryInventory{}
	}
	return out
}

// RiskRule names the rule or rules that flagged a product.
type RiskRule string

const (
	RiskPercentile RiskRule = "Percentile"
	RiskCoverage   RiskRule = "Coverage"
	RiskBoth       RiskRule = "Both"
)

// StockRisk is a product flagged as at risk of running out.
type StockRisk struct {
	InventoryCoverage
	Percentile float64  `json:"stock_percentile"`
	Rule       RiskRule `json:"risk_rule"`
}

// LowStockRisk ranks products by avg_stock within their category and flags
// a product when its percentile is at most cutoffPct/100, or when its
// coverage is at most coverageMonths. Null coverage counts as failing the
// coverage rule. cutoffPct must lie in [5, 50] and coverageMonths must not
// be negative; otherwise no rows are returned. Only flagged products are
// returned, ordered by category, percentile, then product id.
func LowStockRisk(ds *model.Dataset, f Filter, cutoffPct, coverageMonths float64) []StockRisk {
	out := []StockRisk{}
	if cutoffPct < MinRiskCutoffPct || cutoffPct > MaxRiskCutoffPct || coverageMonths < 0 {
		return out
	}
	cutoff := cutoffPct / 100

	for _, rows := range chunkByCategory(InventoryCoverages(ds, f)) {
		ranks := metrics.PercentileRanks(lo.Map(rows, func(r InventoryCoverage, _ int) float64 {
			return r.AvgStock
		}))
		for i, r := range rows {
			byPercentile := ranks[i] <= cutoff
			byCoverage := r.StockCoverage == nil || *r.StockCoverage <= coverageMonths

			var rule RiskRule
			switch {
			case byPercentile && byCoverage:
				rule = RiskBoth
			case byPercentile:
				rule = RiskPercentile
			case byCoverage:
				rule = RiskCoverage
			default:
				continue
			}
			out = append(out, StockRisk{InventoryCoverage: r, Percentile: ranks[i], Rule: rule})
		}
	}

	slices.SortFunc(out, func(a, b StockRisk) int {
		if c := cmp.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Percentile, b.Percentile); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	return out
}

// chunkByCategory splits rows already sorted by category into runs.
func chunkByCategory(rows []InventoryCoverage) [][]InventoryCoverage {
	var out [][]InventoryCoverage
	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[end].Category == rows[start].Category {
			end++
		}
		out = append(out, rows[start:end])
		start = end
	}
	return out
}
