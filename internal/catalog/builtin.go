//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package catalog

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-retailmetrics/internal/metrics"
	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
	"github.com/pgEdge/pgedge-retailmetrics/internal/reports"
)

// Report names.
const (
	MonthlyKPI        = "monthly-kpi"
	StoreKPI          = "store-kpi"
	CategoryRevenue   = "category-revenue"
	CategoryPareto    = "category-pareto"
	CategoryRegion    = "category-region"
	StoreSummary      = "store-summary"
	TopProducts       = "top-products"
	TopCustomers      = "top-customers"
	CustomerActivity  = "customer-activity"
	Segmentation      = "segmentation"
	CohortRetention   = "cohort-retention"
	InventoryCoverage = "inventory-coverage"
	CategoryInventory = "category-inventory"
	LowStockRisk      = "low-stock-risk"
)

// MonthlyTrendRow is a monthly KPI row with its smoothed revenue.
// The moving average looks back across the whole series; the cumulative
// revenue starts at the first month shown.
type MonthlyTrendRow struct {
	reports.MonthlyKPI
	RevenueMovingAverage *float64 `json:"revenue_moving_average"`
	CumulativeRevenue    float64  `json:"cumulative_revenue"`
}

// TrendSummary describes a window of monthly KPIs as a whole.
type TrendSummary struct {
	Months       int                 `json:"months"`
	TotalRevenue decimal.Decimal     `json:"total_revenue"`
	TotalOrders  int64               `json:"total_orders"`
	UnitsSold    int64               `json:"units_sold"`
	WeightedAOV  decimal.NullDecimal `json:"weighted_aov"`
	PeakMonth    *model.Month        `json:"peak_month"`
	LowMonth     *model.Month        `json:"low_month"`
}

// ParetoSummary is the prefix part of a Pareto decomposition.
type ParetoSummary struct {
	Cutoff  float64  `json:"cutoff"`
	TopK    int      `json:"top_k"`
	Leaders []string `json:"leaders"`
	Share   float64  `json:"share"`
}

// RiskSummary counts flagged products per rule.
type RiskSummary struct {
	CutoffPct      float64 `json:"cutoff_pct"`
	CoverageMonths float64 `json:"coverage_months"`
	Flagged        int     `json:"flagged"`
	Percentile     int     `json:"percentile"`
	Coverage       int     `json:"coverage"`
	Both           int     `json:"both"`
}

func init() {
	Register(Report{
		Name:        MonthlyKPI,
		Title:       "Monthly KPIs",
		Description: "Revenue, orders, units and AOV per month with a moving average",
		Run: func(ds *model.Dataset, p Params) Output {
			return monthlyTrend(reports.MonthlyKPIs(ds, p.Filter), p)
		},
	})
	Register(Report{
		Name:        StoreKPI,
		Title:       "Store KPIs",
		Description: "Monthly KPIs of the store selected by name",
		Run: func(ds *model.Dataset, p Params) Output {
			return monthlyTrend(reports.StoreMonthlyKPIs(ds, p.Filter.StoreName, p.Filter), p)
		},
	})
	Register(Report{
		Name:        CategoryRevenue,
		Title:       "Revenue by Category",
		Description: "Revenue, orders and units per product category",
		Run: func(ds *model.Dataset, p Params) Output {
			return output(reports.CategoryRevenues(ds, p.Filter), nil)
		},
	})
	Register(Report{
		Name:        CategoryPareto,
		Title:       "Category Pareto",
		Description: "Smallest set of categories reaching the Pareto cutoff share of revenue",
		Run:         categoryPareto,
	})
	Register(Report{
		Name:        CategoryRegion,
		Title:       "Revenue by Category and Region",
		Description: "Category revenue crossed with store region",
		Run: func(ds *model.Dataset, p Params) Output {
			return output(reports.CategoryRegionRevenues(ds, p.Filter), nil)
		},
	})
	Register(Report{
		Name:        StoreSummary,
		Title:       "Store Summary",
		Description: "Totals and distinct customers per store",
		Run: func(ds *model.Dataset, p Params) Output {
			return output(reports.StoreSummaries(ds, p.Filter), nil)
		},
	})
	Register(Report{
		Name:        TopProducts,
		Title:       "Top Products",
		Description: "Best-selling products by revenue",
		Run: func(ds *model.Dataset, p Params) Output {
			return output(reports.TopProducts(ds, p.Filter, p.Limit), nil)
		},
	})
	Register(Report{
		Name:        TopCustomers,
		Title:       "Top Customers",
		Description: "Customers ranked by revenue across the selected categories",
		Run: func(ds *model.Dataset, p Params) Output {
			return output(reports.TopCustomers(ds, p.Filter, p.Limit), nil)
		},
	})
	Register(Report{
		Name:        CustomerActivity,
		Title:       "Customer Activity",
		Description: "Purchases, units, stores and products per customer",
		Run: func(ds *model.Dataset, p Params) Output {
			return output(reports.CustomerActivities(ds, p.Filter), nil)
		},
	})
	Register(Report{
		Name:        Segmentation,
		Title:       "Customer Segmentation",
		Description: "New, Repeat and Loyal customers by distinct order months",
		Run: func(ds *model.Dataset, p Params) Output {
			return output(reports.Segmentation(ds, p.Filter), nil)
		},
	})
	Register(Report{
		Name:        CohortRetention,
		Title:       "Cohort Retention",
		Description: "Active customers and retention by first-purchase month and offset",
		Run: func(ds *model.Dataset, p Params) Output {
			cells := reports.CohortActivity(ds, p.Filter)
			return output(reports.CohortRetentions(ds, p.Filter), metrics.CohortPivot(cells))
		},
	})
	Register(Report{
		Name:        InventoryCoverage,
		Title:       "Inventory Coverage",
		Description: "Average stock, average monthly sales and months of coverage per product",
		Run: func(ds *model.Dataset, p Params) Output {
			return output(reports.InventoryCoverages(ds, p.Filter), nil)
		},
	})
	Register(Report{
		Name:        CategoryInventory,
		Title:       "Inventory by Category",
		Description: "Average stock, average monthly sales and SKU count per category",
		Run: func(ds *model.Dataset, p Params) Output {
			return output(reports.CategoryInventories(ds, p.Filter), nil)
		},
	})
	Register(Report{
		Name:        LowStockRisk,
		Title:       "Low-Stock Risk",
		Description: "Products flagged by stock percentile within category or by coverage",
		Run:         lowStockRisk,
	})
}

func monthlyTrend(kpis []reports.MonthlyKPI, p Params) Output {
	revenue := lo.Map(kpis, func(k reports.MonthlyKPI, _ int) float64 {
		return k.TotalRevenue.InexactFloat64()
	})
	avg := metrics.MovingAverage(revenue, p.MovingAverageWindow)

	rows := make([]MonthlyTrendRow, len(kpis))
	for i, k := range kpis {
		rows[i] = MonthlyTrendRow{MonthlyKPI: k, RevenueMovingAverage: avg[i]}
	}
	rows = metrics.LastMonths(rows, p.Months)

	windowed := lo.Map(rows, func(r MonthlyTrendRow, _ int) float64 {
		return r.TotalRevenue.InexactFloat64()
	})
	for i, c := range metrics.CumulativeSum(windowed) {
		rows[i].CumulativeRevenue = c
	}

	summary := TrendSummary{
		Months:       len(rows),
		TotalRevenue: decimal.Zero,
		WeightedAOV: metrics.WeightedAOV(rows,
			func(r MonthlyTrendRow) decimal.Decimal { return r.TotalRevenue },
			func(r MonthlyTrendRow) int64 { return r.TotalOrders }),
	}
	for _, r := range rows {
		summary.TotalRevenue = summary.TotalRevenue.Add(r.TotalRevenue)
		summary.TotalOrders += r.TotalOrders
		summary.UnitsSold += r.UnitsSold
	}
	if peak, low, ok := metrics.Extremes(windowed); ok {
		summary.PeakMonth = &rows[peak].Month
		summary.LowMonth = &rows[low].Month
	}

	return output(rows, summary)
}

func categoryPareto(ds *model.Dataset, p Params) Output {
	if p.ParetoCutoff <= 0 || p.ParetoCutoff > 1 {
		return output[metrics.ParetoRow](nil, nil)
	}

	items := lo.Map(reports.CategoryRevenues(ds, p.Filter), func(c reports.CategoryRevenue, _ int) metrics.LabeledValue {
		return metrics.LabeledValue{Label: c.Category, Value: c.TotalRevenue}
	})
	res := metrics.Pareto(items, p.ParetoCutoff)
	return output(res.Rows, ParetoSummary{
		Cutoff:  res.Cutoff,
		TopK:    res.TopK,
		Leaders: res.Leaders,
		Share:   res.Share,
	})
}

func lowStockRisk(ds *model.Dataset, p Params) Output {
	rows := reports.LowStockRisk(ds, p.Filter, p.RiskCutoffPct, p.CoverageMonths)
	summary := RiskSummary{
		CutoffPct:      p.RiskCutoffPct,
		CoverageMonths: p.CoverageMonths,
		Flagged:        len(rows),
	}
	for _, r := range rows {
		switch r.Rule {
		case reports.RiskPercentile:
			summary.Percentile++
		case reports.RiskCoverage:
			summary.Coverage++
		case reports.RiskBoth:
			summary.Both++
		}
	}
	return output(rows, summary)
}
