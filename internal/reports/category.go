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

	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
)

// CategoryRevenue totals one product category.
type CategoryRevenue struct {
	Category     string          `json:"category"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalOrders  int64           `json:"total_orders"`
	UnitsSold    int64           `json:"units_sold"`
}

// CategoryRevenues groups sales by product category, ordered by revenue
// descending, then category name.
func CategoryRevenues(ds *model.Dataset, f Filter) []CategoryRevenue {
	byCategory := make(map[string]*totals)
	for _, l := range lines(ds, f) {
		group(byCategory, l.product.Category).add(l)
	}

	out := make([]CategoryRevenue, 0, len(byCategory))
	for c, t := range byCategory {
		out = append(out, CategoryRevenue{
			Category:     c,
			TotalRevenue: t.revenue,
			TotalOrders:  t.orderCount(),
			UnitsSold:    t.units,
		})
	}
	slices.SortFunc(out, func(a, b CategoryRevenue) int {
		if c := b.TotalRevenue.Cmp(a.TotalRevenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// CategoryRegionRevenue totals one category within one store region.
type CategoryRegionRevenue struct {
	Category     string          `json:"category"`
	Region       string          `json:"region"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	UnitsSold    int64           `json:"units_sold"`
}

type categoryRegion struct {
	category string
	region   string
}

// CategoryRegionRevenues crosses category with region. Sales whose store is
// unknown have no region and are left out. Rows are ordered by category,
// then revenue descending, then region.
func CategoryRegionRevenues(ds *model.Dataset, f Filter) []CategoryRegionRevenue {
	byKey := make(map[categoryRegion]*totals)
	for _, l := range lines(ds, f) {
		if l.store == nil {
			continue
		}
		group(byKey, categoryRegion{l.product.Category, l.store.Region}).add(l)
	}

	out := make([]CategoryRegionRevenue, 0, len(byKey))
	for k, t := range byKey {
		out = append(out, CategoryRegionRevenue{
			Category:     k.category,
			Region:       k.region,
			TotalRevenue: t.revenue,
			UnitsSold:    t.units,
		})
	}
	slices.SortFunc(out, func(a, b CategoryRegionRevenue) int {
		if c := cmp.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		if c := b.TotalRevenue.Cmp(a.TotalRevenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Region, b.Region)
	})
	return out
}

// ProductRevenue totals one product.
type ProductRevenue struct {
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Category     string          `json:"category"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	UnitsSold    int64           `json:"units_sold"`
}

// TopProducts returns the limit best-selling products by revenue, ties
// broken by product id. A non-positive limit yields no rows.
func TopProducts(ds *model.Dataset, f Filter, limit int) []ProductRevenue {
	if limit <= 0 {
		return []ProductRevenue{}
	}

	byProduct := make(map[int64]*totals)
	products := make(map[int64]*model.Product)
	for _, l := range lines(ds, f) {
		group(byProduct, l.product.ID).add(l)
		products[l.product.ID] = l.product
	}

	out := make([]ProductRevenue, 0, len(byProduct))
	for id, t := range byProduct {
		p := products[id]
		out = append(out, ProductRevenue{
			ProductID:    id,
			ProductName:  p.Name,
			Category:     p.Category,
			TotalRevenue: t.revenue,
			UnitsSold:    t.units,
		})
	}
	slices.SortFunc(out, func(a, b ProductRevenue) int {
		if c := b.TotalRevenue.Cmp(a.TotalRevenue); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	return out[:min(limit, len(out))]
}
