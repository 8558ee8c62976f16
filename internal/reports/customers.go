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

// customerLines keeps the lines whose customer exists.
func customerLines(ds *model.Dataset, f Filter) []line {
	all := lines(ds, f)
	out := all[:0]
	for _, l := range all {
		if _, ok := ds.Customer(l.sale.CustomerID); ok {
			out = append(out, l)
		}
	}
	return out
}

func customerName(ds *model.Dataset, id int64) string {
	if c, ok := ds.Customer(id); ok {
		return c.Name
	}
	return ""
}

// CustomerCategoryRevenue is what one customer spent in one category.
type CustomerCategoryRevenue struct {
	CustomerID   int64           `json:"customer_id"`
	CustomerName string          `json:"name"`
	Category     string          `json:"category"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type customerCategory struct {
	customer int64
	category string
}

// CustomerCategoryRevenues groups revenue by customer and category, ordered
// by customer id then category.
func CustomerCategoryRevenues(ds *model.Dataset, f Filter) []CustomerCategoryRevenue {
	byKey := make(map[customerCategory]decimal.Decimal)
	for _, l := range customerLines(ds, f) {
		k := customerCategory{l.sale.CustomerID, l.product.Category}
		byKey[k] = byKey[k].Add(l.revenue)
	}

	out := make([]CustomerCategoryRevenue, 0, len(byKey))
	for k, rev := range byKey {
		out = append(out, CustomerCategoryRevenue{
			CustomerID:   k.customer,
			CustomerName: customerName(ds, k.customer),
			Category:     k.category,
			TotalRevenue: rev,
		})
	}
	slices.SortFunc(out, func(a, b CustomerCategoryRevenue) int {
		if c := cmp.Compare(a.CustomerID, b.CustomerID); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// RankedCustomer is a customer's position in a revenue ranking.
type RankedCustomer struct {
	Rank         int             `json:"rank"`
	CustomerID   int64           `json:"customer_id"`
	CustomerName string          `json:"name"`
	Categories   int             `json:"categories"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// TopCustomers sums each customer's revenue across the categories selected
// by f and ranks customers by that total, descending, ties broken by
// customer id. A non-positive limit yields no rows.
func TopCustomers(ds *model.Dataset, f Filter, limit int) []RankedCustomer {
	if limit <= 0 {
		return []RankedCustomer{}
	}

	byCustomer := make(map[int64]*RankedCustomer)
	for _, r := range CustomerCategoryRevenues(ds, f) {
		rc, ok := byCustomer[r.CustomerID]
		if !ok {
			rc = &RankedCustomer{
				CustomerID:   r.CustomerID,
				CustomerName: r.CustomerName,
				TotalRevenue: decimal.Zero,
			}
			byCustomer[r.CustomerID] = rc
		}
		rc.Categories++
		rc.TotalRevenue = rc.TotalRevenue.Add(r.TotalRevenue)
	}

	out := make([]RankedCustomer, 0, len(byCustomer))
	for _, rc := range byCustomer {
		out = append(out, *rc)
	}
	slices.SortFunc(out, func(a, b RankedCustomer) int {
		if c := b.TotalRevenue.Cmp(a.TotalRevenue); c != 0 {
			return c
		}
		return cmp.Compare(a.CustomerID, b.CustomerID)
	})

	out = out[:min(limit, len(out))]
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// CustomerActivity describes how a customer shops.
type CustomerActivity struct {
	CustomerID    int64           `json:"customer_id"`
	CustomerName  string          `json:"name"`
	Purchases     int64           `json:"purchases"`
	UnitsSold     int64           `json:"units"`
	Stores        int             `json:"distinct_stores"`
	Products      int             `json:"distinct_products"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	FirstPurchase model.Date      `json:"first_purchase"`
	LastPurchase  model.Date      `json:"last_purchase"`
}

// CustomerActivities lists purchasing customers ordered by purchases
// descending, then customer id.
func CustomerActivities(ds *model.Dataset, f Filter) []CustomerActivity {
	type acc struct {
		totals   *totals
		stores   idSet
		products idSet
		first    model.Date
		last     model.Date
	}

	byCustomer := make(map[int64]*acc)
	for _, l := range customerLines(ds, f) {
		a, ok := byCustomer[l.sale.CustomerID]
		if !ok {
			a = &acc{totals: newTotals(), stores: make(idSet), products: make(idSet)}
			byCustomer[l.sale.CustomerID] = a
		}
		a.totals.add(l)
		a.stores.add(l.sale.StoreID)
		a.products.add(l.sale.ProductID)
		if d := l.sale.Date; d.Valid() {
			if !a.first.Valid() || d.Before(a.first) {
				a.first = d
			}
			if !a.last.Valid() || a.last.Before(d) {
				a.last = d
			}
		}
	}

	out := make([]CustomerActivity, 0, len(byCustomer))
	for id, a := range byCustomer {
		out = append(out, CustomerActivity{
			CustomerID:    id,
			CustomerName:  customerName(ds, id),
			Purchases:     a.totals.orderCount(),
			UnitsSold:     a.totals.units,
			Stores:        len(a.stores),
			Products:      len(a.products),
			TotalRevenue:  a.totals.revenue,
			FirstPurchase: a.first,
			LastPurchase:  a.last,
		})
	}
	slices.SortFunc(out, func(a, b CustomerActivity) int {
		if c := cmp.Compare(b.Purchases, a.Purchases); c != 0 {
			return c
		}
		return cmp.Compare(a.CustomerID, b.CustomerID)
	})
	return out
}

// CustomerSegment is one customer's lifetime figures and bucket.
type CustomerSegment struct {
	CustomerID   int64           `json:"customer_id"`
	OrderMonths  int             `json:"order_months"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	Segment      metrics.Segment `json:"segment"`
}

// CustomerSegments counts, for each purchasing customer, the distinct
// calendar months with at least one order and sums their revenue. Only
// dated sales count, so that every counted dollar belongs to a segmented
// customer. Ordered by customer id.
func CustomerSegments(ds *model.Dataset, f Filter) []CustomerSegment {
	type acc struct {
		months  map[model.Month]struct{}
		revenue decimal.Decimal
	}

	byCustomer := make(map[int64]*acc)
	for _, l := range customerLines(ds, f) {
		m, ok := l.month()
		if !ok {
			continue
		}
		a, ok := byCustomer[l.sale.CustomerID]
		if !ok {
			a = &acc{months: make(map[model.Month]struct{}), revenue: decimal.Zero}
			byCustomer[l.sale.CustomerID] = a
		}
		a.months[m] = struct{}{}
		a.revenue = a.revenue.Add(l.revenue)
	}

	out := make([]CustomerSegment, 0, len(byCustomer))
	for id, a := range byCustomer {
		out = append(out, CustomerSegment{
			CustomerID:   id,
			OrderMonths:  len(a.months),
			TotalRevenue: a.revenue,
			Segment:      metrics.SegmentFor(len(a.months)),
		})
	}
	slices.SortFunc(out, func(a, b CustomerSegment) int {
		return cmp.Compare(a.CustomerID, b.CustomerID)
	})
	return out
}

// SegmentSummary aggregates the customers of one segment.
type SegmentSummary struct {
	Segment        metrics.Segment `json:"segment"`
	Customers      int             `json:"customers"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	AvgOrderMonths float64         `json:"avg_order_months"`
	RevenueShare   *float64        `json:"revenue_share"`
}

// Segmentation summarises CustomerSegments per segment, in New, Repeat,
// Loyal order. Segments without customers are omitted. Revenue share is
// null when total revenue is zero.
func Segmentation(ds *model.Dataset, f Filter) []SegmentSummary {
	customers := CustomerSegments(ds, f)

	type acc struct {
		customers int
		months    int
		revenue   decimal.Decimal
	}
	bySegment := make(map[metrics.Segment]*acc, len(metrics.Segments))
	total := decimal.Zero
	for _, c := range customers {
		a, ok := bySegment[c.Segment]
		if !ok {
			a = &acc{revenue: decimal.Zero}
			bySegment[c.Segment] = a
		}
		a.customers++
		a.months += c.OrderMonths
		a.revenue = a.revenue.Add(c.TotalRevenue)
		total = total.Add(c.TotalRevenue)
	}

	out := make([]SegmentSummary, 0, len(bySegment))
	for _, seg := range metrics.Segments {
		a, ok := bySegment[seg]
		if !ok {
			continue
		}
		row := SegmentSummary{
			Segment:        seg,
			Customers:      a.customers,
			TotalRevenue:   a.revenue,
			AvgOrderMonths: float64(a.months) / float64(a.customers),
		}
		if !total.IsZero() {
			share := a.revenue.Div(total).InexactFloat64()
			row.RevenueShare = &share
		}
		out = append(out, row)
	}
	return out
}
