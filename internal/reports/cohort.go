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

	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
)

// CohortActivity assigns each customer to the month of their first-ever
// dated purchase and counts, for every month offset from that cohort, the
// distinct customers with a purchase among the filtered sales. The cohort
// does not depend on f. Customers without a filtered purchase in their
// cohort month are left out, so a Since bound after a customer's
// acquisition drops them rather than moving them to a later cohort.
// Ordered by cohort then offset; every cohort has an offset-0 cell.
func CohortActivity(ds *model.Dataset, f Filter) []model.CohortCell {
	first := make(map[int64]model.Month)
	for _, l := range customerLines(ds, Filter{}) {
		m, ok := l.month()
		if !ok {
			continue
		}
		if cur, seen := first[l.sale.CustomerID]; !seen || m.Compare(cur) < 0 {
			first[l.sale.CustomerID] = m
		}
	}

	active := make(map[int64]map[model.Month]struct{})
	for _, l := range customerLines(ds, f) {
		m, ok := l.month()
		if !ok {
			continue
		}
		months, ok := active[l.sale.CustomerID]
		if !ok {
			months = make(map[model.Month]struct{})
			active[l.sale.CustomerID] = months
		}
		months[m] = struct{}{}
	}

	type cell struct {
		cohort model.Month
		offset int
	}
	counts := make(map[cell]int)
	for id, months := range active {
		cohort := first[id]
		if _, acquired := months[cohort]; !acquired {
			continue
		}
		for m := range months {
			counts[cell{cohort, m.Since(cohort)}]++
		}
	}

	out := make([]model.CohortCell, 0, len(counts))
	for c, n := range counts {
		out = append(out, model.CohortCell{Cohort: c.cohort, Offset: c.offset, Customers: n})
	}
	slices.SortFunc(out, func(a, b model.CohortCell) int {
		if c := a.Cohort.Compare(b.Cohort); c != 0 {
			return c
		}
		return cmp.Compare(a.Offset, b.Offset)
	})
	return out
}

// CohortRetention is one observed cell of the retention table.
type CohortRetention struct {
	Cohort          model.Month `json:"cohort"`
	Offset          int         `json:"offset"`
	ActiveCustomers int         `json:"active_customers"`
	CohortSize      int         `json:"cohort_size"`
	Retention       float64     `json:"retention"`
}

// CohortRetentions divides each CohortActivity cell by the size of its
// cohort at offset 0, so offset 0 is always 1.
func CohortRetentions(ds *model.Dataset, f Filter) []CohortRetention {
	cells := CohortActivity(ds, f)

	sizes := make(map[model.Month]int)
	for _, c := range cells {
		if c.Offset == 0 {
			sizes[c.Cohort] = c.Customers
		}
	}

	out := make([]CohortRetention, 0, len(cells))
	for _, c := range cells {
		size := sizes[c.Cohort]
		if size == 0 {
			continue
		}
		out = append(out, CohortRetention{
			Cohort:          c.Cohort,
			Offset:          c.Offset,
			ActiveCustomers: c.Customers,
			CohortSize:      size,
			Retention:       float64(c.Customers) / float64(size),
		})
	}
	return out
}
