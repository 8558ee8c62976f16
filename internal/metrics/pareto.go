//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package metrics

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// DefaultParetoCutoff is the classic 80% share.
const DefaultParetoCutoff = 0.8

// LabeledValue is one input item of a Pareto decomposition.
type LabeledValue struct {
	Label string
	Value decimal.Decimal
}

// ParetoRow is one item after sorting, with its running totals.
type ParetoRow struct {
	Label           string          `json:"label"`
	Value           decimal.Decimal `json:"value"`
	Cumulative      decimal.Decimal `json:"cumulative"`
	CumulativeShare float64         `json:"cumulative_share"`
	InPrefix        bool            `json:"in_prefix"`
}

// ParetoResult is the full decomposition.
type ParetoResult struct {
	Rows    []ParetoRow `json:"rows"`
	Cutoff  float64     `json:"cutoff"`
	TopK    int         `json:"top_k"`
	Leaders []string    `json:"leaders"`
	Share   float64     `json:"share"`
}

// Pareto sorts items by value descending (label ascending on ties) and finds
// the smallest prefix whose cumulative share reaches cutoff. When every
// value is zero all shares are 0 and the prefix is the first row alone.
// When the cutoff is never reached the prefix is every row.
func Pareto(items []LabeledValue, cutoff float64) ParetoResult {
	sorted := slices.Clone(items)
	slices.SortFunc(sorted, func(a, b LabeledValue) int {
		if c := b.Value.Cmp(a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})

	res := ParetoResult{
		Rows:    make([]ParetoRow, len(sorted)),
		Cutoff:  cutoff,
		Leaders: []string{},
	}
	if len(sorted) == 0 {
		return res
	}

	total := decimal.Zero
	for _, it := range sorted {
		total = total.Add(it.Value)
	}
	threshold := decimal.NewFromFloat(cutoff)

	cum := decimal.Zero
	for i, it := range sorted {
		cum = cum.Add(it.Value)
		row := ParetoRow{Label: it.Label, Value: it.Value, Cumulative: cum}
		if !total.IsZero() {
			share := cum.Div(total)
			row.CumulativeShare = share.InexactFloat64()
			if res.TopK == 0 && share.GreaterThanOrEqual(threshold) {
				res.TopK = i + 1
			}
		}
		res.Rows[i] = row
	}

	switch {
	case total.IsZero():
		res.TopK = 1
	case res.TopK == 0:
		res.TopK = len(sorted)
	}

	for i := range res.Rows[:res.TopK] {
		res.Rows[i].InPrefix = true
		res.Leaders = append(res.Leaders, res.Rows[i].Label)
	}
	res.Share = res.Rows[res.TopK-1].CumulativeShare
	return res
}
