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
)

// PercentileRanks returns, for each value, its ascending rank divided by the
// number of values. Tied values share the average of their ranks, so the
// lowest of n distinct values ranks 1/n and the highest 1.
func PercentileRanks(values []float64) []float64 {
	n := len(values)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(values[a], values[b])
	})

	for start := 0; start < n; {
		end := start
		for end+1 < n && values[order[end+1]] == values[order[start]] {
			end++
		}
		// positions start..end hold 1-based ranks start+1..end+1
		avg := float64(start+end+2) / 2
		for _, i := range order[start : end+1] {
			out[i] = avg / float64(n)
		}
		start = end + 1
	}
	return out
}
