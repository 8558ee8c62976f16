//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package metrics derives secondary values from aggregation results. Every
// function is pure and works on values already produced by the reports
// package.
package metrics

// MovingAverage returns the trailing mean over window points. The first
// window-1 entries are nil. A window below 1 yields all nils.
func MovingAverage(values []float64, window int) []*float64 {
	out := make([]*float64, len(values))
	if window < 1 {
		return out
	}

	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			avg := sum / float64(window)
			out[i] = &avg
		}
	}
	return out
}

// CumulativeSum returns the running total of values.
func CumulativeSum(values []float64) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		out[i] = sum
	}
	return out
}

// LastMonths keeps the trailing n rows of an ordered monthly series. n <= 0
// keeps everything.
func LastMonths[T any](rows []T, n int) []T {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[len(rows)-n:]
}

// Extremes returns the indexes of the first maximum and first minimum.
func Extremes(values []float64) (peak, low int, ok bool) {
	if len(values) == 0 {
		return 0, 0, false
	}
	for i, v := range values {
		if v > values[peak] {
			peak = i
		}
		if v < values[low] {
			low = i
		}
	}
	return peak, low, true
}

// Ratio returns num/den, or nil when den is zero.
func Ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	r := num / den
	return &r
}
