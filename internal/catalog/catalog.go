//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package catalog names the dashboard reports. Each entry runs an
// aggregation together with its post-processing against one dataset.
package catalog

import (
	"github.com/pgEdge/pgedge-retailmetrics/internal/metrics"
	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
	"github.com/pgEdge/pgedge-retailmetrics/internal/reports"
)

// Params are the caller-supplied report parameters.
type Params struct {
	// Filter restricts the sales every report aggregates over.
	Filter reports.Filter

	// Months keeps the trailing number of months of monthly series.
	// 0 keeps all of them.
	Months int

	// RiskCutoffPct is the low-stock percentile cutoff, 5 to 50.
	RiskCutoffPct float64

	// CoverageMonths is the low-stock coverage threshold in months.
	CoverageMonths float64

	// ParetoCutoff is the cumulative share a Pareto prefix must reach.
	ParetoCutoff float64

	// MovingAverageWindow is the trailing window of monthly moving averages.
	MovingAverageWindow int

	// Limit caps ranked reports.
	Limit int
}

// DefaultParams returns the dashboard defaults.
func DefaultParams() Params {
	return Params{
		RiskCutoffPct:       15,
		CoverageMonths:      1,
		ParetoCutoff:        metrics.DefaultParetoCutoff,
		MovingAverageWindow: 3,
		Limit:               15,
	}
}

// Result is the output of one report run.
type Result struct {
	// Name is the report name.
	Name string `json:"report"`

	// Title is a human-readable heading.
	Title string `json:"title"`

	// RowCount is the number of rows in Rows.
	RowCount int `json:"row_count"`

	// Rows is a slice of the report's typed row records. It is never nil.
	Rows any `json:"rows"`

	// Summary holds report-level derived values, if any.
	Summary any `json:"summary,omitempty"`
}

// Report is a named, runnable dashboard report.
type Report struct {
	// Name is the report identifier.
	Name string

	// Title is a human-readable heading.
	Title string

	// Description describes what the report shows.
	Description string

	// Run computes the report. It must only read ds.
	Run func(ds *model.Dataset, p Params) Output
}

// Execute runs the report and labels its output.
func (r Report) Execute(ds *model.Dataset, p Params) Result {
	out := r.Run(ds, p)
	return Result{
		Name:     r.Name,
		Title:    r.Title,
		RowCount: out.RowCount,
		Rows:     out.Rows,
		Summary:  out.Summary,
	}
}

// Output is what a Run function returns.
type Output struct {
	Rows     any
	RowCount int
	Summary  any
}

func output[T any](rows []T, summary any) Output {
	if rows == nil {
		rows = []T{}
	}
	return Output{Rows: rows, RowCount: len(rows), Summary: summary}
}
