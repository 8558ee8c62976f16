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
	"slices"

	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
)

// CohortMatrix is a cohort by month-offset grid. Counts has one row per
// cohort and one column per offset starting at 0; cells without activity
// hold 0. Retention divides each row by its offset-0 count and is nil for a
// cohort of size zero.
type CohortMatrix struct {
	Cohorts   []model.Month `json:"cohorts"`
	Offsets   []int         `json:"offsets"`
	Counts    [][]int       `json:"counts"`
	Retention [][]*float64  `json:"retention"`
}

// CohortPivot reshapes cohort activity cells into a CohortMatrix. Cells with
// a negative offset are ignored.
func CohortPivot(cells []model.CohortCell) CohortMatrix {
	rowOf := make(map[model.Month]int)
	maxOffset := -1
	for _, c := range cells {
		if c.Offset < 0 {
			continue
		}
		if _, ok := rowOf[c.Cohort]; !ok {
			rowOf[c.Cohort] = 0
		}
		maxOffset = max(maxOffset, c.Offset)
	}

	m := CohortMatrix{
		Cohorts:   make([]model.Month, 0, len(rowOf)),
		Offsets:   make([]int, maxOffset+1),
		Counts:    make([][]int, len(rowOf)),
		Retention: make([][]*float64, len(rowOf)),
	}
	for cohort := range rowOf {
		m.Cohorts = append(m.Cohorts, cohort)
	}
	slices.SortFunc(m.Cohorts, model.Month.Compare)
	for i, cohort := range m.Cohorts {
		rowOf[cohort] = i
		m.Counts[i] = make([]int, maxOffset+1)
		m.Retention[i] = make([]*float64, maxOffset+1)
	}
	for k := range m.Offsets {
		m.Offsets[k] = k
	}

	for _, c := range cells {
		if c.Offset < 0 {
			continue
		}
		m.Counts[rowOf[c.Cohort]][c.Offset] += c.Customers
	}

	for i, row := range m.Counts {
		size := float64(row[0])
		for k, n := range row {
			m.Retention[i][k] = Ratio(float64(n), size)
		}
	}
	return m
}
