//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package workload runs batches of reports against a snapshot.
package workload

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pgEdge/pgedge-retailmetrics/internal/catalog"
	"github.com/pgEdge/pgedge-retailmetrics/internal/logging"
	"github.com/pgEdge/pgedge-retailmetrics/internal/snapshot"
)

// ExecutorConfig holds configuration for the report executor.
type ExecutorConfig struct {
	Workers int // 0 means one per CPU
	Params  catalog.Params
}

// Executor runs reports concurrently. Every report of a batch reads the
// same snapshot.
type Executor struct {
	workers int
	params  catalog.Params

	// Metrics
	totalReports    atomic.Int64
	successReports  atomic.Int64
	failedReports   atomic.Int64
	totalDurationNs atomic.Int64
	startTime       time.Time

	// Per-report metrics
	reportMetrics sync.Map // map[string]*reportMetric
}

type reportMetric struct {
	count      atomic.Int64
	durationNs atomic.Int64
	rows       atomic.Int64
	errors     atomic.Int64
}

type job struct {
	index  int
	report catalog.Report
}

// NewExecutor creates a new report executor.
func NewExecutor(cfg ExecutorConfig) *Executor {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Executor{
		workers:   workers,
		params:    cfg.Params,
		startTime: time.Now(),
	}
}

// Run executes reports against snap and returns their results in the
// order the reports were given. A report that panics fails the batch.
func (e *Executor) Run(ctx context.Context, snap *snapshot.Snapshot, reports []catalog.Report) ([]catalog.Result, error) {
	if snap == nil {
		return nil, snapshot.ErrNoSnapshot
	}

	results := make([]catalog.Result, len(reports))
	errs := make([]error, len(reports))

	jobs := make(chan job)
	workers := min(e.workers, max(len(reports), 1))

	logging.Debug().
		Int("workers", workers).
		Int("reports", len(reports)).
		Str("snapshot_id", snap.ID.String()).
		Msg("Running reports")

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index], errs[j.index] = e.execute(snap, j.report)
			}
		}()
	}

	var cancelled error
feed:
	for i, r := range reports {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break feed
		case jobs <- job{index: i, report: r}:
		}
	}
	close(jobs)
	wg.Wait()

	if cancelled != nil {
		return nil, cancelled
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (e *Executor) execute(snap *snapshot.Snapshot, r catalog.Report) (res catalog.Result, err error) {
	start := time.Now()
	metric := e.getOrCreateReportMetric(r.Name)

	defer func() {
		d := time.Since(start).Nanoseconds()
		e.totalReports.Add(1)
		e.totalDurationNs.Add(d)
		metric.count.Add(1)
		metric.durationNs.Add(d)

		if p := recover(); p != nil {
			err = fmt.Errorf("report %s failed: %v", r.Name, p)
		}
		if err != nil {
			e.failedReports.Add(1)
			metric.errors.Add(1)
			logging.Error().Err(err).Str("report", r.Name).Msg("Report failed")
			return
		}
		e.successReports.Add(1)
		metric.rows.Add(int64(res.RowCount))
	}()

	res = r.Execute(snap.Data, e.params)
	return res, nil
}

func (e *Executor) getOrCreateReportMetric(name string) *reportMetric {
	if m, ok := e.reportMetrics.Load(name); ok {
		return m.(*reportMetric)
	}

	m := &reportMetric{}
	actual, _ := e.reportMetrics.LoadOrStore(name, m)
	return actual.(*reportMetric)
}

// Stats is a point-in-time copy of the executor's counters.
type Stats struct {
	Total   int64
	Success int64
	Failed  int64
}

// Stats returns the executor's counters.
func (e *Executor) Stats() Stats {
	return Stats{
		Total:   e.totalReports.Load(),
		Success: e.successReports.Load(),
		Failed:  e.failedReports.Load(),
	}
}

// PrintSummary logs a summary of all reports run so far.
func (e *Executor) PrintSummary() {
	elapsed := time.Since(e.startTime)
	total := e.totalReports.Load()
	durationNs := e.totalDurationNs.Load()

	var avgLatencyMs float64
	if total > 0 {
		avgLatencyMs = float64(durationNs) / float64(total) / 1e6
	}

	logging.Info().
		Dur("duration", elapsed).
		Int("workers", e.workers).
		Int64("total_reports", total).
		Int64("successful", e.successReports.Load()).
		Int64("failed", e.failedReports.Load()).
		Float64("avg_latency_ms", avgLatencyMs).
		Msg("Final summary")

	e.reportMetrics.Range(func(key, value interface{}) bool {
		name := key.(string)
		m := value.(*reportMetric)
		count := m.count.Load()

		var avgMs float64
		if count > 0 {
			avgMs = float64(m.durationNs.Load()) / float64(count) / 1e6
		}

		logging.Debug().
			Str("report", name).
			Int64("count", count).
			Int64("rows", m.rows.Load()).
			Int64("errors", m.errors.Load()).
			Float64("avg_latency_ms", avgMs).
			Msg("Report statistics")

		return true
	})
}
