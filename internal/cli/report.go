//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retailmetrics/internal/catalog"
	"github.com/pgEdge/pgedge-retailmetrics/internal/config"
	"github.com/pgEdge/pgedge-retailmetrics/internal/db"
	"github.com/pgEdge/pgedge-retailmetrics/internal/loader"
	"github.com/pgEdge/pgedge-retailmetrics/internal/logging"
	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
	"github.com/pgEdge/pgedge-retailmetrics/internal/reports"
	"github.com/pgEdge/pgedge-retailmetrics/internal/snapshot"
	"github.com/pgEdge/pgedge-retailmetrics/internal/workload"
)

var (
	reportStore          string
	reportCategories     []string
	reportSince          string
	reportMonths         int
	reportRiskCutoff     float64
	reportCoverageMonths float64
	reportParetoCutoff   float64
	reportLimit          int
	reportWorkers        int
	reportOutput         string
)

var reportCmd = &cobra.Command{
	Use:   "report [names...]",
	Short: "Run reports and print them as JSON",
	Long: `Load the data source and run the named reports against it. Without
names every report is run. Results are printed to stdout as one JSON
document, or written to the file given with --output.

Example:
  pgedge-retailmetrics report --data-dir ./data
  pgedge-retailmetrics report monthly-kpi category-pareto --since 2024-01-01
  pgedge-retailmetrics report store-kpi --store Downtown --months 6
  pgedge-retailmetrics report low-stock-risk --risk-cutoff 20 --coverage-months 2`,
	RunE: runReport,
}

func init() {
	addReportFlags(reportCmd)
	reportCmd.Flags().StringVar(&reportOutput, "output", "",
		"write the JSON document to this file instead of stdout")
}

// addReportFlags registers the report parameter flags on cmd.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&reportStore, "store", "",
		"restrict sales to the store with this name")
	cmd.Flags().StringSliceVar(&reportCategories, "category", nil,
		"restrict sales to this product category (repeatable)")
	cmd.Flags().StringVar(&reportSince, "since", "",
		"drop sales before this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&reportMonths, "months", 0,
		"keep only the trailing number of months of monthly reports (0 = all)")
	cmd.Flags().Float64Var(&reportRiskCutoff, "risk-cutoff", 0,
		"low-stock percentile cutoff, 5 to 50")
	cmd.Flags().Float64Var(&reportCoverageMonths, "coverage-months", 0,
		"flag products with fewer months of stock coverage than this")
	cmd.Flags().Float64Var(&reportParetoCutoff, "pareto-cutoff", 0,
		"cumulative revenue share of the category Pareto prefix")
	cmd.Flags().IntVar(&reportLimit, "limit", 0,
		"number of rows of ranked reports")
	cmd.Flags().IntVar(&reportWorkers, "workers", 0,
		"number of reports run in parallel (0 = one per CPU)")
}

// applyReportFlags overrides the report configuration with flags that
// were set on cmd.
func applyReportFlags(cmd *cobra.Command, args []string) {
	r := &cfg.Reports
	if len(args) > 0 {
		r.Names = args
	}
	flags := cmd.Flags()
	if flags.Changed("store") {
		r.Store = reportStore
	}
	if flags.Changed("category") {
		r.Categories = reportCategories
	}
	if flags.Changed("since") {
		r.Since = reportSince
	}
	if flags.Changed("months") {
		r.Months = reportMonths
	}
	if flags.Changed("risk-cutoff") {
		r.RiskCutoff = reportRiskCutoff
	}
	if flags.Changed("coverage-months") {
		r.CoverageMonths = reportCoverageMonths
	}
	if flags.Changed("pareto-cutoff") {
		r.ParetoCutoff = reportParetoCutoff
	}
	if flags.Changed("limit") {
		r.Limit = reportLimit
	}
	if flags.Changed("workers") {
		r.Workers = reportWorkers
	}
}

// buildParams converts report configuration into catalog parameters.
func buildParams(r config.ReportsConfig) (catalog.Params, error) {
	p := catalog.DefaultParams()
	p.Filter = reports.Filter{
		StoreName:  r.Store,
		Categories: r.Categories,
	}
	if r.Since != "" {
		since, ok := model.ParseDate(r.Since)
		if !ok {
			return catalog.Params{}, fmt.Errorf("invalid since date %q", r.Since)
		}
		p.Filter.Since = since
	}
	p.Months = r.Months
	p.RiskCutoffPct = r.RiskCutoff
	p.CoverageMonths = r.CoverageMonths
	p.ParetoCutoff = r.ParetoCutoff
	p.MovingAverageWindow = r.MovingAverageWindow
	p.Limit = r.Limit
	return p, nil
}

// openSource returns the configured loader source and a function that
// releases it.
func openSource(ctx context.Context, c *config.Config) (loader.Source, func(), error) {
	if c.Source != config.SourcePostgres {
		return loader.NewDirSource(c.DataDir), func() {}, nil
	}

	pool, err := db.Connect(ctx, c.Connection, 4)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db.NewSource(pool, pool.Config().ConnConfig.Database), pool.Close, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	applyReportFlags(cmd, args)
	if err := cfg.ValidateReport(); err != nil {
		return err
	}

	params, err := buildParams(cfg.Reports)
	if err != nil {
		return err
	}
	selected, err := catalog.Lookup(cfg.Reports.Names)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	src, release, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	store := snapshot.NewStore(src)
	if err := store.Reload(ctx); err != nil {
		return err
	}

	executor := workload.NewExecutor(workload.ExecutorConfig{
		Workers: cfg.Reports.Workers,
		Params:  params,
	})
	doc, err := runBatch(ctx, executor, store.Current(), src.Name(), selected)
	if err != nil {
		return err
	}

	if err := writeOutput(cmd.OutOrStdout(), reportOutput, doc); err != nil {
		return err
	}

	logging.Info().
		Int("reports", len(doc.Results)).
		Str("snapshot_id", doc.Snapshot.ID).
		Msg("Reports complete")
	return nil
}
