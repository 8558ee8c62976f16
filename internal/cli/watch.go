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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retailmetrics/internal/catalog"
	"github.com/pgEdge/pgedge-retailmetrics/internal/logging"
	"github.com/pgEdge/pgedge-retailmetrics/internal/snapshot"
	"github.com/pgEdge/pgedge-retailmetrics/internal/workload"
)

var watchPollInterval int

var watchCmd = &cobra.Command{
	Use:   "watch [names...]",
	Short: "Rerun reports whenever the data source changes",
	Long: `Poll the data source and rerun the named reports (all when none are
given) every time a changed source has been loaded successfully. Each run
prints one JSON document. A source that fails to load is logged and the
previous data stays in use. Runs until interrupted with Ctrl+C.

Example:
  pgedge-retailmetrics watch --data-dir ./data --poll-interval 10
  pgedge-retailmetrics watch monthly-kpi --source postgres --connection "postgres://localhost/retail"`,
	RunE: runWatch,
}

func init() {
	addReportFlags(watchCmd)
	watchCmd.Flags().IntVar(&watchPollInterval, "poll-interval", 0,
		"how often to check the source for changes, in seconds")
}

func runWatch(cmd *cobra.Command, args []string) error {
	applyReportFlags(cmd, args)
	if cmd.Flags().Changed("poll-interval") {
		cfg.Watch.PollInterval = watchPollInterval
	}
	if err := cfg.ValidateWatch(); err != nil {
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	src, release, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	executor := workload.NewExecutor(workload.ExecutorConfig{
		Workers: cfg.Reports.Workers,
		Params:  params,
	})
	store := snapshot.NewStore(src)
	out := cmd.OutOrStdout()

	watcher := snapshot.NewWatcher(store, time.Duration(cfg.Watch.PollInterval)*time.Second,
		func(snap *snapshot.Snapshot) {
			doc, err := runBatch(ctx, executor, snap, src.Name(), selected)
			if err != nil {
				logging.Error().Err(err).Msg("Report run failed")
				return
			}
			if err := writeDocument(out, doc); err != nil {
				logging.Error().Err(err).Msg("Could not write reports")
			}
		})

	logging.Info().
		Str("source", src.Name()).
		Int("poll_interval", cfg.Watch.PollInterval).
		Int("reports", len(selected)).
		Msg("Starting watch")

	if err := watcher.Run(ctx); err != nil {
		return err
	}

	executor.PrintSummary()
	logging.Info().
		Int64("loads", store.Loads()).
		Int64("failures", store.Failures()).
		Msg("Watch stopped")
	return nil
}
