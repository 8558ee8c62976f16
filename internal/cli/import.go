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

	"github.com/pgEdge/pgedge-retailmetrics/internal/db"
	"github.com/pgEdge/pgedge-retailmetrics/internal/loader"
	"github.com/pgEdge/pgedge-retailmetrics/internal/logging"
)

var importDrop bool

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy the CSV tables into PostgreSQL",
	Long: `Load the CSV tables from the data directory and replace the contents of
the PostgreSQL tables with them in a single transaction. A new signature is
recorded so running watch processes using the postgres source reload.

Example:
  pgedge-retailmetrics import --data-dir ./data --connection "postgres://localhost/retail"`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importDrop, "drop", false,
		"drop the retail tables before importing")
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateImport(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	src := loader.NewDirSource(cfg.DataDir)
	ds, stats, err := loader.Load(ctx, src)
	if err != nil {
		return err
	}
	logging.Info().
		Str("source", src.Name()).
		Dur("duration", stats.Duration).
		Msg("Loaded CSV tables")

	pool, err := db.Connect(ctx, cfg.Connection, 2)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if importDrop {
		if err := db.DropSchema(ctx, pool); err != nil {
			return err
		}
	}

	importCfg := db.DefaultImportConfig()
	importCfg.Source = src.Name()
	if _, err := db.Import(ctx, pool, ds, importCfg); err != nil {
		return err
	}
	return nil
}
