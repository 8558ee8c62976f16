//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-retailmetrics.
package cli

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retailmetrics/internal/catalog"
	"github.com/pgEdge/pgedge-retailmetrics/internal/config"
	"github.com/pgEdge/pgedge-retailmetrics/internal/logging"
	"github.com/pgEdge/pgedge-retailmetrics/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	dataDir    string
	source     string
	connection string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-retailmetrics",
		Short: "Retail sales, customer and inventory analytics",
		Long: `pgedge-retailmetrics loads retail sales, customer, product, store and
inventory tables from a directory of CSV files or from PostgreSQL, and
computes KPI, customer and inventory reports from them.

Reports are printed as JSON. The watch command keeps the data current and
reruns the reports whenever the source changes.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	decimal.MarshalJSONWithoutQuotes = true

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-retailmetrics.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"directory holding the CSV tables")
	rootCmd.PersistentFlags().StringVar(&source, "source", "",
		"data source (csv, postgres)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(watchCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if source != "" {
		cfg.Source = source
	}
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List available reports",
	Long: `List every report the report and watch commands can run. Reports are
selected by name; running without names runs all of them.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Available reports:")
		cmd.Println()
		for _, r := range catalog.All() {
			cmd.Printf("  %-20s %s\n", r.Name, r.Description)
		}
		cmd.Println()
		cmd.Println("Use 'pgedge-retailmetrics report <name>...' to run them.")
	},
}
