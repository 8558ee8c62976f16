//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-retailmetrics.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Source types.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config holds all configuration for pgedge-retailmetrics.
type Config struct {
	// Source selects where data is loaded from: csv or postgres.
	Source string `mapstructure:"source"`

	// DataDir is the directory holding the CSV tables.
	DataDir string `mapstructure:"data_dir"`

	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Reports holds report selection and parameters.
	Reports ReportsConfig `mapstructure:"reports"`

	// Watch holds configuration for the watch subcommand.
	Watch WatchConfig `mapstructure:"watch"`

	// Generate holds configuration for the generate subcommand.
	Generate GenerateConfig `mapstructure:"generate"`
}

// ReportsConfig holds report selection and parameters.
type ReportsConfig struct {
	// Names lists the reports to run. Empty runs all of them.
	Names []string `mapstructure:"names"`

	// Store restricts sales to one store, by name.
	Store string `mapstructure:"store"`

	// Categories restricts sales to products in these categories.
	Categories []string `mapstructure:"categories"`

	// Since drops sales before this date (YYYY-MM-DD).
	Since string `mapstructure:"since"`

	// Months keeps the trailing number of months of monthly series.
	Months int `mapstructure:"months"`

	// RiskCutoff is the low-stock percentile cutoff, 5 to 50.
	RiskCutoff float64 `mapstructure:"risk_cutoff"`

	// CoverageMonths is the low-stock coverage threshold in months.
	CoverageMonths float64 `mapstructure:"coverage_months"`

	// ParetoCutoff is the cumulative revenue share of the Pareto prefix.
	ParetoCutoff float64 `mapstructure:"pareto_cutoff"`

	// MovingAverageWindow is the window of the revenue moving average.
	MovingAverageWindow int `mapstructure:"moving_average_window"`

	// Limit caps ranked reports.
	Limit int `mapstructure:"limit"`

	// Workers is the number of reports run in parallel (0 = one per CPU).
	Workers int `mapstructure:"workers"`
}

// WatchConfig holds configuration for source polling.
type WatchConfig struct {
	// PollInterval is how often to check the source for changes (in seconds).
	PollInterval int `mapstructure:"poll_interval"`
}

// GenerateConfig holds configuration for sample data generation.
type GenerateConfig struct {
	// Seed makes generation reproducible. 0 picks a random seed.
	Seed uint64 `mapstructure:"seed"`

	Customers int `mapstructure:"customers"`
	Products  int `mapstructure:"products"`
	Stores    int `mapstructure:"stores"`
	Sales     int `mapstructure:"sales"`

	// Months is the number of months sales are spread over.
	Months int `mapstructure:"months"`

	// StartMonth is the first month of sales (YYYY-MM).
	StartMonth string `mapstructure:"start_month"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Source:   SourceCSV,
		DataDir:  ".",
		LogLevel: "info",
		Reports: ReportsConfig{
			RiskCutoff:          15,
			CoverageMonths:      1,
			ParetoCutoff:        0.8,
			MovingAverageWindow: 3,
			Limit:               15,
		},
		Watch: WatchConfig{
			PollInterval: 30,
		},
		Generate: GenerateConfig{
			Seed:       1,
			Customers:  500,
			Products:   120,
			Stores:     8,
			Sales:      20000,
			Months:     12,
			StartMonth: "2024-01",
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-retailmetrics.yaml
// 3. ~/.config/pgedge-retailmetrics/pgedge-retailmetrics.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("pgedge-retailmetrics")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-retailmetrics"))
	}

	// Use specific config file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configured source is usable.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceCSV:
		if c.DataDir == "" {
			return fmt.Errorf("data directory is required for the csv source")
		}
	case SourcePostgres:
		if c.Connection == "" {
			return fmt.Errorf("connection string is required for the postgres source")
		}
	default:
		return fmt.Errorf("source must be '%s' or '%s', got '%s'", SourceCSV, SourcePostgres, c.Source)
	}
	return nil
}

// ValidateReport checks configuration required for the report command.
func (c *Config) ValidateReport() error {
	if err := c.Validate(); err != nil {
		return err
	}
	r := c.Reports
	if r.RiskCutoff < 5 || r.RiskCutoff > 50 {
		return fmt.Errorf("risk_cutoff must be between 5 and 50")
	}
	if r.CoverageMonths < 0 {
		return fmt.Errorf("coverage_months must be non-negative")
	}
	if r.ParetoCutoff <= 0 || r.ParetoCutoff > 1 {
		return fmt.Errorf("pareto_cutoff must be in (0, 1]")
	}
	if r.Months < 0 {
		return fmt.Errorf("months must be non-negative")
	}
	if r.MovingAverageWindow < 1 {
		return fmt.Errorf("moving_average_window must be at least 1")
	}
	if r.Limit < 1 {
		return fmt.Errorf("limit must be at least 1")
	}
	if r.Workers < 0 {
		return fmt.Errorf("workers must be non-negative")
	}
	return nil
}

// ValidateWatch checks configuration required for the watch command.
func (c *Config) ValidateWatch() error {
	if err := c.ValidateReport(); err != nil {
		return err
	}
	if c.Watch.PollInterval < 1 {
		return fmt.Errorf("poll_interval must be at least 1 second")
	}
	return nil
}

// ValidateGenerate checks configuration required for the generate command.
func (c *Config) ValidateGenerate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	g := c.Generate
	if g.Customers < 1 || g.Products < 1 || g.Stores < 1 {
		return fmt.Errorf("customers, products and stores must be at least 1")
	}
	if g.Sales < 0 {
		return fmt.Errorf("sales must be non-negative")
	}
	if g.Months < 1 {
		return fmt.Errorf("months must be at least 1")
	}
	if g.StartMonth == "" {
		return fmt.Errorf("start_month is required")
	}
	return nil
}

// ValidateImport checks configuration required for the import command.
func (c *Config) ValidateImport() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}
