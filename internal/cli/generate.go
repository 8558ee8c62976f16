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
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retailmetrics/internal/datagen"
	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
)

var (
	generateSeed      uint64
	generateCustomers int
	generateProducts  int
	generateStores    int
	generateSales     int
	generateMonths    int
	generateStart     string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic dataset as CSV files",
	Long: `Generate a reproducible synthetic retail dataset and write it to the
data directory as customers.csv, products.csv, stores.csv, sales.csv and
inventory.csv. Existing files are replaced.

Example:
  pgedge-retailmetrics generate --data-dir ./data
  pgedge-retailmetrics generate --data-dir ./data --seed 7 --sales 100000 --months 24`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().Uint64Var(&generateSeed, "seed", 0,
		"random seed (0 = random)")
	generateCmd.Flags().IntVar(&generateCustomers, "customers", 0,
		"number of customers")
	generateCmd.Flags().IntVar(&generateProducts, "products", 0,
		"number of products")
	generateCmd.Flags().IntVar(&generateStores, "stores", 0,
		"number of stores")
	generateCmd.Flags().IntVar(&generateSales, "sales", 0,
		"number of sales")
	generateCmd.Flags().IntVar(&generateMonths, "months", 0,
		"number of months sales are spread over")
	generateCmd.Flags().StringVar(&generateStart, "start-month", "",
		"first month of sales (YYYY-MM)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	g := &cfg.Generate
	flags := cmd.Flags()
	if flags.Changed("seed") {
		g.Seed = generateSeed
	}
	if flags.Changed("customers") {
		g.Customers = generateCustomers
	}
	if flags.Changed("products") {
		g.Products = generateProducts
	}
	if flags.Changed("stores") {
		g.Stores = generateStores
	}
	if flags.Changed("sales") {
		g.Sales = generateSales
	}
	if flags.Changed("months") {
		g.Months = generateMonths
	}
	if flags.Changed("start-month") {
		g.StartMonth = generateStart
	}

	if err := cfg.ValidateGenerate(); err != nil {
		return err
	}
	start, err := model.ParseMonth(g.StartMonth)
	if err != nil {
		return err
	}

	genCfg := datagen.DefaultGeneratorConfig()
	genCfg.Seed = g.Seed
	genCfg.Customers = g.Customers
	genCfg.Products = g.Products
	genCfg.Stores = g.Stores
	genCfg.Sales = g.Sales
	genCfg.Months = g.Months
	genCfg.Start = start

	ds, err := datagen.Generate(genCfg)
	if err != nil {
		return err
	}
	return datagen.WriteCSV(cfg.DataDir, ds)
}
