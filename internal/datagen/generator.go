//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-retailmetrics/internal/logging"
	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
)

// Categories are the product categories generated datasets use.
var Categories = []string{
	"Electronics", "Home", "Grocery", "Apparel", "Toys", "Books", "Sports", "Beauty",
}

var categoryWeights = []int{18, 16, 22, 14, 8, 6, 9, 7}

// Regions are the store regions generated datasets use.
var Regions = []string{"North", "South", "East", "West", "Central"}

var (
	storeKinds    = []string{"Downtown", "Mall", "Outlet", "Plaza", "Market", "Express"}
	genders       = []string{"F", "M", "Other"}
	genderWeights = []int{48, 48, 4}
	quantities    = []int64{1, 2, 3, 4, 5}
	qtyWeights    = []int{50, 25, 12, 8, 5}
)

// GeneratorConfig sizes a generated dataset.
type GeneratorConfig struct {
	// Seed makes generation reproducible. 0 picks a random seed.
	Seed uint64

	Customers int
	Products  int
	Stores    int
	Sales     int

	// Months is the number of calendar months sales are spread over,
	// starting at Start.
	Months int
	Start  model.Month

	// NullDateRate is the share of sales written without a date.
	NullDateRate float64
}

// DefaultGeneratorConfig returns a year of data for a small chain.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:         1,
		Customers:    500,
		Products:     120,
		Stores:       8,
		Sales:        20000,
		Months:       12,
		Start:        model.Month{Year: 2024, Month: time.January},
		NullDateRate: 0.002,
	}
}

// Validate checks the configuration.
func (c GeneratorConfig) Validate() error {
	if c.Customers < 1 || c.Products < 1 || c.Stores < 1 {
		return fmt.Errorf("customers, products and stores must be at least 1")
	}
	if c.Sales < 0 {
		return fmt.Errorf("sales must not be negative, got %d", c.Sales)
	}
	if c.Months < 1 {
		return fmt.Errorf("months must be at least 1, got %d", c.Months)
	}
	if c.Start.Year < 1 || c.Start.Month < time.January || c.Start.Month > time.December {
		return fmt.Errorf("invalid start month %s", c.Start)
	}
	if c.NullDateRate < 0 || c.NullDateRate > 1 {
		return fmt.Errorf("null date rate must be between 0 and 1, got %g", c.NullDateRate)
	}
	return nil
}

// Generate builds a synthetic dataset. Customer and product activity is
// skewed so Pareto, segmentation and low-stock reports have something to
// find.
func Generate(cfg GeneratorConfig) (*model.Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := NewFakerWithSeed(cfg.Seed)
	start := cfg.Start.Start().Time()
	end := model.MonthFromIndex(cfg.Start.Index() + cfg.Months).Start().Time()

	customers := generateCustomers(f, cfg.Customers, start, end)
	products := generateProducts(f, cfg.Products)
	stores := generateStores(f, cfg.Stores)
	sales := generateSales(f, cfg, customers, products, stores, start, end)
	inventory := generateInventory(f, cfg, products)

	logging.Info().
		Int("customers", len(customers)).
		Int("products", len(products)).
		Int("stores", len(stores)).
		Int("sales", len(sales)).
		Int("inventory", len(inventory)).
		Msg("Generated dataset")

	return model.NewDataset(customers, products, stores, sales, inventory), nil
}

func generateCustomers(f *Faker, n int, start, end time.Time) []model.Customer {
	out := make([]model.Customer, n)
	for i := range out {
		c := model.Customer{
			ID:       int64(i + 1),
			Name:     f.Name(),
			Gender:   ChooseWeighted(f, genders, genderWeights),
			Location: f.NullableString(f.City(), 0.05),
		}
		if !f.Chance(0.05) {
			age := f.Int(18, 80)
			c.Age = &age
		}
		if !f.Chance(0.1) {
			c.SignupDate = model.DateOf(f.Date(start.AddDate(-2, 0, 0), end))
		}
		out[i] = c
	}
	return out
}

func generateProducts(f *Faker, n int) []model.Product {
	out := make([]model.Product, n)
	for i := range out {
		out[i] = model.Product{
			ID:       int64(i + 1),
			Name:     f.ProductName(),
			Category: ChooseWeighted(f, Categories, categoryWeights),
			Price:    decimal.NewFromFloat(f.Price(1, 400)).Round(2),
		}
	}
	return out
}

func generateStores(f *Faker, n int) []model.Store {
	out := make([]model.Store, n)
	seen := make(map[string]bool, n)
	for i := range out {
		city := f.City()
		name := city + " " + Choose(f, storeKinds)
		if seen[name] {
			name = fmt.Sprintf("%s %d", name, i+1)
		}
		seen[name] = true
		out[i] = model.Store{
			ID:     int64(i + 1),
			Name:   name,
			City:   city,
			Region: Choose(f, Regions),
		}
	}
	return out
}

func generateSales(f *Faker, cfg GeneratorConfig, customers []model.Customer, products []model.Product,
	stores []model.Store, start, end time.Time) []model.Sale {
	out := make([]model.Sale, cfg.Sales)
	for i := range out {
		s := model.Sale{
			ID:         int64(i + 1),
			CustomerID: customers[f.Skewed(len(customers))].ID,
			ProductID:  products[f.Skewed(len(products))].ID,
			StoreID:    Choose(f, stores).ID,
			Quantity:   ChooseWeighted(f, quantities, qtyWeights),
		}
		if !f.Chance(cfg.NullDateRate) {
			s.Date = model.DateOf(f.Date(start, end.Add(-time.Second)))
		}
		out[i] = s
	}
	return out
}

// generateInventory takes one snapshot per product at the end of every
// month.
func generateInventory(f *Faker, cfg GeneratorConfig, products []model.Product) []model.InventorySnapshot {
	out := make([]model.InventorySnapshot, 0, len(products)*cfg.Months)
	for _, p := range products {
		base := f.Int64(0, 400)
		for m := 0; m < cfg.Months; m++ {
			monthEnd := model.MonthFromIndex(cfg.Start.Index()+m+1).Start().Time().AddDate(0, 0, -1)
			stock := max(base+f.Int64(-40, 40), 0)
			out = append(out, model.InventorySnapshot{
				ProductID:     p.ID,
				StockQuantity: stock,
				LastUpdated:   model.DateOf(monthEnd),
			})
		}
	}
	return out
}
