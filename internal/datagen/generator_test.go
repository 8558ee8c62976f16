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
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-retailmetrics/internal/loader"
	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
)

func smallConfig() GeneratorConfig {
	cfg := DefaultGeneratorConfig()
	cfg.Customers = 30
	cfg.Products = 12
	cfg.Stores = 3
	cfg.Sales = 400
	cfg.Months = 4
	cfg.NullDateRate = 0.05
	return cfg
}

func TestGeneratorConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*GeneratorConfig)
		wantErr bool
	}{
		{"default", func(c *GeneratorConfig) {}, false},
		{"no customers", func(c *GeneratorConfig) { c.Customers = 0 }, true},
		{"no stores", func(c *GeneratorConfig) { c.Stores = 0 }, true},
		{"negative sales", func(c *GeneratorConfig) { c.Sales = -1 }, true},
		{"no sales", func(c *GeneratorConfig) { c.Sales = 0 }, false},
		{"no months", func(c *GeneratorConfig) { c.Months = 0 }, true},
		{"bad start", func(c *GeneratorConfig) { c.Start = model.Month{} }, true},
		{"bad null rate", func(c *GeneratorConfig) { c.NullDateRate = 2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGeneratorConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	cfg := smallConfig()
	ds, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	counts := ds.RowCounts()
	if counts[model.TableCustomers] != cfg.Customers {
		t.Errorf("Expected %d customers, got %d", cfg.Customers, counts[model.TableCustomers])
	}
	if counts[model.TableSales] != cfg.Sales {
		t.Errorf("Expected %d sales, got %d", cfg.Sales, counts[model.TableSales])
	}
	if counts[model.TableInventory] != cfg.Products*cfg.Months {
		t.Errorf("Expected %d snapshots, got %d", cfg.Products*cfg.Months, counts[model.TableInventory])
	}

	first := cfg.Start
	last := model.MonthFromIndex(cfg.Start.Index() + cfg.Months - 1)
	for _, s := range ds.Sales {
		if _, ok := ds.Customer(s.CustomerID); !ok {
			t.Fatalf("Sale %d references unknown customer %d", s.ID, s.CustomerID)
		}
		if _, ok := ds.Product(s.ProductID); !ok {
			t.Fatalf("Sale %d references unknown product %d", s.ID, s.ProductID)
		}
		if s.Quantity < 1 {
			t.Fatalf("Sale %d has quantity %d", s.ID, s.Quantity)
		}
		if !s.Date.Valid() {
			continue
		}
		m := s.Date.MonthOf()
		if m.Compare(first) < 0 || m.Compare(last) > 0 {
			t.Fatalf("Sale %d dated %s outside %s..%s", s.ID, s.Date, first, last)
		}
	}

	names := make(map[string]bool)
	for _, s := range ds.Stores {
		if names[s.Name] {
			t.Errorf("Duplicate store name %s", s.Name)
		}
		names[s.Name] = true
	}

	for _, inv := range ds.Inventory {
		if inv.StockQuantity < 0 {
			t.Fatalf("Negative stock for product %d", inv.ProductID)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := smallConfig()
	a, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Sales, b.Sales) {
		t.Error("Same seed produced different sales")
	}
	if !reflect.DeepEqual(a.Customers, b.Customers) {
		t.Error("Same seed produced different customers")
	}

	cfg.Seed = 2
	c, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(a.Sales, c.Sales) {
		t.Error("Different seeds produced identical sales")
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	ds, err := Generate(smallConfig())
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := WriteCSV(dir, ds); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	got, stats, err := loader.Load(context.Background(), loader.NewDirSource(dir))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for table, n := range stats.Skipped {
		if n != 0 {
			t.Errorf("%s: %d rows skipped", table, n)
		}
	}

	if !reflect.DeepEqual(ds.RowCounts(), got.RowCounts()) {
		t.Errorf("Row counts differ: %v != %v", ds.RowCounts(), got.RowCounts())
	}
	if !reflect.DeepEqual(ds.Sales, got.Sales) {
		t.Error("Sales differ after round trip")
	}
	for i, p := range ds.Products {
		if !p.Price.Equal(got.Products[i].Price) {
			t.Errorf("Product %d: price %s != %s", p.ID, p.Price, got.Products[i].Price)
		}
	}
	for i, c := range ds.Customers {
		if c.SignupDate != got.Customers[i].SignupDate {
			t.Errorf("Customer %d: signup %s != %s", c.ID, c.SignupDate, got.Customers[i].SignupDate)
		}
	}
}

func TestGenerateSpansMonths(t *testing.T) {
	cfg := smallConfig()
	cfg.Start = model.Month{Year: 2023, Month: time.November}
	ds, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}

	months := make(map[model.Month]bool)
	for _, s := range ds.Sales {
		if s.Date.Valid() {
			months[s.Date.MonthOf()] = true
		}
	}
	if len(months) != cfg.Months {
		t.Errorf("Expected sales in %d months, got %d", cfg.Months, len(months))
	}
}
