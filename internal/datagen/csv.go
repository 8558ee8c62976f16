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
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pgEdge/pgedge-retailmetrics/internal/loader"
	"github.com/pgEdge/pgedge-retailmetrics/internal/logging"
	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
)

// WriteCSV writes every table of ds to dir as <table>.csv. Each file is
// written to a temporary name first and renamed into place.
func WriteCSV(dir string, ds *model.Dataset) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	for _, table := range model.Tables {
		if err := writeTable(filepath.Join(dir, table+".csv"), table, records(ds, table)); err != nil {
			return err
		}
	}
	logging.Info().Str("dir", dir).Msg("Wrote CSV files")
	return nil
}

func writeTable(path, table string, rows [][]string) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	w := csv.NewWriter(file)
	_ = w.Write(loader.Schemas[table].Columns())
	_ = w.WriteAll(rows)
	if err := w.Error(); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to rename %s: %w", tmp, err)
	}

	logging.Debug().Str("table", table).Int("rows", len(rows)).Msg("Table written")
	return nil
}

// records formats one table in loader.Schemas column order.
func records(ds *model.Dataset, table string) [][]string {
	var rows [][]string
	switch table {
	case model.TableCustomers:
		for _, c := range ds.Customers {
			age := ""
			if c.Age != nil {
				age = strconv.Itoa(*c.Age)
			}
			rows = append(rows, []string{
				itoa(c.ID), c.Name, age, c.Gender, c.Location, c.SignupDate.String(),
			})
		}
	case model.TableProducts:
		for _, p := range ds.Products {
			rows = append(rows, []string{itoa(p.ID), p.Name, p.Category, p.Price.String()})
		}
	case model.TableStores:
		for _, s := range ds.Stores {
			rows = append(rows, []string{itoa(s.ID), s.Name, s.City, s.Region})
		}
	case model.TableSales:
		for _, s := range ds.Sales {
			rows = append(rows, []string{
				itoa(s.ID), itoa(s.CustomerID), itoa(s.ProductID), itoa(s.StoreID),
				itoa(s.Quantity), s.Date.String(),
			})
		}
	case model.TableInventory:
		for _, inv := range ds.Inventory {
			rows = append(rows, []string{itoa(inv.ProductID), itoa(inv.StockQuantity), inv.LastUpdated.String()})
		}
	}
	return rows
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
