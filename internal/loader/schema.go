//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package loader

import (
	"strings"

	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
)

// Column names of the backing tables.
const (
	ColCustomerID    = "customer_id"
	ColName          = "name"
	ColAge           = "age"
	ColGender        = "gender"
	ColLocation      = "location"
	ColSignupDate    = "signup_date"
	ColProductID     = "product_id"
	ColProductName   = "product_name"
	ColCategory      = "category"
	ColPrice         = "price"
	ColStoreID       = "store_id"
	ColStoreName     = "store_name"
	ColCity          = "city"
	ColRegion        = "region"
	ColSaleID        = "sale_id"
	ColQuantity      = "quantity"
	ColSaleDate      = "sale_date"
	ColStockQuantity = "stock_quantity"
	ColLastUpdated   = "last_updated"
)

// TableSchema lists the columns of one table.
type TableSchema struct {
	Required []string
	Optional []string
}

// Columns returns required columns followed by optional ones.
func (s TableSchema) Columns() []string {
	cols := make([]string, 0, len(s.Required)+len(s.Optional))
	cols = append(cols, s.Required...)
	return append(cols, s.Optional...)
}

// Schemas holds the expected columns of every table.
var Schemas = map[string]TableSchema{
	model.TableCustomers: {
		Required: []string{ColCustomerID, ColName},
		Optional: []string{ColAge, ColGender, ColLocation, ColSignupDate},
	},
	model.TableProducts: {
		Required: []string{ColProductID, ColProductName, ColCategory, ColPrice},
	},
	model.TableStores: {
		Required: []string{ColStoreID, ColStoreName, ColCity, ColRegion},
	},
	model.TableSales: {
		Required: []string{ColSaleID, ColCustomerID, ColProductID, ColStoreID, ColQuantity, ColSaleDate},
	},
	model.TableInventory: {
		Required: []string{ColProductID, ColStockQuantity, ColLastUpdated},
	},
}

// NormalizeColumn maps a header cell to its canonical column name.
func NormalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}

// columnIndex maps canonical column names to positions in a RawTable row.
type columnIndex map[string]int

// indexColumns checks the header of t against its schema. Optional columns
// that are absent map to -1.
func indexColumns(t *RawTable) (columnIndex, error) {
	schema, ok := Schemas[t.Name]
	if !ok {
		return nil, Unavailable(t.Name, nil)
	}

	seen := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		col := NormalizeColumn(h)
		if _, dup := seen[col]; !dup {
			seen[col] = i
		}
	}

	idx := make(columnIndex, len(schema.Required)+len(schema.Optional))
	for _, col := range schema.Required {
		i, ok := seen[col]
		if !ok {
			return nil, missingColumn(t.Name, col)
		}
		idx[col] = i
	}
	for _, col := range schema.Optional {
		i, ok := seen[col]
		if !ok {
			i = -1
		}
		idx[col] = i
	}
	return idx, nil
}

// cell returns the trimmed value of col in row, or "" when the column or
// cell is absent.
func (c columnIndex) cell(row []string, col string) string {
	i, ok := c[col]
	if !ok || i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
