//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/pgEdge/pgedge-retailmetrics/internal/loader"
	"github.com/pgEdge/pgedge-retailmetrics/internal/logging"
	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
)

// TablePrefix is prepended to every retail table name in the database.
const TablePrefix = "retail_"

type column struct {
	name    string
	sqlType string
}

// Referential integrity is not enforced: sales may name customers or
// products that do not exist, same as in CSV files.
var tableColumns = map[string][]column{
	model.TableCustomers: {
		{loader.ColCustomerID, "BIGINT PRIMARY KEY"},
		{loader.ColName, "TEXT NOT NULL"},
		{loader.ColAge, "INTEGER"},
		{loader.ColGender, "TEXT"},
		{loader.ColLocation, "TEXT"},
		{loader.ColSignupDate, "DATE"},
	},
	model.TableProducts: {
		{loader.ColProductID, "BIGINT PRIMARY KEY"},
		{loader.ColProductName, "TEXT NOT NULL"},
		{loader.ColCategory, "TEXT NOT NULL"},
		{loader.ColPrice, "NUMERIC NOT NULL"},
	},
	model.TableStores: {
		{loader.ColStoreID, "BIGINT PRIMARY KEY"},
		{loader.ColStoreName, "TEXT NOT NULL"},
		{loader.ColCity, "TEXT"},
		{loader.ColRegion, "TEXT"},
	},
	model.TableSales: {
		{loader.ColSaleID, "BIGINT PRIMARY KEY"},
		{loader.ColCustomerID, "BIGINT NOT NULL"},
		{loader.ColProductID, "BIGINT NOT NULL"},
		{loader.ColStoreID, "BIGINT NOT NULL"},
		{loader.ColQuantity, "BIGINT NOT NULL"},
		{loader.ColSaleDate, "DATE"},
	},
	model.TableInventory: {
		{loader.ColProductID, "BIGINT NOT NULL"},
		{loader.ColStockQuantity, "BIGINT NOT NULL"},
		{loader.ColLastUpdated, "DATE"},
	},
}

var tableIndexes = map[string][]string{
	model.TableSales: {
		"CREATE INDEX IF NOT EXISTS retail_sales_date_idx ON retail_sales (sale_date)",
		"CREATE INDEX IF NOT EXISTS retail_sales_customer_idx ON retail_sales (customer_id)",
	},
	model.TableInventory: {
		"CREATE INDEX IF NOT EXISTS retail_inventory_product_idx ON retail_inventory (product_id)",
	},
}

// TableName returns the database table holding a retail table.
func TableName(table string) string {
	return TablePrefix + table
}

// ColumnNames returns the column names of a retail table in order.
func ColumnNames(table string) []string {
	return lo.Map(tableColumns[table], func(c column, _ int) string { return c.name })
}

func createTableSQL(table string) string {
	defs := lo.Map(tableColumns[table], func(c column, _ int) string {
		return "    " + c.name + " " + c.sqlType
	})
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)",
		TableName(table), strings.Join(defs, ",\n"))
}

// CreateSchema creates the retail tables and the metadata table if they do
// not exist.
func CreateSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, createMetadataTableSQL); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}
	for _, table := range model.Tables {
		if _, err := q.Exec(ctx, createTableSQL(table)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", TableName(table), err)
		}
		for _, stmt := range tableIndexes[table] {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create index on %s: %w", TableName(table), err)
			}
		}
	}
	logging.Debug().Msg("Schema created")
	return nil
}

// DropSchema drops every retail table and the metadata table.
func DropSchema(ctx context.Context, q Querier) error {
	names := append(lo.Map(model.Tables, func(t string, _ int) string { return TableName(t) }), metadataTable)
	_, err := q.Exec(ctx, "DROP TABLE IF EXISTS "+strings.Join(names, ", "))
	if err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	logging.Info().Msg("Schema dropped")
	return nil
}
