//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package model defines the retail entities shared by the loader, the
// aggregation engine and the post-processor.
package model

import (
	"github.com/shopspring/decimal"
)

// Table names of the five backing sources.
const (
	TableCustomers = "customers"
	TableProducts  = "products"
	TableStores    = "stores"
	TableSales     = "sales"
	TableInventory = "inventory"
)

// Tables lists every backing source in load order.
var Tables = []string{
	TableCustomers,
	TableProducts,
	TableStores,
	TableSales,
	TableInventory,
}

// Customer is a shopper.
type Customer struct {
	ID         int64  `json:"customer_id"`
	Name       string `json:"name"`
	Age        *int   `json:"age"`
	Gender     string `json:"gender"`
	Location   string `json:"location"`
	SignupDate Date   `json:"signup_date"`
}

// Product is a sellable SKU.
type Product struct {
	ID       int64           `json:"product_id"`
	Name     string          `json:"product_name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
}

// Store is a physical point of sale.
type Store struct {
	ID     int64  `json:"store_id"`
	Name   string `json:"store_name"`
	City   string `json:"city"`
	Region string `json:"region"`
}

// Sale is one order line. Its unit price comes from the referenced Product.
type Sale struct {
	ID         int64 `json:"sale_id"`
	CustomerID int64 `json:"customer_id"`
	ProductID  int64 `json:"product_id"`
	StoreID    int64 `json:"store_id"`
	Quantity   int64 `json:"quantity"`
	Date       Date  `json:"sale_date"`
}

// Revenue returns quantity times the given unit price.
func (s Sale) Revenue(price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(s.Quantity))
}

// InventorySnapshot is one observation of a product's stock on hand.
type InventorySnapshot struct {
	ProductID     int64 `json:"product_id"`
	StockQuantity int64 `json:"stock_quantity"`
	LastUpdated   Date  `json:"last_updated"`
}

// CohortCell counts the distinct customers of a cohort that were active a
// given number of months after their first purchase.
type CohortCell struct {
	Cohort    Month `json:"cohort"`
	Offset    int   `json:"offset"`
	Customers int   `json:"active_customers"`
}
