//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package testutil

import (
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
)

// DatasetBuilder assembles small in-memory datasets for tests. Dates are
// given as strings; an empty or unparseable string becomes a null date.
type DatasetBuilder struct {
	customers []model.Customer
	products  []model.Product
	stores    []model.Store
	sales     []model.Sale
	inventory []model.InventorySnapshot
}

// NewDatasetBuilder returns an empty builder.
func NewDatasetBuilder() *DatasetBuilder {
	return &DatasetBuilder{}
}

// Customer adds a customer.
func (b *DatasetBuilder) Customer(id int64, name string) *DatasetBuilder {
	b.customers = append(b.customers, model.Customer{ID: id, Name: name})
	return b
}

// Product adds a product; price is a decimal string.
func (b *DatasetBuilder) Product(id int64, name, category, price string) *DatasetBuilder {
	b.products = append(b.products, model.Product{
		ID:       id,
		Name:     name,
		Category: category,
		Price:    decimal.RequireFromString(price),
	})
	return b
}

// Store adds a store.
func (b *DatasetBuilder) Store(id int64, name, city, region string) *DatasetBuilder {
	b.stores = append(b.stores, model.Store{ID: id, Name: name, City: city, Region: region})
	return b
}

// Sale adds a sale.
func (b *DatasetBuilder) Sale(id, customerID, productID, storeID, quantity int64, date string) *DatasetBuilder {
	d, _ := model.ParseDate(date)
	b.sales = append(b.sales, model.Sale{
		ID:         id,
		CustomerID: customerID,
		ProductID:  productID,
		StoreID:    storeID,
		Quantity:   quantity,
		Date:       d,
	})
	return b
}

// Inventory adds an inventory snapshot.
func (b *DatasetBuilder) Inventory(productID, stock int64, date string) *DatasetBuilder {
	d, _ := model.ParseDate(date)
	b.inventory = append(b.inventory, model.InventorySnapshot{
		ProductID:     productID,
		StockQuantity: stock,
		LastUpdated:   d,
	})
	return b
}

// Build indexes the accumulated rows.
func (b *DatasetBuilder) Build() *model.Dataset {
	return model.NewDataset(b.customers, b.products, b.stores, b.sales, b.inventory)
}

// RetailDataset is the shared fixture of the report tests: three stores
// (one without sales), three categories, a customer without purchases, a
// sale without a date and sales referencing an unknown customer and an
// unknown product.
func RetailDataset() *model.Dataset {
	return NewDatasetBuilder().
		Customer(1, "Ann Lee").
		Customer(2, "Bo Diaz").
		Customer(3, "Cy Park").
		Customer(4, "Di Moss").
		Product(10, "Kettle", "Home", "10.00").
		Product(11, "Lamp", "Home", "25.00").
		Product(20, "Ball", "Toys", "5.00").
		Product(30, "Novel", "Books", "12.50").
		Product(40, "Vase", "Home", "8.00").
		Store(100, "Downtown", "Boston", "East").
		Store(200, "Mall", "Denver", "West").
		Store(300, "Outlet", "Austin", "South").
		Sale(1000, 1, 10, 100, 2, "2024-01-15").
		Sale(1001, 1, 20, 200, 4, "2024-01-20").
		Sale(1002, 2, 11, 100, 1, "2024-02-03").
		Sale(1003, 1, 30, 100, 2, "2024-03-10").
		Sale(1004, 3, 10, 200, 3, "2024-03-11").
		Sale(1005, 2, 20, 200, 1, "2024-03-12").
		Sale(1006, 1, 10, 100, 1, "").
		Sale(1007, 9, 11, 100, 1, "2024-03-15").
		Sale(1008, 2, 99, 100, 5, "2024-03-20").
		Inventory(10, 40, "2024-01-31").
		Inventory(10, 60, "2024-02-29").
		Inventory(11, 5, "2024-02-29").
		Inventory(20, 0, "2024-02-29").
		Inventory(40, 100, "2024-02-29").
		Inventory(99, 7, "2024-02-29").
		Build()
}
