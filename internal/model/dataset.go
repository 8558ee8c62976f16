//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package model

// Dataset is a complete, immutable set of loaded tables together with the
// lookup indexes the reports join through. Build it with NewDataset and do
// not modify the slices afterwards.
type Dataset struct {
	Customers []Customer
	Products  []Product
	Stores    []Store
	Sales     []Sale
	Inventory []InventorySnapshot

	customerByID map[int64]int
	productByID  map[int64]int
	storeByID    map[int64]int
	storeByName  map[string]int
}

// NewDataset indexes the given tables. When a key appears more than once
// the first row wins.
func NewDataset(customers []Customer, products []Product, stores []Store,
	sales []Sale, inventory []InventorySnapshot) *Dataset {
	ds := &Dataset{
		Customers:    customers,
		Products:     products,
		Stores:       stores,
		Sales:        sales,
		Inventory:    inventory,
		customerByID: make(map[int64]int, len(customers)),
		productByID:  make(map[int64]int, len(products)),
		storeByID:    make(map[int64]int, len(stores)),
		storeByName:  make(map[string]int, len(stores)),
	}

	for i, c := range customers {
		if _, ok := ds.customerByID[c.ID]; !ok {
			ds.customerByID[c.ID] = i
		}
	}
	for i, p := range products {
		if _, ok := ds.productByID[p.ID]; !ok {
			ds.productByID[p.ID] = i
		}
	}
	for i, s := range stores {
		if _, ok := ds.storeByID[s.ID]; !ok {
			ds.storeByID[s.ID] = i
		}
		if _, ok := ds.storeByName[s.Name]; !ok {
			ds.storeByName[s.Name] = i
		}
	}

	return ds
}

// Customer looks up a customer by id.
func (d *Dataset) Customer(id int64) (*Customer, bool) {
	i, ok := d.customerByID[id]
	if !ok {
		return nil, false
	}
	return &d.Customers[i], true
}

// Product looks up a product by id.
func (d *Dataset) Product(id int64) (*Product, bool) {
	i, ok := d.productByID[id]
	if !ok {
		return nil, false
	}
	return &d.Products[i], true
}

// Store looks up a store by id.
func (d *Dataset) Store(id int64) (*Store, bool) {
	i, ok := d.storeByID[id]
	if !ok {
		return nil, false
	}
	return &d.Stores[i], true
}

// StoreByName looks up a store by its exact name.
func (d *Dataset) StoreByName(name string) (*Store, bool) {
	i, ok := d.storeByName[name]
	if !ok {
		return nil, false
	}
	return &d.Stores[i], true
}

// RowCounts returns the number of rows per table, keyed by table name.
func (d *Dataset) RowCounts() map[string]int {
	return map[string]int{
		TableCustomers: len(d.Customers),
		TableProducts:  len(d.Products),
		TableStores:    len(d.Stores),
		TableSales:     len(d.Sales),
		TableInventory: len(d.Inventory),
	}
}
