//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-retailmetrics/internal/metrics"
	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
	"github.com/pgEdge/pgedge-retailmetrics/internal/testutil"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"expected %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func month(y int, m time.Month) model.Month {
	return model.Month{Year: y, Month: m}
}

func TestMonthlyKPIs(t *testing.T) {
	rows := MonthlyKPIs(testutil.RetailDataset(), Filter{})
	require.Len(t, rows, 3)

	assert.Equal(t, month(2024, time.January), rows[0].Month)
	assertDecimal(t, "40", rows[0].TotalRevenue)
	assert.Equal(t, int64(2), rows[0].TotalOrders)
	assert.Equal(t, int64(6), rows[0].UnitsSold)
	require.True(t, rows[0].AverageOrderValue.Valid)
	assertDecimal(t, "20", rows[0].AverageOrderValue.Decimal)

	assert.Equal(t, month(2024, time.February), rows[1].Month)
	assertDecimal(t, "25", rows[1].TotalRevenue)

	assert.Equal(t, month(2024, time.March), rows[2].Month)
	assertDecimal(t, "85", rows[2].TotalRevenue)
	assert.Equal(t, int64(4), rows[2].TotalOrders)
	assert.Equal(t, int64(7), rows[2].UnitsSold)
	assertDecimal(t, "21.25", rows[2].AverageOrderValue.Decimal)
}

func TestMonthlyKPIsMatchesLineSums(t *testing.T) {
	ds := testutil.RetailDataset()
	for _, row := range MonthlyKPIs(ds, Filter{}) {
		revenue := decimal.Zero
		var units int64
		for _, s := range ds.Sales {
			p, ok := ds.Product(s.ProductID)
			if !ok || !s.Date.Valid() || s.Date.MonthOf() != row.Month {
				continue
			}
			revenue = revenue.Add(s.Revenue(p.Price))
			units += s.Quantity
		}
		assert.True(t, revenue.Equal(row.TotalRevenue), "month %s", row.Month)
		assert.Equal(t, units, row.UnitsSold, "month %s", row.Month)
		assert.True(t, row.TotalRevenue.Div(decimal.NewFromInt(row.TotalOrders)).Equal(row.AverageOrderValue.Decimal))
	}
}

func TestMonthlyKPIsSingleSale(t *testing.T) {
	ds := testutil.NewDatasetBuilder().
		Customer(1, "Solo").
		Product(1, "Widget", "Gadgets", "10").
		Store(1, "Main", "Reno", "West").
		Sale(1, 1, 1, 1, 2, "2024-05-05").
		Build()

	rows := MonthlyKPIs(ds, Filter{})
	require.Len(t, rows, 1)
	assertDecimal(t, "20", rows[0].TotalRevenue)
	assert.Equal(t, int64(1), rows[0].TotalOrders)
	assert.Equal(t, int64(2), rows[0].UnitsSold)
	assertDecimal(t, "20", rows[0].AverageOrderValue.Decimal)
}

func TestMonthlyKPIsFilters(t *testing.T) {
	ds := testutil.RetailDataset()

	since := MonthlyKPIs(ds, Filter{Since: model.NewDate(2024, time.March, 11)})
	require.Len(t, since, 1)
	assertDecimal(t, "60", since[0].TotalRevenue)

	toys := MonthlyKPIs(ds, Filter{Categories: []string{"Toys"}})
	require.Len(t, toys, 2)
	assertDecimal(t, "20", toys[0].TotalRevenue)
	assertDecimal(t, "5", toys[1].TotalRevenue)

	assert.Empty(t, MonthlyKPIs(ds, Filter{Categories: []string{"Garden"}}))
}

func TestStoreMonthlyKPIs(t *testing.T) {
	ds := testutil.RetailDataset()

	rows := StoreMonthlyKPIs(ds, "Downtown", Filter{})
	require.Len(t, rows, 3)
	assertDecimal(t, "20", rows[0].TotalRevenue)
	assertDecimal(t, "25", rows[1].TotalRevenue)
	assertDecimal(t, "50", rows[2].TotalRevenue)
	assert.Equal(t, int64(2), rows[2].TotalOrders)

	assert.Empty(t, StoreMonthlyKPIs(ds, "Nowhere", Filter{}))
	assert.Empty(t, StoreMonthlyKPIs(ds, "downtown", Filter{}))
	assert.Empty(t, StoreMonthlyKPIs(ds, "", Filter{}))
	assert.Empty(t, StoreMonthlyKPIs(ds, "Outlet", Filter{}))
}

func TestStoreSummaries(t *testing.T) {
	rows := StoreSummaries(testutil.RetailDataset(), Filter{})
	require.Len(t, rows, 3)

	assert.Equal(t, "Downtown", rows[0].StoreName)
	assertDecimal(t, "105", rows[0].TotalRevenue)
	assert.Equal(t, int64(5), rows[0].TotalOrders)
	assert.Equal(t, 3, rows[0].Customers)

	assert.Equal(t, "Mall", rows[1].StoreName)
	assertDecimal(t, "55", rows[1].TotalRevenue)
	assert.Equal(t, "West", rows[1].Region)

	assert.Equal(t, "Outlet", rows[2].StoreName)
	assert.True(t, rows[2].TotalRevenue.IsZero())
	assert.False(t, rows[2].AverageOrderValue.Valid)

	one := StoreSummaries(testutil.RetailDataset(), Filter{StoreName: "Mall"})
	require.Len(t, one, 1)
	assert.Equal(t, int64(200), one[0].StoreID)
}

func TestCategoryRevenues(t *testing.T) {
	rows := CategoryRevenues(testutil.RetailDataset(), Filter{})
	require.Len(t, rows, 3)

	assert.Equal(t, "Home", rows[0].Category)
	assertDecimal(t, "110", rows[0].TotalRevenue)
	assert.Equal(t, int64(8), rows[0].UnitsSold)
	assert.Equal(t, int64(5), rows[0].TotalOrders)

	// equal revenue falls back to category name
	assert.Equal(t, "Books", rows[1].Category)
	assert.Equal(t, "Toys", rows[2].Category)
	assertDecimal(t, "25", rows[2].TotalRevenue)
}

func TestCategoryRegionRevenues(t *testing.T) {
	rows := CategoryRegionRevenues(testutil.RetailDataset(), Filter{})
	require.Len(t, rows, 4)

	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r.Category + "/" + r.Region
	}
	assert.Equal(t, []string{"Books/East", "Home/East", "Home/West", "Toys/West"}, got)
	assertDecimal(t, "80", rows[1].TotalRevenue)
	assertDecimal(t, "30", rows[2].TotalRevenue)
}

func TestTopProducts(t *testing.T) {
	ds := testutil.RetailDataset()

	rows := TopProducts(ds, Filter{}, 2)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(10), rows[0].ProductID)
	assertDecimal(t, "60", rows[0].TotalRevenue)
	assert.Equal(t, int64(11), rows[1].ProductID)
	assertDecimal(t, "50", rows[1].TotalRevenue)

	mall := TopProducts(ds, Filter{StoreName: "Mall"}, 15)
	require.Len(t, mall, 2)
	assert.Equal(t, int64(10), mall[0].ProductID)
	assert.Equal(t, int64(20), mall[1].ProductID)

	assert.Empty(t, TopProducts(ds, Filter{}, 0))
}

func TestTopCustomers(t *testing.T) {
	ds := testutil.RetailDataset()

	rows := TopCustomers(ds, Filter{}, 10)
	require.Len(t, rows, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{rows[0].CustomerID, rows[1].CustomerID, rows[2].CustomerID})
	assert.Equal(t, []int{1, 2, 3}, []int{rows[0].Rank, rows[1].Rank, rows[2].Rank})
	assertDecimal(t, "75", rows[0].TotalRevenue)
	assert.Equal(t, 3, rows[0].Categories)
	assert.Equal(t, "Ann Lee", rows[0].CustomerName)

	home := TopCustomers(ds, Filter{Categories: []string{"Home"}}, 10)
	require.Len(t, home, 3)
	assert.Equal(t, []int64{1, 3, 2}, []int64{home[0].CustomerID, home[1].CustomerID, home[2].CustomerID})

	limited := TopCustomers(ds, Filter{}, 2)
	assert.Len(t, limited, 2)
	assert.Empty(t, TopCustomers(ds, Filter{}, -1))
}

func TestCustomerCategoryRevenues(t *testing.T) {
	rows := CustomerCategoryRevenues(testutil.RetailDataset(), Filter{})
	require.NotEmpty(t, rows)
	for _, r := range rows {
		assert.NotEqual(t, int64(9), r.CustomerID, "unknown customers are excluded")
	}
	assert.Equal(t, int64(1), rows[0].CustomerID)
	assert.Equal(t, "Books", rows[0].Category)
	assertDecimal(t, "25", rows[0].TotalRevenue)
}

func TestCustomerActivities(t *testing.T) {
	rows := CustomerActivities(testutil.RetailDataset(), Filter{})
	require.Len(t, rows, 3)

	ann := rows[0]
	assert.Equal(t, int64(1), ann.CustomerID)
	assert.Equal(t, int64(4), ann.Purchases)
	assert.Equal(t, int64(9), ann.UnitsSold)
	assert.Equal(t, 2, ann.Stores)
	assert.Equal(t, 3, ann.Products)
	assertDecimal(t, "75", ann.TotalRevenue)
	assert.Equal(t, model.NewDate(2024, time.January, 15), ann.FirstPurchase)
	assert.Equal(t, model.NewDate(2024, time.March, 10), ann.LastPurchase)

	assert.Equal(t, int64(2), rows[1].CustomerID)
	assert.Equal(t, int64(3), rows[2].CustomerID)
}

func TestSegmentation(t *testing.T) {
	ds := testutil.RetailDataset()

	customers := CustomerSegments(ds, Filter{})
	require.Len(t, customers, 3)
	assert.Equal(t, metrics.SegmentRepeat, customers[0].Segment)
	assert.Equal(t, 2, customers[0].OrderMonths)
	assertDecimal(t, "65", customers[0].TotalRevenue)
	assert.Equal(t, metrics.SegmentNew, customers[2].Segment)

	rows := Segmentation(ds, Filter{})
	require.Len(t, rows, 2)

	assert.Equal(t, metrics.SegmentNew, rows[0].Segment)
	assert.Equal(t, 1, rows[0].Customers)
	assertDecimal(t, "30", rows[0].TotalRevenue)
	assert.Equal(t, 1.0, rows[0].AvgOrderMonths)
	require.NotNil(t, rows[0].RevenueShare)
	assert.InDelta(t, 0.24, *rows[0].RevenueShare, 1e-12)

	assert.Equal(t, metrics.SegmentRepeat, rows[1].Segment)
	assert.Equal(t, 2, rows[1].Customers)
	assertDecimal(t, "95", rows[1].TotalRevenue)
	assert.InDelta(t, 0.76, *rows[1].RevenueShare, 1e-12)

	total := decimal.Zero
	for _, c := range customers {
		total = total.Add(c.TotalRevenue)
	}
	segTotal := decimal.Zero
	for _, r := range rows {
		segTotal = segTotal.Add(r.TotalRevenue)
	}
	assert.True(t, total.Equal(segTotal))
}

func TestSegmentationLoyal(t *testing.T) {
	b := testutil.NewDatasetBuilder().
		Customer(1, "Regular").
		Product(1, "Coffee", "Food", "4").
		Store(1, "Cafe", "Reno", "West")
	for m := 1; m <= 6; m++ {
		b.Sale(int64(m), 1, 1, 1, 1, model.NewDate(2024, time.Month(m), 1).String())
	}
	// a second sale in the same month does not add an order month
	b.Sale(100, 1, 1, 1, 1, "2024-06-20")

	rows := Segmentation(b.Build(), Filter{})
	require.Len(t, rows, 1)
	assert.Equal(t, metrics.SegmentLoyal, rows[0].Segment)
	assert.Equal(t, 6.0, rows[0].AvgOrderMonths)
	assert.Equal(t, 1.0, *rows[0].RevenueShare)
}

func TestSegmentationZeroRevenue(t *testing.T) {
	ds := testutil.NewDatasetBuilder().
		Customer(1, "Freebie").
		Product(1, "Sample", "Promo", "0").
		Store(1, "Main", "Reno", "West").
		Sale(1, 1, 1, 1, 1, "2024-01-01").
		Build()

	rows := Segmentation(ds, Filter{})
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].RevenueShare)
}

func TestCohortActivity(t *testing.T) {
	ds := testutil.NewDatasetBuilder().
		Customer(1, "A").Customer(2, "B").Customer(3, "C").Customer(4, "D").
		Product(1, "Tea", "Food", "3").
		Store(1, "Main", "Reno", "West").
		Sale(1, 1, 1, 1, 1, "2024-01-05").
		Sale(2, 2, 1, 1, 1, "2024-01-09").
		Sale(3, 1, 1, 1, 1, "2024-02-11").
		Sale(4, 1, 1, 1, 1, "2024-02-12").
		Sale(5, 2, 1, 1, 1, "2024-04-01").
		Sale(6, 3, 1, 1, 1, "2024-02-01").
		Sale(7, 3, 1, 1, 1, "2024-03-15").
		Sale(8, 4, 1, 1, 1, "").
		Build()

	jan := month(2024, time.January)
	feb := month(2024, time.February)
	cells := CohortActivity(ds, Filter{})
	assert.Equal(t, []model.CohortCell{
		{Cohort: jan, Offset: 0, Customers: 2},
		{Cohort: jan, Offset: 1, Customers: 1},
		{Cohort: jan, Offset: 3, Customers: 1},
		{Cohort: feb, Offset: 0, Customers: 1},
		{Cohort: feb, Offset: 1, Customers: 1},
	}, cells)

	rows := CohortRetentions(ds, Filter{})
	require.Len(t, rows, 5)
	for _, r := range rows {
		if r.Offset == 0 {
			assert.Equal(t, 1.0, r.Retention)
		}
	}
	assert.Equal(t, 2, rows[1].CohortSize)
	assert.Equal(t, 0.5, rows[1].Retention)

	matrix := metrics.CohortPivot(cells)
	assert.Equal(t, [][]int{{2, 1, 0, 1}, {1, 1, 0, 0}}, matrix.Counts)
}

func TestCohortActivityKeepsFirstEverCohort(t *testing.T) {
	ds := testutil.RetailDataset()
	jan := month(2024, time.January)
	feb := month(2024, time.February)
	mar := month(2024, time.March)

	assert.Equal(t, []model.CohortCell{
		{Cohort: jan, Offset: 0, Customers: 1},
		{Cohort: jan, Offset: 2, Customers: 1},
		{Cohort: feb, Offset: 0, Customers: 1},
		{Cohort: feb, Offset: 1, Customers: 1},
		{Cohort: mar, Offset: 0, Customers: 1},
	}, CohortActivity(ds, Filter{}))

	// customer 1 was acquired in January and must not reappear as a
	// March newcomer once January is filtered out
	since := Filter{Since: model.NewDate(2024, time.February, 1)}
	assert.Equal(t, []model.CohortCell{
		{Cohort: feb, Offset: 0, Customers: 1},
		{Cohort: feb, Offset: 1, Customers: 1},
		{Cohort: mar, Offset: 0, Customers: 1},
	}, CohortActivity(ds, since))

	for _, r := range CohortRetentions(ds, since) {
		assert.LessOrEqual(t, r.Retention, 1.0)
		if r.Offset == 0 {
			assert.Equal(t, 1.0, r.Retention)
		}
	}

	// customer 2 first bought at Downtown, so the Mall cohorts skip them
	mall := CohortActivity(ds, Filter{StoreName: "Mall"})
	assert.Equal(t, []model.CohortCell{
		{Cohort: jan, Offset: 0, Customers: 1},
		{Cohort: mar, Offset: 0, Customers: 1},
	}, mall)
}

func TestInventoryCoverages(t *testing.T) {
	rows := InventoryCoverages(testutil.RetailDataset(), Filter{})
	require.Len(t, rows, 4)

	ids := []int64{rows[0].ProductID, rows[1].ProductID, rows[2].ProductID, rows[3].ProductID}
	assert.Equal(t, []int64{10, 11, 40, 20}, ids)

	kettle := rows[0]
	assert.Equal(t, 2, kettle.Snapshots)
	assert.Equal(t, 50.0, kettle.AvgStock)
	assert.Equal(t, 2.5, kettle.AvgMonthlySales)
	require.NotNil(t, kettle.StockCoverage)
	assert.Equal(t, 20.0, *kettle.StockCoverage)

	vase := rows[2]
	assert.Equal(t, 0.0, vase.AvgMonthlySales)
	assert.Nil(t, vase.StockCoverage, "coverage without sales is undefined")

	ball := rows[3]
	require.NotNil(t, ball.StockCoverage)
	assert.Equal(t, 0.0, *ball.StockCoverage)

	toys := InventoryCoverages(testutil.RetailDataset(), Filter{Categories: []string{"Toys"}})
	require.Len(t, toys, 1)
	assert.Equal(t, int64(20), toys[0].ProductID)
}

func TestCategoryInventories(t *testing.T) {
	rows := CategoryInventories(testutil.RetailDataset(), Filter{})
	require.Len(t, rows, 2)

	assert.Equal(t, "Home", rows[0].Category)
	assert.Equal(t, 3, rows[0].SKUCount)
	assert.InDelta(t, 155.0/3, rows[0].AvgStock, 1e-9)
	assert.InDelta(t, 3.5/3, rows[0].AvgMonthlySales, 1e-9)

	assert.Equal(t, "Toys", rows[1].Category)
	assert.Equal(t, 1, rows[1].SKUCount)

	assert.Empty(t, CategoryInventories(testutil.NewDatasetBuilder().Build(), Filter{}))
}

func TestLowStockRisk(t *testing.T) {
	ds := testutil.RetailDataset()

	rows := LowStockRisk(ds, Filter{}, 50, 1)
	require.Len(t, rows, 3)

	assert.Equal(t, int64(11), rows[0].ProductID)
	assert.Equal(t, RiskPercentile, rows[0].Rule)
	assert.InDelta(t, 1.0/3, rows[0].Percentile, 1e-12)

	assert.Equal(t, int64(40), rows[1].ProductID)
	assert.Equal(t, RiskCoverage, rows[1].Rule, "null coverage fails the coverage rule")

	assert.Equal(t, int64(20), rows[2].ProductID)
	assert.Equal(t, RiskCoverage, rows[2].Rule)

	both := LowStockRisk(ds, Filter{}, 50, 5)
	require.NotEmpty(t, both)
	assert.Equal(t, int64(11), both[0].ProductID)
	assert.Equal(t, RiskBoth, both[0].Rule)
}

func TestLowStockRiskInvalidParameters(t *testing.T) {
	ds := testutil.RetailDataset()

	assert.Empty(t, LowStockRisk(ds, Filter{}, 4, 1))
	assert.Empty(t, LowStockRisk(ds, Filter{}, 51, 1))
	assert.Empty(t, LowStockRisk(ds, Filter{}, 15, -1))
	assert.NotNil(t, LowStockRisk(ds, Filter{}, 4, 1))
}

func TestLowStockRiskPercentileBoundary(t *testing.T) {
	b := testutil.NewDatasetBuilder().
		Customer(1, "Buyer").
		Store(1, "Depot", "Reno", "West")
	for i := int64(1); i <= 20; i++ {
		b.Product(i, "SKU", "Bulk", "1")
		b.Inventory(i, i*10, "2024-01-31")
		b.Sale(i, 1, i, 1, 1, "2024-01-15")
	}

	rows := LowStockRisk(b.Build(), Filter{}, 15, 0)
	require.Len(t, rows, 3)
	for i, r := range rows {
		assert.Equal(t, int64(i+1), r.ProductID)
		assert.Equal(t, RiskPercentile, r.Rule)
	}
	assert.InDelta(t, 0.15, rows[2].Percentile, 1e-12)
}

func TestReportsAreEmptyOnEmptyDataset(t *testing.T) {
	ds := testutil.NewDatasetBuilder().Build()
	f := Filter{}

	assert.Empty(t, MonthlyKPIs(ds, f))
	assert.Empty(t, StoreSummaries(ds, f))
	assert.Empty(t, CategoryRevenues(ds, f))
	assert.Empty(t, CategoryRegionRevenues(ds, f))
	assert.Empty(t, TopProducts(ds, f, 5))
	assert.Empty(t, TopCustomers(ds, f, 5))
	assert.Empty(t, CustomerActivities(ds, f))
	assert.Empty(t, Segmentation(ds, f))
	assert.Empty(t, CohortActivity(ds, f))
	assert.Empty(t, InventoryCoverages(ds, f))
	assert.Empty(t, LowStockRisk(ds, f, 15, 1))
}
