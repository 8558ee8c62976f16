//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-retailmetrics/internal/loader"
	"github.com/pgEdge/pgedge-retailmetrics/internal/metrics"
	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
	"github.com/pgEdge/pgedge-retailmetrics/internal/reports"
	"github.com/pgEdge/pgedge-retailmetrics/internal/testutil"
)

func TestRegistry(t *testing.T) {
	names := List()
	assert.Len(t, names, 14)
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, MonthlyKPI)
	assert.Contains(t, names, LowStockRisk)

	r, err := Get(CohortRetention)
	require.NoError(t, err)
	assert.Equal(t, "Cohort Retention", r.Title)
	assert.NotEmpty(t, r.Description)

	_, err = Get("no-such-report")
	assert.EqualError(t, err, "unknown report: no-such-report")

	all, err := Lookup(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(names))

	some, err := Lookup([]string{Segmentation, MonthlyKPI})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, Segmentation, some[0].Name)

	_, err = Lookup([]string{MonthlyKPI, "bogus"})
	assert.Error(t, err)
}

func run(t *testing.T, name string, ds *model.Dataset, p Params) Result {
	t.Helper()
	r, err := Get(name)
	require.NoError(t, err)
	return r.Execute(ds, p)
}

func TestMonthlyKPIReport(t *testing.T) {
	res := run(t, MonthlyKPI, testutil.RetailDataset(), DefaultParams())
	assert.Equal(t, MonthlyKPI, res.Name)
	assert.Equal(t, 3, res.RowCount)

	rows := res.Rows.([]MonthlyTrendRow)
	assert.Nil(t, rows[0].RevenueMovingAverage)
	assert.Nil(t, rows[1].RevenueMovingAverage)
	require.NotNil(t, rows[2].RevenueMovingAverage)
	assert.InDelta(t, 50.0, *rows[2].RevenueMovingAverage, 1e-9)
	assert.Equal(t, 150.0, rows[2].CumulativeRevenue)

	summary := res.Summary.(TrendSummary)
	assert.Equal(t, 3, summary.Months)
	assert.True(t, decimal.NewFromInt(150).Equal(summary.TotalRevenue))
	require.True(t, summary.WeightedAOV.Valid)
	assert.True(t, decimal.NewFromInt(150).Div(decimal.NewFromInt(7)).Equal(summary.WeightedAOV.Decimal))
	assert.Equal(t, model.Month{Year: 2024, Month: time.March}, *summary.PeakMonth)
	assert.Equal(t, model.Month{Year: 2024, Month: time.February}, *summary.LowMonth)
}

func TestMonthlyKPIReportWindow(t *testing.T) {
	p := DefaultParams()
	p.Months = 2
	res := run(t, MonthlyKPI, testutil.RetailDataset(), p)

	rows := res.Rows.([]MonthlyTrendRow)
	require.Len(t, rows, 2)
	assert.Equal(t, time.February, rows[0].Month.Month)
	// the moving average is computed before the window is applied
	require.NotNil(t, rows[1].RevenueMovingAverage)
	// the running total starts at the first month shown
	assert.Equal(t, 25.0, rows[0].CumulativeRevenue)
	assert.Equal(t, 110.0, rows[1].CumulativeRevenue)

	summary := res.Summary.(TrendSummary)
	assert.True(t, decimal.NewFromInt(22).Equal(summary.WeightedAOV.Decimal))
}

func TestStoreKPIReport(t *testing.T) {
	p := DefaultParams()
	p.Filter = reports.Filter{StoreName: "Mall"}
	res := run(t, StoreKPI, testutil.RetailDataset(), p)
	assert.Equal(t, 2, res.RowCount)

	p.Filter.StoreName = "Nowhere"
	res = run(t, StoreKPI, testutil.RetailDataset(), p)
	assert.Equal(t, 0, res.RowCount)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
	assert.Nil(t, res.Summary.(TrendSummary).PeakMonth)
}

func TestCategoryParetoReport(t *testing.T) {
	res := run(t, CategoryPareto, testutil.RetailDataset(), DefaultParams())
	require.Equal(t, 3, res.RowCount)

	summary := res.Summary.(ParetoSummary)
	assert.Equal(t, 2, summary.TopK)
	assert.Equal(t, []string{"Home", "Books"}, summary.Leaders)
	assert.InDelta(t, 0.84375, summary.Share, 1e-12)

	p := DefaultParams()
	p.ParetoCutoff = 0
	res = run(t, CategoryPareto, testutil.RetailDataset(), p)
	assert.Equal(t, 0, res.RowCount)
	assert.Equal(t, []metrics.ParetoRow{}, res.Rows)
}

func TestLowStockRiskReport(t *testing.T) {
	p := DefaultParams()
	p.RiskCutoffPct = 50
	res := run(t, LowStockRisk, testutil.RetailDataset(), p)

	summary := res.Summary.(RiskSummary)
	assert.Equal(t, 3, summary.Flagged)
	assert.Equal(t, 1, summary.Percentile)
	assert.Equal(t, 2, summary.Coverage)
	assert.Equal(t, 0, summary.Both)
}

func TestCohortRetentionReport(t *testing.T) {
	res := run(t, CohortRetention, testutil.RetailDataset(), DefaultParams())
	matrix := res.Summary.(metrics.CohortMatrix)
	require.Len(t, matrix.Cohorts, 3)
	for i := range matrix.Cohorts {
		require.NotNil(t, matrix.Retention[i][0])
		assert.Equal(t, 1.0, *matrix.Retention[i][0])
	}
}

func TestEveryReportRuns(t *testing.T) {
	ds := testutil.RetailDataset()
	empty := testutil.NewDatasetBuilder().Build()
	for _, r := range All() {
		t.Run(r.Name, func(t *testing.T) {
			res := r.Execute(ds, DefaultParams())
			assert.Equal(t, r.Name, res.Name)
			assert.NotNil(t, res.Rows)

			res = r.Execute(empty, DefaultParams())
			assert.Equal(t, 0, res.RowCount)
		})
	}
}

func TestUnknownStoreGivesEmptyReports(t *testing.T) {
	ds := testutil.RetailDataset()
	p := DefaultParams()
	p.Filter.StoreName = "No Such Store"

	for _, name := range List() {
		t.Run(name, func(t *testing.T) {
			res := run(t, name, ds, p)
			assert.Equal(t, 0, res.RowCount)
			assert.NotNil(t, res.Rows)
		})
	}
}

const (
	singleCustomers = "customer_id,name,age,gender,location\n1,Solo Buyer,40,F,Reno\n"
	singleProducts  = "product_id,product_name,category,price\n1,Widget,Gadgets,10\n"
	singleStores    = "store_id,store_name,city,region\n1,Main,Reno,West\n"
	singleSales     = "sale_id,customer_id,product_id,store_id,quantity,sale_date\n1,1,1,1,2,2024-05-05\n"
	singleInventory = "product_id,stock_quantity,last_updated\n1,8,2024-05-31\n"
)

func writeSingleRowSource(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		model.TableCustomers: singleCustomers,
		model.TableProducts:  singleProducts,
		model.TableStores:    singleStores,
		model.TableSales:     singleSales,
		model.TableInventory: singleInventory,
	}
	for table, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, table+".csv"), []byte(content), 0644))
	}
	return dir
}

func TestSingleRowRoundTrip(t *testing.T) {
	dir := writeSingleRowSource(t)
	ds, _, err := loader.Load(context.Background(), loader.NewDirSource(dir))
	require.NoError(t, err)

	res := run(t, MonthlyKPI, ds, DefaultParams())
	rows := res.Rows.([]MonthlyTrendRow)
	require.Len(t, rows, 1)
	assert.True(t, decimal.NewFromInt(20).Equal(rows[0].TotalRevenue))
	assert.Equal(t, int64(1), rows[0].TotalOrders)
	assert.Equal(t, int64(2), rows[0].UnitsSold)
	require.True(t, rows[0].AverageOrderValue.Valid)
	assert.True(t, decimal.NewFromInt(20).Equal(rows[0].AverageOrderValue.Decimal))
}

func TestReloadIsIdempotent(t *testing.T) {
	dir := writeSingleRowSource(t)
	json := jsoniter.ConfigCompatibleWithStandardLibrary

	render := func() []byte {
		ds, _, err := loader.Load(context.Background(), loader.NewDirSource(dir))
		require.NoError(t, err)
		var results []Result
		for _, r := range All() {
			results = append(results, r.Execute(ds, DefaultParams()))
		}
		b, err := json.Marshal(results)
		require.NoError(t, err)
		return b
	}

	assert.Equal(t, string(render()), string(render()))
}

func TestFixtureReportsAreDeterministic(t *testing.T) {
	json := jsoniter.ConfigCompatibleWithStandardLibrary
	render := func() string {
		ds := testutil.RetailDataset()
		var out []byte
		for _, r := range All() {
			b, err := json.Marshal(r.Execute(ds, DefaultParams()))
			require.NoError(t, err)
			out = append(out, b...)
		}
		return string(out)
	}

	first := render()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, render())
	}
}
