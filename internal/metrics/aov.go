//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package metrics

import (
	"github.com/shopspring/decimal"
)

// AOV divides revenue by orders. The result is invalid when orders is zero.
func AOV(revenue decimal.Decimal, orders int64) decimal.NullDecimal {
	if orders == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(revenue.Div(decimal.NewFromInt(orders)))
}

// WeightedAOV recomputes average order value over a window of periods as
// total revenue over total orders, so busy months weigh more than quiet
// ones.
func WeightedAOV[T any](rows []T, revenue func(T) decimal.Decimal, orders func(T) int64) decimal.NullDecimal {
	sumRevenue := decimal.Zero
	var sumOrders int64
	for _, r := range rows {
		sumRevenue = sumRevenue.Add(revenue(r))
		sumOrders += orders(r)
	}
	return AOV(sumRevenue, sumOrders)
}
