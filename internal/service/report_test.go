package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stockbook/internal/apperr"
	"github.com/tuanvumaihuynh/stockbook/internal/config"
	"github.com/tuanvumaihuynh/stockbook/internal/model"
	"github.com/tuanvumaihuynh/stockbook/internal/service"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func saleOn(date time.Time, total string, items ...model.SaleItem) model.Sale {
	return model.Sale{
		ID:           uuid.New(),
		SaleDate:     date,
		CustomerName: "x",
		Items:        items,
		TotalAmount:  dec(total),
	}
}

func TestComputeDashboardStockFlags(t *testing.T) {
	products := []model.Product{
		{Sku: "A", Stock: 3, ReorderLevel: 10, Cost: dec("1")},
		{Sku: "B", Stock: 8, ReorderLevel: 5, Cost: dec("2")},
		{Sku: "C", Stock: 0, ReorderLevel: 2, Cost: dec("3")},
	}

	stats := service.ComputeDashboard(products, nil, nil, model.DateFilterAllTime, time.Now(), config.CostBasisCurrent)

	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 1, stats.LowStockItems)
	assert.Equal(t, 1, stats.OutOfStockItems)
	assert.True(t, dec("19").Equal(stats.TotalStockValue))
	assert.True(t, stats.TotalRevenue.IsZero())
}

func TestComputeDashboardCostBasis(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	products := []model.Product{{Sku: "A", Cost: dec("4.00")}}
	sales := []model.Sale{
		saleOn(now, "30.00",
			model.SaleItem{Sku: "a", Quantity: 3, PriceAtSale: dec("10.00"), CostAtSale: dec("3.00")},
			model.SaleItem{Sku: "GONE", Quantity: 1, PriceAtSale: dec("0"), CostAtSale: dec("1.00")},
		),
	}

	t.Run("Should price cost of goods at the current cost", func(t *testing.T) {
		stats := service.ComputeDashboard(products, nil, sales, model.DateFilterAllTime, now, config.CostBasisCurrent)
		assert.True(t, dec("12.00").Equal(stats.CostOfGoods))
		assert.True(t, dec("18.00").Equal(stats.GrossProfit))
	})

	t.Run("Should price cost of goods at the cost recorded on the sale", func(t *testing.T) {
		stats := service.ComputeDashboard(products, nil, sales, model.DateFilterAllTime, now, config.CostBasisSnapshot)
		assert.True(t, dec("10.00").Equal(stats.CostOfGoods))
		assert.True(t, dec("20.00").Equal(stats.GrossProfit))
	})
}

func TestInDateFilter(t *testing.T) {
	now := time.Date(2026, 1, 15, 18, 45, 0, 0, time.UTC)
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name   string
		date   time.Time
		filter model.DateFilter
		want   bool
	}{
		{"today matches today", day(2026, 1, 15), model.DateFilterToday, true},
		{"today excludes yesterday", day(2026, 1, 14), model.DateFilterToday, false},
		{"last 7 days includes 6 days ago", day(2026, 1, 9), model.DateFilterLast7Days, true},
		{"last 7 days excludes 7 days ago", day(2026, 1, 8), model.DateFilterLast7Days, false},
		{"last 7 days excludes tomorrow", day(2026, 1, 16), model.DateFilterLast7Days, false},
		{"this month includes first day", day(2026, 1, 1), model.DateFilterThisMonth, true},
		{"this month excludes last year", day(2025, 1, 20), model.DateFilterThisMonth, false},
		{"last month crosses the year", day(2025, 12, 31), model.DateFilterLastMonth, true},
		{"last month excludes this month", day(2026, 1, 2), model.DateFilterLastMonth, false},
		{"this year includes january", day(2026, 1, 3), model.DateFilterThisYear, true},
		{"this year excludes last year", day(2025, 12, 31), model.DateFilterThisYear, false},
		{"all time includes anything", day(1999, 6, 1), model.DateFilterAllTime, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.InDateFilter(tt.date, tt.filter, now))
		})
	}
}

func TestInDateFilterLastMonthOnMonthEnd(t *testing.T) {
	now := time.Date(2026, 3, 31, 9, 0, 0, 0, time.UTC)

	assert.True(t, service.InDateFilter(time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), model.DateFilterLastMonth, now))
	assert.False(t, service.InDateFilter(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), model.DateFilterLastMonth, now))
}

func TestComputeDashboardFiltersSalesOnly(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	customers := []model.Customer{{Name: "a"}, {Name: "b"}}
	sales := []model.Sale{
		saleOn(now.AddDate(0, 0, -6), "10.00"),
		saleOn(now.AddDate(0, 0, -7), "99.00"),
	}

	stats := service.ComputeDashboard(nil, customers, sales, model.DateFilterLast7Days, now, config.CostBasisCurrent)

	assert.Equal(t, model.DateFilterLast7Days, stats.Filter)
	assert.Equal(t, 2, stats.TotalCustomers)
	assert.Equal(t, 1, stats.TotalSales)
	assert.True(t, dec("10.00").Equal(stats.TotalRevenue))
}

func TestReportServiceDashboard(t *testing.T) {
	ctx := context.Background()

	newSvc := func(st *memStore) service.ReportService {
		return service.NewReportService(
			config.Report{CostBasis: config.CostBasisCurrent},
			fakeProductRepo{st: st},
			fakeCustomerRepo{st: st},
			fakeSaleRepo{st: st},
		)
	}

	t.Run("Should default to all time", func(t *testing.T) {
		st := newMemStore()
		st.addProduct(t, "A-1", "2.00", "1.00", 0, 2)
		st.sales = append(st.sales, saleOn(time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC), "5.00"))

		stats, err := newSvc(st).Dashboard(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, model.DateFilterAllTime, stats.Filter)
		assert.Equal(t, 1, stats.TotalSales)
		assert.Equal(t, 1, stats.OutOfStockItems)
	})

	t.Run("Should reject an unknown filter", func(t *testing.T) {
		_, err := newSvc(newMemStore()).Dashboard(ctx, "yesterday")
		assert.True(t, errors.Is(err, apperr.InvalidFilterErr))
	})

	t.Run("Should surface store failures", func(t *testing.T) {
		st := newMemStore()
		st.listErr = apperr.StoreUnavailableErr

		_, err := newSvc(st).Dashboard(ctx, model.DateFilterToday)
		assert.True(t, errors.Is(err, apperr.StoreUnavailableErr))
	})
}
