package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DateFilter restricts dashboard figures to sales within a calendar window.
type DateFilter string

const (
	DateFilterAllTime   DateFilter = "all_time"
	DateFilterToday     DateFilter = "today"
	DateFilterLast7Days DateFilter = "last_7_days"
	DateFilterThisMonth DateFilter = "this_month"
	DateFilterLastMonth DateFilter = "last_month"
	DateFilterThisYear  DateFilter = "this_year"
)

var DateFilters = []DateFilter{
	DateFilterAllTime,
	DateFilterToday,
	DateFilterLast7Days,
	DateFilterThisMonth,
	DateFilterLastMonth,
	DateFilterThisYear,
}

// Validate implements the enum contract used by the request validator.
func (f DateFilter) Validate() error {
	for _, known := range DateFilters {
		if f == known {
			return nil
		}
	}
	return fmt.Errorf("unknown date filter: %q", string(f))
}

type DashboardStats struct {
	Filter          DateFilter      `json:"filter"`
	TotalProducts   int             `json:"total_products"`
	TotalCustomers  int             `json:"total_customers"`
	TotalSales      int             `json:"total_sales"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	CostOfGoods     decimal.Decimal `json:"cost_of_goods"`
	GrossProfit     decimal.Decimal `json:"gross_profit"`
	TotalStockValue decimal.Decimal `json:"total_stock_value"`
	LowStockItems   int             `json:"low_stock_items"`
	OutOfStockItems int             `json:"out_of_stock_items"`
}
