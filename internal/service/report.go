package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/tuanvumaihuynh/stockbook/internal/apperr"
	"github.com/tuanvumaihuynh/stockbook/internal/config"
	"github.com/tuanvumaihuynh/stockbook/internal/model"
	"github.com/tuanvumaihuynh/stockbook/internal/repository"
)

type ReportService interface {
	// Dashboard aggregates the catalogue and the sales within filter.
	// An empty filter means all time.
	Dashboard(ctx context.Context, filter model.DateFilter) (model.DashboardStats, error)
}

type reportService struct {
	cfg          config.Report
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	saleRepo     repository.SaleRepository
	now          func() time.Time
}

func NewReportService(
	cfg config.Report,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	saleRepo repository.SaleRepository,
) ReportService {
	return &reportService{
		cfg:          cfg,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		saleRepo:     saleRepo,
		now:          time.Now,
	}
}

func (s *reportService) Dashboard(ctx context.Context, filter model.DateFilter) (model.DashboardStats, error) {
	if filter == "" {
		filter = model.DateFilterAllTime
	}
	if err := filter.Validate(); err != nil {
		return model.DashboardStats{}, apperr.InvalidFilterErr.WithMsg("unknown date filter %q", string(filter))
	}

	var (
		products  []model.Product
		customers []model.Customer
		sales     []model.Sale
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if products, err = s.productRepo.ListProducts(gCtx); err != nil {
			return fmt.Errorf("product repository list products: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if customers, err = s.customerRepo.ListCustomers(gCtx); err != nil {
			return fmt.Errorf("customer repository list customers: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if sales, err = s.saleRepo.ListSales(gCtx); err != nil {
			return fmt.Errorf("sale repository list sales: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.DashboardStats{}, err
	}

	return ComputeDashboard(products, customers, sales, filter, s.now(), s.cfg.CostBasis), nil
}

// ComputeDashboard derives the dashboard figures. Sales are filtered by
// calendar date relative to now, in now's location. Catalogue figures are
// never filtered.
func ComputeDashboard(
	products []model.Product,
	customers []model.Customer,
	sales []model.Sale,
	filter model.DateFilter,
	now time.Time,
	basis config.CostBasis,
) model.DashboardStats {
	stats := model.DashboardStats{
		Filter:          filter,
		TotalProducts:   len(products),
		TotalCustomers:  len(customers),
		TotalRevenue:    decimal.Zero,
		CostOfGoods:     decimal.Zero,
		TotalStockValue: decimal.Zero,
	}

	costBySku := make(map[string]decimal.Decimal, len(products))
	for _, p := range products {
		costBySku[skuKey(p.Sku)] = p.Cost
		stats.TotalStockValue = stats.TotalStockValue.Add(p.Cost.Mul(decimal.NewFromInt(int64(p.Stock))))
		if p.IsLowStock() {
			stats.LowStockItems++
		}
		if p.IsOutOfStock() {
			stats.OutOfStockItems++
		}
	}

	for _, sale := range sales {
		if !InDateFilter(sale.SaleDate, filter, now) {
			continue
		}

		stats.TotalSales++
		stats.TotalRevenue = stats.TotalRevenue.Add(sale.TotalAmount)

		for _, item := range sale.Items {
			cost := item.CostAtSale
			if basis == config.CostBasisCurrent {
				// products deleted since the sale count as free
				cost = costBySku[skuKey(item.Sku)]
			}
			stats.CostOfGoods = stats.CostOfGoods.Add(cost.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	stats.GrossProfit = stats.TotalRevenue.Sub(stats.CostOfGoods)

	return stats
}

// InDateFilter reports whether the calendar date of saleDate falls within
// filter relative to now.
func InDateFilter(saleDate time.Time, filter model.DateFilter, now time.Time) bool {
	loc := now.Location()
	today := dateOnly(now, loc)
	day := dateOnly(saleDate, loc)

	switch filter {
	case model.DateFilterToday:
		return day.Equal(today)
	case model.DateFilterLast7Days:
		return !day.Before(today.AddDate(0, 0, -6)) && !day.After(today)
	case model.DateFilterThisMonth:
		return day.Year() == today.Year() && day.Month() == today.Month()
	case model.DateFilterLastMonth:
		lastMonth := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, loc)
		return day.Year() == lastMonth.Year() && day.Month() == lastMonth.Month()
	case model.DateFilterThisYear:
		return day.Year() == today.Year()
	default:
		return true
	}
}
