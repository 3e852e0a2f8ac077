package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/tuanvumaihuynh/stockbook/internal/repository"
)

var (
	productCSVHeader = []string{
		"id", "sku", "name", "category", "tags", "description", "image_url", "supplier",
		"cost", "price", "stock", "reorder_level", "location", "created_at", "updated_at",
	}
	customerCSVHeader = []string{
		"id", "name", "email", "phone", "address", "notes", "created_at", "updated_at",
	}
)

type ExportService interface {
	// WriteProductsCSV writes a header row followed by one row per product.
	WriteProductsCSV(ctx context.Context, w io.Writer) error
	// WriteCustomersCSV writes a header row followed by one row per customer.
	WriteCustomersCSV(ctx context.Context, w io.Writer) error
}

type exportService struct {
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
}

func NewExportService(
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
) ExportService {
	return &exportService{
		productRepo:  productRepo,
		customerRepo: customerRepo,
	}
}

func (s *exportService) WriteProductsCSV(ctx context.Context, w io.Writer) error {
	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("product repository list products: %w", err)
	}

	rows := make([][]string, 0, len(products)+1)
	rows = append(rows, productCSVHeader)
	for _, p := range products {
		rows = append(rows, []string{
			p.ID.String(),
			p.Sku,
			p.Name,
			p.Category,
			p.Tags,
			p.Description,
			p.ImageURL,
			p.Supplier,
			p.Cost.StringFixed(2),
			p.Price.StringFixed(2),
			strconv.Itoa(p.Stock),
			strconv.Itoa(p.ReorderLevel),
			p.Location,
			p.CreatedAt.UTC().Format(time.RFC3339),
			p.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	return writeCSV(w, rows)
}

func (s *exportService) WriteCustomersCSV(ctx context.Context, w io.Writer) error {
	customers, err := s.customerRepo.ListCustomers(ctx)
	if err != nil {
		return fmt.Errorf("customer repository list customers: %w", err)
	}

	rows := make([][]string, 0, len(customers)+1)
	rows = append(rows, customerCSVHeader)
	for _, c := range customers {
		rows = append(rows, []string{
			c.ID.String(),
			c.Name,
			c.Email,
			c.Phone,
			c.Address,
			c.Notes,
			c.CreatedAt.UTC().Format(time.RFC3339),
			c.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	return writeCSV(w, rows)
}

func writeCSV(w io.Writer, rows [][]string) error {
	if err := csv.NewWriter(w).WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
