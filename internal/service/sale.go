package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/stockbook/internal/apperr"
	"github.com/tuanvumaihuynh/stockbook/internal/event"
	"github.com/tuanvumaihuynh/stockbook/internal/log"
	"github.com/tuanvumaihuynh/stockbook/internal/model"
	"github.com/tuanvumaihuynh/stockbook/internal/repository"
	"github.com/tuanvumaihuynh/stockbook/internal/storage/db"
	"github.com/tuanvumaihuynh/stockbook/pkg/validator"
)

type CreateSaleItemParams struct {
	Sku      string `json:"sku" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1,max=2147483647"`
}

type CreateSaleParams struct {
	SaleDate     time.Time              `json:"sale_date" validate:"required"`
	CustomerID   *uuid.UUID             `json:"customer_id"`
	CustomerName string                 `json:"customer_name" validate:"max=255"`
	Items        []CreateSaleItemParams `json:"items" validate:"required,min=1,dive"`
	Notes        string                 `json:"notes"`
}

type SaleService interface {
	ListSales(ctx context.Context) ([]model.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error)
	// CreateSale records a sale and removes the sold quantities from stock.
	// Either every line is applied or nothing is.
	CreateSale(ctx context.Context, params CreateSaleParams) (model.Sale, error)
}

type saleService struct {
	db            db.DB
	logger        *slog.Logger
	validator     validator.Validator
	productRepo   repository.ProductRepository
	customerRepo  repository.CustomerRepository
	saleRepo      repository.SaleRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewSaleService(
	db db.DB,
	logger *slog.Logger,
	validator validator.Validator,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	saleRepo repository.SaleRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) SaleService {
	return &saleService{
		db:            db,
		logger:        logger,
		validator:     validator,
		productRepo:   productRepo,
		customerRepo:  customerRepo,
		saleRepo:      saleRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *saleService) ListSales(ctx context.Context) ([]model.Sale, error) {
	sales, err := s.saleRepo.ListSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("sale repository list sales: %w", err)
	}

	return sales, nil
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error) {
	sale, err := s.saleRepo.GetSale(ctx, id)
	if err != nil {
		return model.Sale{}, fmt.Errorf("sale repository get sale: %w", err)
	}

	return sale, nil
}

// saleLine is the total quantity requested for one sku across all items.
type saleLine struct {
	sku      string
	quantity int
}

func (s *saleService) CreateSale(ctx context.Context, params CreateSaleParams) (model.Sale, error) {
	ctx, span := tracer.Start(ctx, "SaleService.CreateSale",
		trace.WithAttributes(attribute.Int("sale.items", len(params.Items))),
	)
	defer span.End()

	sale, err := s.createSale(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create sale")
		return model.Sale{}, err
	}

	span.SetStatus(codes.Ok, "")
	return sale, nil
}

func (s *saleService) createSale(ctx context.Context, params CreateSaleParams) (model.Sale, error) {
	params.CustomerName = strings.TrimSpace(params.CustomerName)
	params.Notes = strings.TrimSpace(params.Notes)
	for i := range params.Items {
		params.Items[i].Sku = strings.TrimSpace(params.Items[i].Sku)
	}

	if err := s.validator.Validate(params); err != nil {
		return model.Sale{}, apperr.ValidationErr.WrapParent(err)
	}
	if params.CustomerID == nil && params.CustomerName == "" {
		return model.Sale{}, apperr.NewValidation("customer_name is required when customer_id is not set")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Sale{}, fmt.Errorf("generate uuid v7: %w", err)
	}
	ctx = log.ContextWithAttrs(ctx, slog.String("sale_id", id.String()))

	lines, err := mergeSaleLines(params.Items)
	if err != nil {
		return model.Sale{}, err
	}
	skus := make([]string, 0, len(lines))
	for _, line := range lines {
		skus = append(skus, line.sku)
	}

	now := time.Now()
	sale := model.Sale{
		ID:           id,
		SaleDate:     dateOnly(params.SaleDate, time.UTC),
		CustomerID:   params.CustomerID,
		CustomerName: params.CustomerName,
		Notes:        params.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		if params.CustomerID != nil {
			customer, err := s.customerRepo.WithDB(tx).GetCustomer(ctx, *params.CustomerID)
			if err != nil {
				return fmt.Errorf("customer repository get customer: %w", err)
			}
			sale.CustomerName = customer.Name
		}

		productRepo := s.productRepo.WithDB(tx)

		locked, err := productRepo.LockProductsBySkus(ctx, skus)
		if err != nil {
			return fmt.Errorf("product repository lock products by skus: %w", err)
		}
		bySku := make(map[string]model.Product, len(locked))
		for _, p := range locked {
			bySku[skuKey(p.Sku)] = p
		}

		// every line is checked before any stock is touched
		decrements := make([]repository.StockDecrement, 0, len(lines))
		for _, line := range lines {
			p, ok := bySku[line.sku]
			if !ok {
				return apperr.NewProductNotFound(line.sku)
			}
			if line.quantity > p.Stock {
				return apperr.NewInsufficientStock(p.Sku, p.Name, p.Stock, line.quantity)
			}
			decrements = append(decrements, repository.StockDecrement{ID: p.ID, Quantity: line.quantity})
		}

		sale.Items = make([]model.SaleItem, 0, len(params.Items))
		for _, item := range params.Items {
			p := bySku[skuKey(item.Sku)]
			sale.Items = append(sale.Items, model.SaleItem{
				Sku:         p.Sku,
				Name:        p.Name,
				Quantity:    item.Quantity,
				PriceAtSale: p.Price,
				CostAtSale:  p.Cost,
			})
		}
		sale.TotalAmount = model.ItemsTotal(sale.Items)

		updated, err := productRepo.DecrementStocks(ctx, decrements, now)
		if err != nil {
			if errors.Is(err, repository.ErrStockChanged) {
				return apperr.InsufficientStockErr.WrapParent(err)
			}
			return fmt.Errorf("product repository decrement stocks: %w", err)
		}

		if err := s.saleRepo.WithDB(tx).CreateSale(ctx, sale); err != nil {
			return fmt.Errorf("sale repository create sale: %w", err)
		}

		outboxMsgRepo := s.outboxMsgRepo.WithDB(tx)
		if err := enqueue(ctx, outboxMsgRepo, event.TopicSaleCreated, sale.ID.String(), saleCreatedEvent(sale)); err != nil {
			return err
		}
		for _, p := range updated {
			if p.NeedsReorder() {
				if err := enqueueStockLow(ctx, outboxMsgRepo, p); err != nil {
					return err
				}
			}
		}

		return nil
	}); err != nil {
		return model.Sale{}, repository.StoreErr("db with tx", err)
	}

	s.logger.InfoContext(ctx, "sale recorded",
		slog.Int("items", len(sale.Items)),
		slog.String("total_amount", sale.TotalAmount.StringFixed(2)),
	)

	return sale, nil
}

// mergeSaleLines sums quantities per sku, case-insensitively, keeping the
// order in which skus first appear. Every merged quantity stays within
// [1, model.MaxQuantity].
func mergeSaleLines(items []CreateSaleItemParams) ([]saleLine, error) {
	index := make(map[string]int, len(items))
	lines := make([]saleLine, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 || item.Quantity > model.MaxQuantity {
			return nil, apperr.NewValidation("quantity of %q must be between 1 and %d", item.Sku, model.MaxQuantity)
		}

		key := skuKey(item.Sku)
		i, ok := index[key]
		if !ok {
			index[key] = len(lines)
			lines = append(lines, saleLine{sku: key, quantity: item.Quantity})
			continue
		}
		if item.Quantity > model.MaxQuantity-lines[i].quantity {
			return nil, apperr.NewValidation("total quantity of %q exceeds %d", item.Sku, model.MaxQuantity)
		}
		lines[i].quantity += item.Quantity
	}
	return lines, nil
}

func saleCreatedEvent(sale model.Sale) event.SaleCreatedEvent {
	items := make([]event.SaleCreatedItem, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, event.SaleCreatedItem{
			Sku:         item.Sku,
			Quantity:    item.Quantity,
			PriceAtSale: item.PriceAtSale,
		})
	}

	return event.SaleCreatedEvent{
		SaleID:       sale.ID.String(),
		SaleDate:     sale.SaleDate,
		CustomerName: sale.CustomerName,
		TotalAmount:  sale.TotalAmount,
		Items:        items,
	}
}
