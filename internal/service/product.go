package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/stockbook/internal/apperr"
	"github.com/tuanvumaihuynh/stockbook/internal/event"
	"github.com/tuanvumaihuynh/stockbook/internal/model"
	"github.com/tuanvumaihuynh/stockbook/internal/repository"
	"github.com/tuanvumaihuynh/stockbook/internal/storage/db"
	"github.com/tuanvumaihuynh/stockbook/pkg/ptr"
	"github.com/tuanvumaihuynh/stockbook/pkg/validator"
)

type CreateProductParams struct {
	Sku          string          `json:"sku" validate:"required,max=64,sku"`
	Name         string          `json:"name" validate:"required,max=255"`
	Category     string          `json:"category" validate:"max=255"`
	Tags         string          `json:"tags" validate:"max=1024"`
	Description  string          `json:"description"`
	ImageURL     string          `json:"image_url" validate:"omitempty,url"`
	Supplier     string          `json:"supplier" validate:"max=255"`
	Cost         decimal.Decimal `json:"cost" validate:"gte=0,lte=999999999999.99"`
	Price        decimal.Decimal `json:"price" validate:"gte=0,lte=999999999999.99"`
	Stock        int             `json:"stock" validate:"gte=0,lte=2147483647"`
	ReorderLevel int             `json:"reorder_level" validate:"gte=0,lte=2147483647"`
	Location     string          `json:"location" validate:"max=255"`
}

// UpdateProductParams holds a partial update. Nil fields are left unchanged.
type UpdateProductParams struct {
	Sku          *string          `json:"sku" validate:"omitempty,max=64,sku"`
	Name         *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Category     *string          `json:"category" validate:"omitempty,max=255"`
	Tags         *string          `json:"tags" validate:"omitempty,max=1024"`
	Description  *string          `json:"description"`
	ImageURL     *string          `json:"image_url" validate:"omitempty,url"`
	Supplier     *string          `json:"supplier" validate:"omitempty,max=255"`
	Cost         *decimal.Decimal `json:"cost" validate:"omitempty,gte=0,lte=999999999999.99"`
	Price        *decimal.Decimal `json:"price" validate:"omitempty,gte=0,lte=999999999999.99"`
	Stock        *int             `json:"stock" validate:"omitempty,gte=0,lte=2147483647"`
	ReorderLevel *int             `json:"reorder_level" validate:"omitempty,gte=0,lte=2147483647"`
	Location     *string          `json:"location" validate:"omitempty,max=255"`
}

type AdjustStockParams struct {
	Sku   string `json:"sku" validate:"required"`
	Delta int    `json:"delta" validate:"gte=-2147483647,lte=2147483647"`
}

type AdjustStockResult struct {
	Product  model.Product
	OldStock int
	NewStock int
}

type ImportProductsResult struct {
	Added   int
	Skipped int
}

type ProductService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	GetProductBySku(ctx context.Context, sku string) (model.Product, error)
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	// AdjustStock adds delta to the stock of the product with the given sku.
	AdjustStock(ctx context.Context, params AdjustStockParams) (AdjustStockResult, error)
	// ImportProducts creates every product whose sku is not already known and
	// skips the rest.
	ImportProducts(ctx context.Context, params []CreateProductParams) (ImportProductsResult, error)
}

type productService struct {
	db            db.DB
	logger        *slog.Logger
	validator     validator.Validator
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewProductService(
	db db.DB,
	logger *slog.Logger,
	validator validator.Validator,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) ProductService {
	return &productService{
		db:            db,
		logger:        logger,
		validator:     validator,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository list products: %w", err)
	}

	return products, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository get product: %w", err)
	}

	return product, nil
}

func (s *productService) GetProductBySku(ctx context.Context, sku string) (model.Product, error) {
	product, err := s.productRepo.GetProductBySku(ctx, strings.TrimSpace(sku))
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository get product by sku: %w", err)
	}

	return product, nil
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	params = normalizeCreateProduct(params)
	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, apperr.ValidationErr.WrapParent(err)
	}

	product, err := newProduct(params, time.Now())
	if err != nil {
		return model.Product{}, err
	}

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		productRepo := s.productRepo.WithDB(tx)

		if err := ensureSkuFree(ctx, productRepo, product.Sku, uuid.Nil); err != nil {
			return err
		}

		if err := productRepo.CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		return enqueueProductCreated(ctx, s.outboxMsgRepo.WithDB(tx), product)
	}); err != nil {
		return model.Product{}, repository.StoreErr("db with tx", err)
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error) {
	params = normalizeUpdateProduct(params)
	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, apperr.ValidationErr.WrapParent(err)
	}

	var product model.Product
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		productRepo := s.productRepo.WithDB(tx)

		current, err := productRepo.LockProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("product repository lock product: %w", err)
		}

		if params.Sku != nil && !strings.EqualFold(*params.Sku, current.Sku) {
			if err := ensureSkuFree(ctx, productRepo, *params.Sku, id); err != nil {
				return err
			}
		}

		product = applyProductUpdate(current, params)
		product.UpdatedAt = time.Now()

		if err := productRepo.UpdateProduct(ctx, product); err != nil {
			return fmt.Errorf("product repository update product: %w", err)
		}

		if product.Stock != current.Stock && product.NeedsReorder() {
			return enqueueStockLow(ctx, s.outboxMsgRepo.WithDB(tx), product)
		}

		return nil
	}); err != nil {
		return model.Product{}, repository.StoreErr("db with tx", err)
	}

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("product repository delete product: %w", err)
	}

	return nil
}

func (s *productService) AdjustStock(ctx context.Context, params AdjustStockParams) (AdjustStockResult, error) {
	params.Sku = strings.TrimSpace(params.Sku)
	if err := s.validator.Validate(params); err != nil {
		return AdjustStockResult{}, apperr.ValidationErr.WrapParent(err)
	}

	var result AdjustStockResult
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		productRepo := s.productRepo.WithDB(tx)

		locked, err := productRepo.LockProductsBySkus(ctx, []string{params.Sku})
		if err != nil {
			return fmt.Errorf("product repository lock products by skus: %w", err)
		}
		if len(locked) == 0 {
			return apperr.NewProductNotFound(params.Sku)
		}
		current := locked[0]

		newStock := current.Stock + params.Delta
		if newStock < 0 {
			return apperr.NewInsufficientStock(current.Sku, current.Name, current.Stock, -params.Delta)
		}
		if newStock > model.MaxQuantity {
			return apperr.NewValidation("stock of %q would exceed %d", current.Sku, model.MaxQuantity)
		}

		product, err := productRepo.SetStock(ctx, current.ID, newStock, time.Now())
		if err != nil {
			return fmt.Errorf("product repository set stock: %w", err)
		}

		result = AdjustStockResult{
			Product:  product,
			OldStock: current.Stock,
			NewStock: product.Stock,
		}

		if params.Delta < 0 && product.NeedsReorder() {
			return enqueueStockLow(ctx, s.outboxMsgRepo.WithDB(tx), product)
		}

		return nil
	}); err != nil {
		return AdjustStockResult{}, repository.StoreErr("db with tx", err)
	}

	s.logger.InfoContext(ctx, "stock adjusted",
		slog.String("sku", result.Product.Sku),
		slog.Int("old_stock", result.OldStock),
		slog.Int("new_stock", result.NewStock),
	)

	return result, nil
}

func (s *productService) ImportProducts(ctx context.Context, params []CreateProductParams) (ImportProductsResult, error) {
	if len(params) == 0 {
		return ImportProductsResult{}, apperr.NewValidation("no products to import")
	}

	for i := range params {
		params[i] = normalizeCreateProduct(params[i])
		if err := s.validator.Validate(params[i]); err != nil {
			return ImportProductsResult{}, apperr.NewValidation("product at index %d is invalid", i).WrapParent(err)
		}
	}

	existing, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		return ImportProductsResult{}, fmt.Errorf("product repository list products: %w", err)
	}

	seen := make(map[string]struct{}, len(existing)+len(params))
	for _, p := range existing {
		seen[skuKey(p.Sku)] = struct{}{}
	}

	now := time.Now()
	products := make([]model.Product, 0, len(params))
	for _, p := range params {
		key := skuKey(p.Sku)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		product, err := newProduct(p, now)
		if err != nil {
			return ImportProductsResult{}, err
		}
		products = append(products, product)
	}

	result := ImportProductsResult{
		Added:   len(products),
		Skipped: len(params) - len(products),
	}
	if len(products) == 0 {
		return result, nil
	}

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		if _, err := s.productRepo.WithDB(tx).CreateProducts(ctx, products); err != nil {
			return fmt.Errorf("product repository create products: %w", err)
		}

		outboxMsgRepo := s.outboxMsgRepo.WithDB(tx)
		for _, product := range products {
			if err := enqueueProductCreated(ctx, outboxMsgRepo, product); err != nil {
				return err
			}
		}

		return nil
	}); err != nil {
		return ImportProductsResult{}, repository.StoreErr("db with tx", err)
	}

	s.logger.InfoContext(ctx, "products imported",
		slog.Int("added", result.Added),
		slog.Int("skipped", result.Skipped),
	)

	return result, nil
}

// ensureSkuFree fails with apperr.SkuConflictErr when another product than
// self already uses sku.
func ensureSkuFree(ctx context.Context, repo repository.ProductRepository, sku string, self uuid.UUID) error {
	existing, err := repo.GetProductBySku(ctx, sku)
	switch {
	case err == nil:
		if existing.ID == self {
			return nil
		}
		return apperr.SkuConflictErr.WithMsg("a product with sku %q already exists", existing.Sku)
	case errors.Is(err, apperr.ProductNotFoundErr):
		return nil
	default:
		return fmt.Errorf("product repository get product by sku: %w", err)
	}
}

func enqueueProductCreated(ctx context.Context, repo repository.OutboxMsgRepository, p model.Product) error {
	return enqueue(ctx, repo, event.TopicProductCreated, p.ID.String(), event.ProductCreatedEvent{
		ProductID: p.ID.String(),
		Sku:       p.Sku,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
	})
}

func newProduct(params CreateProductParams, now time.Time) (model.Product, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	return model.Product{
		ID:           id,
		Sku:          params.Sku,
		Name:         params.Name,
		Category:     params.Category,
		Tags:         params.Tags,
		Description:  params.Description,
		ImageURL:     params.ImageURL,
		Supplier:     params.Supplier,
		Cost:         params.Cost,
		Price:        params.Price,
		Stock:        params.Stock,
		ReorderLevel: params.ReorderLevel,
		Location:     params.Location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func normalizeCreateProduct(p CreateProductParams) CreateProductParams {
	p.Sku = strings.TrimSpace(p.Sku)
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	p.Cost = p.Cost.Round(model.MoneyScale)
	p.Price = p.Price.Round(model.MoneyScale)
	return p
}

func normalizeUpdateProduct(p UpdateProductParams) UpdateProductParams {
	for _, field := range []**string{&p.Sku, &p.Name, &p.Category, &p.ImageURL} {
		if *field != nil {
			trimmed := strings.TrimSpace(**field)
			*field = &trimmed
		}
	}
	for _, field := range []**decimal.Decimal{&p.Cost, &p.Price} {
		if *field != nil {
			rounded := (**field).Round(model.MoneyScale)
			*field = &rounded
		}
	}
	return p
}

func applyProductUpdate(p model.Product, params UpdateProductParams) model.Product {
	p.Sku = ptr.Deref(params.Sku, p.Sku)
	p.Name = ptr.Deref(params.Name, p.Name)
	p.Category = ptr.Deref(params.Category, p.Category)
	p.Tags = ptr.Deref(params.Tags, p.Tags)
	p.Description = ptr.Deref(params.Description, p.Description)
	p.ImageURL = ptr.Deref(params.ImageURL, p.ImageURL)
	p.Supplier = ptr.Deref(params.Supplier, p.Supplier)
	p.Cost = ptr.Deref(params.Cost, p.Cost)
	p.Price = ptr.Deref(params.Price, p.Price)
	p.Stock = ptr.Deref(params.Stock, p.Stock)
	p.ReorderLevel = ptr.Deref(params.ReorderLevel, p.ReorderLevel)
	p.Location = ptr.Deref(params.Location, p.Location)
	return p
}
