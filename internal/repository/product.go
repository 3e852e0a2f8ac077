package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tuanvumaihuynh/stockbook/internal/apperr"
	"github.com/tuanvumaihuynh/stockbook/internal/model"
	"github.com/tuanvumaihuynh/stockbook/internal/storage/db"
)

// StockDecrement removes Quantity units from the product with ID.
type StockDecrement struct {
	ID       uuid.UUID
	Quantity int
}

// ErrStockChanged is returned by DecrementStocks when a conditional
// decrement matched no row, i.e. stock fell below the requested quantity
// after it was read.
var ErrStockChanged = errors.New("stock changed concurrently")

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	// LockProduct is GetProduct holding a row lock until the surrounding
	// transaction ends.
	LockProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	GetProductBySku(ctx context.Context, sku string) (model.Product, error)
	// LockProductsBySkus returns the products matching skus case-insensitively
	// and holds row locks on them until the surrounding transaction ends.
	LockProductsBySkus(ctx context.Context, skus []string) ([]model.Product, error)
	CreateProduct(ctx context.Context, product model.Product) error
	CreateProducts(ctx context.Context, products []model.Product) (int64, error)
	UpdateProduct(ctx context.Context, product model.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	DecrementStocks(ctx context.Context, items []StockDecrement, updatedAt time.Time) ([]model.Product, error)
	SetStock(ctx context.Context, id uuid.UUID, stock int, updatedAt time.Time) (model.Product, error)
}

const productColumns = `id, sku, name, category, tags, description, image_url, supplier,
	cost, price, stock, reorder_level, location, created_at, updated_at`

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name, sku`)
	if err != nil {
		return nil, StoreErr("list products", err)
	}

	products, err := collectProducts(rows)
	if err != nil {
		return nil, StoreErr("collect products", err)
	}

	return products, nil
}

func (r productRepository) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, apperr.ProductNotFoundErr
		}
		return model.Product{}, StoreErr("get product", err)
	}

	return product, nil
}

func (r productRepository) LockProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, apperr.ProductNotFoundErr
		}
		return model.Product{}, StoreErr("lock product", err)
	}

	return product, nil
}

func (r productRepository) GetProductBySku(ctx context.Context, sku string) (model.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE LOWER(sku) = LOWER($1)`, sku)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, apperr.NewProductNotFound(sku)
		}
		return model.Product{}, StoreErr("get product by sku", err)
	}

	return product, nil
}

func (r productRepository) LockProductsBySkus(ctx context.Context, skus []string) ([]model.Product, error) {
	lowered := make([]string, 0, len(skus))
	for _, sku := range skus {
		lowered = append(lowered, strings.ToLower(sku))
	}

	// id order keeps lock acquisition consistent across concurrent sales
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE LOWER(sku) = ANY(@skus::text[])
		ORDER BY id
		FOR UPDATE
	`, pgx.NamedArgs{"skus": lowered})
	if err != nil {
		return nil, StoreErr("lock products by skus", err)
	}

	products, err := collectProducts(rows)
	if err != nil {
		return nil, StoreErr("collect locked products", err)
	}

	return products, nil
}

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, productArgs(product)...); err != nil {
		if db.IsUniqueViolation(err) {
			return apperr.SkuConflictErr.WrapParent(err)
		}
		return StoreErr("create product", err)
	}

	return nil
}

func (r productRepository) CreateProducts(ctx context.Context, products []model.Product) (int64, error) {
	if len(products) == 0 {
		return 0, nil
	}

	columns := []string{
		"id", "sku", "name", "category", "tags", "description", "image_url", "supplier",
		"cost", "price", "stock", "reorder_level", "location", "created_at", "updated_at",
	}

	n, err := r.db.CopyFrom(ctx, pgx.Identifier{"products"}, columns,
		pgx.CopyFromSlice(len(products), func(i int) ([]any, error) {
			return productArgs(products[i]), nil
		}),
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, apperr.SkuConflictErr.WrapParent(err)
		}
		return 0, StoreErr("copy products", err)
	}

	return n, nil
}

func (r productRepository) UpdateProduct(ctx context.Context, product model.Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET
			sku           = $2,
			name          = $3,
			category      = $4,
			tags          = $5,
			description   = $6,
			image_url     = $7,
			supplier      = $8,
			cost          = $9,
			price         = $10,
			stock         = $11,
			reorder_level = $12,
			location      = $13,
			updated_at    = $14
		WHERE id = $1
	`,
		product.ID,
		product.Sku,
		product.Name,
		product.Category,
		product.Tags,
		product.Description,
		product.ImageURL,
		product.Supplier,
		toNumeric(product.Cost),
		toNumeric(product.Price),
		product.Stock,
		product.ReorderLevel,
		product.Location,
		product.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return apperr.SkuConflictErr.WrapParent(err)
		}
		return StoreErr("update product", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.ProductNotFoundErr
	}

	return nil
}

func (r productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return StoreErr("delete product", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.ProductNotFoundErr
	}

	return nil
}

func (r productRepository) DecrementStocks(ctx context.Context, items []StockDecrement, updatedAt time.Time) ([]model.Product, error) {
	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`
			UPDATE products
			SET stock = stock - $2, updated_at = $3
			WHERE id = $1 AND stock >= $2
			RETURNING `+productColumns,
			item.ID, item.Quantity, updatedAt,
		)
	}

	results := r.db.SendBatch(ctx, batch)

	updated := make([]model.Product, 0, len(items))
	var batchErr error
	for _, item := range items {
		product, err := scanProduct(results.QueryRow())
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				batchErr = fmt.Errorf("decrement product %s by %d: %w", item.ID, item.Quantity, ErrStockChanged)
			} else {
				batchErr = StoreErr("decrement stock", err)
			}
			break
		}
		updated = append(updated, product)
	}

	if err := results.Close(); err != nil && batchErr == nil {
		batchErr = StoreErr("close batch", err)
	}
	if batchErr != nil {
		return nil, batchErr
	}

	return updated, nil
}

func (r productRepository) SetStock(ctx context.Context, id uuid.UUID, stock int, updatedAt time.Time) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE products
		SET stock = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+productColumns,
		id, stock, updatedAt,
	)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, apperr.ProductNotFoundErr
		}
		return model.Product{}, StoreErr("set stock", err)
	}

	return product, nil
}

func productArgs(p model.Product) []any {
	return []any{
		p.ID,
		p.Sku,
		p.Name,
		p.Category,
		p.Tags,
		p.Description,
		p.ImageURL,
		p.Supplier,
		toNumeric(p.Cost),
		toNumeric(p.Price),
		p.Stock,
		p.ReorderLevel,
		p.Location,
		p.CreatedAt,
		p.UpdatedAt,
	}
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		p           model.Product
		cost, price pgtype.Numeric
	)

	if err := row.Scan(
		&p.ID,
		&p.Sku,
		&p.Name,
		&p.Category,
		&p.Tags,
		&p.Description,
		&p.ImageURL,
		&p.Supplier,
		&cost,
		&price,
		&p.Stock,
		&p.ReorderLevel,
		&p.Location,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return model.Product{}, err
	}

	var err error
	if p.Cost, err = fromNumeric(cost); err != nil {
		return model.Product{}, fmt.Errorf("convert cost: %w", err)
	}
	if p.Price, err = fromNumeric(price); err != nil {
		return model.Product{}, fmt.Errorf("convert price: %w", err)
	}

	return p, nil
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}
