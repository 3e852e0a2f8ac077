package service_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stockbook/internal/apperr"
	"github.com/tuanvumaihuynh/stockbook/internal/event"
	"github.com/tuanvumaihuynh/stockbook/internal/model"
	"github.com/tuanvumaihuynh/stockbook/internal/service"
)

func newProductService(t *testing.T, st *memStore) service.ProductService {
	t.Helper()
	return service.NewProductService(
		&fakeDB{st: st},
		discardLogger(),
		newTestValidator(t),
		fakeProductRepo{st: st},
		fakeOutboxMsgRepo{st: st},
	)
}

func validProductParams(sku string) service.CreateProductParams {
	return service.CreateProductParams{
		Sku:          sku,
		Name:         "Widget " + sku,
		Cost:         decimal.RequireFromString("1.25"),
		Price:        decimal.RequireFromString("2.00"),
		Stock:        10,
		ReorderLevel: 3,
	}
}

func TestProductServiceCreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should be retrievable by sku", func(t *testing.T) {
		st := newMemStore()
		svc := newProductService(t, st)

		created, err := svc.CreateProduct(ctx, validProductParams(" W-1 "))
		require.NoError(t, err)
		assert.Equal(t, "W-1", created.Sku)
		assert.Equal(t, created.CreatedAt, created.UpdatedAt)

		found, err := svc.GetProductBySku(ctx, "w-1")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, []string{event.TopicProductCreated}, st.topics())
	})

	t.Run("Should reject a duplicate sku regardless of case", func(t *testing.T) {
		st := newMemStore()
		svc := newProductService(t, st)

		_, err := svc.CreateProduct(ctx, validProductParams("W-1"))
		require.NoError(t, err)

		_, err = svc.CreateProduct(ctx, validProductParams("w-1"))
		assert.True(t, errors.Is(err, apperr.SkuConflictErr))
		assert.Len(t, st.products, 1)
		assert.Len(t, st.topics(), 1)
	})

	t.Run("Should reject invalid params", func(t *testing.T) {
		svc := newProductService(t, newMemStore())

		negative := validProductParams("W-2")
		negative.Price = decimal.RequireFromString("-1")
		_, err := svc.CreateProduct(ctx, negative)
		assert.True(t, errors.Is(err, apperr.ValidationErr))

		badSku := validProductParams("has space")
		_, err = svc.CreateProduct(ctx, badSku)
		assert.True(t, errors.Is(err, apperr.ValidationErr))
	})

	t.Run("Should reject values the columns cannot hold", func(t *testing.T) {
		st := newMemStore()
		svc := newProductService(t, st)

		hugeStock := validProductParams("W-3")
		hugeStock.Stock = model.MaxQuantity + 1
		_, err := svc.CreateProduct(ctx, hugeStock)
		assert.True(t, errors.Is(err, apperr.ValidationErr))

		hugePrice := validProductParams("W-4")
		hugePrice.Price = decimal.RequireFromString("1000000000000")
		_, err = svc.CreateProduct(ctx, hugePrice)
		assert.True(t, errors.Is(err, apperr.ValidationErr))

		assert.Empty(t, st.products)
	})

	t.Run("Should round money to cents", func(t *testing.T) {
		svc := newProductService(t, newMemStore())

		params := validProductParams("W-5")
		params.Price = decimal.RequireFromString("2.345")
		params.Cost = decimal.RequireFromString("1.004")
		created, err := svc.CreateProduct(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, "2.35", created.Price.String())
		assert.Equal(t, "1", created.Cost.String())

		price := decimal.RequireFromString("9.999")
		updated, err := svc.UpdateProduct(ctx, created.ID, service.UpdateProductParams{Price: &price})
		require.NoError(t, err)
		assert.Equal(t, "10", updated.Price.String())
	})
}

func TestProductServiceUpdateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should apply only the given fields", func(t *testing.T) {
		st := newMemStore()
		p := st.addProduct(t, "A-1", "2.00", "1.00", 10, 2)
		svc := newProductService(t, st)

		name := "Renamed"
		updated, err := svc.UpdateProduct(ctx, p.ID, service.UpdateProductParams{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, p.Sku, updated.Sku)
		assert.Equal(t, p.Stock, updated.Stock)
		assert.True(t, updated.UpdatedAt.After(p.UpdatedAt) || updated.UpdatedAt.Equal(p.UpdatedAt))
	})

	t.Run("Should allow changing only the case of its own sku", func(t *testing.T) {
		st := newMemStore()
		p := st.addProduct(t, "A-1", "2.00", "1.00", 10, 2)
		svc := newProductService(t, st)

		sku := "a-1"
		updated, err := svc.UpdateProduct(ctx, p.ID, service.UpdateProductParams{Sku: &sku})
		require.NoError(t, err)
		assert.Equal(t, "a-1", updated.Sku)
	})

	t.Run("Should reject a sku owned by another product", func(t *testing.T) {
		st := newMemStore()
		p := st.addProduct(t, "A-1", "2.00", "1.00", 10, 2)
		st.addProduct(t, "B-1", "2.00", "1.00", 10, 2)
		svc := newProductService(t, st)

		sku := "b-1"
		_, err := svc.UpdateProduct(ctx, p.ID, service.UpdateProductParams{Sku: &sku})
		assert.True(t, errors.Is(err, apperr.SkuConflictErr))
	})

	t.Run("Should fail for an unknown product", func(t *testing.T) {
		svc := newProductService(t, newMemStore())

		name := "x"
		_, err := svc.UpdateProduct(ctx, uuid.New(), service.UpdateProductParams{Name: &name})
		assert.True(t, errors.Is(err, apperr.ProductNotFoundErr))
	})

	t.Run("Should reject an empty name", func(t *testing.T) {
		st := newMemStore()
		p := st.addProduct(t, "A-1", "2.00", "1.00", 10, 2)
		svc := newProductService(t, st)

		name := "  "
		_, err := svc.UpdateProduct(ctx, p.ID, service.UpdateProductParams{Name: &name})
		assert.True(t, errors.Is(err, apperr.ValidationErr))
	})
}

func TestProductServiceDeleteProduct(t *testing.T) {
	st := newMemStore()
	p := st.addProduct(t, "A-1", "2.00", "1.00", 10, 2)
	svc := newProductService(t, st)

	require.NoError(t, svc.DeleteProduct(context.Background(), p.ID))
	err := svc.DeleteProduct(context.Background(), p.ID)
	assert.True(t, errors.Is(err, apperr.ProductNotFoundErr))
}

func TestProductServiceAdjustStock(t *testing.T) {
	ctx := context.Background()

	t.Run("Should add and remove stock", func(t *testing.T) {
		st := newMemStore()
		st.addProduct(t, "A-1", "2.00", "1.00", 10, 2)
		svc := newProductService(t, st)

		res, err := svc.AdjustStock(ctx, service.AdjustStockParams{Sku: "a-1", Delta: 5})
		require.NoError(t, err)
		assert.Equal(t, 10, res.OldStock)
		assert.Equal(t, 15, res.NewStock)

		res, err = svc.AdjustStock(ctx, service.AdjustStockParams{Sku: "A-1", Delta: -13})
		require.NoError(t, err)
		assert.Equal(t, 2, res.NewStock)
		assert.Equal(t, []string{event.TopicStockLow}, st.topics())
	})

	t.Run("Should refuse to go below zero", func(t *testing.T) {
		st := newMemStore()
		st.addProduct(t, "A-1", "2.00", "1.00", 3, 2)
		svc := newProductService(t, st)

		_, err := svc.AdjustStock(ctx, service.AdjustStockParams{Sku: "A-1", Delta: -4})
		assert.True(t, errors.Is(err, apperr.InsufficientStockErr))
		assert.Equal(t, 3, st.stockOf(t, "A-1"))
	})

	t.Run("Should refuse to exceed the stock column range", func(t *testing.T) {
		st := newMemStore()
		st.addProduct(t, "A-1", "2.00", "1.00", 3, 2)
		svc := newProductService(t, st)

		_, err := svc.AdjustStock(ctx, service.AdjustStockParams{Sku: "A-1", Delta: model.MaxQuantity})
		assert.True(t, errors.Is(err, apperr.ValidationErr))

		_, err = svc.AdjustStock(ctx, service.AdjustStockParams{Sku: "A-1", Delta: math.MaxInt})
		assert.True(t, errors.Is(err, apperr.ValidationErr))
		assert.Equal(t, 3, st.stockOf(t, "A-1"))
	})

	t.Run("Should fail for an unknown sku", func(t *testing.T) {
		svc := newProductService(t, newMemStore())

		_, err := svc.AdjustStock(ctx, service.AdjustStockParams{Sku: "NOPE", Delta: 1})
		assert.True(t, errors.Is(err, apperr.ProductNotFoundErr))
	})
}

func TestProductServiceImportProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("Should skip known and repeated skus", func(t *testing.T) {
		st := newMemStore()
		st.addProduct(t, "A-1", "2.00", "1.00", 10, 2)
		svc := newProductService(t, st)

		res, err := svc.ImportProducts(ctx, []service.CreateProductParams{
			validProductParams("a-1"),
			validProductParams("B-1"),
			validProductParams("b-1"),
			validProductParams("C-1"),
		})
		require.NoError(t, err)
		assert.Equal(t, service.ImportProductsResult{Added: 2, Skipped: 2}, res)
		assert.Len(t, st.products, 3)
		assert.Equal(t, []string{event.TopicProductCreated, event.TopicProductCreated}, st.topics())
	})

	t.Run("Should reject an empty payload", func(t *testing.T) {
		svc := newProductService(t, newMemStore())

		_, err := svc.ImportProducts(ctx, nil)
		assert.True(t, errors.Is(err, apperr.ValidationErr))
	})

	t.Run("Should reject the batch when one product is invalid", func(t *testing.T) {
		st := newMemStore()
		svc := newProductService(t, st)

		invalid := validProductParams("B-1")
		invalid.Name = ""
		_, err := svc.ImportProducts(ctx, []service.CreateProductParams{validProductParams("A-1"), invalid})
		assert.True(t, errors.Is(err, apperr.ValidationErr))
		assert.Empty(t, st.products)
	})
}
