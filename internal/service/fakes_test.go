package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stockbook/internal/apperr"
	"github.com/tuanvumaihuynh/stockbook/internal/model"
	"github.com/tuanvumaihuynh/stockbook/internal/repository"
	"github.com/tuanvumaihuynh/stockbook/internal/storage/db"
	"github.com/tuanvumaihuynh/stockbook/pkg/validator"
)

// memStore is an in-memory stand-in for the database. Transactions
// snapshot it and restore the snapshot when the callback fails.
type memStore struct {
	mu        sync.Mutex
	products  map[uuid.UUID]model.Product
	customers map[uuid.UUID]model.Customer
	sales     []model.Sale
	outbox    []repository.CreateOutboxMsgParams
	listErr   error
}

func newMemStore() *memStore {
	return &memStore{
		products:  map[uuid.UUID]model.Product{},
		customers: map[uuid.UUID]model.Customer{},
	}
}

type memSnapshot struct {
	products  map[uuid.UUID]model.Product
	customers map[uuid.UUID]model.Customer
	sales     []model.Sale
	outbox    []repository.CreateOutboxMsgParams
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		products:  maps.Clone(s.products),
		customers: maps.Clone(s.customers),
		sales:     slices.Clone(s.sales),
		outbox:    slices.Clone(s.outbox),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.customers = snap.customers
	s.sales = snap.sales
	s.outbox = snap.outbox
}

func (s *memStore) topics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	topics := make([]string, 0, len(s.outbox))
	for _, msg := range s.outbox {
		topics = append(topics, msg.Topic)
	}
	return topics
}

func (s *memStore) stockOf(t *testing.T, sku string) int {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if strings.EqualFold(p.Sku, sku) {
			return p.Stock
		}
	}
	t.Fatalf("no product with sku %s", sku)
	return 0
}

func (s *memStore) addProduct(t *testing.T, sku string, price, cost string, stock, reorder int) model.Product {
	t.Helper()
	now := time.Now()
	p := model.Product{
		ID:           uuid.Must(uuid.NewV7()),
		Sku:          sku,
		Name:         "Product " + sku,
		Price:        decimal.RequireFromString(price),
		Cost:         decimal.RequireFromString(cost),
		Stock:        stock,
		ReorderLevel: reorder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
	return p
}

type fakeDB struct {
	db.DB
	st      *memStore
	txCalls int
}

func (f *fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	f.txCalls++
	snap := f.st.snapshot()
	if err := txFunc(f); err != nil {
		f.st.restore(snap)
		return err
	}
	return nil
}

type fakeProductRepo struct{ st *memStore }

func (r fakeProductRepo) WithDB(db.DB) repository.ProductRepository { return r }

func (r fakeProductRepo) ListProducts(context.Context) ([]model.Product, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if r.st.listErr != nil {
		return nil, r.st.listErr
	}
	products := slices.Collect(maps.Values(r.st.products))
	slices.SortFunc(products, func(a, b model.Product) int { return strings.Compare(a.Sku, b.Sku) })
	return products, nil
}

func (r fakeProductRepo) GetProduct(_ context.Context, id uuid.UUID) (model.Product, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	p, ok := r.st.products[id]
	if !ok {
		return model.Product{}, apperr.ProductNotFoundErr
	}
	return p, nil
}

func (r fakeProductRepo) LockProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	return r.GetProduct(ctx, id)
}

func (r fakeProductRepo) GetProductBySku(_ context.Context, sku string) (model.Product, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, p := range r.st.products {
		if strings.EqualFold(p.Sku, sku) {
			return p, nil
		}
	}
	return model.Product{}, apperr.NewProductNotFound(sku)
}

func (r fakeProductRepo) LockProductsBySkus(_ context.Context, skus []string) ([]model.Product, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var found []model.Product
	for _, p := range r.st.products {
		if slices.ContainsFunc(skus, func(sku string) bool { return strings.EqualFold(sku, p.Sku) }) {
			found = append(found, p)
		}
	}
	return found, nil
}

func (r fakeProductRepo) CreateProduct(_ context.Context, product model.Product) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, p := range r.st.products {
		if strings.EqualFold(p.Sku, product.Sku) {
			return apperr.SkuConflictErr
		}
	}
	r.st.products[product.ID] = product
	return nil
}

func (r fakeProductRepo) CreateProducts(ctx context.Context, products []model.Product) (int64, error) {
	for _, p := range products {
		if err := r.CreateProduct(ctx, p); err != nil {
			return 0, err
		}
	}
	return int64(len(products)), nil
}

func (r fakeProductRepo) UpdateProduct(_ context.Context, product model.Product) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.products[product.ID]; !ok {
		return apperr.ProductNotFoundErr
	}
	r.st.products[product.ID] = product
	return nil
}

func (r fakeProductRepo) DeleteProduct(_ context.Context, id uuid.UUID) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.products[id]; !ok {
		return apperr.ProductNotFoundErr
	}
	delete(r.st.products, id)
	return nil
}

func (r fakeProductRepo) DecrementStocks(_ context.Context, items []repository.StockDecrement, updatedAt time.Time) ([]model.Product, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	updated := make([]model.Product, 0, len(items))
	for _, item := range items {
		p := r.st.products[item.ID]
		if p.Stock < item.Quantity {
			return nil, fmt.Errorf("decrement %s: %w", item.ID, repository.ErrStockChanged)
		}
		p.Stock -= item.Quantity
		p.UpdatedAt = updatedAt
		r.st.products[item.ID] = p
		updated = append(updated, p)
	}
	return updated, nil
}

func (r fakeProductRepo) SetStock(_ context.Context, id uuid.UUID, stock int, updatedAt time.Time) (model.Product, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	p, ok := r.st.products[id]
	if !ok {
		return model.Product{}, apperr.ProductNotFoundErr
	}
	p.Stock = stock
	p.UpdatedAt = updatedAt
	r.st.products[id] = p
	return p, nil
}

type fakeCustomerRepo struct{ st *memStore }

func (r fakeCustomerRepo) WithDB(db.DB) repository.CustomerRepository { return r }

func (r fakeCustomerRepo) ListCustomers(context.Context) ([]model.Customer, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	customers := slices.Collect(maps.Values(r.st.customers))
	slices.SortFunc(customers, func(a, b model.Customer) int { return strings.Compare(a.Name, b.Name) })
	return customers, nil
}

func (r fakeCustomerRepo) GetCustomer(_ context.Context, id uuid.UUID) (model.Customer, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	c, ok := r.st.customers[id]
	if !ok {
		return model.Customer{}, apperr.CustomerNotFoundErr
	}
	return c, nil
}

func (r fakeCustomerRepo) CreateCustomer(_ context.Context, customer model.Customer) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.customers[customer.ID] = customer
	return nil
}

func (r fakeCustomerRepo) UpdateCustomer(_ context.Context, customer model.Customer) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.customers[customer.ID]; !ok {
		return apperr.CustomerNotFoundErr
	}
	r.st.customers[customer.ID] = customer
	return nil
}

func (r fakeCustomerRepo) DeleteCustomer(_ context.Context, id uuid.UUID) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.customers[id]; !ok {
		return apperr.CustomerNotFoundErr
	}
	delete(r.st.customers, id)
	return nil
}

type fakeSaleRepo struct{ st *memStore }

func (r fakeSaleRepo) WithDB(db.DB) repository.SaleRepository { return r }

func (r fakeSaleRepo) ListSales(context.Context) ([]model.Sale, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return slices.Clone(r.st.sales), nil
}

func (r fakeSaleRepo) GetSale(_ context.Context, id uuid.UUID) (model.Sale, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, s := range r.st.sales {
		if s.ID == id {
			return s, nil
		}
	}
	return model.Sale{}, apperr.SaleNotFoundErr
}

func (r fakeSaleRepo) CreateSale(_ context.Context, sale model.Sale) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.sales = append(r.st.sales, sale)
	return nil
}

type fakeOutboxMsgRepo struct{ st *memStore }

func (r fakeOutboxMsgRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r fakeOutboxMsgRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.outbox = append(r.st.outbox, params)
	return nil
}

func (r fakeOutboxMsgRepo) ListUnprocessedOutboxMsgs(context.Context, repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return nil, nil
}

func (r fakeOutboxMsgRepo) BulkUpdateOutboxMsgs(context.Context, repository.BulkUpdateOutboxMsgsParams) error {
	return nil
}

func (r fakeOutboxMsgRepo) DeleteProcessedOutboxMsgs(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func newTestValidator(t *testing.T) validator.Validator {
	t.Helper()
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)
	return v
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
