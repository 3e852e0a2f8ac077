package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tuanvumaihuynh/stockbook/internal/apperr"
	"github.com/tuanvumaihuynh/stockbook/internal/model"
	"github.com/tuanvumaihuynh/stockbook/internal/storage/db"
)

type SaleRepository interface {
	WithDB(db db.DB) SaleRepository
	ListSales(ctx context.Context) ([]model.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error)
	CreateSale(ctx context.Context, sale model.Sale) error
}

const saleColumns = `id, sale_date, customer_id, customer_name, items, total_amount, notes, created_at, updated_at`

type saleRepository struct {
	db db.DB
}

func NewSaleRepository(db db.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r saleRepository) WithDB(db db.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r saleRepository) ListSales(ctx context.Context) ([]model.Sale, error) {
	rows, err := r.db.Query(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY sale_date DESC, created_at DESC`)
	if err != nil {
		return nil, StoreErr("list sales", err)
	}
	defer rows.Close()

	sales := make([]model.Sale, 0)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, StoreErr("scan sale", err)
		}
		sales = append(sales, sale)
	}

	if err := rows.Err(); err != nil {
		return nil, StoreErr("iterate sales", err)
	}

	return sales, nil
}

func (r saleRepository) GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error) {
	row := r.db.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)

	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Sale{}, apperr.SaleNotFoundErr
		}
		return model.Sale{}, StoreErr("get sale", err)
	}

	return sale, nil
}

func (r saleRepository) CreateSale(ctx context.Context, sale model.Sale) error {
	items, err := json.Marshal(sale.Items)
	if err != nil {
		return fmt.Errorf("marshal sale items: %w", err)
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		sale.ID,
		pgtype.Date{Time: sale.SaleDate, Valid: true},
		sale.CustomerID,
		sale.CustomerName,
		items,
		toNumeric(sale.TotalAmount),
		sale.Notes,
		sale.CreatedAt,
		sale.UpdatedAt,
	); err != nil {
		return StoreErr("create sale", err)
	}

	return nil
}

func scanSale(row pgx.Row) (model.Sale, error) {
	var (
		s        model.Sale
		saleDate pgtype.Date
		items    []byte
		total    pgtype.Numeric
	)

	if err := row.Scan(
		&s.ID,
		&saleDate,
		&s.CustomerID,
		&s.CustomerName,
		&items,
		&total,
		&s.Notes,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return model.Sale{}, err
	}

	s.SaleDate = saleDate.Time
	if err := json.Unmarshal(items, &s.Items); err != nil {
		return model.Sale{}, fmt.Errorf("unmarshal sale items: %w", err)
	}

	var err error
	if s.TotalAmount, err = fromNumeric(total); err != nil {
		return model.Sale{}, fmt.Errorf("convert total amount: %w", err)
	}

	return s, nil
}
