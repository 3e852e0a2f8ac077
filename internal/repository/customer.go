package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/stockbook/internal/apperr"
	"github.com/tuanvumaihuynh/stockbook/internal/model"
	"github.com/tuanvumaihuynh/stockbook/internal/storage/db"
)

type CustomerRepository interface {
	WithDB(db db.DB) CustomerRepository
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error)
	CreateCustomer(ctx context.Context, customer model.Customer) error
	UpdateCustomer(ctx context.Context, customer model.Customer) error
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
}

const customerColumns = `id, name, email, phone, address, notes, created_at, updated_at`

type customerRepository struct {
	db db.DB
}

func NewCustomerRepository(db db.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r customerRepository) WithDB(db db.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r customerRepository) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY name, created_at`)
	if err != nil {
		return nil, StoreErr("list customers", err)
	}
	defer rows.Close()

	customers := make([]model.Customer, 0)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, StoreErr("scan customer", err)
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, StoreErr("iterate customers", err)
	}

	return customers, nil
}

func (r customerRepository) GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)

	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Customer{}, apperr.CustomerNotFoundErr
		}
		return model.Customer{}, StoreErr("get customer", err)
	}

	return customer, nil
}

func (r customerRepository) CreateCustomer(ctx context.Context, c model.Customer) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.Name, c.Email, c.Phone, c.Address, c.Notes, c.CreatedAt, c.UpdatedAt); err != nil {
		return StoreErr("create customer", err)
	}

	return nil
}

func (r customerRepository) UpdateCustomer(ctx context.Context, c model.Customer) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE customers
		SET
			name       = $2,
			email      = $3,
			phone      = $4,
			address    = $5,
			notes      = $6,
			updated_at = $7
		WHERE id = $1
	`, c.ID, c.Name, c.Email, c.Phone, c.Address, c.Notes, c.UpdatedAt)
	if err != nil {
		return StoreErr("update customer", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.CustomerNotFoundErr
	}

	return nil
}

func (r customerRepository) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return StoreErr("delete customer", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.CustomerNotFoundErr
	}

	return nil
}

func scanCustomer(row pgx.Row) (model.Customer, error) {
	var c model.Customer
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return model.Customer{}, fmt.Errorf("scan customer row: %w", err)
	}

	return c, nil
}
