package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/stockbook/internal/apperr"
	"github.com/tuanvumaihuynh/stockbook/internal/model"
	"github.com/tuanvumaihuynh/stockbook/internal/repository"
	"github.com/tuanvumaihuynh/stockbook/internal/storage/db"
	"github.com/tuanvumaihuynh/stockbook/pkg/ptr"
	"github.com/tuanvumaihuynh/stockbook/pkg/validator"
)

type CreateCustomerParams struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=64"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type UpdateCustomerParams struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
	// Email may be set to "" to clear it.
	Email   *string `json:"email"`
	Phone   *string `json:"phone" validate:"omitempty,max=64"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

type emailParams struct {
	Email string `json:"email" validate:"omitempty,email"`
}

type CustomerService interface {
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error)
	CreateCustomer(ctx context.Context, params CreateCustomerParams) (model.Customer, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, params UpdateCustomerParams) (model.Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
}

type customerService struct {
	db           db.DB
	validator    validator.Validator
	customerRepo repository.CustomerRepository
}

func NewCustomerService(
	db db.DB,
	validator validator.Validator,
	customerRepo repository.CustomerRepository,
) CustomerService {
	return &customerService{
		db:           db,
		validator:    validator,
		customerRepo: customerRepo,
	}
}

func (s *customerService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	customers, err := s.customerRepo.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("customer repository list customers: %w", err)
	}

	return customers, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	customer, err := s.customerRepo.GetCustomer(ctx, id)
	if err != nil {
		return model.Customer{}, fmt.Errorf("customer repository get customer: %w", err)
	}

	return customer, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, params CreateCustomerParams) (model.Customer, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.TrimSpace(params.Email)
	if err := s.validator.Validate(params); err != nil {
		return model.Customer{}, apperr.ValidationErr.WrapParent(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Customer{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	customer := model.Customer{
		ID:        id,
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		Address:   params.Address,
		Notes:     params.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.customerRepo.CreateCustomer(ctx, customer); err != nil {
		return model.Customer{}, fmt.Errorf("customer repository create customer: %w", err)
	}

	return customer, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id uuid.UUID, params UpdateCustomerParams) (model.Customer, error) {
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		params.Name = &name
	}
	if params.Email != nil {
		email := strings.TrimSpace(*params.Email)
		params.Email = &email
	}
	if err := s.validator.Validate(params); err != nil {
		return model.Customer{}, apperr.ValidationErr.WrapParent(err)
	}
	if params.Email != nil {
		if err := s.validator.Validate(emailParams{Email: *params.Email}); err != nil {
			return model.Customer{}, apperr.ValidationErr.WrapParent(err)
		}
	}

	var customer model.Customer
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		customerRepo := s.customerRepo.WithDB(tx)

		current, err := customerRepo.GetCustomer(ctx, id)
		if err != nil {
			return fmt.Errorf("customer repository get customer: %w", err)
		}

		customer = applyCustomerUpdate(current, params)
		customer.UpdatedAt = time.Now()

		if err := customerRepo.UpdateCustomer(ctx, customer); err != nil {
			return fmt.Errorf("customer repository update customer: %w", err)
		}

		return nil
	}); err != nil {
		return model.Customer{}, repository.StoreErr("db with tx", err)
	}

	return customer, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if err := s.customerRepo.DeleteCustomer(ctx, id); err != nil {
		return fmt.Errorf("customer repository delete customer: %w", err)
	}

	return nil
}

func applyCustomerUpdate(c model.Customer, params UpdateCustomerParams) model.Customer {
	c.Name = ptr.Deref(params.Name, c.Name)
	c.Email = ptr.Deref(params.Email, c.Email)
	c.Phone = ptr.Deref(params.Phone, c.Phone)
	c.Address = ptr.Deref(params.Address, c.Address)
	c.Notes = ptr.Deref(params.Notes, c.Notes)
	return c
}
