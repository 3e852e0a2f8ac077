package apperr

import (
	"fmt"

	"github.com/tuanvumaihuynh/stockbook/pkg/zerror"
)

const (
	ValidationErrorCode   = "VALIDATION_FAILED"
	InvalidFilterCode     = "INVALID_FILTER"
	ProductNotFoundCode   = "PRODUCT_NOT_FOUND"
	CustomerNotFoundCode  = "CUSTOMER_NOT_FOUND"
	SaleNotFoundCode      = "SALE_NOT_FOUND"
	SkuConflictCode       = "SKU_CONFLICT"
	InsufficientStockCode = "INSUFFICIENT_STOCK"
	StoreUnavailableCode  = "STORE_UNAVAILABLE"
	UnauthorizedCode      = "UNAUTHORIZED"
)

var (
	ValidationErr        = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	InvalidFilterErr     = zerror.NewBadRequest(InvalidFilterCode, "unknown date filter")
	ProductNotFoundErr   = zerror.NewNotFound(ProductNotFoundCode, "product not found")
	CustomerNotFoundErr  = zerror.NewNotFound(CustomerNotFoundCode, "customer not found")
	SaleNotFoundErr      = zerror.NewNotFound(SaleNotFoundCode, "sale not found")
	SkuConflictErr       = zerror.NewConflict(SkuConflictCode, "a product with this sku already exists")
	InsufficientStockErr = zerror.NewUnprocessableEntity(InsufficientStockCode, "insufficient stock")
	StoreUnavailableErr  = zerror.NewServiceUnavailable(StoreUnavailableCode, "data store unavailable, retry later")
	UnauthorizedErr      = zerror.NewUnauthorized(UnauthorizedCode, "unauthorized")
)

// InsufficientStockError names the product that cannot cover a request.
type InsufficientStockError struct {
	Sku       string
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %s (%s): requested %d, available %d", e.Sku, e.Name, e.Requested, e.Available)
}

// NewInsufficientStock builds the user-facing error for a stock shortfall.
func NewInsufficientStock(sku, name string, available, requested int) zerror.ZError {
	return InsufficientStockErr.
		WithMsg("insufficient stock for %s (%s): only %d left", name, sku, available).
		WrapParent(&InsufficientStockError{
			Sku:       sku,
			Name:      name,
			Available: available,
			Requested: requested,
		})
}

// NewProductNotFound reports an unknown sku.
func NewProductNotFound(sku string) zerror.ZError {
	return ProductNotFoundErr.WithMsg("product with sku %q not found", sku)
}

// NewValidation reports a single invalid field outside struct-tag validation.
func NewValidation(format string, args ...any) zerror.ZError {
	return ValidationErr.WithMsg(format, args...)
}
