package apierr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stockbook/internal/apperr"
	"github.com/tuanvumaihuynh/stockbook/internal/http/apierr"
	"github.com/tuanvumaihuynh/stockbook/pkg/validator"
)

type saleRequest struct {
	Items []itemRequest `json:"items" validate:"required,min=1,dive"`
}

type itemRequest struct {
	Sku      string `json:"sku" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

func TestNew(t *testing.T) {
	t.Run("Should map domain errors to their status", func(t *testing.T) {
		tests := []struct {
			err    error
			status int
			code   string
		}{
			{apperr.NewProductNotFound("X"), http.StatusNotFound, apperr.ProductNotFoundCode},
			{apperr.SkuConflictErr, http.StatusConflict, apperr.SkuConflictCode},
			{apperr.NewInsufficientStock("X", "x", 1, 2), http.StatusUnprocessableEntity, apperr.InsufficientStockCode},
			{apperr.StoreUnavailableErr.WrapParent(errors.New("dial")), http.StatusServiceUnavailable, apperr.StoreUnavailableCode},
			{apperr.UnauthorizedErr, http.StatusUnauthorized, apperr.UnauthorizedCode},
			{apperr.InvalidFilterErr, http.StatusBadRequest, apperr.InvalidFilterCode},
		}

		for _, tt := range tests {
			t.Run(tt.code, func(t *testing.T) {
				res := apierr.New(fmt.Errorf("handler: %w", tt.err))
				assert.Equal(t, tt.status, res.StatusCode)
				assert.Equal(t, tt.code, res.Code)
				assert.Nil(t, res.Details)
			})
		}
	})

	t.Run("Should list invalid fields of a wrapped validation error", func(t *testing.T) {
		v, err := validator.NewDefaultValidator()
		require.NoError(t, err)

		verr := v.Validate(saleRequest{Items: []itemRequest{{Sku: "A", Quantity: 0}}})
		require.Error(t, verr)

		res := apierr.New(apperr.ValidationErr.WrapParent(verr))
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, apperr.ValidationErrorCode, res.Code)
		require.NotNil(t, res.Details)
		assert.Equal(t, []apierr.FieldError{{Field: "items[0].quantity", Message: "must be at least 1"}}, *res.Details)
	})

	t.Run("Should hide unknown errors", func(t *testing.T) {
		res := apierr.New(errors.New("pq: secret detail"))
		assert.Equal(t, apierr.InternalServerErr, res)
	})
}
