package validator_test

import (
	"errors"
	"testing"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stockbook/pkg/validator"
)

type color string

func (c color) Validate() error {
	if c == "red" || c == "blue" {
		return nil
	}
	return errors.New("unknown color")
}

type item struct {
	Sku   string          `json:"sku" validate:"required,sku"`
	Price decimal.Decimal `json:"price" validate:"gte=0"`
	Color color           `json:"color" validate:"omitempty,enum"`
}

func TestDefaultValidator(t *testing.T) {
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	t.Run("Should accept valid struct", func(t *testing.T) {
		err := v.Validate(item{Sku: "ABC-001", Price: decimal.RequireFromString("9.99"), Color: "red"})
		assert.NoError(t, err)
	})

	t.Run("Should report json field names", func(t *testing.T) {
		err := v.Validate(item{Sku: "", Price: decimal.NewFromInt(-1), Color: "green"})
		require.Error(t, err)
		require.True(t, validator.IsValidationError(err))

		var fieldErrs govalidator.ValidationErrors
		require.True(t, errors.As(err, &fieldErrs))

		got := map[string]string{}
		for _, fe := range fieldErrs {
			got[fe.Field()] = validator.ValidationErrorMessage(fe)
		}
		assert.Equal(t, "field is required", got["sku"])
		assert.Equal(t, "must be greater than or equal to 0", got["price"])
		assert.Equal(t, "invalid enum value: green", got["color"])
	})

	t.Run("Should reject sku with spaces", func(t *testing.T) {
		err := v.Validate(item{Sku: "AB 1"})
		require.Error(t, err)
	})
}
