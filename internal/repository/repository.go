package repository

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/stockbook/internal/apperr"
	"github.com/tuanvumaihuynh/stockbook/internal/storage/db"
	"github.com/tuanvumaihuynh/stockbook/pkg/zerror"
)

// StoreErr wraps err with op and classifies connectivity failures as
// apperr.StoreUnavailableErr and out-of-range values as apperr.ValidationErr.
// Errors that already carry a ZError are only wrapped.
func StoreErr(op string, err error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)

	if _, ok := zerror.As(err); ok {
		return wrapped
	}

	if db.IsUnavailable(err) {
		return apperr.StoreUnavailableErr.WrapParent(wrapped)
	}

	if db.IsInvalidValue(err) {
		return apperr.ValidationErr.WithMsg("value out of range").WrapParent(wrapped)
	}

	return wrapped
}

func toNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Int:   new(big.Int).Set(d.Coefficient()),
		Exp:   d.Exponent(),
		Valid: true,
	}
}

func fromNumeric(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Zero, errors.New("numeric is not finite")
	}
	if n.Int == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}
