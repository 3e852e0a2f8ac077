package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// MaxQuantity is the largest stock level or quantity that can be stored.
	MaxQuantity = math.MaxInt32
	// MoneyScale is the number of decimal places money is stored with.
	MoneyScale = 2
)

type Product struct {
	ID           uuid.UUID       `json:"id"`
	Sku          string          `json:"sku"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Tags         string          `json:"tags"`
	Description  string          `json:"description"`
	ImageURL     string          `json:"image_url"`
	Supplier     string          `json:"supplier"`
	Cost         decimal.Decimal `json:"cost"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	ReorderLevel int             `json:"reorder_level"`
	Location     string          `json:"location"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsLowStock reports whether the product is still in stock but at or below
// its reorder level.
func (p Product) IsLowStock() bool {
	return p.Stock > 0 && p.Stock <= p.ReorderLevel
}

// IsOutOfStock reports whether no units are left.
func (p Product) IsOutOfStock() bool {
	return p.Stock == 0
}

// NeedsReorder reports whether the product should be flagged for reordering.
func (p Product) NeedsReorder() bool {
	return p.Stock <= p.ReorderLevel
}
