package event

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicProductCreated = "product.created"
	TopicSaleCreated    = "sale.created"
	TopicStockLow       = "stock.low"
)

type ProductCreatedEvent struct {
	ProductID string          `json:"product_id"`
	Sku       string          `json:"sku"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
}

type SaleCreatedItem struct {
	Sku         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	PriceAtSale decimal.Decimal `json:"price_at_sale"`
}

type SaleCreatedEvent struct {
	SaleID       string            `json:"sale_id"`
	SaleDate     time.Time         `json:"sale_date"`
	CustomerName string            `json:"customer_name"`
	TotalAmount  decimal.Decimal   `json:"total_amount"`
	Items        []SaleCreatedItem `json:"items"`
}

// StockLowEvent is emitted when a stock change leaves a product at or below
// its reorder level.
type StockLowEvent struct {
	ProductID    string `json:"product_id"`
	Sku          string `json:"sku"`
	Name         string `json:"name"`
	Stock        int    `json:"stock"`
	ReorderLevel int    `json:"reorder_level"`
}
