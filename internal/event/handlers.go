package event

import (
	"context"
	"log/slog"
)

func (s *Service) handleProductCreatedEvent(ctx context.Context, ev ProductCreatedEvent) error {
	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", ev.ProductID),
		slog.String("sku", ev.Sku),
		slog.Int("stock", ev.Stock),
	)
	return nil
}

func (s *Service) handleSaleCreatedEvent(ctx context.Context, ev SaleCreatedEvent) error {
	s.logger.InfoContext(ctx, "sale created",
		slog.String("sale_id", ev.SaleID),
		slog.String("customer_name", ev.CustomerName),
		slog.String("total_amount", ev.TotalAmount.StringFixed(2)),
		slog.Int("items", len(ev.Items)),
	)
	return nil
}

func (s *Service) handleStockLowEvent(ctx context.Context, ev StockLowEvent) error {
	msg := "product stock low"
	if ev.Stock == 0 {
		msg = "product out of stock"
	}
	s.logger.WarnContext(ctx, msg,
		slog.String("product_id", ev.ProductID),
		slog.String("sku", ev.Sku),
		slog.String("name", ev.Name),
		slog.Int("stock", ev.Stock),
		slog.Int("reorder_level", ev.ReorderLevel),
	)
	return nil
}
