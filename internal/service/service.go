package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/stockbook/internal/event"
	"github.com/tuanvumaihuynh/stockbook/internal/model"
	"github.com/tuanvumaihuynh/stockbook/internal/repository"
	"github.com/tuanvumaihuynh/stockbook/pkg/outbox"
)

var tracer = otel.Tracer("internal/service")

// enqueue stores an event in the outbox through repo, which must be bound
// to the caller's transaction.
func enqueue(ctx context.Context, repo repository.OutboxMsgRepository, topic, key string, ev any) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	if err := repo.CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
		Topic:        topic,
		Headers:      outbox.BuildHeaders(ctx),
		Payload:      payload,
		PartitionKey: &key,
	}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}

func enqueueStockLow(ctx context.Context, repo repository.OutboxMsgRepository, p model.Product) error {
	return enqueue(ctx, repo, event.TopicStockLow, p.ID.String(), event.StockLowEvent{
		ProductID:    p.ID.String(),
		Sku:          p.Sku,
		Name:         p.Name,
		Stock:        p.Stock,
		ReorderLevel: p.ReorderLevel,
	})
}

// dateOnly returns the calendar date of t as midnight in loc.
func dateOnly(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func skuKey(sku string) string {
	return strings.ToLower(strings.TrimSpace(sku))
}
