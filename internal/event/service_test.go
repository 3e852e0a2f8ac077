package event_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stockbook/internal/event"
	"github.com/tuanvumaihuynh/stockbook/internal/storage/mq"
)

type fakeConsumer struct {
	handlers map[string]mq.HandlerFunc
	ran      bool
}

func (c *fakeConsumer) RegisterHandler(topic string, handler mq.HandlerFunc) error {
	if c.handlers == nil {
		c.handlers = map[string]mq.HandlerFunc{}
	}
	c.handlers[topic] = handler
	return nil
}

func (c *fakeConsumer) Run(context.Context) (mq.CleanupFunc, error) {
	c.ran = true
	return func() {}, nil
}

func TestServiceRun(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	consumer := &fakeConsumer{}

	cleanup, err := event.New(logger, consumer).Run(context.Background())
	require.NoError(t, err)
	defer cleanup()

	assert.True(t, consumer.ran)
	assert.Len(t, consumer.handlers, 3)

	t.Run("Should log stock low at warn level", func(t *testing.T) {
		buf.Reset()
		payload, err := json.Marshal(event.StockLowEvent{Sku: "ABC", Name: "Widget", Stock: 0, ReorderLevel: 3})
		require.NoError(t, err)

		require.NoError(t, consumer.handlers[event.TopicStockLow](context.Background(), event.TopicStockLow, payload))
		assert.Contains(t, buf.String(), `"level":"WARN"`)
		assert.Contains(t, buf.String(), "product out of stock")
	})

	t.Run("Should reject malformed payload", func(t *testing.T) {
		err := consumer.handlers[event.TopicSaleCreated](context.Background(), event.TopicSaleCreated, []byte("{"))
		assert.Error(t, err)
	})
}
