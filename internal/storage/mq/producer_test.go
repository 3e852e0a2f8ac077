package mq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/tuanvumaihuynh/stockbook/pkg/ptr"
)

func TestBuildProduceRecord(t *testing.T) {
	t.Run("Should carry headers in key order and the partition key", func(t *testing.T) {
		rec := buildProduceRecord(ProduceMsg{
			Topic:        "sale.created",
			Headers:      map[string]string{"traceparent": "00-abc", "X-Correlation-ID": "c-1"},
			Payload:      []byte(`{"sale_id":"1"}`),
			PartitionKey: ptr.New("1"),
		})

		assert.Equal(t, "sale.created", rec.Topic)
		assert.Equal(t, []byte("1"), rec.Key)
		assert.Equal(t, []byte(`{"sale_id":"1"}`), rec.Value)
		assert.Equal(t, []kgo.RecordHeader{
			{Key: "X-Correlation-ID", Value: []byte("c-1")},
			{Key: "traceparent", Value: []byte("00-abc")},
		}, rec.Headers)
	})

	t.Run("Should leave the key empty without a partition key", func(t *testing.T) {
		rec := buildProduceRecord(ProduceMsg{Topic: "stock.low"})
		assert.Nil(t, rec.Key)
		assert.Empty(t, rec.Headers)
	})
}
