package outbox_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/tuanvumaihuynh/stockbook/pkg/correlationid"
	"github.com/tuanvumaihuynh/stockbook/pkg/outbox"
)

func TestHeadersRoundTrip(t *testing.T) {
	ctx := correlationid.NewContext(context.Background(), "corr-1")

	headers := outbox.BuildHeaders(ctx)
	assert.Equal(t, "corr-1", headers[correlationid.Header])
	assert.Equal(t, outbox.ContentTypeJSON, headers[outbox.ContentTypeHeader])

	rec := &kgo.Record{}
	for k, v := range headers {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	got := outbox.ExtractContextFromHeaders(context.Background(), outbox.RecordHeaders(rec))
	id, ok := correlationid.FromContext(got)
	assert.True(t, ok)
	assert.Equal(t, "corr-1", id)
}

func TestExtractWithoutHeaders(t *testing.T) {
	got := outbox.ExtractContextFromHeaders(context.Background(), map[string]string{
		correlationid.Header: "",
	})

	_, ok := correlationid.FromContext(got)
	assert.False(t, ok)
}
