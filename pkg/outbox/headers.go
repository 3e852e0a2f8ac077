// Package outbox carries request context across the outbox table and the
// message broker as plain string headers.
package outbox

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/tuanvumaihuynh/stockbook/pkg/correlationid"
)

const (
	ContentTypeHeader = "content-type"
	ContentTypeJSON   = "application/json"
)

// BuildHeaders returns the headers stored with an outbox message: the
// payload content type, the W3C trace context and the correlation id of ctx.
func BuildHeaders(ctx context.Context) map[string]string {
	headers := map[string]string{
		ContentTypeHeader: ContentTypeJSON,
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(headers))

	if id, ok := correlationid.FromContext(ctx); ok {
		headers[correlationid.Header] = id
	}

	return headers
}

// ExtractContextFromHeaders is the inverse of BuildHeaders. Missing headers
// leave ctx unchanged.
func ExtractContextFromHeaders(ctx context.Context, headers map[string]string) context.Context {
	ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(headers))

	if id := headers[correlationid.Header]; id != "" {
		ctx = correlationid.NewContext(ctx, id)
	}

	return ctx
}

// RecordHeaders flattens Kafka record headers into a map. Later duplicates win.
func RecordHeaders(rec *kgo.Record) map[string]string {
	headers := make(map[string]string, len(rec.Headers))
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}
	return headers
}
