package mq

import (
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("internal/storage/mq")

// clientHooks instruments a client with the providers installed at the time
// it is built.
func clientHooks() kgo.Opt {
	k := kotel.NewKotel(
		kotel.WithTracer(kotel.NewTracer(
			kotel.TracerProvider(otel.GetTracerProvider()),
			kotel.TracerPropagator(otel.GetTextMapPropagator()),
		)),
		kotel.WithMeter(kotel.NewMeter(
			kotel.MeterProvider(otel.GetMeterProvider()),
		)),
	)
	return kgo.WithHooks(k.Hooks()...)
}

// commonOpts are shared by the producer and consumer clients.
func commonOpts(addresses []string, clientID string) []kgo.Opt {
	return []kgo.Opt{
		kgo.SeedBrokers(addresses...),
		kgo.ClientID(clientID),
		kgo.AllowAutoTopicCreation(),
		clientHooks(),
	}
}
