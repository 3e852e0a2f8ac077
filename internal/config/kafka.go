package config

import "time"

type Kafka struct {
	Addresses []string `env:"KAFKA_ADDRESSES,required" envSeparator:","`
	Group     string   `env:"KAFKA_GROUP,required"`
	ClientID  string   `env:"KAFKA_CLIENT_ID" envDefault:"stockbook"`

	// ProducerLinger is how long the producer waits to fill a batch.
	ProducerLinger time.Duration `env:"KAFKA_PRODUCER_LINGER" envDefault:"10ms"`
}
