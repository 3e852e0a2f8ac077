package config

import "time"

// Relay configures the outbox relay loop.
type Relay struct {
	BatchSize uint32        `env:"RELAY_BATCH_SIZE" envDefault:"100"`
	Interval  time.Duration `env:"RELAY_INTERVAL" envDefault:"1s"`

	// Retention is how long processed messages are kept. Zero keeps them
	// forever.
	Retention     time.Duration `env:"RELAY_RETENTION" envDefault:"168h"`
	PurgeInterval time.Duration `env:"RELAY_PURGE_INTERVAL" envDefault:"1h"`
}
