package config

import "time"

type Postgres struct {
	Host     string `env:"POSTGRES_HOST,required"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER,required"`
	Password string `env:"POSTGRES_PASSWORD,required"`
	DB       string `env:"POSTGRES_DB" envDefault:"stockbook"`
	SSLMode  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	AppName  string `env:"POSTGRES_APP_NAME" envDefault:"stockbook"`

	MaxConns        int32         `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns        int32         `env:"POSTGRES_MIN_CONNS" envDefault:"1"`
	MaxConnLifetime time.Duration `env:"POSTGRES_MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime time.Duration `env:"POSTGRES_MAX_CONN_IDLE_TIME" envDefault:"30m"`

	// MigrateOnStart applies pending migrations before serving.
	MigrateOnStart bool `env:"POSTGRES_MIGRATE_ON_START" envDefault:"false"`
}
