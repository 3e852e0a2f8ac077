package db

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stockbook/internal/config"
)

func TestConnectionURL(t *testing.T) {
	cfg := config.Postgres{
		Host:     "db.internal",
		Port:     5433,
		User:     "stock",
		Password: "p@ss:w/rd",
		DB:       "stockbook",
		SSLMode:  "require",
		AppName:  "stockbook-test",
	}

	poolCfg, err := pgxpool.ParseConfig(connectionURL(cfg))
	require.NoError(t, err)

	conn := poolCfg.ConnConfig
	assert.Equal(t, "db.internal", conn.Host)
	assert.Equal(t, uint16(5433), conn.Port)
	assert.Equal(t, "stock", conn.User)
	assert.Equal(t, "p@ss:w/rd", conn.Password)
	assert.Equal(t, "stockbook", conn.Database)
	assert.Equal(t, "stockbook-test", conn.RuntimeParams["application_name"])
}
