package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stockbook/internal/config"
)

func TestLogFormat(t *testing.T) {
	var f config.LogFormat

	require.NoError(t, f.UnmarshalText([]byte("json")))
	assert.Equal(t, config.LogFormatJSON, f)

	require.NoError(t, f.UnmarshalText([]byte("Text")))
	assert.Equal(t, config.LogFormatText, f)

	assert.Error(t, f.UnmarshalText([]byte("xml")))

	b, err := config.LogFormatText.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "TEXT", string(b))
}

func TestCostBasis(t *testing.T) {
	var b config.CostBasis

	require.NoError(t, b.UnmarshalText([]byte("current")))
	assert.Equal(t, config.CostBasisCurrent, b)

	require.NoError(t, b.UnmarshalText([]byte("SNAPSHOT")))
	assert.Equal(t, config.CostBasisSnapshot, b)

	assert.Error(t, b.UnmarshalText([]byte("fifo")))
}

func TestEnumStringOutOfRange(t *testing.T) {
	assert.Equal(t, "SNAPSHOT", config.CostBasisSnapshot.String())
	assert.Equal(t, "UNKNOWN", config.CostBasis(7).String())
	assert.Equal(t, "UNKNOWN", config.LogFormat(9).String())
}
