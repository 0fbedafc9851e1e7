package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("POS_EXCHANGE_RATE", "129.5")
	t.Setenv("POS_WHOLESALE_MODE", "true")
	t.Setenv("PRINTER_TYPE", "network")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.App.IsProduction())
	assert.True(t, cfg.POS.ExchangeRate.Equal(decimal.RequireFromString("129.5")))
	assert.True(t, cfg.POS.WholesaleMode)
	assert.Equal(t, "network", cfg.Printer.Type)
	assert.Equal(t, "Walk-in Customer", cfg.POS.WalkInName)
}

func TestLoadRejectsBadExchangeRate(t *testing.T) {
	t.Setenv("POS_EXCHANGE_RATE", "abc")

	_, err := Load()
	assert.Error(t, err)
}
