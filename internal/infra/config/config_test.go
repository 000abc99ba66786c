package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TOKEN_DECIMALS", "")

	cfg := config.Load()

	require.Equal(t, int32(6), cfg.TokenDecimals)
	require.Equal(t, uint64(500000), cfg.GasLimit)
	require.Equal(t, time.Second, cfg.OutboxPollInterval)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("STORE", "sqlite")
	t.Setenv("TOKEN_DECIMALS", "18")
	t.Setenv("AUTO_SETTLE", "true")
	t.Setenv("CONFIRM_TIMEOUT", "30s")

	cfg := config.Load()

	require.Equal(t, "sqlite", cfg.Store)
	require.Equal(t, int32(18), cfg.TokenDecimals)
	require.True(t, cfg.AutoSettle)
	require.Equal(t, 30*time.Second, cfg.ConfirmTimeout)
}
