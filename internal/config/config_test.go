package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8090", cfg.APIAddr)
	assert.Equal(t, "https://api.jup.ag/swap/v1", cfg.JupiterBaseURL)
	assert.Equal(t, "https://api-v3.raydium.io", cfg.RaydiumBaseURL)
	assert.True(t, cfg.SwapSettings.Enabled)
	assert.Equal(t, uint16(500), cfg.SwapSettings.MaxSlippageBps)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SWAP_ENABLED", "false")
	t.Setenv("MAX_SLIPPAGE_BPS", "300")
	t.Setenv("PLATFORM_FEE_BPS", "20")
	t.Setenv("TREASURY_WALLET", "Treasury111111111111111111111111111111111111")
	t.Setenv("PRIORITY_FEE_SOL", "0.0005")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	s := cfg.Swap()
	assert.False(t, s.Enabled)
	assert.Equal(t, uint16(300), s.MaxSlippageBps)
	assert.Equal(t, uint16(20), s.PlatformFeeBps)
	assert.True(t, s.PlatformFeeConfigured())
	assert.Equal(t, uint64(500_000), s.PriorityFeeLamports())
}

func TestValidate_PlatformFeePairing(t *testing.T) {
	cfg := Load()

	cfg.SwapSettings.PlatformFeeBps = 20
	cfg.SwapSettings.TreasuryWallet = ""
	assert.Error(t, cfg.Validate())

	cfg.SwapSettings.PlatformFeeBps = 0
	cfg.SwapSettings.TreasuryWallet = "Treasury111111111111111111111111111111111111"
	assert.Error(t, cfg.Validate())

	cfg.SwapSettings.PlatformFeeBps = 20
	assert.NoError(t, cfg.Validate())
}

func TestValidate_SlippageBounds(t *testing.T) {
	cfg := Load()

	cfg.SwapSettings.MaxSlippageBps = 0
	assert.Error(t, cfg.Validate())

	cfg.SwapSettings.MaxSlippageBps = 10001
	assert.Error(t, cfg.Validate())

	cfg.SwapSettings.MaxSlippageBps = 500
	assert.NoError(t, cfg.Validate())
}

func TestSwapSettings_PlatformFeeConfigured(t *testing.T) {
	assert.False(t, SwapSettings{}.PlatformFeeConfigured())
	assert.False(t, SwapSettings{PlatformFeeBps: 20}.PlatformFeeConfigured())
	assert.False(t, SwapSettings{TreasuryWallet: "x"}.PlatformFeeConfigured())
	assert.True(t, SwapSettings{PlatformFeeBps: 20, TreasuryWallet: "x"}.PlatformFeeConfigured())
}
