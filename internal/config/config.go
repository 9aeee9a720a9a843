package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
)

// SwapSettings is the configuration surface read before every transaction
// build. PriorityFeeSOL is a decimal-SOL setting; amount math elsewhere never
// touches floats.
type SwapSettings struct {
	Enabled        bool
	PlatformFeeBps uint16
	TreasuryWallet string
	MaxSlippageBps uint16
	PriorityFeeSOL float64
}

// PriorityFeeLamports converts the decimal-SOL priority fee setting to raw
// lamports.
func (s SwapSettings) PriorityFeeLamports() uint64 {
	if s.PriorityFeeSOL <= 0 {
		return 0
	}
	return uint64(math.Round(s.PriorityFeeSOL * 1e9))
}

// PlatformFeeConfigured reports whether both halves of the platform fee pair
// are present. The aggregator swap call requires them together or not at all.
func (s SwapSettings) PlatformFeeConfigured() bool {
	return s.PlatformFeeBps > 0 && s.TreasuryWallet != ""
}

// Provider supplies swap settings to the orchestrator. It is injected at
// construction so tests can provide deterministic configuration without
// touching process environment.
type Provider interface {
	Swap() SwapSettings
}

type Config struct {
	// HTTP API
	APIAddr string
	APIKey  string
	DevMode bool

	// Solana RPC
	RPCUrl string

	// Venue endpoints
	JupiterBaseURL string
	JupiterAPIKey  string
	RaydiumBaseURL string

	// HTTP client settings
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// Swap pipeline
	SwapSettings SwapSettings

	// Quote cache
	RedisAddr     string
	QuoteCacheTTL time.Duration

	// Swap record sink
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string
}

func Load() *Config {
	return &Config{
		// API
		APIAddr: getEnv("API_ADDR", ":8090"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),

		// RPC
		RPCUrl: getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),

		// Venues
		JupiterBaseURL: getEnv("JUPITER_BASE_URL", "https://api.jup.ag/swap/v1"),
		JupiterAPIKey:  getEnv("JUPITER_API_KEY", ""),
		RaydiumBaseURL: getEnv("RAYDIUM_BASE_URL", "https://api-v3.raydium.io"),

		// HTTP
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 12*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 3),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", 500*time.Millisecond),

		// Swap
		SwapSettings: SwapSettings{
			Enabled:        getBoolEnv("SWAP_ENABLED", true),
			PlatformFeeBps: uint16(getIntEnv("PLATFORM_FEE_BPS", 0)),
			TreasuryWallet: getEnv("TREASURY_WALLET", ""),
			MaxSlippageBps: uint16(getIntEnv("MAX_SLIPPAGE_BPS", 500)),
			PriorityFeeSOL: getFloatEnv("PRIORITY_FEE_SOL", 0.0001),
		},

		// Cache
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		QuoteCacheTTL: getDurationEnv("QUOTE_CACHE_TTL", 20*time.Second),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "swaps"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),
	}
}

// Swap implements Provider with the values loaded at startup.
func (c *Config) Swap() SwapSettings {
	return c.SwapSettings
}

func (c *Config) Validate() error {
	if c.RPCUrl == "" {
		return fmt.Errorf("SOLANA_RPC_URL is required")
	}
	if c.JupiterBaseURL == "" {
		return fmt.Errorf("JUPITER_BASE_URL is required")
	}
	if c.RaydiumBaseURL == "" {
		return fmt.Errorf("RAYDIUM_BASE_URL is required")
	}
	if c.SwapSettings.MaxSlippageBps == 0 || c.SwapSettings.MaxSlippageBps > 10000 {
		return fmt.Errorf("MAX_SLIPPAGE_BPS must be in (0, 10000]")
	}
	if c.SwapSettings.PlatformFeeBps > 0 && c.SwapSettings.TreasuryWallet == "" {
		return fmt.Errorf("PLATFORM_FEE_BPS set without TREASURY_WALLET")
	}
	if c.SwapSettings.TreasuryWallet != "" && c.SwapSettings.PlatformFeeBps == 0 {
		return fmt.Errorf("TREASURY_WALLET set without PLATFORM_FEE_BPS")
	}
	if c.SwapSettings.PriorityFeeSOL < 0 {
		return fmt.Errorf("PRIORITY_FEE_SOL must not be negative")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
