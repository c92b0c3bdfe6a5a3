// Package common provides shared utilities for Tally
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Tally
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Portfolio   PortfolioConfig `toml:"portfolio"`
	Analysis    AnalysisConfig  `toml:"analysis"`
	Advisor     AdvisorConfig   `toml:"advisor"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the data directory layout. Snapshots live in a
// subdirectory; holdings and profile are single JSON documents.
type StorageConfig struct {
	Path     string `toml:"path"`
	Versions int    `toml:"versions"` // rotated copies kept for user-authored files
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	CoinGecko CoinGeckoConfig `toml:"coingecko"`
	EODHD     EODHDConfig     `toml:"eodhd"`
}

// CoinGeckoConfig holds CoinGecko API configuration
type CoinGeckoConfig struct {
	BaseURL       string `toml:"base_url"`
	RateLimit     int    `toml:"rate_limit"`
	Timeout       string `toml:"timeout"`
	PriceCacheTTL string `toml:"price_cache_ttl"`
}

// GetTimeout parses and returns the timeout duration
func (c *CoinGeckoConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetPriceCacheTTL parses and returns the spot-price cache TTL
func (c *CoinGeckoConfig) GetPriceCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.PriceCacheTTL)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// PortfolioConfig holds aggregation rules and freshness thresholds
type PortfolioConfig struct {
	CacheTTL          string   `toml:"cache_ttl"`
	SnapshotStaleDays int      `toml:"snapshot_stale_days"`
	HoldingsStaleDays int      `toml:"holdings_stale_days"`
	CryptoETFSymbols  []string `toml:"crypto_etf_symbols"`
}

// GetCacheTTL parses and returns the aggregation cache TTL
func (c *PortfolioConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// AnalysisConfig holds allocation targets and market thresholds
type AnalysisConfig struct {
	Baseline        BaselineAllocation    `toml:"baseline"`
	Adjustments     AllocationAdjustments `toml:"adjustments"`
	Opportunities   OpportunityThresholds `toml:"opportunities"`
	ReferenceCrypto []string              `toml:"reference_crypto"` // symbols used for market context
	EquityBenchmark string                `toml:"equity_benchmark"` // ticker used as the S&P 500 proxy
}

// BaselineAllocation holds the default target allocation percentages.
// They should sum to 100; the analyzer normalizes after adjustments anyway.
type BaselineAllocation struct {
	Retirement      float64 `toml:"retirement"`
	TaxableEquities float64 `toml:"taxable_equities"`
	Crypto          float64 `toml:"crypto"`
	Cash            float64 `toml:"cash"`
}

// AllocationAdjustments holds situational adjustment magnitudes (percentage points)
type AllocationAdjustments struct {
	UrgentGoalBoostLow   float64 `toml:"urgent_goal_boost_low"`  // deadline within 12 months
	UrgentGoalBoostHigh  float64 `toml:"urgent_goal_boost_high"` // deadline within 6 months
	LifeStageCashBoost   float64 `toml:"life_stage_cash_boost"`
	LifeStageCashCeiling float64 `toml:"life_stage_cash_ceiling"`
}

// OpportunityThresholds holds market-drop thresholds (negative = decline)
type OpportunityThresholds struct {
	CryptoPotentialDCA float64 `toml:"crypto_potential_dca"` // 7d drop
	CryptoStrongDCA    float64 `toml:"crypto_strong_dca"`    // 7d drop
	EquityPullback     float64 `toml:"equity_pullback"`      // 7d drop
	EquityCorrection   float64 `toml:"equity_correction"`    // 30d drop
}

// AdvisorConfig holds recommendation priority thresholds and limits
type AdvisorConfig struct {
	GoalDeadlineUrgentMonths   int     `toml:"goal_deadline_urgent_months"`
	GoalDeadlineCriticalMonths int     `toml:"goal_deadline_critical_months"`
	DriftHighPct               float64 `toml:"drift_high_pct"`
	DriftMediumPct             float64 `toml:"drift_medium_pct"`
	RebalanceTriggerPct        float64 `toml:"rebalance_trigger_pct"`
	RothAnnualLimit            float64 `toml:"roth_annual_limit"`
	MinRothTopUp               float64 `toml:"min_roth_top_up"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 4270,
		},
		Storage: StorageConfig{
			Path:     "data",
			Versions: 3,
		},
		Clients: ClientsConfig{
			CoinGecko: CoinGeckoConfig{
				BaseURL:       "https://api.coingecko.com/api/v3",
				RateLimit:     5,
				Timeout:       "10s",
				PriceCacheTTL: "60s",
			},
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
		},
		Portfolio: PortfolioConfig{
			CacheTTL:          "30s",
			SnapshotStaleDays: 30,
			HoldingsStaleDays: 7,
			CryptoETFSymbols:  []string{"BITO", "GBTC", "ETHE", "IBIT", "FBTC"},
		},
		Analysis: AnalysisConfig{
			Baseline: BaselineAllocation{
				Retirement:      40,
				TaxableEquities: 20,
				Crypto:          25,
				Cash:            15,
			},
			Adjustments: AllocationAdjustments{
				UrgentGoalBoostLow:   10,
				UrgentGoalBoostHigh:  20,
				LifeStageCashBoost:   5,
				LifeStageCashCeiling: 30,
			},
			Opportunities: OpportunityThresholds{
				CryptoPotentialDCA: -10,
				CryptoStrongDCA:    -20,
				EquityPullback:     -5,
				EquityCorrection:   -10,
			},
			ReferenceCrypto: []string{"BTC", "ETH"},
			EquityBenchmark: "VOO.US",
		},
		Advisor: AdvisorConfig{
			GoalDeadlineUrgentMonths:   12,
			GoalDeadlineCriticalMonths: 6,
			DriftHighPct:               10,
			DriftMediumPct:             5,
			RebalanceTriggerPct:        7,
			RothAnnualLimit:            7000,
			MinRothTopUp:               50,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Outputs:  []string{"console"},
			FilePath: "./logs/tally.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TALLY_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("TALLY_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("TALLY_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("TALLY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("TALLY_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if key := os.Getenv("EODHD_API_KEY"); key != "" {
		config.Clients.EODHD.APIKey = key
	}
	if key := os.Getenv("TALLY_EODHD_API_KEY"); key != "" {
		config.Clients.EODHD.APIKey = key
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveDataPath resolves the storage path relative to a base directory
// when it is not absolute.
func (c *Config) ResolveDataPath(baseDir string) string {
	if filepath.IsAbs(c.Storage.Path) {
		return c.Storage.Path
	}
	return filepath.Join(baseDir, c.Storage.Path)
}
