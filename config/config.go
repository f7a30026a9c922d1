package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
)

// Config is the full configuration of the execution core.
type Config struct {
	Executor ExecutorConfig `yaml:"executor"`
	Risk     RiskConfig     `yaml:"risk"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// ExecutorConfig controls the driver loop and order routing.
type ExecutorConfig struct {
	Mode             string  `yaml:"mode"` // simulation | live
	IntervalSeconds  int     `yaml:"interval_seconds"`
	Bankroll         float64 `yaml:"bankroll"`
	MaxTradesPerTick int     `yaml:"max_trades_per_tick"`
	MinScore         float64 `yaml:"min_score"`
	MinConfidence    string  `yaml:"min_confidence"` // LOW | MEDIUM | HIGH
	FeeRate          float64 `yaml:"fee_rate"`       // taken from winning payouts at resolution
	OpportunityFeed  string  `yaml:"opportunity_feed"` // JSON drop-file from the strategy layer
	PriceFeed        string  `yaml:"price_feed"`       // JSON drop-file: conditionId → YES price
}

// RiskConfig holds the admission limits, as fractions of bankroll except
// where noted.
type RiskConfig struct {
	MaxTotalExposure      float64 `yaml:"max_total_exposure"`
	MaxSingleMarket       float64 `yaml:"max_single_market"`
	MaxDailyLoss          float64 `yaml:"max_daily_loss"`
	MaxOpenPositions      int     `yaml:"max_open_positions"`
	MinBankroll           float64 `yaml:"min_bankroll"` // USD, not a fraction
	MaxCorrelatedExposure float64 `yaml:"max_correlated_exposure"`
}

// StorageConfig controls where state is persisted.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // SQLite file path, or ":memory:"
}

// LogConfig controls log format and level.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load reads the YAML config and the .env file if present. Env values
// override the YAML for the keys they cover.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// TickInterval returns the driver loop interval as a time.Duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Executor.IntervalSeconds) * time.Second
}

// Limits converts the risk section to the domain type the ledger consumes.
func (c *Config) Limits() domain.RiskLimits {
	return domain.RiskLimits{
		MaxTotalExposure:      c.Risk.MaxTotalExposure,
		MaxSingleMarket:       c.Risk.MaxSingleMarket,
		MaxDailyLoss:          c.Risk.MaxDailyLoss,
		MaxOpenPositions:      c.Risk.MaxOpenPositions,
		MinBankroll:           c.Risk.MinBankroll,
		MaxCorrelatedExposure: c.Risk.MaxCorrelatedExposure,
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("EXECUTION_MODE"); v != "" {
		cfg.Executor.Mode = v
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Executor.Mode == "" {
		cfg.Executor.Mode = "simulation"
	}
	if cfg.Executor.IntervalSeconds <= 0 {
		cfg.Executor.IntervalSeconds = 5
	}
	if cfg.Executor.Bankroll <= 0 {
		cfg.Executor.Bankroll = 1000
	}
	if cfg.Executor.MaxTradesPerTick <= 0 {
		cfg.Executor.MaxTradesPerTick = 3
	}
	if cfg.Executor.MinConfidence == "" {
		cfg.Executor.MinConfidence = string(domain.ConfidenceMedium)
	}
	if cfg.Executor.FeeRate <= 0 {
		cfg.Executor.FeeRate = 0.02 // conservative default if not configured
	}
	if cfg.Executor.OpportunityFeed == "" {
		cfg.Executor.OpportunityFeed = "opportunities.json"
	}
	if cfg.Executor.PriceFeed == "" {
		cfg.Executor.PriceFeed = "prices.json"
	}

	defaults := domain.DefaultRiskLimits()
	if cfg.Risk.MaxTotalExposure <= 0 {
		cfg.Risk.MaxTotalExposure = defaults.MaxTotalExposure
	}
	if cfg.Risk.MaxSingleMarket <= 0 {
		cfg.Risk.MaxSingleMarket = defaults.MaxSingleMarket
	}
	if cfg.Risk.MaxDailyLoss <= 0 {
		cfg.Risk.MaxDailyLoss = defaults.MaxDailyLoss
	}
	if cfg.Risk.MaxOpenPositions <= 0 {
		cfg.Risk.MaxOpenPositions = defaults.MaxOpenPositions
	}
	if cfg.Risk.MinBankroll <= 0 {
		cfg.Risk.MinBankroll = defaults.MinBankroll
	}
	if cfg.Risk.MaxCorrelatedExposure <= 0 {
		cfg.Risk.MaxCorrelatedExposure = defaults.MaxCorrelatedExposure
	}

	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "executor.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
