package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
executor:
  mode: simulation
  interval_seconds: 10
  bankroll: 2500
  max_trades_per_tick: 5
  min_score: 0.6
  min_confidence: HIGH
  fee_rate: 0.01
risk:
  max_total_exposure: 0.25
  max_single_market: 0.08
  max_daily_loss: 0.04
  max_open_positions: 12
  min_bankroll: 200
  max_correlated_exposure: 0.12
storage:
  dsn: test.db
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "simulation", cfg.Executor.Mode)
	assert.Equal(t, 2500.0, cfg.Executor.Bankroll)
	assert.Equal(t, 5, cfg.Executor.MaxTradesPerTick)
	assert.Equal(t, "HIGH", cfg.Executor.MinConfidence)
	assert.Equal(t, 0.01, cfg.Executor.FeeRate)
	assert.Equal(t, "test.db", cfg.Storage.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)

	limits := cfg.Limits()
	assert.Equal(t, 0.25, limits.MaxTotalExposure)
	assert.Equal(t, 12, limits.MaxOpenPositions)
	assert.Equal(t, 200.0, limits.MinBankroll)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "executor:\n  bankroll: 500\n"))
	require.NoError(t, err)

	assert.Equal(t, "simulation", cfg.Executor.Mode)
	assert.Equal(t, 5, cfg.Executor.IntervalSeconds)
	assert.Equal(t, 500.0, cfg.Executor.Bankroll)
	assert.Equal(t, 3, cfg.Executor.MaxTradesPerTick)
	assert.Equal(t, "MEDIUM", cfg.Executor.MinConfidence)
	assert.Equal(t, 0.02, cfg.Executor.FeeRate)
	assert.Equal(t, "opportunities.json", cfg.Executor.OpportunityFeed)
	assert.Equal(t, "executor.db", cfg.Storage.DSN)
	assert.Equal(t, "info", cfg.Log.Level)

	limits := cfg.Limits()
	assert.Equal(t, 0.30, limits.MaxTotalExposure)
	assert.Equal(t, 0.15, limits.MaxCorrelatedExposure)
	assert.Equal(t, 15, limits.MaxOpenPositions)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("EXECUTION_MODE", "live")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("STORAGE_DSN", "/tmp/override.db")

	cfg, err := Load(writeConfig(t, "executor:\n  mode: simulation\nlog:\n  level: info\n"))
	require.NoError(t, err)

	assert.Equal(t, "live", cfg.Executor.Mode)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/tmp/override.db", cfg.Storage.DSN)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestTickInterval(t *testing.T) {
	cfg, err := Load(writeConfig(t, "executor:\n  interval_seconds: 7\n"))
	require.NoError(t, err)
	assert.Equal(t, "7s", cfg.TickInterval().String())
}
