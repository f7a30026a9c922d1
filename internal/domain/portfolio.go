package domain

import "time"

// PortfolioState holds the ledger counters that drive admission decisions.
// Invariant: TotalDeployed equals the sum of open position sizes.
type PortfolioState struct {
	TotalDeployed     float64   `json:"totalDeployed"`
	DailyPnL          float64   `json:"dailyPnL"`
	TotalPnL          float64   `json:"totalPnL"`
	TradeCount        int       `json:"tradeCount"`
	DailyTradeCount   int       `json:"dailyTradeCount"`
	PeakBankroll      float64   `json:"peakBankroll"`
	ConsecutiveLosses int       `json:"consecutiveLosses"`
	LastResetDate     time.Time `json:"lastResetDate"`
}

// MaybeResetDaily zeroes the daily counters when a calendar-day boundary has
// been crossed since the last reset. Returns true if a reset happened.
func (s *PortfolioState) MaybeResetDaily(now time.Time) bool {
	y1, m1, d1 := s.LastResetDate.UTC().Date()
	y2, m2, d2 := now.UTC().Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return false
	}
	s.DailyPnL = 0
	s.DailyTradeCount = 0
	s.LastResetDate = now.UTC()
	return true
}

// Drawdown returns the fractional decline of bankroll from its peak.
func (s PortfolioState) Drawdown(bankroll float64) float64 {
	if s.PeakBankroll <= 0 {
		return 0
	}
	dd := (s.PeakBankroll - bankroll) / s.PeakBankroll
	if dd < 0 {
		return 0
	}
	return dd
}

// RiskLimits is the read-only admission configuration. All limits are
// fractions of bankroll except MaxOpenPositions and MinBankroll.
type RiskLimits struct {
	MaxTotalExposure      float64 `yaml:"max_total_exposure"`
	MaxSingleMarket       float64 `yaml:"max_single_market"`
	MaxDailyLoss          float64 `yaml:"max_daily_loss"`
	MaxOpenPositions      int     `yaml:"max_open_positions"`
	MinBankroll           float64 `yaml:"min_bankroll"`
	MaxCorrelatedExposure float64 `yaml:"max_correlated_exposure"`
}

// DefaultRiskLimits returns conservative limits for a small bankroll.
func DefaultRiskLimits() RiskLimits {
	return RiskLimits{
		MaxTotalExposure:      0.30,
		MaxSingleMarket:       0.10,
		MaxDailyLoss:          0.05,
		MaxOpenPositions:      15,
		MinBankroll:           100,
		MaxCorrelatedExposure: 0.15,
	}
}
