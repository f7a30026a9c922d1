package domain

import "time"

// CheckResult is the outcome of one admission call. A rejection is a business
// veto, never an error; Reason names the gate that fired.
type CheckResult struct {
	Allowed              bool
	Reason               string
	RiskMultiplier       float64 // drawdown-scaled multiplier applied to limits
	EffectiveMaxExposure float64 // MaxTotalExposure × multiplier (fraction of bankroll)
}

// RiskLevel classifies VaR relative to bankroll.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// ClassifyRiskLevel maps VaR95 as a fraction of bankroll to a level:
// >10% HIGH, >5% MEDIUM, else LOW.
func ClassifyRiskLevel(var95, bankroll float64) RiskLevel {
	if bankroll <= 0 {
		return RiskLow
	}
	frac := var95 / bankroll
	switch {
	case frac > 0.10:
		return RiskHigh
	case frac > 0.05:
		return RiskMedium
	default:
		return RiskLow
	}
}

// VaRReport is the result of one Monte Carlo portfolio simulation.
type VaRReport struct {
	Trials      int
	ExpectedPnL float64
	VaR95       float64 // loss not expected to be exceeded 95% of the time (positive = loss)
	VaR99       float64
	CVaR95      float64 // mean loss of the tail beyond VaR95
	WorstCase   float64
	RiskLevel   RiskLevel
}

// Stress scenario scope sentinels.
const (
	ScopeAllPositions = "all-positions"
	ScopeLargestGroup = "largest-correlation-group"
)

// StressScenario describes a named shock: which positions it hits, how hard,
// and how much spills over to everything else.
type StressScenario struct {
	Name          string
	Categories    []string // correlation categories, or one of the Scope sentinels
	LossMult      float64  // fraction of affected exposure lost
	SpilloverMult float64  // fraction of unaffected exposure lost
}

// DefaultStressScenarios is the fixed scenario table applied by the ledger.
func DefaultStressScenarios() []StressScenario {
	return []StressScenario{
		{Name: "crypto flash crash", Categories: []string{CategoryCrypto}, LossMult: 0.80, SpilloverMult: 0.10},
		{Name: "political shock", Categories: []string{CategoryPolitics}, LossMult: 0.70, SpilloverMult: 0.15},
		{Name: "macro surprise", Categories: []string{CategoryMacro}, LossMult: 0.60, SpilloverMult: 0.10},
		{Name: "geopolitical escalation", Categories: []string{CategoryGeo}, LossMult: 0.65, SpilloverMult: 0.20},
		{Name: "correlated unwind", Categories: []string{ScopeLargestGroup}, LossMult: 0.60, SpilloverMult: 0.20},
		{Name: "black swan", Categories: []string{ScopeAllPositions}, LossMult: 0.50, SpilloverMult: 0},
	}
}

// StressSeverity tiers a scenario loss as a fraction of bankroll.
type StressSeverity string

const (
	SeverityOK       StressSeverity = "OK"
	SeverityWarning  StressSeverity = "WARNING"
	SeveritySevere   StressSeverity = "SEVERE"
	SeverityCritical StressSeverity = "CRITICAL"
)

// SeverityFor tiers a loss percentage: <5% OK, <10% WARNING, <15% SEVERE,
// else CRITICAL.
func SeverityFor(lossPct float64) StressSeverity {
	switch {
	case lossPct < 5:
		return SeverityOK
	case lossPct < 10:
		return SeverityWarning
	case lossPct < 15:
		return SeveritySevere
	default:
		return SeverityCritical
	}
}

// StressResult is one scenario's estimated damage.
type StressResult struct {
	Scenario      StressScenario
	EstimatedLoss float64
	LossPct       float64 // percent of bankroll
	Severity      StressSeverity
}

// Resilience is the overall verdict from the worst stress scenario.
type Resilience string

const (
	ResilienceStrong   Resilience = "STRONG"
	ResilienceModerate Resilience = "MODERATE"
	ResilienceFragile  Resilience = "FRAGILE"
)

// StressReport aggregates all scenario results.
type StressReport struct {
	Results    []StressResult
	WorstLoss  float64
	Resilience Resilience
}

// GroupExposure is one row of the correlation heatmap.
type GroupExposure struct {
	Group     string
	Category  string
	Exposure  float64
	Positions int
}

// RiskSnapshot is the full read-only view of the ledger for reporting.
type RiskSnapshot struct {
	At                time.Time
	Bankroll          float64
	TotalDeployed     float64
	OpenPositions     int
	DailyPnL          float64
	TotalPnL          float64
	DrawdownPct       float64
	RiskMultiplier    float64
	ConsecutiveLosses int
	Positions         []Position
	Heatmap           []GroupExposure
	VaR               VaRReport
	Stress            StressReport
}
