package domain

import (
	"fmt"
	"strings"
)

// Side is the outcome token a trade is exposed to.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// Valid reports whether the side is one of the two binary outcomes.
func (s Side) Valid() bool {
	return s == SideYes || s == SideNo
}

// Confidence is the strategy's ordinal conviction tier for an opportunity.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// Rank maps the tier to an ordinal so tiers can be compared (HIGH > MEDIUM > LOW).
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}

// Opportunity type labels produced by the strategy layer.
const (
	TypeArbitrage        = "arbitrage"
	TypeCrossPlatformArb = "cross-platform-arbitrage"
	TypeValue            = "value"
	TypeMomentum         = "momentum"
)

// Persistence tracks how many consecutive scans an opportunity has survived.
type Persistence struct {
	Scans int `json:"scans"`
}

// Opportunity is a candidate trade surfaced by an external strategy module.
// The execution core consumes it as-is; it never produces one.
type Opportunity struct {
	Strategy      string      `json:"strategy"`
	Market        string      `json:"market"` // market question text
	ConditionID   string      `json:"conditionId"`
	Slug          string      `json:"slug"`
	Side          Side        `json:"side"`
	PositionSize  float64     `json:"positionSize"` // USD to deploy
	YesPrice      float64     `json:"yesPrice"`
	NoPrice       float64     `json:"noPrice"`
	Edge          float64     `json:"edge"`
	NetEV         float64     `json:"netEV"`
	EstimatedProb float64     `json:"estimatedProb"`
	Score         float64     `json:"score"`
	Confidence    Confidence  `json:"confidence"`
	Liquidity     float64     `json:"liquidity"` // USD depth near the touch
	Persistence   Persistence `json:"persistence"`
	Type          string      `json:"type"`
}

// EntryPrice returns the price of the token the opportunity wants to buy.
func (o Opportunity) EntryPrice() float64 {
	if o.Side == SideNo {
		return o.NoPrice
	}
	return o.YesPrice
}

// SizeLiquidityRatio returns proposed size relative to available liquidity.
// Liquidity of zero is treated as fully illiquid (ratio 1.0).
func (o Opportunity) SizeLiquidityRatio() float64 {
	if o.Liquidity <= 0 {
		return 1.0
	}
	return o.PositionSize / o.Liquidity
}

// IsArbitrage reports whether the opportunity came from an arbitrage strategy.
func (o Opportunity) IsArbitrage() bool {
	return strings.Contains(o.Type, "arbitrage")
}

// Validate checks the fields the execution core depends on. A malformed
// opportunity is a per-call configuration error, not a risk rejection.
func (o Opportunity) Validate() error {
	if o.ConditionID == "" {
		return fmt.Errorf("opportunity: missing conditionId")
	}
	if !o.Side.Valid() {
		return fmt.Errorf("opportunity %s: invalid side %q", o.ConditionID, o.Side)
	}
	if o.PositionSize <= 0 {
		return fmt.Errorf("opportunity %s: non-positive size %.2f", o.ConditionID, o.PositionSize)
	}
	p := o.EntryPrice()
	if p <= 0 || p >= 1 {
		return fmt.Errorf("opportunity %s: entry price %.4f outside (0,1)", o.ConditionID, p)
	}
	return nil
}
