package domain

import "time"

// PositionKey identifies a position uniquely: one per (conditionID, side).
type PositionKey struct {
	ConditionID string
	Side        Side
}

// Position is an open holding in one outcome token of a market.
// A second fill on the same key merges into this struct, never duplicates it.
type Position struct {
	ConditionID string    `json:"conditionId"`
	Market      string    `json:"market"`
	Slug        string    `json:"slug"`
	Side        Side      `json:"side"`
	Size        float64   `json:"size"` // deployed USD
	AvgPrice    float64   `json:"avgPrice"`
	Strategy    string    `json:"strategy"`
	Edge        float64   `json:"edge"`
	EnteredAt   time.Time `json:"enteredAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Key returns the merge key for this position.
func (p Position) Key() PositionKey {
	return PositionKey{ConditionID: p.ConditionID, Side: p.Side}
}

// Shares returns the share count implied by size and average price.
func (p Position) Shares() float64 {
	if p.AvgPrice <= 0 {
		return 0
	}
	return p.Size / p.AvgPrice
}

// ApplyFill merges an additional fill into the position using a
// size-weighted average price.
func (p *Position) ApplyFill(size, price float64, now time.Time) {
	total := p.Size + size
	if total > 0 {
		p.AvgPrice = (p.AvgPrice*p.Size + price*size) / total
	}
	p.Size = total
	p.UpdatedAt = now
}

// WinProbability is the modeled chance this position pays out: entry price
// adjusted by the edge the strategy recorded, clamped away from certainty.
func (p Position) WinProbability() float64 {
	prob := p.AvgPrice + p.Edge
	if prob < 0.02 {
		prob = 0.02
	}
	if prob > 0.98 {
		prob = 0.98
	}
	return prob
}

// ClosedPosition is the realized result of a binary settlement.
type ClosedPosition struct {
	Position Position
	Outcome  Side
	Payout   float64 // 1.0 if the held side matched the outcome, else 0.0
	Fees     float64
	PnL      float64
	ClosedAt time.Time
}
