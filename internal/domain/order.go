package domain

import "time"

// OrderType is the routing decision for an admitted trade.
type OrderType string

const (
	OrderMarket  OrderType = "MARKET"
	OrderLimit   OrderType = "LIMIT"
	OrderTWAP    OrderType = "TWAP"
	OrderIceberg OrderType = "ICEBERG"
)

// OrderStatus is the lifecycle state of an order. Every order ends in exactly
// one terminal state; PENDING only exists for resting limit orders.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusFilled    OrderStatus = "FILLED"
	StatusExpired   OrderStatus = "EXPIRED"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusRejected  OrderStatus = "REJECTED"
)

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == StatusFilled || s == StatusExpired || s == StatusCancelled || s == StatusRejected
}

// CanTransition reports whether moving from s to next is a legal lifecycle step.
// PENDING may resolve to FILLED, EXPIRED or CANCELLED; terminal states are frozen.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case StatusFilled, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// Order is one routed trade and its execution outcome.
type Order struct {
	ID             string      `json:"id"`
	Strategy       string      `json:"strategy"`
	Market         string      `json:"market"`
	ConditionID    string      `json:"conditionId"`
	Slug           string      `json:"slug"`
	Side           Side        `json:"side"`
	PositionSize   float64     `json:"positionSize"` // USD
	RequestedPrice float64     `json:"requestedPrice"`
	Edge           float64     `json:"edge"`
	OrderType      OrderType   `json:"orderType"`
	Status         OrderStatus `json:"status"`
	Reason         string      `json:"reason,omitempty"` // populated on REJECTED
	FillPrice      float64     `json:"fillPrice"`
	Shares         float64     `json:"shares"`
	Slippage       float64     `json:"slippage"`
	Fees           float64     `json:"fees"`
	CreatedAt      time.Time   `json:"createdAt"`

	// LIMIT-only fields.
	TargetPrice  float64   `json:"targetPrice,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt,omitempty"`
	FillAttempts int       `json:"fillAttempts"`
}

// Fill is the result of placing an order through an external venue.
type Fill struct {
	Price  float64
	Shares float64
	Fees   float64
}
