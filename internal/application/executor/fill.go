package executor

import (
	"math"

	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
)

// Fill simulation parameters.
const (
	minFillPrice = 0.001
	maxFillPrice = 0.999

	baseSlipFrac   = 0.002 // slippage floor as a fraction of price
	impactCoeff    = 0.08  // extra slippage per unit of size/liquidity ratio
	maxSlipFrac    = 0.05  // slippage cap as a fraction of price
	halfSlipFactor = 0.5   // limit orders that cross immediately pay half

	twapMinChunks     = 3
	twapMaxChunks     = 5
	twapChunkLiqPct   = 0.01 // each chunk targets 1% of liquidity
	twapDampFloor     = 0.7  // per-chunk slippage damping lower bound
	twapChunkDrift    = 0.15 // sequential market impact per chunk
)

// marketSlippage models the price concession for taking liquidity: a small
// floor plus a term growing with size relative to book depth, capped.
func marketSlippage(price, size, liquidity float64) float64 {
	ratio := 1.0
	if liquidity > 0 {
		ratio = size / liquidity
	}
	frac := baseSlipFrac + impactCoeff*ratio
	if frac > maxSlipFrac {
		frac = maxSlipFrac
	}
	return price * frac
}

func clampPrice(p float64) float64 {
	if p < minFillPrice {
		return minFillPrice
	}
	if p > maxFillPrice {
		return maxFillPrice
	}
	return p
}

// fillMarket fills the whole order at requested price plus modeled slippage.
// Fees are deferred to resolution time.
func (e *Executor) fillMarket(order *domain.Order, opp domain.Opportunity) {
	slip := marketSlippage(order.RequestedPrice, order.PositionSize, opp.Liquidity)
	fill := clampPrice(order.RequestedPrice + slip)

	order.Status = domain.StatusFilled
	order.FillPrice = fill
	order.Slippage = fill - order.RequestedPrice
	order.Shares = order.PositionSize / fill
}

// fillTWAP slices the order into 3–5 time-weighted chunks. Each chunk draws
// an independent damping of the single-shot slippage estimate plus a
// monotonic drift modeling sequential market impact. The reported fill price
// is the share-weighted average; one consolidated position results.
func (e *Executor) fillTWAP(order *domain.Order, opp domain.Opportunity) {
	chunks := twapChunkCount(order.PositionSize, opp.Liquidity)
	chunkSize := order.PositionSize / float64(chunks)
	singleShot := marketSlippage(order.RequestedPrice, order.PositionSize, opp.Liquidity)

	var totalShares float64
	for i := 0; i < chunks; i++ {
		damp := twapDampFloor + (1-twapDampFloor)*e.rand64()
		drift := twapChunkDrift * float64(i)
		chunkSlip := singleShot * (damp + drift)
		price := clampPrice(order.RequestedPrice + chunkSlip)
		totalShares += chunkSize / price
	}

	order.Status = domain.StatusFilled
	order.Shares = totalShares
	order.FillPrice = order.PositionSize / totalShares
	order.Slippage = order.FillPrice - order.RequestedPrice
}

// twapChunkCount sizes each chunk at ~1% of liquidity, clamped to [3,5].
func twapChunkCount(size, liquidity float64) int {
	if liquidity <= 0 {
		return twapMaxChunks
	}
	n := int(math.Ceil(size / (liquidity * twapChunkLiqPct)))
	if n < twapMinChunks {
		return twapMinChunks
	}
	if n > twapMaxChunks {
		return twapMaxChunks
	}
	return n
}

func (e *Executor) rand64() float64 {
	return e.rng.Float64()
}
