package executor

import "github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"

// Routing thresholds, all on the size/liquidity ratio except the edge band.
const (
	twapRatioThreshold      = 0.05 // any order this large slices over time
	crossPlatformTwapRatio  = 0.03 // cross-platform arb is latency-sensitive, slice earlier
	limitMaxEdge            = 0.04 // small positive edge can afford to rest
	limitMaxRatio           = 0.02
)

// ChooseOrderType is the smart-routing policy. It is a pure function of the
// opportunity: identical inputs always produce the identical route.
//
//   - arbitrage routes MARKET (the edge decays fast), except cross-platform
//     arbitrage big enough to move the book, which slices as TWAP
//   - anything over 5% of available liquidity slices as TWAP
//   - a small positive edge with negligible book impact rests as LIMIT to
//     capture price improvement
//   - everything else crosses the spread as MARKET
func ChooseOrderType(opp domain.Opportunity) domain.OrderType {
	ratio := opp.SizeLiquidityRatio()

	if opp.IsArbitrage() {
		if opp.Type == domain.TypeCrossPlatformArb && ratio > crossPlatformTwapRatio {
			return domain.OrderTWAP
		}
		return domain.OrderMarket
	}

	if ratio > twapRatioThreshold {
		return domain.OrderTWAP
	}

	if opp.Edge > 0 && opp.Edge <= limitMaxEdge && ratio < limitMaxRatio {
		return domain.OrderLimit
	}

	return domain.OrderMarket
}
