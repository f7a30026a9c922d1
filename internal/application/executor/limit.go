package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
)

// Limit order parameters.
const (
	limitImprovement      = 0.015 // rest 1.5% below the current price
	limitTightImprovement = 0.005 // persistent opportunities get a tighter target
	persistentScans       = 3
	limitExpiry           = 30 * time.Minute
	sweepSlippage         = 0.001 // minimal fixed concession when a sweep fills
)

// limitTarget computes the resting price for the order's own side: the
// current side price improved by a fixed fraction, tightened when the
// opportunity has persisted across several scans.
func limitTarget(opp domain.Opportunity) float64 {
	improvement := limitImprovement
	if opp.Persistence.Scans >= persistentScans {
		improvement = limitTightImprovement
	}
	return opp.EntryPrice() * (1 - improvement)
}

// crossed applies the crossing rule: a YES order fills once the price has
// come down to its target, a NO order once the price sits at or above it.
func crossed(side domain.Side, sidePrice, target float64) bool {
	if side == domain.SideNo {
		return sidePrice >= target
	}
	return sidePrice <= target
}

// routeLimit either fills immediately (when the creation-time price already
// satisfies the crossing rule, at half the normal slippage) or enqueues the
// order as PENDING with a 30-minute expiry. Caller holds e.mu.
func (e *Executor) routeLimit(ctx context.Context, order *domain.Order, opp domain.Opportunity) {
	order.TargetPrice = limitTarget(opp)

	if crossed(order.Side, opp.EntryPrice(), order.TargetPrice) {
		slip := halfSlipFactor * marketSlippage(order.RequestedPrice, order.PositionSize, opp.Liquidity)
		fill := clampPrice(order.RequestedPrice + slip)
		order.Status = domain.StatusFilled
		order.FillPrice = fill
		order.Slippage = fill - order.RequestedPrice
		order.Shares = order.PositionSize / fill
		return
	}

	order.Status = domain.StatusPending
	order.ExpiresAt = order.CreatedAt.Add(limitExpiry)
	order.FillAttempts = 0
	e.pending[order.ID] = *order
	e.savePending(ctx, *order)

	slog.Info("exec: limit order resting",
		"market", truncate(order.Market, 40),
		"side", order.Side,
		"target", fmt.Sprintf("%.4f", order.TargetPrice),
		"expires", order.ExpiresAt.Format("15:04:05"),
	)
}
