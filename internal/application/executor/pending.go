package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
)

// CheckPendingOrders sweeps the resting order book against fresh prices.
// Invoked once per scan tick; this is the only mechanism by which pending
// state advances. Prices map conditionID to the current YES price; NO orders
// evaluate against its complement. Returns the orders resolved this sweep.
func (e *Executor) CheckPendingOrders(ctx context.Context, prices map[string]float64) []domain.Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	var resolved []domain.Order

	for id, order := range e.pending {
		order.FillAttempts++

		if now.After(order.ExpiresAt) {
			order.Status = domain.StatusExpired
			delete(e.pending, id)
			e.deletePending(ctx, id)
			e.updateTrade(ctx, order)
			resolved = append(resolved, order)
			slog.Info("exec: limit order expired",
				"market", truncate(order.Market, 40),
				"side", order.Side,
				"attempts", order.FillAttempts,
			)
			continue
		}

		yesPrice, ok := prices[order.ConditionID]
		if !ok {
			e.pending[id] = order
			e.savePending(ctx, order)
			continue
		}

		sidePrice := yesPrice
		if order.Side == domain.SideNo {
			sidePrice = 1 - yesPrice
		}

		if !crossed(order.Side, sidePrice, order.TargetPrice) {
			e.pending[id] = order
			e.savePending(ctx, order)
			continue
		}

		fill := clampPrice(order.TargetPrice + sweepSlippage)
		order.Status = domain.StatusFilled
		order.FillPrice = fill
		order.Slippage = fill - order.RequestedPrice
		order.Shares = order.PositionSize / fill

		delete(e.pending, id)
		e.deletePending(ctx, id)
		e.ledger.AddPosition(ctx, order)
		e.updateTrade(ctx, order)
		resolved = append(resolved, order)

		slog.Info("exec: limit order filled on sweep",
			"market", truncate(order.Market, 40),
			"side", order.Side,
			"fill", fmt.Sprintf("%.4f", fill),
			"attempts", order.FillAttempts,
		)
	}

	return resolved
}

// CancelOrder removes a resting order from the pending queue. Unknown or
// already-resolved IDs are a no-op: cancellation is idempotent.
func (e *Executor) CancelOrder(ctx context.Context, id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, ok := e.pending[id]
	if !ok {
		return
	}

	order.Status = domain.StatusCancelled
	delete(e.pending, id)
	e.deletePending(ctx, id)
	e.updateTrade(ctx, order)

	if e.cfg.Mode == ModeLive && e.placer != nil {
		if err := e.placer.CancelOrder(ctx, id); err != nil {
			slog.Warn("exec: venue cancel failed", "id", id, "err", err)
		}
	}

	slog.Info("exec: order cancelled", "id", id, "market", truncate(order.Market, 40))
}

// updateTrade replaces the in-memory history entry and upserts storage.
// Caller holds e.mu.
func (e *Executor) updateTrade(ctx context.Context, order domain.Order) {
	for i := range e.trades {
		if e.trades[i].ID == order.ID {
			e.trades[i] = order
			e.saveTrade(ctx, order)
			return
		}
	}
	e.trades = append(e.trades, order)
	e.saveTrade(ctx, order)
}
