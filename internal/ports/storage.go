package ports

import (
	"context"

	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
)

// LedgerStore persists the risk ledger's state. The ledger is a monitoring
// view, not the system of record for broker fills: implementations are
// best-effort and callers log-and-continue on failure.
type LedgerStore interface {
	// SaveRiskState snapshots the portfolio counters and every open position.
	SaveRiskState(ctx context.Context, state domain.PortfolioState, positions []domain.Position) error

	// LoadRiskState restores the last snapshot. A fresh store returns a zero
	// state, no positions, and no error.
	LoadRiskState(ctx context.Context) (domain.PortfolioState, []domain.Position, error)
}

// OrderStore persists the trade ledger and the pending (resting) order queue.
type OrderStore interface {
	// SaveTrade upserts one order row in the trade ledger.
	SaveTrade(ctx context.Context, order domain.Order) error

	// ListTrades returns trades newest-first, optionally filtered by status
	// (empty string means all).
	ListTrades(ctx context.Context, status string) ([]domain.Order, error)

	// SavePendingOrder upserts a resting limit order.
	SavePendingOrder(ctx context.Context, order domain.Order) error

	// DeletePendingOrder removes a resting order; unknown IDs are a no-op.
	DeletePendingOrder(ctx context.Context, id string) error

	// ListPendingOrders returns the resting order queue.
	ListPendingOrders(ctx context.Context) ([]domain.Order, error)

	Close() error
}
