package executor

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/codeplaymaker/marketplaymaker-sub002/internal/application/risk"
	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
	"github.com/codeplaymaker/marketplaymaker-sub002/internal/ports"
)

// Mode selects between simulated fills and real order placement.
type Mode string

const (
	ModeSimulation Mode = "simulation"
	ModeLive       Mode = "live"
)

// ParseMode validates an execution mode string from config.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSimulation, ModeLive:
		return Mode(s), nil
	case "":
		return ModeSimulation, nil
	}
	return "", fmt.Errorf("executor.ParseMode: invalid execution mode %q (want simulation|live)", s)
}

// Config holds executor settings.
type Config struct {
	Mode Mode
	// PlacementsPerSecond paces live order submission. Zero uses the default.
	PlacementsPerSecond float64
}

const defaultPlacementsPerSecond = 2.0

// Executor owns order routing and the pending-order book. Every execution
// goes through the ledger's admission gate first, and every fill is forwarded
// back so exposure accounting stays in sync. The admission-then-record
// sequence runs under one lock: it is a read-modify-write pair that must be
// atomic under overlapping callers.
type Executor struct {
	mu      sync.Mutex
	ledger  *risk.Ledger
	store   ports.OrderStore
	placer  ports.OrderPlacer
	cfg     Config
	limiter *rate.Limiter
	now     func() time.Time
	rng     *rand.Rand

	trades  []domain.Order
	pending map[string]domain.Order
}

// Option configures an Executor.
type Option func(*Executor)

// WithClock injects a time source.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// WithRand injects the RNG used by fill simulation (tests seed it).
func WithRand(rng *rand.Rand) Option {
	return func(e *Executor) { e.rng = rng }
}

// New builds an executor and restores the trade ledger and pending queue from
// storage, dropping pending orders that expired while the process was down.
// Live mode without an order placer is a configuration error.
func New(ctx context.Context, ledger *risk.Ledger, store ports.OrderStore, placer ports.OrderPlacer, cfg Config, opts ...Option) (*Executor, error) {
	mode, err := ParseMode(string(cfg.Mode))
	if err != nil {
		return nil, err
	}
	cfg.Mode = mode
	if mode == ModeLive && placer == nil {
		return nil, fmt.Errorf("executor.New: live mode requires an order placer")
	}

	pps := cfg.PlacementsPerSecond
	if pps <= 0 {
		pps = defaultPlacementsPerSecond
	}

	e := &Executor{
		ledger:  ledger,
		store:   store,
		placer:  placer,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(pps), 1),
		now:     time.Now,
		pending: make(map[string]domain.Order),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(e.now().UnixNano()))
	}

	if store != nil {
		trades, err := store.ListTrades(ctx, "")
		if err != nil {
			slog.Warn("exec: could not restore trade history", "err", err)
		} else {
			e.trades = trades
		}

		pending, err := store.ListPendingOrders(ctx)
		if err != nil {
			slog.Warn("exec: could not restore pending orders", "err", err)
		} else {
			dropped := 0
			for _, o := range pending {
				if e.now().After(o.ExpiresAt) {
					o.Status = domain.StatusExpired
					e.saveTrade(ctx, o)
					e.deletePending(ctx, o.ID)
					dropped++
					continue
				}
				e.pending[o.ID] = o
			}
			if dropped > 0 {
				slog.Info("exec: dropped expired pending orders on restart", "count", dropped)
			}
		}
	}

	return e, nil
}

// Execute runs one opportunity through admission, routing and filling.
// A risk rejection is returned as a REJECTED order, not an error; only a
// malformed opportunity or a live placement failure produces an error.
func (e *Executor) Execute(ctx context.Context, opp domain.Opportunity, bankroll float64) (*domain.Order, error) {
	if err := opp.Validate(); err != nil {
		return nil, fmt.Errorf("executor.Execute: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	order := domain.Order{
		ID:             uuid.New().String(),
		Strategy:       opp.Strategy,
		Market:         opp.Market,
		ConditionID:    opp.ConditionID,
		Slug:           opp.Slug,
		Side:           opp.Side,
		PositionSize:   opp.PositionSize,
		RequestedPrice: opp.EntryPrice(),
		Edge:           opp.Edge,
		CreatedAt:      now,
	}

	check := e.ledger.CheckTrade(ctx, order, bankroll)
	if !check.Allowed {
		order.Status = domain.StatusRejected
		order.Reason = check.Reason
		order.OrderType = domain.OrderMarket
		e.recordTrade(ctx, order)
		slog.Info("exec: trade rejected",
			"market", truncate(opp.Market, 40),
			"reason", check.Reason,
		)
		return &order, nil
	}

	// Drawdown throttle: scale the deployed size by the risk multiplier the
	// ledger returned, so a portfolio underwater trades smaller.
	if check.RiskMultiplier < 1.0 {
		order.PositionSize = opp.PositionSize * check.RiskMultiplier
		slog.Debug("exec: size throttled by risk multiplier",
			"requested", fmt.Sprintf("$%.2f", opp.PositionSize),
			"scaled", fmt.Sprintf("$%.2f", order.PositionSize),
			"multiplier", check.RiskMultiplier,
		)
	}

	order.OrderType = ChooseOrderType(opp)

	if e.cfg.Mode == ModeLive {
		return e.executeLive(ctx, order)
	}

	switch order.OrderType {
	case domain.OrderMarket:
		e.fillMarket(&order, opp)
	case domain.OrderTWAP:
		e.fillTWAP(&order, opp)
	case domain.OrderLimit:
		e.routeLimit(ctx, &order, opp)
	default:
		e.fillMarket(&order, opp)
	}

	if order.Status == domain.StatusFilled {
		e.ledger.AddPosition(ctx, order)
	}
	e.recordTrade(ctx, order)

	slog.Info("exec: order routed",
		"type", order.OrderType,
		"status", order.Status,
		"market", truncate(opp.Market, 40),
		"side", order.Side,
		"size", fmt.Sprintf("$%.2f", order.PositionSize),
		"fill", fmt.Sprintf("%.4f", order.FillPrice),
		"slippage", fmt.Sprintf("%.4f", order.Slippage),
	)

	return &order, nil
}

// executeLive delegates the admitted order to the external placer and records
// the returned fill exactly like a simulated one. Caller holds e.mu.
func (e *Executor) executeLive(ctx context.Context, order domain.Order) (*domain.Order, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("executor.executeLive: rate limit wait: %w", err)
	}

	fill, err := e.placer.PlaceOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("executor.executeLive: place order: %w", err)
	}

	order.Status = domain.StatusFilled
	order.FillPrice = fill.Price
	order.Shares = fill.Shares
	order.Fees = fill.Fees
	order.Slippage = fill.Price - order.RequestedPrice

	e.ledger.AddPosition(ctx, order)
	e.recordTrade(ctx, order)

	slog.Info("exec: live order filled",
		"market", truncate(order.Market, 40),
		"side", order.Side,
		"fill", fmt.Sprintf("%.4f", fill.Price),
		"shares", fmt.Sprintf("%.2f", fill.Shares),
	)
	return &order, nil
}

// Trades returns the trade history, optionally filtered by status.
func (e *Executor) Trades(status domain.OrderStatus) []domain.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Order, 0, len(e.trades))
	for _, t := range e.trades {
		if status == "" || t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// PendingOrders returns the resting limit order queue.
func (e *Executor) PendingOrders() []domain.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Order, 0, len(e.pending))
	for _, o := range e.pending {
		out = append(out, o)
	}
	return out
}

// --- persistence helpers (best-effort, callers hold e.mu) ---

func (e *Executor) recordTrade(ctx context.Context, order domain.Order) {
	e.trades = append(e.trades, order)
	e.saveTrade(ctx, order)
}

func (e *Executor) saveTrade(ctx context.Context, order domain.Order) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveTrade(ctx, order); err != nil {
		slog.Warn("exec: error persisting trade", "id", order.ID, "err", err)
	}
}

func (e *Executor) savePending(ctx context.Context, order domain.Order) {
	if e.store == nil {
		return
	}
	if err := e.store.SavePendingOrder(ctx, order); err != nil {
		slog.Warn("exec: error persisting pending order", "id", order.ID, "err", err)
	}
}

func (e *Executor) deletePending(ctx context.Context, id string) {
	if e.store == nil {
		return
	}
	if err := e.store.DeletePendingOrder(ctx, id); err != nil {
		slog.Warn("exec: error deleting pending order", "id", id, "err", err)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
