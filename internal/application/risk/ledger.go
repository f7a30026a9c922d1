package risk

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
	"github.com/codeplaymaker/marketplaymaker-sub002/internal/ports"
)

const (
	drawdownHaltPct       = 0.20 // halt all trading at 20% below peak
	maxLossStreak         = 5
	admissionTrials       = 5000
	reportTrials          = 10000
	varLimitFraction      = 0.15 // reject when VaR95 exceeds 15% of bankroll
	intraGroupCorrelation = 0.6
)

// Ledger owns the portfolio state and the admission gate. It is an explicitly
// constructed instance with injected persistence, clock, and sampling so tests
// run isolated copies instead of sharing process state.
type Ledger struct {
	mu        sync.Mutex
	limits    domain.RiskLimits
	store     ports.LedgerStore
	matcher   *domain.CorrelationMatcher
	sampler   Sampler
	scenarios []domain.StressScenario
	feeRate   float64
	now       func() time.Time

	positions map[domain.PositionKey]domain.Position
	state     domain.PortfolioState

	// Admission-path VaR is cached per portfolio+candidate fingerprint so a
	// scan cycle re-submitting the same opportunity doesn't re-run the
	// simulation. Any position mutation invalidates it.
	varFingerprint string
	varCached      domain.VaRReport
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock injects a time source (tests freeze it).
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithSampler replaces the Monte Carlo sampling strategy.
func WithSampler(s Sampler) Option {
	return func(l *Ledger) { l.sampler = s }
}

// WithRules replaces the correlation rule table.
func WithRules(rules []domain.CorrelationRule) Option {
	return func(l *Ledger) { l.matcher = domain.NewCorrelationMatcher(rules) }
}

// WithScenarios replaces the stress scenario table.
func WithScenarios(scenarios []domain.StressScenario) Option {
	return func(l *Ledger) { l.scenarios = scenarios }
}

// WithFeeRate sets the fee taken from winning payouts at resolution.
func WithFeeRate(rate float64) Option {
	return func(l *Ledger) { l.feeRate = rate }
}

// NewLedger builds a ledger and restores persisted state. A load failure is
// logged, not fatal: the ledger starts empty and in-memory state is
// authoritative from then on.
func NewLedger(ctx context.Context, limits domain.RiskLimits, store ports.LedgerStore, opts ...Option) *Ledger {
	l := &Ledger{
		limits:    limits,
		store:     store,
		matcher:   domain.NewCorrelationMatcher(domain.DefaultCorrelationRules()),
		scenarios: domain.DefaultStressScenarios(),
		now:       time.Now,
		positions: make(map[domain.PositionKey]domain.Position),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.sampler == nil {
		l.sampler = NewGroupShockSampler(rand.New(rand.NewSource(l.now().UnixNano())), intraGroupCorrelation)
	}

	if store != nil {
		state, positions, err := store.LoadRiskState(ctx)
		if err != nil {
			slog.Warn("risk: could not restore ledger state, starting empty", "err", err)
		} else {
			l.state = state
			for _, p := range positions {
				l.positions[p.Key()] = p
			}
		}
	}
	return l
}

// CheckTrade runs the admission gate chain. The first failing gate
// short-circuits with its reason; on success the result carries the dynamic
// multiplier and the effective exposure cap so the caller can scale size.
func (l *Ledger) CheckTrade(ctx context.Context, trade domain.Order, bankroll float64) domain.CheckResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	dirty := l.state.MaybeResetDaily(l.now())

	// Gate 1: high-water mark and drawdown halt.
	if bankroll > l.state.PeakBankroll {
		l.state.PeakBankroll = bankroll
		dirty = true
	}
	if dirty {
		l.persist(ctx)
	}

	drawdown := l.state.Drawdown(bankroll)
	if drawdown >= drawdownHaltPct {
		return reject(fmt.Sprintf("drawdown halt: %.1f%% below peak bankroll", drawdown*100))
	}

	// Gate 2: minimum bankroll.
	if bankroll < l.limits.MinBankroll {
		return reject(fmt.Sprintf("bankroll $%.2f below minimum $%.2f", bankroll, l.limits.MinBankroll))
	}

	// Gate 3: daily loss limit.
	if l.state.DailyPnL <= -(bankroll * l.limits.MaxDailyLoss) {
		return reject(fmt.Sprintf("daily loss limit hit: $%.2f", l.state.DailyPnL))
	}

	// Gate 4: circuit breaker on consecutive losing closes.
	if l.state.ConsecutiveLosses >= maxLossStreak {
		return reject(fmt.Sprintf("circuit breaker: %d consecutive losses", l.state.ConsecutiveLosses))
	}

	// Gate 5: all remaining percentage limits scale with drawdown.
	mult := multiplierFor(drawdown)
	effectiveMax := l.limits.MaxTotalExposure * mult

	// Gate 6: total exposure.
	if l.state.TotalDeployed+trade.PositionSize > bankroll*effectiveMax {
		return reject(fmt.Sprintf("total exposure $%.2f would exceed cap $%.2f",
			l.state.TotalDeployed+trade.PositionSize, bankroll*effectiveMax))
	}

	// Gate 7: single-market concentration (both sides of the market count).
	marketCap := bankroll * l.limits.MaxSingleMarket * mult
	if l.marketExposure(trade.ConditionID)+trade.PositionSize > marketCap {
		return reject(fmt.Sprintf("single-market exposure would exceed cap $%.2f", marketCap))
	}

	// Gate 8: open position count.
	if len(l.positions) >= l.limits.MaxOpenPositions {
		return reject(fmt.Sprintf("max open positions reached (%d)", l.limits.MaxOpenPositions))
	}

	// Gate 9: correlated exposure, checked for every group the market hits.
	groupCap := bankroll * l.limits.MaxCorrelatedExposure * mult
	groupExposure := l.exposureByGroup()
	for _, g := range l.matcher.Groups(trade.Market, trade.Slug) {
		if groupExposure[g.Key]+trade.PositionSize > groupCap {
			return reject(fmt.Sprintf("correlated exposure in %q would exceed cap $%.2f", g.Key, groupCap))
		}
	}

	// Gate 10: portfolio VaR including the candidate position.
	report := l.admissionVaR(trade, bankroll)
	if report.VaR95 > bankroll*varLimitFraction {
		return reject(fmt.Sprintf("VaR95 $%.2f exceeds %.0f%% of bankroll",
			report.VaR95, varLimitFraction*100))
	}

	return domain.CheckResult{
		Allowed:              true,
		RiskMultiplier:       mult,
		EffectiveMaxExposure: effectiveMax,
	}
}

func reject(reason string) domain.CheckResult {
	return domain.CheckResult{Allowed: false, Reason: reason}
}

// DynamicRiskMultiplier returns the drawdown-based throttle applied to all
// percentage limits: full size near the peak, a trickle deep underwater.
func (l *Ledger) DynamicRiskMultiplier(bankroll float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return multiplierFor(l.state.Drawdown(bankroll))
}

func multiplierFor(drawdown float64) float64 {
	switch {
	case drawdown <= 0.01:
		return 1.0
	case drawdown <= 0.03:
		return 0.8
	case drawdown <= 0.05:
		return 0.6
	case drawdown <= 0.10:
		return 0.3
	default:
		return 0.1
	}
}

// AddPosition records a fill: merge into an existing (conditionID, side)
// position with a size-weighted average price, or insert a new one.
func (l *Ledger) AddPosition(ctx context.Context, trade domain.Order) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.state.MaybeResetDaily(now)

	key := domain.PositionKey{ConditionID: trade.ConditionID, Side: trade.Side}
	pos, exists := l.positions[key]
	if !exists {
		pos = domain.Position{
			ConditionID: trade.ConditionID,
			Market:      trade.Market,
			Slug:        trade.Slug,
			Side:        trade.Side,
			Strategy:    trade.Strategy,
			Edge:        trade.Edge,
			EnteredAt:   now,
		}
	}
	pos.ApplyFill(trade.PositionSize, trade.FillPrice, now)
	l.positions[key] = pos

	l.state.TotalDeployed += trade.PositionSize
	l.state.TradeCount++
	l.state.DailyTradeCount++
	l.invalidateVaR()
	l.persist(ctx)

	slog.Info("risk: position recorded",
		"market", truncate(trade.Market, 40),
		"side", trade.Side,
		"size", fmt.Sprintf("$%.2f", trade.PositionSize),
		"avgPrice", fmt.Sprintf("%.4f", pos.AvgPrice),
		"deployed", fmt.Sprintf("$%.2f", l.state.TotalDeployed),
	)
}

// ClosePosition settles a position against the resolved outcome: payout 1.0
// if the held side won, 0.0 otherwise. Realizes P&L, advances or resets the
// loss streak, and removes the position. Returns nil if no position matches.
func (l *Ledger) ClosePosition(ctx context.Context, conditionID string, side domain.Side, outcome domain.Side) *domain.ClosedPosition {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := domain.PositionKey{ConditionID: conditionID, Side: side}
	pos, exists := l.positions[key]
	if !exists {
		return nil
	}

	now := l.now()
	l.state.MaybeResetDaily(now)

	payout := 0.0
	if side == outcome {
		payout = 1.0
	}

	shares := pos.Shares()
	fees := 0.0
	if payout > 0 {
		fees = payout * shares * l.feeRate
	}
	pnl := (payout-pos.AvgPrice)*shares - fees

	l.state.DailyPnL += pnl
	l.state.TotalPnL += pnl
	l.state.TotalDeployed -= pos.Size
	if l.state.TotalDeployed < 0 {
		l.state.TotalDeployed = 0
	}

	if pnl < 0 {
		l.state.ConsecutiveLosses++
	} else if pnl > 0 {
		l.state.ConsecutiveLosses = 0
	}

	delete(l.positions, key)
	l.invalidateVaR()
	l.persist(ctx)

	slog.Info("risk: position closed",
		"market", truncate(pos.Market, 40),
		"side", side,
		"outcome", outcome,
		"pnl", fmt.Sprintf("$%.2f", pnl),
		"streak", l.state.ConsecutiveLosses,
	)

	return &domain.ClosedPosition{
		Position: pos,
		Outcome:  outcome,
		Payout:   payout,
		Fees:     fees,
		PnL:      pnl,
		ClosedAt: now,
	}
}

// Positions returns a copy of the open positions.
func (l *Ledger) Positions() []domain.Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.positionList()
}

// State returns a copy of the portfolio counters.
func (l *Ledger) State() domain.PortfolioState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Snapshot assembles the full risk view: exposure, heatmap, Monte Carlo VaR
// at report depth, drawdown, multiplier, streak and stress results.
func (l *Ledger) Snapshot(ctx context.Context, bankroll float64) domain.RiskSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	drawdown := l.state.Drawdown(bankroll)

	return domain.RiskSnapshot{
		At:                l.now(),
		Bankroll:          bankroll,
		TotalDeployed:     l.state.TotalDeployed,
		OpenPositions:     len(l.positions),
		DailyPnL:          l.state.DailyPnL,
		TotalPnL:          l.state.TotalPnL,
		DrawdownPct:       drawdown * 100,
		RiskMultiplier:    multiplierFor(drawdown),
		ConsecutiveLosses: l.state.ConsecutiveLosses,
		Positions:         l.positionList(),
		Heatmap:           l.heatmap(),
		VaR:               l.portfolioVaR(reportTrials, bankroll),
		Stress:            l.runStress(bankroll),
	}
}

// --- internals (callers hold l.mu) ---

func (l *Ledger) positionList() []domain.Position {
	out := make([]domain.Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Size > out[j].Size })
	return out
}

// marketExposure sums open size across both sides of one market.
func (l *Ledger) marketExposure(conditionID string) float64 {
	var total float64
	for key, pos := range l.positions {
		if key.ConditionID == conditionID {
			total += pos.Size
		}
	}
	return total
}

// exposureByGroup sums open size per correlation group key.
func (l *Ledger) exposureByGroup() map[string]float64 {
	out := make(map[string]float64)
	for _, pos := range l.positions {
		for _, g := range l.matcher.Groups(pos.Market, pos.Slug) {
			out[g.Key] += pos.Size
		}
	}
	return out
}

// heatmap is exposureByGroup with categories and counts, sorted by exposure.
func (l *Ledger) heatmap() []domain.GroupExposure {
	byKey := make(map[string]*domain.GroupExposure)
	for _, pos := range l.positions {
		for _, g := range l.matcher.Groups(pos.Market, pos.Slug) {
			entry, ok := byKey[g.Key]
			if !ok {
				entry = &domain.GroupExposure{Group: g.Key, Category: g.Category}
				byKey[g.Key] = entry
			}
			entry.Exposure += pos.Size
			entry.Positions++
		}
	}
	out := make([]domain.GroupExposure, 0, len(byKey))
	for _, entry := range byKey {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Exposure > out[j].Exposure })
	return out
}

// portfolioVaR simulates the open positions as they stand.
func (l *Ledger) portfolioVaR(trials int, bankroll float64) domain.VaRReport {
	mcs := make([]mcPosition, 0, len(l.positions))
	for _, pos := range l.positions {
		mcs = append(mcs, toMCPosition(pos, l.matcher.PrimaryGroup(pos.Market, pos.Slug)))
	}
	return simulate(l.sampler, mcs, trials, bankroll)
}

// admissionVaR simulates the portfolio plus the candidate trade at admission
// depth, memoized until the portfolio changes.
func (l *Ledger) admissionVaR(trade domain.Order, bankroll float64) domain.VaRReport {
	fp := l.fingerprint(trade, bankroll)
	if fp == l.varFingerprint {
		return l.varCached
	}

	mcs := make([]mcPosition, 0, len(l.positions)+1)
	for _, pos := range l.positions {
		mcs = append(mcs, toMCPosition(pos, l.matcher.PrimaryGroup(pos.Market, pos.Slug)))
	}

	price := trade.RequestedPrice
	if price <= 0 || price >= 1 {
		price = 0.5
	}
	candidate := domain.Position{
		ConditionID: trade.ConditionID,
		Market:      trade.Market,
		Slug:        trade.Slug,
		Side:        trade.Side,
		Size:        trade.PositionSize,
		AvgPrice:    price,
		Edge:        trade.Edge,
	}
	mcs = append(mcs, toMCPosition(candidate, l.matcher.PrimaryGroup(trade.Market, trade.Slug)))

	report := simulate(l.sampler, mcs, admissionTrials, bankroll)
	l.varFingerprint = fp
	l.varCached = report
	return report
}

func (l *Ledger) fingerprint(trade domain.Order, bankroll float64) string {
	keys := make([]string, 0, len(l.positions))
	for key, pos := range l.positions {
		keys = append(keys, fmt.Sprintf("%s/%s/%.2f", key.ConditionID, key.Side, pos.Size))
	}
	sort.Strings(keys)
	return fmt.Sprintf("%s|%s/%s/%.2f@%.4f|%.0f",
		strings.Join(keys, ","), trade.ConditionID, trade.Side, trade.PositionSize, trade.RequestedPrice, bankroll)
}

func (l *Ledger) invalidateVaR() {
	l.varFingerprint = ""
}

// persist writes the snapshot best-effort; the ledger favors availability
// over durability and in-memory state stays authoritative.
func (l *Ledger) persist(ctx context.Context) {
	if l.store == nil {
		return
	}
	if err := l.store.SaveRiskState(ctx, l.state, l.positionList()); err != nil {
		slog.Warn("risk: error persisting ledger state", "err", err)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
