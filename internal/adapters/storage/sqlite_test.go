package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTrade(id string, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:             id,
		Strategy:       "value",
		Market:         "Will something happen?",
		ConditionID:    "0xabc",
		Slug:           "something-happens",
		Side:           domain.SideYes,
		PositionSize:   50,
		RequestedPrice: 0.45,
		Edge:           0.05,
		OrderType:      domain.OrderMarket,
		Status:         domain.StatusFilled,
		FillPrice:      0.4512,
		Shares:         110.8,
		Slippage:       0.0012,
		CreatedAt:      createdAt,
	}
}

func TestSaveTrade_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	trade := sampleTrade("t1", time.Now().UTC())

	require.NoError(t, s.SaveTrade(ctx, trade))

	trades, err := s.ListTrades(ctx, "")
	require.NoError(t, err)
	require.Len(t, trades, 1)

	got := trades[0]
	assert.Equal(t, trade.ID, got.ID)
	assert.Equal(t, trade.ConditionID, got.ConditionID)
	assert.Equal(t, trade.Side, got.Side)
	assert.Equal(t, trade.OrderType, got.OrderType)
	assert.Equal(t, trade.Status, got.Status)
	assert.InDelta(t, trade.FillPrice, got.FillPrice, 1e-9)
	assert.InDelta(t, trade.Shares, got.Shares, 1e-9)
	assert.WithinDuration(t, trade.CreatedAt, got.CreatedAt, time.Second)
	assert.True(t, got.ExpiresAt.IsZero(), "market orders carry no expiry")
}

func TestSaveTrade_UpsertUpdatesStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	trade := sampleTrade("t1", time.Now().UTC())
	trade.Status = domain.StatusPending
	trade.OrderType = domain.OrderLimit
	require.NoError(t, s.SaveTrade(ctx, trade))

	trade.Status = domain.StatusFilled
	trade.FillPrice = 0.394
	trade.FillAttempts = 4
	require.NoError(t, s.SaveTrade(ctx, trade))

	trades, err := s.ListTrades(ctx, "")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, domain.StatusFilled, trades[0].Status)
	assert.InDelta(t, 0.394, trades[0].FillPrice, 1e-9)
	assert.Equal(t, 4, trades[0].FillAttempts)
}

func TestListTrades_FilterAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC()

	older := sampleTrade("t1", base.Add(-time.Hour))
	newer := sampleTrade("t2", base)
	rejected := sampleTrade("t3", base.Add(-time.Minute))
	rejected.Status = domain.StatusRejected
	rejected.Reason = "total exposure cap"

	for _, tr := range []domain.Order{older, newer, rejected} {
		require.NoError(t, s.SaveTrade(ctx, tr))
	}

	all, err := s.ListTrades(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "t2", all[0].ID, "newest first")

	filled, err := s.ListTrades(ctx, string(domain.StatusFilled))
	require.NoError(t, err)
	assert.Len(t, filled, 2)

	rej, err := s.ListTrades(ctx, string(domain.StatusRejected))
	require.NoError(t, err)
	require.Len(t, rej, 1)
	assert.Equal(t, "total exposure cap", rej[0].Reason)
}

func TestPendingOrders_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first := sampleTrade("p1", now)
	first.OrderType = domain.OrderLimit
	first.Status = domain.StatusPending
	first.TargetPrice = 0.394
	first.ExpiresAt = now.Add(10 * time.Minute)

	second := first
	second.ID = "p2"
	second.ExpiresAt = now.Add(30 * time.Minute)

	require.NoError(t, s.SavePendingOrder(ctx, second))
	require.NoError(t, s.SavePendingOrder(ctx, first))

	pending, err := s.ListPendingOrders(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "p1", pending[0].ID, "soonest expiry first")
	assert.Equal(t, domain.StatusPending, pending[0].Status)
	assert.Equal(t, domain.OrderLimit, pending[0].OrderType)
	assert.InDelta(t, 0.394, pending[0].TargetPrice, 1e-9)

	// Re-saving only advances the attempt counter.
	first.FillAttempts = 3
	require.NoError(t, s.SavePendingOrder(ctx, first))
	pending, err = s.ListPendingOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, pending[0].FillAttempts)

	require.NoError(t, s.DeletePendingOrder(ctx, "p1"))
	require.NoError(t, s.DeletePendingOrder(ctx, "no-such-id"))

	pending, err = s.ListPendingOrders(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "p2", pending[0].ID)
}

func TestRiskState_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	state := domain.PortfolioState{
		TotalDeployed:     150,
		DailyPnL:          -12.5,
		TotalPnL:          87.25,
		TradeCount:        42,
		DailyTradeCount:   3,
		PeakBankroll:      1200,
		ConsecutiveLosses: 2,
		LastResetDate:     now,
	}
	positions := []domain.Position{
		{ConditionID: "0xa", Side: domain.SideYes, Market: "Market alpha", Size: 100, AvgPrice: 0.5, Strategy: "value", Edge: 0.05, EnteredAt: now, UpdatedAt: now},
		{ConditionID: "0xb", Side: domain.SideNo, Market: "Market beta", Size: 50, AvgPrice: 0.4, EnteredAt: now, UpdatedAt: now},
	}

	require.NoError(t, s.SaveRiskState(ctx, state, positions))

	gotState, gotPositions, err := s.LoadRiskState(ctx)
	require.NoError(t, err)
	assert.InDelta(t, state.TotalDeployed, gotState.TotalDeployed, 1e-9)
	assert.InDelta(t, state.DailyPnL, gotState.DailyPnL, 1e-9)
	assert.Equal(t, state.TradeCount, gotState.TradeCount)
	assert.Equal(t, state.ConsecutiveLosses, gotState.ConsecutiveLosses)
	assert.WithinDuration(t, state.LastResetDate, gotState.LastResetDate, time.Second)
	require.Len(t, gotPositions, 2)

	// Each save overwrites the whole snapshot.
	require.NoError(t, s.SaveRiskState(ctx, state, positions[:1]))
	_, gotPositions, err = s.LoadRiskState(ctx)
	require.NoError(t, err)
	require.Len(t, gotPositions, 1)
	assert.Equal(t, "0xa", gotPositions[0].ConditionID)
}

func TestLoadRiskState_FreshDatabase(t *testing.T) {
	s := newTestStore(t)

	state, positions, err := s.LoadRiskState(context.Background())

	require.NoError(t, err)
	assert.Zero(t, state.TotalDeployed)
	assert.Zero(t, state.TradeCount)
	assert.Empty(t, positions)
}
