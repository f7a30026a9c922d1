package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeplaymaker/marketplaymaker-sub002/internal/adapters/storage"
	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
)

func TestCheckPendingOrders_FillsWhenPriceCrosses(t *testing.T) {
	e := newSimExecutor(t)
	ctx := context.Background()

	order, err := e.Execute(ctx, restingLimitOpp("0xa"), 1000)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, order.Status)

	// Price above the target: still resting, one more attempt on the clock.
	resolved := e.CheckPendingOrders(ctx, map[string]float64{"0xa": 0.42})
	assert.Empty(t, resolved)
	require.Len(t, e.PendingOrders(), 1)
	assert.Equal(t, 1, e.PendingOrders()[0].FillAttempts)

	// Price crosses: fills at target plus the fixed sweep concession.
	resolved = e.CheckPendingOrders(ctx, map[string]float64{"0xa": 0.39})
	require.Len(t, resolved, 1)
	assert.Equal(t, domain.StatusFilled, resolved[0].Status)
	assert.InDelta(t, order.TargetPrice+0.001, resolved[0].FillPrice, 1e-9)
	assert.Equal(t, 2, resolved[0].FillAttempts)

	assert.Empty(t, e.PendingOrders())
	assert.Len(t, e.Trades(domain.StatusFilled), 1)
	require.Len(t, e.ledger.Positions(), 1)
	assert.InDelta(t, order.PositionSize, e.ledger.Positions()[0].Size, 1e-9)
}

func TestCheckPendingOrders_NoSideUsesComplementPrice(t *testing.T) {
	e := newSimExecutor(t)
	ctx := context.Background()
	now := time.Now()

	resting := domain.Order{
		ID:             "no-1",
		Market:         "Quiet market",
		ConditionID:    "0xn",
		Side:           domain.SideNo,
		PositionSize:   10,
		RequestedPrice: 0.70,
		OrderType:      domain.OrderLimit,
		Status:         domain.StatusPending,
		TargetPrice:    0.65,
		CreatedAt:      now,
		ExpiresAt:      now.Add(time.Hour),
	}
	e.pending[resting.ID] = resting
	e.trades = append(e.trades, resting)

	// YES at 0.30 means NO trades at 0.70, above the 0.65 target.
	resolved := e.CheckPendingOrders(ctx, map[string]float64{"0xn": 0.30})

	require.Len(t, resolved, 1)
	assert.Equal(t, domain.StatusFilled, resolved[0].Status)
	assert.InDelta(t, 0.651, resolved[0].FillPrice, 1e-9)
}

func TestCheckPendingOrders_Expiry(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	e := newSimExecutor(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := e.Execute(ctx, restingLimitOpp("0xa"), 1000)
	require.NoError(t, err)

	now = now.Add(31 * time.Minute)
	resolved := e.CheckPendingOrders(ctx, map[string]float64{})

	require.Len(t, resolved, 1)
	assert.Equal(t, domain.StatusExpired, resolved[0].Status)
	assert.Empty(t, e.PendingOrders())
	assert.Len(t, e.Trades(domain.StatusExpired), 1)
	assert.Empty(t, e.ledger.Positions())
}

func TestCheckPendingOrders_MissingPriceKeepsResting(t *testing.T) {
	e := newSimExecutor(t)
	ctx := context.Background()

	_, err := e.Execute(ctx, restingLimitOpp("0xa"), 1000)
	require.NoError(t, err)

	resolved := e.CheckPendingOrders(ctx, map[string]float64{"0xother": 0.10})

	assert.Empty(t, resolved)
	require.Len(t, e.PendingOrders(), 1)
	assert.Equal(t, 1, e.PendingOrders()[0].FillAttempts)
}

func TestCancelOrder_Idempotent(t *testing.T) {
	e := newSimExecutor(t)
	ctx := context.Background()

	order, err := e.Execute(ctx, restingLimitOpp("0xa"), 1000)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, order.Status)

	e.CancelOrder(ctx, order.ID)
	assert.Empty(t, e.PendingOrders())
	assert.Len(t, e.Trades(domain.StatusCancelled), 1)

	// Cancelling again, or cancelling an unknown ID, changes nothing.
	e.CancelOrder(ctx, order.ID)
	e.CancelOrder(ctx, "never-existed")
	assert.Len(t, e.Trades(""), 1)
	assert.Len(t, e.Trades(domain.StatusCancelled), 1)
}

func TestNew_RestoresPendingAndDropsExpired(t *testing.T) {
	store, err := storage.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	ctx := context.Background()

	e1, err := New(ctx, newSimLedger(), store, nil, Config{Mode: ModeSimulation}, WithClock(clock))
	require.NoError(t, err)
	order, err := e1.Execute(ctx, restingLimitOpp("0xa"), 1000)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, order.Status)

	// A restart within the expiry window picks the order back up.
	e2, err := New(ctx, newSimLedger(), store, nil, Config{Mode: ModeSimulation}, WithClock(clock))
	require.NoError(t, err)
	require.Len(t, e2.PendingOrders(), 1)
	restored := e2.PendingOrders()[0]
	assert.Equal(t, order.ID, restored.ID)
	assert.InDelta(t, order.TargetPrice, restored.TargetPrice, 1e-9)

	// A restart after expiry drops it and marks the trade expired.
	late := func() time.Time { return now.Add(31 * time.Minute) }
	e3, err := New(ctx, newSimLedger(), store, nil, Config{Mode: ModeSimulation}, WithClock(late))
	require.NoError(t, err)
	assert.Empty(t, e3.PendingOrders())

	expired, err := store.ListTrades(ctx, string(domain.StatusExpired))
	require.NoError(t, err)
	assert.Len(t, expired, 1)
}
