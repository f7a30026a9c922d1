package notify

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
)

func sampleSnapshot() domain.RiskSnapshot {
	return domain.RiskSnapshot{
		At:             time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Bankroll:       1000,
		TotalDeployed:  150,
		OpenPositions:  2,
		DailyPnL:       -12.5,
		TotalPnL:       87.25,
		DrawdownPct:    2.5,
		RiskMultiplier: 0.8,
		Positions: []domain.Position{
			{Market: "Will Bitcoin close above $100k?", Side: domain.SideYes, Size: 100, AvgPrice: 0.5, Edge: 0.05, EnteredAt: time.Now()},
			{Market: "Quiet market", Side: domain.SideNo, Size: 50, AvgPrice: 0.4, EnteredAt: time.Now()},
		},
		Heatmap: []domain.GroupExposure{
			{Group: "bitcoin", Category: domain.CategoryCrypto, Exposure: 100, Positions: 1},
		},
		VaR: domain.VaRReport{Trials: 10000, VaR95: 80, VaR99: 120, CVaR95: 95, WorstCase: 150, ExpectedPnL: 12, RiskLevel: domain.RiskMedium},
		Stress: domain.StressReport{
			Results: []domain.StressResult{
				{Scenario: domain.StressScenario{Name: "crypto flash crash"}, EstimatedLoss: 90, LossPct: 9, Severity: domain.SeverityWarning},
			},
			WorstLoss:  90,
			Resilience: domain.ResilienceStrong,
		},
	}
}

func TestNotify_Compact(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false)

	require.NoError(t, c.Notify(context.Background(), sampleSnapshot()))

	out := buf.String()
	assert.Contains(t, out, "pos:2")
	assert.Contains(t, out, "deployed:$150.00")
	assert.Contains(t, out, "var95:$80.00")
	assert.Contains(t, out, "MEDIUM")
	assert.NotContains(t, out, "streak", "no loss streak to report")
}

func TestNotify_CompactShowsLossStreak(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false)

	s := sampleSnapshot()
	s.ConsecutiveLosses = 3
	require.NoError(t, c.Notify(context.Background(), s))

	assert.Contains(t, buf.String(), "streak:3L")
}

func TestNotify_FullTables(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, true)

	require.NoError(t, c.Notify(context.Background(), sampleSnapshot()))

	out := buf.String()
	assert.Contains(t, out, "RISK SNAPSHOT")
	assert.Contains(t, out, "OPEN POSITIONS")
	assert.Contains(t, out, "CORRELATION HEATMAP")
	assert.Contains(t, out, "STRESS TESTS")
	assert.Contains(t, out, "crypto flash crash")
	assert.Contains(t, out, "bitcoin")
}

func TestPrintTrades(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, true)

	c.PrintTrades(nil, 10)
	assert.Contains(t, buf.String(), "no trades recorded")

	buf.Reset()
	trades := []domain.Order{
		{ID: "t1", Market: "Quiet market", Side: domain.SideYes, OrderType: domain.OrderMarket,
			Status: domain.StatusFilled, PositionSize: 50, FillPrice: 0.5012, Slippage: 0.0012, CreatedAt: time.Now()},
		{ID: "t2", Market: "Another market", Side: domain.SideNo, OrderType: domain.OrderLimit,
			Status: domain.StatusRejected, Reason: "total exposure", PositionSize: 25, CreatedAt: time.Now()},
	}
	c.PrintTrades(trades, 10)

	out := buf.String()
	assert.Contains(t, out, "TRADES")
	assert.Contains(t, out, "0.5012")
	assert.Contains(t, out, "REJECTED")
}
