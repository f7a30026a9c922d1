package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyFill_WeightedAverage(t *testing.T) {
	now := time.Now()
	p := Position{ConditionID: "0xabc", Side: SideYes}

	p.ApplyFill(50, 0.40, now)
	assert.InDelta(t, 0.40, p.AvgPrice, 1e-9)
	assert.InDelta(t, 50, p.Size, 1e-9)

	p.ApplyFill(50, 0.60, now.Add(time.Minute))
	assert.InDelta(t, 0.50, p.AvgPrice, 1e-9)
	assert.InDelta(t, 100, p.Size, 1e-9)
	assert.Equal(t, now.Add(time.Minute), p.UpdatedAt)
}

func TestShares(t *testing.T) {
	p := Position{Size: 50, AvgPrice: 0.50}
	assert.InDelta(t, 100, p.Shares(), 1e-9)

	assert.Zero(t, Position{Size: 50}.Shares())
}

func TestWinProbability_Clamped(t *testing.T) {
	assert.InDelta(t, 0.60, Position{AvgPrice: 0.50, Edge: 0.10}.WinProbability(), 1e-9)
	assert.InDelta(t, 0.98, Position{AvgPrice: 0.95, Edge: 0.10}.WinProbability(), 1e-9)
	assert.InDelta(t, 0.02, Position{AvgPrice: 0.05, Edge: -0.10}.WinProbability(), 1e-9)
}

func TestPositionKey(t *testing.T) {
	yes := Position{ConditionID: "0xabc", Side: SideYes}
	no := Position{ConditionID: "0xabc", Side: SideNo}
	assert.NotEqual(t, yes.Key(), no.Key(), "the two sides of a market are distinct positions")
}
