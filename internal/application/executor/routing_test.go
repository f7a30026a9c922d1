package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
)

func TestChooseOrderType(t *testing.T) {
	cases := []struct {
		name string
		opp  domain.Opportunity
		want domain.OrderType
	}{
		{
			name: "arbitrage always crosses",
			opp:  domain.Opportunity{Type: domain.TypeArbitrage, PositionSize: 900, Liquidity: 10000, Edge: 0.02},
			want: domain.OrderMarket,
		},
		{
			name: "cross-platform arb above ratio slices",
			opp:  domain.Opportunity{Type: domain.TypeCrossPlatformArb, PositionSize: 400, Liquidity: 10000},
			want: domain.OrderTWAP,
		},
		{
			name: "small cross-platform arb crosses",
			opp:  domain.Opportunity{Type: domain.TypeCrossPlatformArb, PositionSize: 100, Liquidity: 10000},
			want: domain.OrderMarket,
		},
		{
			name: "large order slices",
			opp:  domain.Opportunity{Type: domain.TypeValue, PositionSize: 600, Liquidity: 10000},
			want: domain.OrderTWAP,
		},
		{
			name: "zero liquidity counts as fully illiquid",
			opp:  domain.Opportunity{Type: domain.TypeValue, PositionSize: 10, Liquidity: 0},
			want: domain.OrderTWAP,
		},
		{
			name: "small edge with negligible impact rests",
			opp:  domain.Opportunity{Type: domain.TypeValue, PositionSize: 100, Liquidity: 10000, Edge: 0.03},
			want: domain.OrderLimit,
		},
		{
			name: "big edge crosses rather than resting",
			opp:  domain.Opportunity{Type: domain.TypeValue, PositionSize: 100, Liquidity: 10000, Edge: 0.08},
			want: domain.OrderMarket,
		},
		{
			name: "small edge but meaningful impact crosses",
			opp:  domain.Opportunity{Type: domain.TypeValue, PositionSize: 300, Liquidity: 10000, Edge: 0.03},
			want: domain.OrderMarket,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ChooseOrderType(tc.opp))
			assert.Equal(t, tc.want, ChooseOrderType(tc.opp), "routing must be deterministic")
		})
	}
}
