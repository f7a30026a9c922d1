package risk

import (
	"math/rand"
	"sort"

	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
)

// Sampler produces the random draws for one Monte Carlo trial. It is an
// interface so the simplified group-shock copula below can later be swapped
// for a proper correlated-variable model without touching admission logic.
type Sampler interface {
	// Trial returns one uniform draw in [0,1) per entry of groups. Entries
	// sharing the same non-empty group key must be correlated; an empty key
	// means the draw is fully independent.
	Trial(groups []string) []float64
}

// GroupShockSampler draws one shared uniform "shock" per correlation group
// and blends it with an independent draw at a fixed weight. Positions in the
// same group therefore tend to win or lose together.
type GroupShockSampler struct {
	rng    *rand.Rand
	weight float64 // intra-group correlation weight
}

// NewGroupShockSampler creates the default sampler. Weight 0.6 matches the
// intra-group correlation the portfolio model assumes.
func NewGroupShockSampler(rng *rand.Rand, weight float64) *GroupShockSampler {
	return &GroupShockSampler{rng: rng, weight: weight}
}

// Trial implements Sampler.
func (s *GroupShockSampler) Trial(groups []string) []float64 {
	shocks := make(map[string]float64)
	draws := make([]float64, len(groups))
	for i, g := range groups {
		indep := s.rng.Float64()
		if g == "" {
			draws[i] = indep
			continue
		}
		shock, ok := shocks[g]
		if !ok {
			shock = s.rng.Float64()
			shocks[g] = shock
		}
		draws[i] = s.weight*shock + (1-s.weight)*indep
	}
	return draws
}

// mcPosition is a position reduced to what the simulation needs.
type mcPosition struct {
	winProb float64
	winPnL  float64 // (payout − cost) × shares on a win
	lossPnL float64 // −cost × shares on a loss
	group   string  // primary correlation group, "" = uncorrelated
}

func toMCPosition(p domain.Position, group string) mcPosition {
	shares := p.Shares()
	return mcPosition{
		winProb: p.WinProbability(),
		winPnL:  (1 - p.AvgPrice) * shares,
		lossPnL: -p.AvgPrice * shares,
		group:   group,
	}
}

// simulate runs the Monte Carlo over the given positions and summarizes the
// P&L distribution. VaR values are reported as losses (positive = money lost).
func simulate(sampler Sampler, positions []mcPosition, trials int, bankroll float64) domain.VaRReport {
	report := domain.VaRReport{Trials: trials, RiskLevel: domain.RiskLow}
	if len(positions) == 0 || trials <= 0 {
		return report
	}

	groups := make([]string, len(positions))
	for i, p := range positions {
		groups[i] = p.group
	}

	pnls := make([]float64, trials)
	var sum float64
	for t := 0; t < trials; t++ {
		draws := sampler.Trial(groups)
		var pnl float64
		for i, p := range positions {
			if draws[i] < p.winProb {
				pnl += p.winPnL
			} else {
				pnl += p.lossPnL
			}
		}
		pnls[t] = pnl
		sum += pnl
	}

	sort.Float64s(pnls)

	idx95 := trials * 5 / 100
	idx99 := trials / 100
	if idx95 >= trials {
		idx95 = trials - 1
	}
	if idx99 >= trials {
		idx99 = trials - 1
	}

	report.ExpectedPnL = sum / float64(trials)
	report.VaR95 = -pnls[idx95]
	report.VaR99 = -pnls[idx99]
	report.WorstCase = -pnls[0]

	if idx95 > 0 {
		var tail float64
		for _, v := range pnls[:idx95] {
			tail += v
		}
		report.CVaR95 = -tail / float64(idx95)
	} else {
		report.CVaR95 = report.WorstCase
	}

	report.RiskLevel = domain.ClassifyRiskLevel(report.VaR95, bankroll)
	return report
}
