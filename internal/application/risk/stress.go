package risk

import "github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"

// runStress applies the fixed scenario table to the open positions and
// grades the portfolio's resilience from the worst result.
func (l *Ledger) runStress(bankroll float64) domain.StressReport {
	report := domain.StressReport{Resilience: domain.ResilienceStrong}

	largest := l.largestGroup()

	for _, scenario := range l.scenarios {
		var loss float64
		for _, pos := range l.positions {
			if l.scenarioHits(scenario, pos, largest) {
				loss += pos.Size * scenario.LossMult
			} else {
				loss += pos.Size * scenario.SpilloverMult
			}
		}

		lossPct := 0.0
		if bankroll > 0 {
			lossPct = 100 * loss / bankroll
		}

		result := domain.StressResult{
			Scenario:      scenario,
			EstimatedLoss: loss,
			LossPct:       lossPct,
			Severity:      domain.SeverityFor(lossPct),
		}
		report.Results = append(report.Results, result)
		if loss > report.WorstLoss {
			report.WorstLoss = loss
		}
	}

	worstPct := 0.0
	if bankroll > 0 {
		worstPct = 100 * report.WorstLoss / bankroll
	}
	switch {
	case worstPct >= 15:
		report.Resilience = domain.ResilienceFragile
	case worstPct >= 10:
		report.Resilience = domain.ResilienceModerate
	default:
		report.Resilience = domain.ResilienceStrong
	}

	return report
}

// scenarioHits reports whether a scenario's shock applies to a position
// directly (as opposed to via spillover).
func (l *Ledger) scenarioHits(scenario domain.StressScenario, pos domain.Position, largestGroup string) bool {
	groups := l.matcher.Groups(pos.Market, pos.Slug)
	for _, scope := range scenario.Categories {
		switch scope {
		case domain.ScopeAllPositions:
			return true
		case domain.ScopeLargestGroup:
			for _, g := range groups {
				if g.Key == largestGroup && largestGroup != "" {
					return true
				}
			}
		default:
			for _, g := range groups {
				if g.Category == scope {
					return true
				}
			}
		}
	}
	return false
}

// largestGroup returns the correlation group key holding the most exposure.
func (l *Ledger) largestGroup() string {
	exposure := make(map[string]float64)
	for _, pos := range l.positions {
		for _, g := range l.matcher.Groups(pos.Market, pos.Slug) {
			exposure[g.Key] += pos.Size
		}
	}
	best, bestExp := "", 0.0
	for key, exp := range exposure {
		if exp > bestExp {
			best, bestExp = key, exp
		}
	}
	return best
}
