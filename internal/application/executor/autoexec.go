package executor

import (
	"context"
	"log/slog"
	"sort"

	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
)

// Criteria filters which opportunities AutoExecute will act on.
type Criteria struct {
	MaxTrades     int
	MinScore      float64
	MinConfidence domain.Confidence
}

// AutoExecuteResult summarizes one batch run.
type AutoExecuteResult struct {
	Executed []*domain.Order
	Filled   int
	Pending  int
	Rejected int
	Skipped  int // filtered out before admission
	Errors   int
}

// AutoExecute filters opportunities by score and confidence tier, then
// executes the survivors best-score-first up to MaxTrades admitted orders.
// Execution is sequential: exposure accounting depends on order, so trades
// are never admitted concurrently.
func (e *Executor) AutoExecute(ctx context.Context, opps []domain.Opportunity, bankroll float64, criteria Criteria) AutoExecuteResult {
	result := AutoExecuteResult{}

	candidates := make([]domain.Opportunity, 0, len(opps))
	for _, opp := range opps {
		if opp.Score < criteria.MinScore || opp.Confidence.Rank() < criteria.MinConfidence.Rank() {
			result.Skipped++
			continue
		}
		candidates = append(candidates, opp)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })

	for _, opp := range candidates {
		if ctx.Err() != nil {
			break
		}
		if criteria.MaxTrades > 0 && len(result.Executed) >= criteria.MaxTrades {
			result.Skipped++
			continue
		}

		order, err := e.Execute(ctx, opp, bankroll)
		if err != nil {
			result.Errors++
			slog.Warn("exec: auto-execute error",
				"market", truncate(opp.Market, 40), "err", err)
			continue
		}

		switch order.Status {
		case domain.StatusRejected:
			result.Rejected++
		case domain.StatusPending:
			result.Pending++
			result.Executed = append(result.Executed, order)
		default:
			result.Filled++
			result.Executed = append(result.Executed, order)
		}
	}

	slog.Info("exec: auto-execute batch done",
		"candidates", len(candidates),
		"filled", result.Filled,
		"pending", result.Pending,
		"rejected", result.Rejected,
		"skipped", result.Skipped,
	)
	return result
}
