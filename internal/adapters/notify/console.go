package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
	"github.com/codeplaymaker/marketplaymaker-sub002/internal/ports"
)

// Console implements ports.Notifier by printing the risk snapshot to stdout.
type Console struct {
	out   io.Writer
	table bool // full tables vs compact one-liner
}

var _ ports.Notifier = (*Console)(nil)

// NewConsole creates a notifier that writes to stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter creates a notifier for tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify prints the snapshot in the configured mode.
func (c *Console) Notify(_ context.Context, s domain.RiskSnapshot) error {
	if c.table {
		c.printFull(s)
	} else {
		c.printCompact(s)
	}
	return nil
}

// printCompact fits the portfolio state on one line.
func (c *Console) printCompact(s domain.RiskSnapshot) {
	now := s.At.Format("15:04:05")
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] pos:%d deployed:$%.2f dayPnL:$%+.2f dd:%.1f%% mult:%.1fx var95:$%.2f %s",
		now, s.OpenPositions, s.TotalDeployed, s.DailyPnL, s.DrawdownPct,
		s.RiskMultiplier, s.VaR.VaR95, s.VaR.RiskLevel)
	if s.ConsecutiveLosses > 0 {
		fmt.Fprintf(&sb, " streak:%dL", s.ConsecutiveLosses)
	}
	fmt.Fprintln(c.out, sb.String())
}

// printFull prints the dashboard: summary, positions, heatmap, stress.
func (c *Console) printFull(s domain.RiskSnapshot) {
	now := s.At.Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] RISK SNAPSHOT: bankroll $%.2f, deployed $%.2f (%d positions)\n",
		now, s.Bankroll, s.TotalDeployed, s.OpenPositions)
	fmt.Fprintf(c.out, "  daily PnL $%+.2f | total PnL $%+.2f | drawdown %.1f%% | multiplier %.1fx | loss streak %d\n",
		s.DailyPnL, s.TotalPnL, s.DrawdownPct, s.RiskMultiplier, s.ConsecutiveLosses)
	fmt.Fprintf(c.out, "  VaR95 $%.2f | VaR99 $%.2f | CVaR95 $%.2f | E[PnL] $%+.2f | worst $%.2f | level %s (%d trials)\n",
		s.VaR.VaR95, s.VaR.VaR99, s.VaR.CVaR95, s.VaR.ExpectedPnL, s.VaR.WorstCase,
		s.VaR.RiskLevel, s.VaR.Trials)

	if len(s.Positions) > 0 {
		c.printPositions(s.Positions)
	}
	if len(s.Heatmap) > 0 {
		c.printHeatmap(s.Heatmap)
	}
	if len(s.Stress.Results) > 0 {
		c.printStress(s.Stress)
	}
}

func (c *Console) printPositions(positions []domain.Position) {
	fmt.Fprintln(c.out, "\n  OPEN POSITIONS")
	table := tablewriter.NewWriter(c.out)
	table.Header("Market", "Side", "Size", "AvgPx", "Shares", "Edge", "Age")

	for _, p := range positions {
		table.Append(
			truncate(p.Market, 38),
			string(p.Side),
			fmt.Sprintf("$%.2f", p.Size),
			fmt.Sprintf("%.4f", p.AvgPrice),
			fmt.Sprintf("%.1f", p.Shares()),
			fmt.Sprintf("%+.1f%%", p.Edge*100),
			fmt.Sprintf("%.0fh", time.Since(p.EnteredAt).Hours()),
		)
	}
	table.Render()
}

func (c *Console) printHeatmap(heatmap []domain.GroupExposure) {
	fmt.Fprintln(c.out, "\n  CORRELATION HEATMAP")
	table := tablewriter.NewWriter(c.out)
	table.Header("Group", "Category", "Exposure", "Positions")

	for _, g := range heatmap {
		table.Append(
			g.Group,
			g.Category,
			fmt.Sprintf("$%.2f", g.Exposure),
			fmt.Sprintf("%d", g.Positions),
		)
	}
	table.Render()
}

func (c *Console) printStress(report domain.StressReport) {
	fmt.Fprintf(c.out, "\n  STRESS TESTS: resilience %s (worst loss $%.2f)\n",
		report.Resilience, report.WorstLoss)
	table := tablewriter.NewWriter(c.out)
	table.Header("Scenario", "Loss", "% Bankroll", "Severity")

	for _, r := range report.Results {
		table.Append(
			r.Scenario.Name,
			fmt.Sprintf("$%.2f", r.EstimatedLoss),
			fmt.Sprintf("%.1f%%", r.LossPct),
			string(r.Severity),
		)
	}
	table.Render()
}

// PrintTrades renders the most recent orders from the trade ledger.
func (c *Console) PrintTrades(trades []domain.Order, limit int) {
	if len(trades) == 0 {
		fmt.Fprintln(c.out, "  no trades recorded")
		return
	}
	if limit > 0 && len(trades) > limit {
		trades = trades[:limit]
	}

	fmt.Fprintf(c.out, "\n  TRADES (last %d)\n", len(trades))
	table := tablewriter.NewWriter(c.out)
	table.Header("Time", "Market", "Side", "Type", "Status", "Size", "Fill", "Slip")

	for _, t := range trades {
		fill := "-"
		slip := "-"
		if t.Status == domain.StatusFilled {
			fill = fmt.Sprintf("%.4f", t.FillPrice)
			slip = fmt.Sprintf("%.4f", t.Slippage)
		}
		table.Append(
			t.CreatedAt.Format("01-02 15:04"),
			truncate(t.Market, 32),
			string(t.Side),
			string(t.OrderType),
			string(t.Status),
			fmt.Sprintf("$%.2f", t.PositionSize),
			fill,
			slip,
		)
	}
	table.Render()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
