package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
)

// SaveRiskState overwrites the ledger snapshot: the counters row and the
// full open-position set, in one transaction.
func (s *Store) SaveRiskState(ctx context.Context, state domain.PortfolioState, positions []domain.Position) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRiskState: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO risk_state
			(id, total_deployed, daily_pnl, total_pnl, trade_count,
			 daily_trade_count, peak_bankroll, consecutive_losses, last_reset_date)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			total_deployed     = excluded.total_deployed,
			daily_pnl          = excluded.daily_pnl,
			total_pnl          = excluded.total_pnl,
			trade_count        = excluded.trade_count,
			daily_trade_count  = excluded.daily_trade_count,
			peak_bankroll      = excluded.peak_bankroll,
			consecutive_losses = excluded.consecutive_losses,
			last_reset_date    = excluded.last_reset_date`,
		state.TotalDeployed, state.DailyPnL, state.TotalPnL, state.TradeCount,
		state.DailyTradeCount, state.PeakBankroll, state.ConsecutiveLosses,
		nullTime(state.LastResetDate),
	); err != nil {
		return fmt.Errorf("storage.SaveRiskState: upsert counters: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM positions`); err != nil {
		return fmt.Errorf("storage.SaveRiskState: clear positions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO positions
			(condition_id, side, market, slug, size, avg_price, strategy, edge, entered_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRiskState: prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range positions {
		if _, err := stmt.ExecContext(ctx, p.ConditionID, string(p.Side), p.Market, p.Slug,
			p.Size, p.AvgPrice, p.Strategy, p.Edge, p.EnteredAt.UTC(), p.UpdatedAt.UTC()); err != nil {
			return fmt.Errorf("storage.SaveRiskState: insert position: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRiskState: commit: %w", err)
	}
	return nil
}

// LoadRiskState restores the last snapshot. A fresh database returns a zero
// state and no positions.
func (s *Store) LoadRiskState(ctx context.Context) (domain.PortfolioState, []domain.Position, error) {
	var state domain.PortfolioState
	var lastReset sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT total_deployed, daily_pnl, total_pnl, trade_count,
		       daily_trade_count, peak_bankroll, consecutive_losses, last_reset_date
		FROM risk_state WHERE id = 1`).Scan(
		&state.TotalDeployed, &state.DailyPnL, &state.TotalPnL, &state.TradeCount,
		&state.DailyTradeCount, &state.PeakBankroll, &state.ConsecutiveLosses, &lastReset)
	switch {
	case err == sql.ErrNoRows:
		return domain.PortfolioState{}, nil, nil
	case err != nil:
		return domain.PortfolioState{}, nil, fmt.Errorf("storage.LoadRiskState: counters: %w", err)
	}
	if lastReset.Valid {
		state.LastResetDate = lastReset.Time
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT condition_id, side, market, slug, size, avg_price, strategy, edge, entered_at, updated_at
		FROM positions`)
	if err != nil {
		return state, nil, fmt.Errorf("storage.LoadRiskState: positions: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		var p domain.Position
		var side string
		var enteredAt, updatedAt time.Time
		if err := rows.Scan(&p.ConditionID, &side, &p.Market, &p.Slug, &p.Size,
			&p.AvgPrice, &p.Strategy, &p.Edge, &enteredAt, &updatedAt); err != nil {
			return state, nil, fmt.Errorf("storage.LoadRiskState: scan position: %w", err)
		}
		p.Side = domain.Side(side)
		p.EnteredAt = enteredAt
		p.UpdatedAt = updatedAt
		positions = append(positions, p)
	}
	return state, positions, rows.Err()
}
