package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
)

// SaveTrade upserts one order row in the trade ledger.
func (s *Store) SaveTrade(ctx context.Context, o domain.Order) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades
			(id, strategy, market, condition_id, slug, side, position_size,
			 requested_price, edge, order_type, status, reason, fill_price,
			 shares, slippage, fees, created_at, target_price, expires_at, fill_attempts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status        = excluded.status,
			reason        = excluded.reason,
			fill_price    = excluded.fill_price,
			shares        = excluded.shares,
			slippage      = excluded.slippage,
			fees          = excluded.fees,
			fill_attempts = excluded.fill_attempts`,
		o.ID, o.Strategy, o.Market, o.ConditionID, o.Slug, string(o.Side), o.PositionSize,
		o.RequestedPrice, o.Edge, string(o.OrderType), string(o.Status), o.Reason, o.FillPrice,
		o.Shares, o.Slippage, o.Fees, o.CreatedAt.UTC(), o.TargetPrice, nullTime(o.ExpiresAt), o.FillAttempts,
	)
	if err != nil {
		return fmt.Errorf("storage.SaveTrade: %w", err)
	}
	return nil
}

// ListTrades returns trades newest-first; empty status means all.
func (s *Store) ListTrades(ctx context.Context, status string) ([]domain.Order, error) {
	query := `
		SELECT id, strategy, market, condition_id, slug, side, position_size,
		       requested_price, edge, order_type, status, reason, fill_price,
		       shares, slippage, fees, created_at, target_price, expires_at, fill_attempts
		FROM trades`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.ListTrades: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.ListTrades: scan: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// SavePendingOrder upserts a resting limit order.
func (s *Store) SavePendingOrder(ctx context.Context, o domain.Order) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_orders
			(id, strategy, market, condition_id, slug, side, position_size,
			 requested_price, edge, target_price, created_at, expires_at, fill_attempts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			fill_attempts = excluded.fill_attempts`,
		o.ID, o.Strategy, o.Market, o.ConditionID, o.Slug, string(o.Side), o.PositionSize,
		o.RequestedPrice, o.Edge, o.TargetPrice, o.CreatedAt.UTC(), o.ExpiresAt.UTC(), o.FillAttempts,
	)
	if err != nil {
		return fmt.Errorf("storage.SavePendingOrder: %w", err)
	}
	return nil
}

// DeletePendingOrder removes a resting order; unknown IDs are a no-op.
func (s *Store) DeletePendingOrder(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending_orders WHERE id = ?`, id); err != nil {
		return fmt.Errorf("storage.DeletePendingOrder: %w", err)
	}
	return nil
}

// ListPendingOrders returns the resting order queue, oldest expiry first.
func (s *Store) ListPendingOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, strategy, market, condition_id, slug, side, position_size,
		       requested_price, edge, target_price, created_at, expires_at, fill_attempts
		FROM pending_orders ORDER BY expires_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("storage.ListPendingOrders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		var side string
		var createdAt, expiresAt time.Time
		if err := rows.Scan(&o.ID, &o.Strategy, &o.Market, &o.ConditionID, &o.Slug, &side,
			&o.PositionSize, &o.RequestedPrice, &o.Edge, &o.TargetPrice,
			&createdAt, &expiresAt, &o.FillAttempts); err != nil {
			return nil, fmt.Errorf("storage.ListPendingOrders: scan: %w", err)
		}
		o.Side = domain.Side(side)
		o.OrderType = domain.OrderLimit
		o.Status = domain.StatusPending
		o.CreatedAt = createdAt
		o.ExpiresAt = expiresAt
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanTrade(rows *sql.Rows) (domain.Order, error) {
	var o domain.Order
	var side, orderType, status string
	var createdAt time.Time
	var expiresAt sql.NullTime
	err := rows.Scan(&o.ID, &o.Strategy, &o.Market, &o.ConditionID, &o.Slug, &side,
		&o.PositionSize, &o.RequestedPrice, &o.Edge, &orderType, &status, &o.Reason,
		&o.FillPrice, &o.Shares, &o.Slippage, &o.Fees, &createdAt, &o.TargetPrice,
		&expiresAt, &o.FillAttempts)
	if err != nil {
		return o, err
	}
	o.Side = domain.Side(side)
	o.OrderType = domain.OrderType(orderType)
	o.Status = domain.OrderStatus(status)
	o.CreatedAt = createdAt
	if expiresAt.Valid {
		o.ExpiresAt = expiresAt.Time
	}
	return o, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
