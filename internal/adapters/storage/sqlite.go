package storage

// sqlite.go holds the durable documents of the execution core.
//
// Three independent documents, one SQLite file:
//   - `trades`: the full order history (terminal and pending states).
//   - `pending_orders`: the resting limit book, deleted on terminal transition.
//   - `positions` + `risk_state`: the ledger snapshot (open positions and
//     portfolio counters), overwritten whole on every save.
// Each document reloads independently; no cross-document transaction is
// guaranteed or needed; the ledger is a monitor, not the system of record.

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
    id              TEXT PRIMARY KEY,
    strategy        TEXT NOT NULL DEFAULT '',
    market          TEXT NOT NULL DEFAULT '',
    condition_id    TEXT NOT NULL,
    slug            TEXT NOT NULL DEFAULT '',
    side            TEXT NOT NULL,
    position_size   REAL NOT NULL DEFAULT 0,
    requested_price REAL NOT NULL DEFAULT 0,
    edge            REAL NOT NULL DEFAULT 0,
    order_type      TEXT NOT NULL,
    status          TEXT NOT NULL,
    reason          TEXT NOT NULL DEFAULT '',
    fill_price      REAL NOT NULL DEFAULT 0,
    shares          REAL NOT NULL DEFAULT 0,
    slippage        REAL NOT NULL DEFAULT 0,
    fees            REAL NOT NULL DEFAULT 0,
    created_at      DATETIME NOT NULL,
    target_price    REAL NOT NULL DEFAULT 0,
    expires_at      DATETIME,
    fill_attempts   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS pending_orders (
    id              TEXT PRIMARY KEY,
    strategy        TEXT NOT NULL DEFAULT '',
    market          TEXT NOT NULL DEFAULT '',
    condition_id    TEXT NOT NULL,
    slug            TEXT NOT NULL DEFAULT '',
    side            TEXT NOT NULL,
    position_size   REAL NOT NULL DEFAULT 0,
    requested_price REAL NOT NULL DEFAULT 0,
    edge            REAL NOT NULL DEFAULT 0,
    target_price    REAL NOT NULL DEFAULT 0,
    created_at      DATETIME NOT NULL,
    expires_at      DATETIME NOT NULL,
    fill_attempts   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS positions (
    condition_id TEXT NOT NULL,
    side         TEXT NOT NULL,
    market       TEXT NOT NULL DEFAULT '',
    slug         TEXT NOT NULL DEFAULT '',
    size         REAL NOT NULL DEFAULT 0,
    avg_price    REAL NOT NULL DEFAULT 0,
    strategy     TEXT NOT NULL DEFAULT '',
    edge         REAL NOT NULL DEFAULT 0,
    entered_at   DATETIME NOT NULL,
    updated_at   DATETIME NOT NULL,
    PRIMARY KEY (condition_id, side)
);

CREATE TABLE IF NOT EXISTS risk_state (
    id                  INTEGER PRIMARY KEY CHECK (id = 1),
    total_deployed      REAL NOT NULL DEFAULT 0,
    daily_pnl           REAL NOT NULL DEFAULT 0,
    total_pnl           REAL NOT NULL DEFAULT 0,
    trade_count         INTEGER NOT NULL DEFAULT 0,
    daily_trade_count   INTEGER NOT NULL DEFAULT 0,
    peak_bankroll       REAL NOT NULL DEFAULT 0,
    consecutive_losses  INTEGER NOT NULL DEFAULT 0,
    last_reset_date     DATETIME
);

CREATE INDEX IF NOT EXISTS idx_trades_status  ON trades(status);
CREATE INDEX IF NOT EXISTS idx_trades_created ON trades(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_pending_expiry ON pending_orders(expires_at);
`

// Store implements ports.OrderStore and ports.LedgerStore on SQLite
// (pure Go driver, no CGo).
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at the given path and applies the
// schema. Use ":memory:" for tests.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewStore: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database cleanly.
func (s *Store) Close() error {
	return s.db.Close()
}
