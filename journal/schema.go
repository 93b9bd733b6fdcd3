package journal

const Schema = `
CREATE TABLE IF NOT EXISTS orders (
	order_id TEXT NOT NULL,
	client_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	qty REAL NOT NULL,
	notional REAL NOT NULL,
	kind TEXT NOT NULL,
	limit_price REAL NOT NULL,
	extended_hours INTEGER NOT NULL,
	reason TEXT NOT NULL,
	time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	equity REAL NOT NULL,
	buying_power REAL NOT NULL,
	cash REAL NOT NULL,
	daily_pnl REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_time ON orders(time);
CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`
