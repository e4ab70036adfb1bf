// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	type TEXT NOT NULL,
	level TEXT NOT NULL,
	severity TEXT NOT NULL,
	message TEXT NOT NULL,
	current REAL NOT NULL,
	limit_value REAL NOT NULL,
	action TEXT NOT NULL,
	positions TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	instrument TEXT NOT NULL,
	side TEXT NOT NULL,
	lots REAL NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	open_time DATETIME NOT NULL,
	close_time DATETIME NOT NULL,
	pips REAL NOT NULL,
	net_pnl REAL NOT NULL,
	commission REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_time ON events(time);
CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
CREATE INDEX IF NOT EXISTS idx_trades_close_time ON trades(close_time);
`
