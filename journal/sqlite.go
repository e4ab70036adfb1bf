package journal

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/riskcore/risk"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Append(e risk.Event) error {
	_, err := j.db.Exec(`
		INSERT INTO events
		(id, time, type, level, severity, message, current, limit_value, action, positions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time, string(e.Type), string(e.Level), string(e.Severity),
		e.Message, e.Current, e.Limit, e.Action, strings.Join(e.Positions, ","),
	)
	return err
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, instrument, side, lots, entry_price, exit_price, open_time, close_time, pips, net_pnl, commission, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Instrument, t.Side, t.Lots, t.EntryPrice, t.ExitPrice,
		t.OpenTime, t.CloseTime, t.Pips, t.NetPnL, t.Commission, t.Reason,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func splitPositions(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
