package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rustyeddy/riskcore/risk"
)

const eventColumns = "id, time, type, level, severity, message, current, limit_value, action, positions"

// GetEvent returns a single risk event by ID.
func (j *SQLite) GetEvent(id string) (risk.Event, error) {
	row := j.db.QueryRow(`
		SELECT `+eventColumns+`
		FROM events
		WHERE id = ?`, id)

	e, err := scanEvent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return risk.Event{}, fmt.Errorf("event %q not found", id)
		}
		return risk.Event{}, err
	}
	return e, nil
}

// ListEventsBetween returns events whose time is within [start, end),
// oldest first.
func (j *SQLite) ListEventsBetween(start, end time.Time) ([]risk.Event, error) {
	rows, err := j.db.Query(`
		SELECT `+eventColumns+`
		FROM events
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListEventsByType returns events of one type within [start, end),
// oldest first.
func (j *SQLite) ListEventsByType(typ risk.EventType, start, end time.Time) ([]risk.Event, error) {
	rows, err := j.db.Query(`
		SELECT `+eventColumns+`
		FROM events
		WHERE type = ? AND time >= ? AND time < ?
		ORDER BY time ASC`, string(typ), start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

// CountHighSeverityBetween counts high and critical events within [start, end).
func (j *SQLite) CountHighSeverityBetween(start, end time.Time) (int, error) {
	var n int
	err := j.db.QueryRow(`
		SELECT COUNT(*)
		FROM events
		WHERE severity IN ('high', 'critical') AND time >= ? AND time < ?`,
		start, end).Scan(&n)
	return n, err
}

// ListTradesClosedBetween returns trades whose close_time is within
// [start, end), oldest first.
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, instrument, side, lots, entry_price, exit_price, open_time, close_time, pips, net_pnl, commission, reason
		FROM trades
		WHERE close_time >= ? AND close_time < ?
		ORDER BY close_time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.TradeID,
			&rec.Instrument,
			&rec.Side,
			&rec.Lots,
			&rec.EntryPrice,
			&rec.ExitPrice,
			&rec.OpenTime,
			&rec.CloseTime,
			&rec.Pips,
			&rec.NetPnL,
			&rec.Commission,
			&rec.Reason,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (risk.Event, error) {
	var (
		e         risk.Event
		typ       string
		level     string
		severity  string
		positions string
	)
	err := row.Scan(
		&e.ID,
		&e.Time,
		&typ,
		&level,
		&severity,
		&e.Message,
		&e.Current,
		&e.Limit,
		&e.Action,
		&positions,
	)
	if err != nil {
		return risk.Event{}, err
	}
	e.Type = risk.EventType(typ)
	e.Level = risk.EventLevel(level)
	e.Severity = risk.Severity(severity)
	e.Positions = splitPositions(positions)
	return e, nil
}

func collectEvents(rows *sql.Rows) ([]risk.Event, error) {
	var out []risk.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
