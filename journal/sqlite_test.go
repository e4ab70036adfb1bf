package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/riskcore/risk"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	assert.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('events','trades')`)
	assert.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["events"])
	assert.True(t, found["trades"])
}

func TestSQLiteAppendEvent(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	ts := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	e := risk.Event{
		ID:        "E1",
		Time:      ts,
		Type:      risk.EventCircuitBreaker,
		Level:     risk.LevelSystem,
		Severity:  risk.SeverityCritical,
		Message:   "daily drawdown exceeded",
		Current:   0.062,
		Limit:     0.05,
		Action:    "PAUSE_SYSTEM",
		Positions: []string{"p1", "p2"},
	}
	assert.NoError(t, j.Append(e))

	got, err := j.GetEvent("E1")
	assert.NoError(t, err)

	assert.Equal(t, e.ID, got.ID)
	assert.True(t, got.Time.Equal(e.Time))
	assert.Equal(t, e.Type, got.Type)
	assert.Equal(t, e.Level, got.Level)
	assert.Equal(t, e.Severity, got.Severity)
	assert.Equal(t, e.Message, got.Message)
	assert.InDelta(t, e.Current, got.Current, 1e-9)
	assert.InDelta(t, e.Limit, got.Limit, 1e-9)
	assert.Equal(t, e.Action, got.Action)
	assert.Equal(t, e.Positions, got.Positions)
}

func TestSQLiteGetEventMissing(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	_, err := j.GetEvent("nope")
	assert.ErrorContains(t, err, "not found")
}

func TestSQLiteListEventsBetween(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for i, sev := range []risk.Severity{risk.SeverityLow, risk.SeverityHigh, risk.SeverityCritical} {
		assert.NoError(t, j.Append(risk.Event{
			ID:       string(rune('A' + i)),
			Time:     base.Add(time.Duration(i) * time.Hour),
			Type:     risk.EventWarning,
			Level:    risk.LevelPortfolio,
			Severity: sev,
			Message:  "m",
		}))
	}

	// [00:00, 02:00) excludes the third event.
	got, err := j.ListEventsBetween(base, base.Add(2*time.Hour))
	assert.NoError(t, err)
	if assert.Len(t, got, 2) {
		assert.Equal(t, "A", got[0].ID)
		assert.Equal(t, "B", got[1].ID)
		assert.Nil(t, got[0].Positions)
	}

	n, err := j.CountHighSeverityBetween(base, base.Add(24*time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLiteListEventsByType(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, j.Append(risk.Event{ID: "W1", Time: base, Type: risk.EventWarning, Level: risk.LevelPortfolio, Severity: risk.SeverityLow, Message: "m"}))
	assert.NoError(t, j.Append(risk.Event{ID: "B1", Time: base.Add(time.Minute), Type: risk.EventBlackSwan, Level: risk.LevelPortfolio, Severity: risk.SeverityCritical, Message: "m"}))

	got, err := j.ListEventsByType(risk.EventBlackSwan, base, base.Add(time.Hour))
	assert.NoError(t, err)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "B1", got[0].ID)
	}
}

func TestSQLiteRecordTrade(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	open := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	closeT := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	rec := TradeRecord{
		TradeID:    "T1",
		Instrument: "EUR_USD",
		Side:       "buy",
		Lots:       0.10,
		EntryPrice: 1.17000,
		ExitPrice:  1.17050,
		OpenTime:   open,
		CloseTime:  closeT,
		Pips:       5.0,
		NetPnL:     0.0,
		Commission: 5.0,
		Reason:     "exit score",
	}
	assert.NoError(t, j.RecordTrade(rec))

	got, err := j.ListTradesClosedBetween(open, closeT.Add(time.Minute))
	assert.NoError(t, err)
	if assert.Len(t, got, 1) {
		assert.Equal(t, rec.TradeID, got[0].TradeID)
		assert.Equal(t, rec.Side, got[0].Side)
		assert.InDelta(t, rec.Lots, got[0].Lots, 1e-9)
		assert.InDelta(t, rec.Pips, got[0].Pips, 1e-9)
		assert.True(t, got[0].CloseTime.Equal(rec.CloseTime))
	}
}
