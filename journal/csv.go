// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/riskcore/risk"
)

type CSV struct {
	events *csv.Writer
	trades *csv.Writer
	ef, tf *os.File
}

func NewCSV(eventsPath, tradesPath string) (*CSV, error) {
	ef, err := os.Create(eventsPath)
	if err != nil {
		return nil, err
	}
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}

	ew := csv.NewWriter(ef)
	tw := csv.NewWriter(tf)

	if err := ew.Write([]string{"id", "time", "type", "level", "severity", "message", "current", "limit", "action", "positions"}); err != nil {
		return nil, err
	}
	if err := tw.Write([]string{"trade_id", "instrument", "side", "lots", "entry_price", "exit_price", "open_time", "close_time", "pips", "net_pnl", "commission", "reason"}); err != nil {
		return nil, err
	}

	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}
	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}

	return &CSV{ew, tw, ef, tf}, nil
}

func (j *CSV) Append(e risk.Event) error {
	err := j.events.Write([]string{
		e.ID,
		e.Time.Format(time.RFC3339),
		string(e.Type),
		string(e.Level),
		string(e.Severity),
		e.Message,
		f(e.Current),
		f(e.Limit),
		e.Action,
		strings.Join(e.Positions, ","),
	})
	if err != nil {
		return err
	}

	j.events.Flush()
	return j.events.Error()
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		t.Instrument,
		t.Side,
		f(t.Lots),
		f(t.EntryPrice),
		f(t.ExitPrice),
		t.OpenTime.Format(time.RFC3339),
		t.CloseTime.Format(time.RFC3339),
		f(t.Pips),
		f(t.NetPnL),
		f(t.Commission),
		t.Reason,
	})
	if err != nil {
		return err
	}

	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) Close() error {
	j.events.Flush()
	if err := j.events.Error(); err != nil {
		return err
	}
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}

	if err := j.ef.Close(); err != nil {
		return err
	}
	if err := j.tf.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
