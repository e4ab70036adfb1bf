// journal/journal.go
package journal

import (
	"time"

	"github.com/rustyeddy/riskcore/risk"
)

// TradeRecord is one closed trade as the execution layer reports it.
type TradeRecord struct {
	TradeID    string
	Instrument string
	Side       string
	Lots       float64
	EntryPrice float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	Pips       float64
	NetPnL     float64
	Commission float64
	Reason     string
}

// Journal persists risk events and closed trades. Append satisfies
// risk.Store, so a journal can back the manager's event log directly.
type Journal interface {
	Append(risk.Event) error
	RecordTrade(TradeRecord) error
	Close() error
}
