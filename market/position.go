package market

import "time"

// Position is an open position as seen by the decision core. The core never
// opens or closes positions itself; the execution layer hands these in as
// read-only snapshots.
type Position struct {
	ID         string
	Instrument string
	Side       Side
	Lots       float64 // standard lots
	Size       float64 // notional in account currency
	EntryPrice float64
	StopLoss   float64
	OpenTime   time.Time

	// Correlation is this position's contribution to aggregate portfolio
	// correlation risk, [0,1], supplied by the portfolio layer. Zero when
	// unavailable.
	Correlation float64
}

// UnrealizedPnL returns the net P&L breakdown of the position at the current
// price.
func (p Position) UnrealizedPnL(currentPrice float64) TradePnL {
	return CalcTradePnL(p.Side, p.EntryPrice, currentPrice, p.Lots, Meta(p.Instrument))
}
