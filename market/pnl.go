package market

// Pure pip and P&L arithmetic. Everything here is a total function over finite
// float inputs; callers validate lot sizes upstream.

// Side is the direction of a trade.
type Side int

const (
	Buy  Side = 1
	Sell Side = -1
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// ParseSide converts "buy"/"sell" (any case) to a Side. Anything else
// defaults to Buy.
func ParseSide(s string) Side {
	switch Normalize(s) {
	case "SELL", "SHORT":
		return Sell
	default:
		return Buy
	}
}

// Pips converts a price move into pips, signed so a profitable move is
// positive for both directions: buys profit when exit > entry, sells when
// entry > exit.
func Pips(side Side, entry, exit float64, meta Instrument) float64 {
	if meta.PipSize == 0 {
		return 0
	}
	return float64(side) * (exit - entry) / meta.PipSize
}

// GrossPnL converts a signed pip count into account-currency P&L before
// commission.
func GrossPnL(pips, lots float64, meta Instrument) float64 {
	return pips * lots * meta.PipValuePerLot
}

// Commission returns the round-turn commission for a lot count. Always
// non-negative and linear in lots.
func Commission(lots float64, meta Instrument) float64 {
	if lots < 0 {
		lots = -lots
	}
	return lots * meta.CommissionPerLot
}

// RequiredMargin returns the account-currency margin needed to carry the
// position at the given leverage.
func RequiredMargin(lots, entryPrice, leverage float64, meta Instrument) float64 {
	if leverage <= 0 {
		return 0
	}
	return lots * meta.ContractSize * entryPrice / leverage
}

// TradePnL is the full breakdown of a closed (or hypothetically closed) trade.
type TradePnL struct {
	Pips       float64
	GrossPnL   float64
	Commission float64
	NetPnL     float64
	PipValue   float64 // account currency per pip at this lot size
}

// CalcTradePnL computes the P&L breakdown for a trade on the given instrument.
func CalcTradePnL(side Side, entry, exit, lots float64, meta Instrument) TradePnL {
	pips := Pips(side, entry, exit, meta)
	gross := GrossPnL(pips, lots, meta)
	comm := Commission(lots, meta)
	return TradePnL{
		Pips:       pips,
		GrossPnL:   gross,
		Commission: comm,
		NetPnL:     gross - comm,
		PipValue:   lots * meta.PipValuePerLot,
	}
}
