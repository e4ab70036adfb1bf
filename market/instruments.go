// market/instruments.go
package market

import "strings"

// Instrument carries the per-symbol constants the P&L math depends on.
// Deployments trading anything beyond the defaults register their own
// metadata rather than patching constants.
type Instrument struct {
	Name             string
	BaseCurrency     string
	QuoteCurrency    string
	PipSize          float64
	PipValuePerLot   float64 // account currency per pip per standard lot
	CommissionPerLot float64 // round-turn commission per standard lot
	ContractSize     float64 // units of base currency per standard lot
}

var Instruments = map[string]Instrument{
	"EUR_USD": {
		Name:             "EUR_USD",
		BaseCurrency:     "EUR",
		QuoteCurrency:    "USD",
		PipSize:          0.0001,
		PipValuePerLot:   10,
		CommissionPerLot: 50,
		ContractSize:     100_000,
	},
	"GBP_USD": {
		Name:             "GBP_USD",
		BaseCurrency:     "GBP",
		QuoteCurrency:    "USD",
		PipSize:          0.0001,
		PipValuePerLot:   10,
		CommissionPerLot: 50,
		ContractSize:     100_000,
	},
	"USD_JPY": {
		Name:             "USD_JPY",
		BaseCurrency:     "USD",
		QuoteCurrency:    "JPY",
		PipSize:          0.01,
		PipValuePerLot:   10,
		CommissionPerLot: 50,
		ContractSize:     100_000,
	},
}

// Register adds or replaces instrument metadata under its normalized name.
func Register(meta Instrument) {
	Instruments[Normalize(meta.Name)] = meta
}

// Normalize maps "EUR/USD" and "eur_usd" style symbols onto the canonical
// "EUR_USD" form used as the Instruments key.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(symbol), "/", "_"))
}

// Meta returns the metadata for symbol, falling back to standard four-decimal
// FX constants for unregistered symbols so P&L math stays total.
func Meta(symbol string) Instrument {
	if meta, ok := Instruments[Normalize(symbol)]; ok {
		return meta
	}
	base, quote := Currencies(symbol)
	return Instrument{
		Name:             Normalize(symbol),
		BaseCurrency:     base,
		QuoteCurrency:    quote,
		PipSize:          0.0001,
		PipValuePerLot:   10,
		CommissionPerLot: 50,
		ContractSize:     100_000,
	}
}

// Currencies splits a symbol into base and quote currencies. Registered
// instruments use their metadata; otherwise a BASE_QUOTE or six-letter symbol
// is split positionally. Unrecognized shapes return empty strings, which
// downstream correlation math treats as "no currency overlap".
func Currencies(symbol string) (base, quote string) {
	norm := Normalize(symbol)
	if meta, ok := Instruments[norm]; ok {
		return meta.BaseCurrency, meta.QuoteCurrency
	}
	if i := strings.IndexByte(norm, '_'); i > 0 && i < len(norm)-1 {
		return norm[:i], norm[i+1:]
	}
	if len(norm) == 6 {
		return norm[:3], norm[3:]
	}
	return "", ""
}
