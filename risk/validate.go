package risk

import (
	"fmt"

	"github.com/rustyeddy/riskcore/market"
)

// Request is a proposed new position, sized in account currency.
type Request struct {
	Symbol     string
	Size       float64
	EntryPrice float64
	StopLoss   float64
}

// Decision is the verdict on a proposed position. Reasons accumulates every
// contributing factor, shrink notes included, so callers can surface all of
// them rather than just the first.
type Decision struct {
	Allowed      bool
	Reasons      []string
	AdjustedSize float64
}

// checkCtx carries one validation pass through the step list.
type checkCtx struct {
	req     Request
	size    float64
	limits  Limits
	metrics PortfolioMetrics
	open    []market.Position

	pauseReason string                // non-empty while the system is paused
	freqCheck   func() (bool, string) // throttle gate, bound by the manager

	reasons []string
}

// stepOutcome is what each validation step folds back into the pass: either
// a rejection, or a (possibly shrunk) size to continue with. A reason with
// reject=false records a shrink without stopping the cascade.
type stepOutcome struct {
	reject bool
	reason string
	size   float64
}

func cont(size float64) stepOutcome { return stepOutcome{size: size} }

func shrink(size float64, reason string) stepOutcome {
	return stepOutcome{size: size, reason: reason}
}

func reject(reason string) stepOutcome { return stepOutcome{reject: true, reason: reason} }

// runChecks folds the ordered step list left to right. Steps are evaluated
// in a fixed order; any rejection short-circuits the rest.
func runChecks(c *checkCtx) Decision {
	steps := []func(*checkCtx) stepOutcome{
		checkPause,
		checkSanity,
		checkPositionSize,
		checkRiskPerTrade,
		checkTotalExposure,
		checkCorrelation,
		checkFrequency,
		checkDrawdown,
		checkDailyLoss,
	}

	for _, step := range steps {
		out := step(c)
		if out.reason != "" {
			c.reasons = append(c.reasons, out.reason)
		}
		if out.reject {
			return Decision{Allowed: false, Reasons: c.reasons}
		}
		c.size = out.size
	}
	return Decision{Allowed: true, Reasons: c.reasons, AdjustedSize: c.size}
}

func checkPause(c *checkCtx) stepOutcome {
	if c.pauseReason != "" {
		return reject(fmt.Sprintf("system paused: %s", c.pauseReason))
	}
	return cont(c.size)
}

func checkSanity(c *checkCtx) stepOutcome {
	if c.req.Size <= 0 {
		return reject("position size must be positive")
	}
	if c.req.EntryPrice <= 0 {
		return reject("entry price must be positive")
	}
	if c.metrics.TotalValue <= 0 {
		return reject("portfolio value unavailable")
	}
	return cont(c.size)
}

func checkPositionSize(c *checkCtx) stepOutcome {
	limit := c.limits.MaxPositionSize * c.metrics.TotalValue
	if c.size <= limit {
		return cont(c.size)
	}
	return shrink(limit, fmt.Sprintf("position size reduced to %.1f%% cap (%.2f -> %.2f)",
		100*c.limits.MaxPositionSize, c.size, limit))
}

func checkRiskPerTrade(c *checkCtx) stepOutcome {
	if c.req.StopLoss <= 0 {
		// No stop means no measurable stop-out risk; later steps still apply.
		return cont(c.size)
	}
	riskFrac := abs(c.req.EntryPrice-c.req.StopLoss) / c.req.EntryPrice
	if riskFrac == 0 {
		return cont(c.size)
	}
	riskRatio := riskFrac * c.size / c.metrics.TotalValue
	if riskRatio <= c.limits.MaxRiskPerTrade {
		return cont(c.size)
	}
	// Shrink so the risk ratio lands exactly on the cap.
	adjusted := c.limits.MaxRiskPerTrade * c.metrics.TotalValue / riskFrac
	return shrink(adjusted, fmt.Sprintf("size reduced so stop-out risk meets %.1f%% per-trade cap (%.2f -> %.2f)",
		100*c.limits.MaxRiskPerTrade, c.size, adjusted))
}

func checkTotalExposure(c *checkCtx) stepOutcome {
	headroom := c.limits.MaxTotalExposure*c.metrics.TotalValue - c.metrics.TotalExposure
	if headroom <= 0 {
		return reject(fmt.Sprintf("total exposure already at %.1f%% cap", 100*c.limits.MaxTotalExposure))
	}
	if c.size <= headroom {
		return cont(c.size)
	}
	return shrink(headroom, fmt.Sprintf("size reduced to remaining exposure headroom (%.2f -> %.2f)",
		c.size, headroom))
}

// checkCorrelation rejects outright rather than shrinking: a partial fill
// does not reduce correlated concentration proportionally.
func checkCorrelation(c *checkCtx) stepOutcome {
	symbol := market.Normalize(c.req.Symbol)
	base, quote := market.Currencies(c.req.Symbol)

	sameSymbol := c.size
	sameCurrency := 0.0
	if base != "" || quote != "" {
		sameCurrency = c.size
	}

	for _, p := range c.open {
		if market.Normalize(p.Instrument) == symbol {
			sameSymbol += p.Size
		}
		pb, pq := market.Currencies(p.Instrument)
		if pb == "" && pq == "" {
			continue // no currency data, no correlation contribution
		}
		if (base != "" && (pb == base || pq == base)) || (quote != "" && (pb == quote || pq == quote)) {
			sameCurrency += p.Size
		}
	}

	symbolRatio := sameSymbol / c.metrics.TotalValue
	currencyRatio := sameCurrency / c.metrics.TotalValue

	exposure := symbolRatio
	if v := 0.7 * currencyRatio; v > exposure {
		exposure = v
	}
	if exposure > c.limits.MaxCorrelatedExposure {
		return reject(fmt.Sprintf("correlated exposure %.1f%% exceeds %.1f%% cap",
			100*exposure, 100*c.limits.MaxCorrelatedExposure))
	}
	return cont(c.size)
}

func checkFrequency(c *checkCtx) stepOutcome {
	if c.freqCheck == nil {
		return cont(c.size)
	}
	if ok, reason := c.freqCheck(); !ok {
		return reject(reason)
	}
	return cont(c.size)
}

func checkDrawdown(c *checkCtx) stepOutcome {
	if c.metrics.CurrentDrawdown > c.limits.MaxDrawdown {
		return reject(fmt.Sprintf("drawdown %.1f%% exceeds %.1f%% cap",
			100*c.metrics.CurrentDrawdown, 100*c.limits.MaxDrawdown))
	}
	return cont(c.size)
}

func checkDailyLoss(c *checkCtx) stepOutcome {
	if c.metrics.DailyPnL >= 0 {
		return cont(c.size)
	}
	lossRatio := -c.metrics.DailyPnL / c.metrics.TotalValue
	if lossRatio > c.limits.MaxDailyLoss {
		return reject(fmt.Sprintf("daily loss %.1f%% exceeds %.1f%% cap",
			100*lossRatio, 100*c.limits.MaxDailyLoss))
	}
	return cont(c.size)
}
