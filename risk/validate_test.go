package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/riskcore/market"
)

func newCheckCtx(req Request, m PortfolioMetrics, open []market.Position) *checkCtx {
	return &checkCtx{
		req:     req,
		size:    req.Size,
		limits:  DefaultLimits(),
		metrics: m,
		open:    open,
	}
}

func TestValidatePositionSizeCap(t *testing.T) {
	t.Parallel()

	// $15k requested against a $100k portfolio with a 10% cap shrinks to
	// exactly $10k and still passes.
	d := runChecks(newCheckCtx(
		Request{Symbol: "EUR_USD", Size: 15_000, EntryPrice: 1.17},
		PortfolioMetrics{TotalValue: 100_000},
		nil,
	))

	assert.True(t, d.Allowed)
	assert.InDelta(t, 10_000, d.AdjustedSize, 1e-9)
	assert.InDelta(t, 0.10, d.AdjustedSize/100_000, 1e-12)
	if assert.Len(t, d.Reasons, 1) {
		assert.Contains(t, d.Reasons[0], "position size reduced")
	}
}

func TestValidateRiskPerTradeShrink(t *testing.T) {
	t.Parallel()

	// Entry 1.00, stop 0.50: a 50% stop-out. $9k at that distance risks 4.5%
	// of the portfolio; the 2% cap shrinks the size so risk lands exactly on it.
	d := runChecks(newCheckCtx(
		Request{Symbol: "EUR_USD", Size: 9_000, EntryPrice: 1.0, StopLoss: 0.5},
		PortfolioMetrics{TotalValue: 100_000},
		nil,
	))

	assert.True(t, d.Allowed)
	assert.InDelta(t, 4_000, d.AdjustedSize, 1e-9)

	riskRatio := 0.5 * d.AdjustedSize / 100_000
	assert.InDelta(t, 0.02, riskRatio, 1e-12)
}

func TestValidateNoStopSkipsRiskCheck(t *testing.T) {
	t.Parallel()

	d := runChecks(newCheckCtx(
		Request{Symbol: "EUR_USD", Size: 9_000, EntryPrice: 1.0},
		PortfolioMetrics{TotalValue: 100_000},
		nil,
	))
	assert.True(t, d.Allowed)
	assert.InDelta(t, 9_000, d.AdjustedSize, 1e-9)
}

func TestValidateTotalExposure(t *testing.T) {
	t.Parallel()

	t.Run("at cap rejects", func(t *testing.T) {
		t.Parallel()
		d := runChecks(newCheckCtx(
			Request{Symbol: "EUR_USD", Size: 1_000, EntryPrice: 1.17},
			PortfolioMetrics{TotalValue: 100_000, TotalExposure: 60_000},
			nil,
		))
		assert.False(t, d.Allowed)
		if assert.Len(t, d.Reasons, 1) {
			assert.Contains(t, d.Reasons[0], "total exposure")
		}
	})

	t.Run("shrinks to headroom", func(t *testing.T) {
		t.Parallel()
		d := runChecks(newCheckCtx(
			Request{Symbol: "EUR_USD", Size: 8_000, EntryPrice: 1.17},
			PortfolioMetrics{TotalValue: 100_000, TotalExposure: 55_000},
			nil,
		))
		assert.True(t, d.Allowed)
		assert.InDelta(t, 5_000, d.AdjustedSize, 1e-9)
	})
}

func TestValidateCorrelation(t *testing.T) {
	t.Parallel()

	open := []market.Position{
		{ID: "p1", Instrument: "EUR_USD", Size: 18_000},
	}

	t.Run("same symbol concentration rejects", func(t *testing.T) {
		t.Parallel()
		d := runChecks(newCheckCtx(
			Request{Symbol: "EUR/USD", Size: 5_000, EntryPrice: 1.17},
			PortfolioMetrics{TotalValue: 100_000},
			open,
		))
		assert.False(t, d.Allowed)
		if assert.Len(t, d.Reasons, 1) {
			assert.Contains(t, d.Reasons[0], "correlated exposure")
		}
	})

	t.Run("shared currency weighs at 0.7", func(t *testing.T) {
		t.Parallel()
		// EUR_JPY shares only EUR with the open EUR_USD. Currency exposure
		// 23k x 0.7 = 16.1%, symbol exposure 5%: both under the 20% cap.
		d := runChecks(newCheckCtx(
			Request{Symbol: "EUR_JPY", Size: 5_000, EntryPrice: 165.0},
			PortfolioMetrics{TotalValue: 100_000},
			open,
		))
		assert.True(t, d.Allowed)
	})

	t.Run("unknown symbols contribute nothing", func(t *testing.T) {
		t.Parallel()
		d := runChecks(newCheckCtx(
			Request{Symbol: "EUR_USD", Size: 5_000, EntryPrice: 1.17},
			PortfolioMetrics{TotalValue: 100_000},
			[]market.Position{{ID: "x1", Instrument: "???", Size: 50_000}},
		))
		assert.True(t, d.Allowed)
	})
}

func TestValidateDrawdownAndDailyLoss(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		metrics PortfolioMetrics
		allowed bool
		reason  string
	}{
		{
			"drawdown past cap",
			PortfolioMetrics{TotalValue: 100_000, CurrentDrawdown: 0.16},
			false, "drawdown",
		},
		{
			"daily loss past cap",
			PortfolioMetrics{TotalValue: 100_000, DailyPnL: -3_500},
			false, "daily loss",
		},
		{
			"daily loss inside cap",
			PortfolioMetrics{TotalValue: 100_000, DailyPnL: -2_000},
			true, "",
		},
		{
			"daily profit",
			PortfolioMetrics{TotalValue: 100_000, DailyPnL: 4_000},
			true, "",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := runChecks(newCheckCtx(
				Request{Symbol: "EUR_USD", Size: 1_000, EntryPrice: 1.17},
				tt.metrics,
				nil,
			))
			assert.Equal(t, tt.allowed, d.Allowed)
			if tt.reason != "" && assert.NotEmpty(t, d.Reasons) {
				assert.Contains(t, d.Reasons[len(d.Reasons)-1], tt.reason)
			}
		})
	}
}

func TestValidateSanity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		req    Request
		total  float64
		reason string
	}{
		{"zero size", Request{Symbol: "EUR_USD", EntryPrice: 1.17}, 100_000, "size must be positive"},
		{"negative entry", Request{Symbol: "EUR_USD", Size: 1_000, EntryPrice: -1}, 100_000, "entry price"},
		{"no portfolio value", Request{Symbol: "EUR_USD", Size: 1_000, EntryPrice: 1.17}, 0, "portfolio value"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := runChecks(newCheckCtx(tt.req, PortfolioMetrics{TotalValue: tt.total}, nil))
			assert.False(t, d.Allowed)
			if assert.Len(t, d.Reasons, 1) {
				assert.Contains(t, d.Reasons[0], tt.reason)
			}
		})
	}
}

func TestValidatePausedRejectsEverything(t *testing.T) {
	t.Parallel()

	c := newCheckCtx(
		Request{Symbol: "EUR_USD", Size: 1_000, EntryPrice: 1.17},
		PortfolioMetrics{TotalValue: 100_000},
		nil,
	)
	c.pauseReason = "daily drawdown exceeded"

	d := runChecks(c)
	assert.False(t, d.Allowed)
	if assert.Len(t, d.Reasons, 1) {
		assert.Contains(t, d.Reasons[0], "system paused")
	}
}

func TestValidateShrinksAccumulateReasons(t *testing.T) {
	t.Parallel()

	// Oversized and over-risked: both shrink notes must survive in order.
	d := runChecks(newCheckCtx(
		Request{Symbol: "EUR_USD", Size: 15_000, EntryPrice: 1.0, StopLoss: 0.5},
		PortfolioMetrics{TotalValue: 100_000},
		nil,
	))
	assert.True(t, d.Allowed)
	assert.InDelta(t, 4_000, d.AdjustedSize, 1e-9)
	if assert.Len(t, d.Reasons, 2) {
		assert.Contains(t, d.Reasons[0], "position size reduced")
		assert.Contains(t, d.Reasons[1], "per-trade cap")
	}
}
