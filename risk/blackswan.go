package risk

import (
	"fmt"
	"time"
)

// Fixed anomaly thresholds. Deliberately simple, replaceable scoring shapes;
// the contract is "threshold exceeded ⇒ exactly one finding with severity
// increasing monotonically past the threshold".
const (
	volatilitySpikeThreshold      = 3.0  // current vs trailing-average volatility
	correlationBreakdownThreshold = 0.8  // change in historically stable correlations
	liquidityCrunchThreshold      = 0.7  // spread-widening proxy
	gapRiskThreshold              = 0.05 // overnight gap exposure, fraction of portfolio
)

// Indicator is one transient black-swan finding. It is never persisted on its
// own, only surfaced inside risk events.
type Indicator struct {
	Name        string
	Value       float64
	Threshold   float64
	Severity    float64 // [0,1]
	Description string
	DetectedAt  time.Time
}

// detectBlackSwans scores the four anomaly indicators against the snapshot.
// Each indicator runs recovered, so a panic in one cannot suppress the
// others. Missing inputs (zero values) produce no finding.
func detectBlackSwans(m PortfolioMetrics, now time.Time) []Indicator {
	var out []Indicator

	checks := []func(PortfolioMetrics, time.Time) *Indicator{
		volatilitySpike,
		correlationBreakdown,
		liquidityCrunch,
		gapRisk,
	}
	for _, check := range checks {
		if ind := runIndicator(check, m, now); ind != nil {
			out = append(out, *ind)
		}
	}
	return out
}

func runIndicator(fn func(PortfolioMetrics, time.Time) *Indicator, m PortfolioMetrics, now time.Time) (ind *Indicator) {
	defer func() {
		if recover() != nil {
			ind = nil
		}
	}()
	return fn(m, now)
}

func volatilitySpike(m PortfolioMetrics, now time.Time) *Indicator {
	if m.AverageVolatility <= 0 {
		return nil
	}
	ratio := m.CurrentVolatility / m.AverageVolatility
	if ratio <= volatilitySpikeThreshold {
		return nil
	}
	return &Indicator{
		Name:        "volatility_spike",
		Value:       ratio,
		Threshold:   volatilitySpikeThreshold,
		Severity:    clamp01((ratio - volatilitySpikeThreshold) / 2),
		Description: fmt.Sprintf("volatility at %.1fx trailing average", ratio),
		DetectedAt:  now,
	}
}

func correlationBreakdown(m PortfolioMetrics, now time.Time) *Indicator {
	shift := abs(m.CorrelationShift)
	if shift <= correlationBreakdownThreshold {
		return nil
	}
	return &Indicator{
		Name:        "correlation_breakdown",
		Value:       shift,
		Threshold:   correlationBreakdownThreshold,
		Severity:    clamp01((shift - correlationBreakdownThreshold) / 0.2),
		Description: fmt.Sprintf("stable correlations shifted by %.2f", shift),
		DetectedAt:  now,
	}
}

func liquidityCrunch(m PortfolioMetrics, now time.Time) *Indicator {
	if m.SpreadRatio <= liquidityCrunchThreshold {
		return nil
	}
	return &Indicator{
		Name:        "liquidity_crunch",
		Value:       m.SpreadRatio,
		Threshold:   liquidityCrunchThreshold,
		Severity:    clamp01((m.SpreadRatio - liquidityCrunchThreshold) / 0.3),
		Description: fmt.Sprintf("spreads widened to %.2f of crisis baseline", m.SpreadRatio),
		DetectedAt:  now,
	}
}

func gapRisk(m PortfolioMetrics, now time.Time) *Indicator {
	if m.OvernightGapExposure <= gapRiskThreshold {
		return nil
	}
	return &Indicator{
		Name:        "gap_risk",
		Value:       m.OvernightGapExposure,
		Threshold:   gapRiskThreshold,
		Severity:    clamp01((m.OvernightGapExposure - gapRiskThreshold) / gapRiskThreshold),
		Description: fmt.Sprintf("overnight gap exposure at %.1f%% of portfolio", 100*m.OvernightGapExposure),
		DetectedAt:  now,
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
