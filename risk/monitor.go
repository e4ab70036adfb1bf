package risk

import (
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/riskcore/market"
)

// tailRiskFraction is the CVaR95 alarm level as a fraction of portfolio value.
const tailRiskFraction = 0.10

// finding is one monitor check's output before the manager stamps an id and
// commits it to the event log.
type finding struct {
	event  Event
	action Action
	pause  bool // circuit breaker fired, manager should pause the system
}

// runMonitorChecks evaluates every portfolio check against the snapshot. The
// checks are independent and all run on every call; each one is recovered so
// a failure in one cannot mask findings from the others.
func runMonitorChecks(m PortfolioMetrics, open []market.Position, l Limits, now time.Time) []finding {
	var out []finding

	checks := []func(PortfolioMetrics, []market.Position, Limits, time.Time) []finding{
		circuitBreakerCheck,
		tailRiskCheck,
		correlationCheck,
		blackSwanSweep,
	}
	for _, check := range checks {
		out = append(out, runCheck(check, m, open, l, now)...)
	}
	return out
}

func runCheck(fn func(PortfolioMetrics, []market.Position, Limits, time.Time) []finding,
	m PortfolioMetrics, open []market.Position, l Limits, now time.Time) (out []finding) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()
	return fn(m, open, l, now)
}

func circuitBreakerCheck(m PortfolioMetrics, _ []market.Position, l Limits, now time.Time) []finding {
	if m.CurrentDrawdown <= l.DailyDrawdownLimit {
		return nil
	}
	return []finding{{
		event: Event{
			Time:     now,
			Type:     EventCircuitBreaker,
			Level:    LevelSystem,
			Severity: SeverityCritical,
			Message:  "daily drawdown exceeded",
			Current:  m.CurrentDrawdown,
			Limit:    l.DailyDrawdownLimit,
			Action:   string(ActionPauseSystem),
		},
		action: ActionPauseSystem,
		pause:  true,
	}}
}

func tailRiskCheck(m PortfolioMetrics, _ []market.Position, _ Limits, now time.Time) []finding {
	limit := tailRiskFraction * m.TotalValue
	if m.TotalValue <= 0 || m.CVaR95 <= limit {
		return nil
	}
	return []finding{{
		event: Event{
			Time:     now,
			Type:     EventWarning,
			Level:    LevelPortfolio,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("tail risk elevated: CVaR95 %.2f above %.0f%% of portfolio", m.CVaR95, 100*tailRiskFraction),
			Current:  m.CVaR95,
			Limit:    limit,
			Action:   string(ActionReducePositions),
		},
		action: ActionReducePositions,
	}}
}

func correlationCheck(m PortfolioMetrics, open []market.Position, l Limits, now time.Time) []finding {
	if m.CorrelationRisk <= l.MaxCorrelatedExposure {
		return nil
	}
	return []finding{{
		event: Event{
			Time:      now,
			Type:      EventLimitBreach,
			Level:     LevelPortfolio,
			Severity:  SeverityHigh,
			Message:   fmt.Sprintf("correlation risk %.1f%% exceeds %.1f%% cap", 100*m.CorrelationRisk, 100*l.MaxCorrelatedExposure),
			Current:   m.CorrelationRisk,
			Limit:     l.MaxCorrelatedExposure,
			Action:    string(ActionCloseCorrelated),
			Positions: mostCorrelatedHalf(open),
		},
		action: ActionCloseCorrelated,
	}}
}

// mostCorrelatedHalf names the upper half of open positions ranked by
// correlation contribution, highest first, ids breaking ties.
func mostCorrelatedHalf(open []market.Position) []string {
	if len(open) == 0 {
		return nil
	}
	ranked := make([]market.Position, len(open))
	copy(ranked, open)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Correlation != ranked[j].Correlation {
			return ranked[i].Correlation > ranked[j].Correlation
		}
		return ranked[i].ID < ranked[j].ID
	})

	half := (len(ranked) + 1) / 2
	ids := make([]string, 0, half)
	for _, p := range ranked[:half] {
		ids = append(ids, p.ID)
	}
	return ids
}

func blackSwanSweep(m PortfolioMetrics, _ []market.Position, _ Limits, now time.Time) []finding {
	var out []finding
	for _, ind := range detectBlackSwans(m, now) {
		out = append(out, finding{
			event: Event{
				Time:     now,
				Type:     EventBlackSwan,
				Level:    LevelPortfolio,
				Severity: SeverityCritical,
				Message:  ind.Description,
				Current:  ind.Value,
				Limit:    ind.Threshold,
				Action:   string(ActionEmergencyReduce),
			},
			action: ActionEmergencyReduce,
		})
	}
	return out
}
