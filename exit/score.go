// Package exit scores open positions for exit urgency. Scoring is a pure
// function over caller-supplied signals; polling cadence and acting on the
// recommendation are the caller's business.
package exit

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/riskcore/market"
	"github.com/rustyeddy/riskcore/metrics"
)

// Signals are the upstream module outputs feeding the scorer. Every field is
// optional; a nil signal scores its factor at the neutral 50.
type Signals struct {
	ConfluenceRatio     *float64 // agreeing signal sources / total, [0,1]
	TrendAlignment      *float64 // moving-average trend direction, [-1,1]
	SentimentConfidence *float64 // [0,100]
	VolatilityRegimeFit *float64 // [0,100]
	VolumeTrendRatio    *float64 // current volume / trailing average, 1.0 neutral
	CorrelationHealth   *float64 // [0,100]
	HoursToNextEvent    *float64 // hours until the next major scheduled event
	HarmonicConfidence  *float64 // [0,100]
	StructureConfidence *float64 // [0,100]
	RegimeStrength      *float64 // [0,100]
}

// Factor is one scored component of the overall verdict.
type Factor struct {
	Name   string
	Score  float64 // [0,100]
	Weight float64
}

type Recommendation string

const (
	ForceExit     Recommendation = "FORCE_EXIT"
	HoldCaution   Recommendation = "HOLD_CAUTION"
	HoldConfident Recommendation = "HOLD_CONFIDENT"
)

// Result is the scorer's verdict for one position.
type Result struct {
	Score          float64 // [0,100]
	Recommendation Recommendation
	Factors        []Factor
	Reasoning      string
}

const neutralScore = 50

// eventCautionHorizon is the distance, in hours, past which an upcoming
// event stops mattering.
const eventCautionHorizon = 72.0

// factorDef binds a factor's weight and phrasing to its signal mapping. The
// slice order is the evaluation order, which also fixes reasoning-clause
// order. Weights sum to exactly 1.00.
type factorDef struct {
	name       string
	weight     float64
	eval       func(market.Position, float64, Signals) float64
	lowClause  string
	highClause string
}

var factorDefs = []factorDef{
	{"confluence", 0.15, confluenceFactor, "signal confluence weak", "strong signal confluence"},
	{"trend", 0.15, trendFactor, "trend diverging", "trend aligned"},
	{"sentiment", 0.10, sentimentFactor, "sentiment deteriorating", "sentiment supportive"},
	{"volatility", 0.10, volatilityFactor, "volatility regime unfavorable", "volatility regime favorable"},
	{"volume", 0.08, volumeFactor, "volume declining", "volume expanding"},
	{"correlation", 0.08, correlationFactor, "correlation stress", "correlations healthy"},
	{"fundamental", 0.12, fundamentalFactor, "major event approaching", "event calendar clear"},
	{"harmonic", 0.07, harmonicFactor, "harmonic pattern failing", "harmonic pattern confirming"},
	{"structure", 0.10, structureFactor, "market structure breaking down", "market structure intact"},
	{"regime", 0.05, regimeFactor, "regime weakening", "regime supportive"},
}

// Score evaluates all ten factors for the position and folds them into one
// weighted verdict. It never fails: missing signals default to neutral and a
// panicking factor computation degrades to neutral rather than aborting the
// rest.
func Score(pos market.Position, currentPrice float64, sig Signals) Result {
	factors := make([]Factor, 0, len(factorDefs))
	var clauses []string
	total := 0.0

	for _, def := range factorDefs {
		score := evalFactor(def.eval, pos, currentPrice, sig)
		factors = append(factors, Factor{Name: def.name, Score: score, Weight: def.weight})
		total += def.weight * score

		if clause := reasonClause(def, score); clause != "" {
			clauses = append(clauses, clause)
		}
	}

	metrics.ObserveExitScore(total)

	return Result{
		Score:          total,
		Recommendation: recommend(total),
		Factors:        factors,
		Reasoning:      strings.Join(clauses, "; "),
	}
}

func recommend(score float64) Recommendation {
	switch {
	case score < 30:
		return ForceExit
	case score < 60:
		return HoldCaution
	default:
		return HoldConfident
	}
}

// evalFactor runs one factor computation recovered, so a panic in one signal
// mapping cannot suppress the other nine.
func evalFactor(fn func(market.Position, float64, Signals) float64, pos market.Position, price float64, sig Signals) (score float64) {
	defer func() {
		if recover() != nil {
			score = neutralScore
		}
	}()
	return clamp(fn(pos, price, sig))
}

// reasonClause returns a short human-readable clause when the factor sits
// notably off neutral, empty otherwise.
func reasonClause(def factorDef, score float64) string {
	const notable = 15
	switch {
	case score <= neutralScore-notable:
		return fmt.Sprintf("%s (%.0f)", def.lowClause, score)
	case score >= neutralScore+notable:
		return fmt.Sprintf("%s (%.0f)", def.highClause, score)
	default:
		return ""
	}
}

func confluenceFactor(_ market.Position, _ float64, s Signals) float64 {
	if s.ConfluenceRatio == nil {
		return neutralScore
	}
	return 100 * *s.ConfluenceRatio
}

// trendFactor folds the market trend direction against the position's side:
// a downtrend supports a short exactly as an uptrend supports a long.
func trendFactor(pos market.Position, _ float64, s Signals) float64 {
	if s.TrendAlignment == nil {
		return neutralScore
	}
	aligned := *s.TrendAlignment
	if pos.Side == market.Sell {
		aligned = -aligned
	}
	return 50 + 50*aligned
}

func sentimentFactor(_ market.Position, _ float64, s Signals) float64 {
	if s.SentimentConfidence == nil {
		return neutralScore
	}
	return *s.SentimentConfidence
}

func volatilityFactor(_ market.Position, _ float64, s Signals) float64 {
	if s.VolatilityRegimeFit == nil {
		return neutralScore
	}
	return *s.VolatilityRegimeFit
}

func volumeFactor(_ market.Position, _ float64, s Signals) float64 {
	if s.VolumeTrendRatio == nil {
		return neutralScore
	}
	return 50 * *s.VolumeTrendRatio
}

func correlationFactor(_ market.Position, _ float64, s Signals) float64 {
	if s.CorrelationHealth == nil {
		return neutralScore
	}
	return *s.CorrelationHealth
}

func fundamentalFactor(_ market.Position, _ float64, s Signals) float64 {
	if s.HoursToNextEvent == nil {
		return neutralScore
	}
	return 100 * *s.HoursToNextEvent / eventCautionHorizon
}

func harmonicFactor(_ market.Position, _ float64, s Signals) float64 {
	if s.HarmonicConfidence == nil {
		return neutralScore
	}
	return *s.HarmonicConfidence
}

func structureFactor(_ market.Position, _ float64, s Signals) float64 {
	if s.StructureConfidence == nil {
		return neutralScore
	}
	return *s.StructureConfidence
}

func regimeFactor(_ market.Position, _ float64, s Signals) float64 {
	if s.RegimeStrength == nil {
		return neutralScore
	}
	return *s.RegimeStrength
}

func clamp(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 100 {
		return 100
	}
	return x
}
