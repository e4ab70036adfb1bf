package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	validationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskcore_validations_total",
			Help: "Pre-trade validations by outcome",
		},
		[]string{"outcome"},
	)

	riskEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskcore_risk_events_total",
			Help: "Risk events emitted, by type and severity",
		},
		[]string{"type", "severity"},
	)

	systemPaused = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "riskcore_system_paused",
			Help: "1 while the trading pause is active",
		},
	)

	exitScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "riskcore_exit_score",
			Help:    "Distribution of exit-intelligence scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	tradesRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "riskcore_trades_recorded_total",
			Help: "Executed trades recorded against the frequency throttle",
		},
	)
)

func init() {
	prometheus.MustRegister(validationsTotal)
	prometheus.MustRegister(riskEventsTotal)
	prometheus.MustRegister(systemPaused)
	prometheus.MustRegister(exitScore)
	prometheus.MustRegister(tradesRecorded)
}

// Handler returns the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordValidation records a pre-trade validation outcome
// ("allowed", "adjusted", or "rejected").
func RecordValidation(outcome string) {
	validationsTotal.WithLabelValues(outcome).Inc()
}

// RecordRiskEvent records an emitted risk event.
func RecordRiskEvent(eventType, severity string) {
	riskEventsTotal.WithLabelValues(eventType, severity).Inc()
}

// SetSystemPaused updates the pause gauge.
func SetSystemPaused(paused bool) {
	if paused {
		systemPaused.Set(1)
	} else {
		systemPaused.Set(0)
	}
}

// ObserveExitScore records one exit-intelligence score.
func ObserveExitScore(score float64) {
	exitScore.Observe(score)
}

// RecordTrade counts one executed trade.
func RecordTrade() {
	tradesRecorded.Inc()
}
