package risk

import "time"

// PortfolioMetrics is a point-in-time snapshot of the portfolio, produced by
// the portfolio layer on whatever cadence it polls. The core only reads it.
type PortfolioMetrics struct {
	TotalValue    float64
	TotalExposure float64
	MarginUsed    float64

	RealizedPnL   float64
	UnrealizedPnL float64
	DailyPnL      float64
	WeeklyPnL     float64
	MonthlyPnL    float64

	CurrentDrawdown  float64 // peak-to-trough, fraction of peak
	MaxDailyDrawdown float64 // worst drawdown seen today

	OpenPositions   int
	CorrelationRisk float64
	VaR95           float64
	CVaR95          float64

	// Anomaly inputs for the black-swan sweep. Zero values mean the feed did
	// not supply them, and the corresponding indicator stays silent.
	CurrentVolatility    float64
	AverageVolatility    float64 // trailing average
	CorrelationShift     float64 // magnitude of change in stable correlations
	SpreadRatio          float64 // spread widening vs normal, [0,1] proxy
	OvernightGapExposure float64 // estimated gap exposure, fraction of portfolio
}

// Action tags tell the execution layer what the monitor wants done. The core
// never acts on them itself.
type Action string

const (
	ActionPauseSystem     Action = "PAUSE_SYSTEM"
	ActionReducePositions Action = "REDUCE_POSITIONS"
	ActionCloseCorrelated Action = "CLOSE_CORRELATED"
	ActionEmergencyReduce Action = "EMERGENCY_REDUCE"
)

// MonitorReport is the outcome of one monitoring pass.
type MonitorReport struct {
	Alerts  []Event
	Actions []Action
}

// Status is a point-in-time view of the shared decision state.
type Status struct {
	Paused             bool
	PauseReason        string
	ResumeAt           time.Time // zero while active
	DailyTrades        int
	HourlyTrades       int
	LastTradeTime      time.Time // zero before the first trade
	HighSeverityAlerts int       // high/critical events in the last 24h
}
