package risk

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/riskcore/market"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type memStore struct {
	events []Event
	err    error
}

func (s *memStore) Append(e Event) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, e)
	return nil
}

func newTestManager(opts ...Option) (*Manager, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clk.now)}, opts...)
	return NewManager(DefaultLimits(), opts...), clk
}

func healthyMetrics() PortfolioMetrics {
	return PortfolioMetrics{TotalValue: 100_000, TotalExposure: 20_000}
}

func TestManagerDailyTradeLimit(t *testing.T) {
	t.Parallel()

	m, clk := newTestManager()

	// 20 executed trades on the same calendar date, spaced to clear the
	// per-hour and min-spacing throttles.
	for i := 0; i < 20; i++ {
		m.RecordTrade()
		clk.advance(30 * time.Minute)
	}

	d := m.ValidateNewPosition(
		Request{Symbol: "EUR_USD", Size: 1_000, EntryPrice: 1.17},
		healthyMetrics(), nil)

	assert.False(t, d.Allowed)
	require.NotEmpty(t, d.Reasons)
	assert.Contains(t, d.Reasons[len(d.Reasons)-1], "daily trade limit")

	st := m.Status()
	assert.Equal(t, 20, st.DailyTrades)
}

func TestManagerCircuitBreaker(t *testing.T) {
	t.Parallel()

	m, clk := newTestManager()

	pm := healthyMetrics()
	pm.CurrentDrawdown = 0.06 // past the 5% daily drawdown breaker

	report := m.MonitorPortfolioRisk(pm, nil)

	require.Len(t, report.Alerts, 1)
	alert := report.Alerts[0]
	assert.Equal(t, EventCircuitBreaker, alert.Type)
	assert.Equal(t, SeverityCritical, alert.Severity)
	assert.NotEmpty(t, alert.ID)
	assert.Contains(t, report.Actions, ActionPauseSystem)

	// Any validation while paused is rejected outright.
	d := m.ValidateNewPosition(
		Request{Symbol: "EUR_USD", Size: 1_000, EntryPrice: 1.17},
		healthyMetrics(), nil)
	assert.False(t, d.Allowed)
	require.NotEmpty(t, d.Reasons)
	assert.Contains(t, d.Reasons[0], "system paused")

	st := m.Status()
	assert.True(t, st.Paused)
	assert.Equal(t, "daily drawdown exceeded", st.PauseReason)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), st.ResumeAt)

	// The pause lifts lazily once the clock passes the scheduled resume.
	clk.advance(15 * time.Hour) // 01:00 next day
	st = m.Status()
	assert.False(t, st.Paused)
	assert.Empty(t, st.PauseReason)
	assert.True(t, st.ResumeAt.IsZero())

	d = m.ValidateNewPosition(
		Request{Symbol: "EUR_USD", Size: 1_000, EntryPrice: 1.17},
		healthyMetrics(), nil)
	assert.True(t, d.Allowed)

	// The resume itself is on the record, at low severity.
	events := m.RecentEvents(time.Hour)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Contains(t, last.Message, "system resumed")
	assert.Equal(t, SeverityLow, last.Severity)
}

func TestManagerManualPauseResume(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager()

	m.Pause("maintenance window")
	st := m.Status()
	assert.True(t, st.Paused)
	assert.Equal(t, "maintenance window", st.PauseReason)

	m.Resume()
	st = m.Status()
	assert.False(t, st.Paused)

	d := m.ValidateNewPosition(
		Request{Symbol: "EUR_USD", Size: 1_000, EntryPrice: 1.17},
		healthyMetrics(), nil)
	assert.True(t, d.Allowed)
}

func TestManagerValidationEventsRecorded(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	m, _ := newTestManager(WithStore(store))

	// A rejection lands in the event history.
	pm := healthyMetrics()
	pm.CurrentDrawdown = 0.20
	d := m.ValidateNewPosition(
		Request{Symbol: "EUR_USD", Size: 1_000, EntryPrice: 1.17},
		pm, nil)
	assert.False(t, d.Allowed)

	events := m.RecentEvents(time.Hour)
	require.Len(t, events, 1)
	assert.Equal(t, EventLimitBreach, events[0].Type)
	assert.Equal(t, LevelPosition, events[0].Level)
	assert.Contains(t, events[0].Message, "position rejected")
	assert.Contains(t, events[0].Message, "drawdown")

	// So does a shrink that still passes.
	d = m.ValidateNewPosition(
		Request{Symbol: "EUR_USD", Size: 15_000, EntryPrice: 1.17},
		healthyMetrics(), nil)
	assert.True(t, d.Allowed)
	assert.InDelta(t, 10_000, d.AdjustedSize, 1e-9)

	events = m.RecentEvents(time.Hour)
	require.Len(t, events, 2)
	resized := events[1]
	assert.Equal(t, EventWarning, resized.Type)
	assert.Equal(t, SeverityLow, resized.Severity)
	assert.Contains(t, resized.Message, "position size reduced")
	assert.InDelta(t, 15_000, resized.Current, 1e-9)
	assert.InDelta(t, 10_000, resized.Limit, 1e-9)

	// Both reached the attached store as well.
	assert.Len(t, store.events, 2)

	// A clean pass leaves no trace.
	d = m.ValidateNewPosition(
		Request{Symbol: "EUR_USD", Size: 1_000, EntryPrice: 1.17},
		healthyMetrics(), nil)
	assert.True(t, d.Allowed)
	assert.Len(t, m.RecentEvents(time.Hour), 2)
}

func TestManagerMonitorTailRiskAndCorrelation(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager()

	open := []market.Position{
		{ID: "p3", Instrument: "EUR_USD", Correlation: 0.9},
		{ID: "p1", Instrument: "GBP_USD", Correlation: 0.9},
		{ID: "p2", Instrument: "USD_JPY", Correlation: 0.4},
		{ID: "p4", Instrument: "AUD_USD", Correlation: 0.1},
	}
	pm := healthyMetrics()
	pm.CVaR95 = 12_000        // above 10% of portfolio value
	pm.CorrelationRisk = 0.25 // above the 20% cap

	report := m.MonitorPortfolioRisk(pm, open)

	require.Len(t, report.Alerts, 2)
	assert.Equal(t, EventWarning, report.Alerts[0].Type)
	assert.Equal(t, EventLimitBreach, report.Alerts[1].Type)
	assert.Equal(t, []Action{ActionReducePositions, ActionCloseCorrelated}, report.Actions)

	// Most-correlated half, ties broken by id.
	assert.Equal(t, []string{"p1", "p3"}, report.Alerts[1].Positions)

	st := m.Status()
	assert.False(t, st.Paused)
	assert.Equal(t, 2, st.HighSeverityAlerts)
}

func TestManagerMonitorBlackSwans(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager()

	pm := healthyMetrics()
	pm.CurrentVolatility = 0.08
	pm.AverageVolatility = 0.01
	pm.OvernightGapExposure = 0.09

	report := m.MonitorPortfolioRisk(pm, nil)

	require.Len(t, report.Alerts, 2)
	for _, alert := range report.Alerts {
		assert.Equal(t, EventBlackSwan, alert.Type)
		assert.Equal(t, SeverityCritical, alert.Severity)
	}
	// One action tag even though two indicators fired.
	assert.Equal(t, []Action{ActionEmergencyReduce}, report.Actions)
}

func TestManagerUpdateLimits(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager()

	size := 0.05
	updated, err := m.UpdateLimits(LimitsUpdate{MaxPositionSize: &size})
	require.NoError(t, err)
	assert.Equal(t, 0.05, updated.MaxPositionSize)
	assert.Equal(t, 0.05, m.Limits().MaxPositionSize)

	// An invalid update is rejected synchronously and changes nothing.
	bad := -0.5
	_, err = m.UpdateLimits(LimitsUpdate{MaxDailyLoss: &bad})
	assert.Error(t, err)
	assert.Equal(t, DefaultLimits().MaxDailyLoss, m.Limits().MaxDailyLoss)
}

func TestManagerStorePersistsEvents(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	m, _ := newTestManager(WithStore(store))

	pm := healthyMetrics()
	pm.CurrentDrawdown = 0.06
	m.MonitorPortfolioRisk(pm, nil)

	require.NotEmpty(t, store.events)
	assert.Equal(t, EventCircuitBreaker, store.events[0].Type)
	assert.NotEmpty(t, store.events[0].ID)
}

func TestManagerStoreFailureDoesNotBlock(t *testing.T) {
	t.Parallel()

	store := &memStore{err: errors.New("disk full")}
	m, _ := newTestManager(WithStore(store))

	pm := healthyMetrics()
	pm.CurrentDrawdown = 0.06
	report := m.MonitorPortfolioRisk(pm, nil)

	// The decision still lands, and the in-memory window still has it.
	require.Len(t, report.Alerts, 1)
	assert.NotEmpty(t, m.RecentEvents(time.Hour))
}

func TestManagerEventWindowEviction(t *testing.T) {
	t.Parallel()

	m, clk := newTestManager(WithLogCapacity(3))

	pm := healthyMetrics()
	pm.CVaR95 = 12_000
	for i := 0; i < 5; i++ {
		m.MonitorPortfolioRisk(pm, nil)
		clk.advance(time.Minute)
	}

	events := m.RecentEvents(time.Hour)
	assert.Len(t, events, 3)
	for i := 1; i < len(events); i++ {
		assert.True(t, !events[i].Time.Before(events[i-1].Time))
	}
}
