package risk

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/riskcore/market"
	"github.com/rustyeddy/riskcore/metrics"
	"github.com/rustyeddy/riskcore/pkg/id"
)

// Store persists risk events beyond the bounded in-memory window. A failing
// store never blocks a decision; errors are logged and the pass continues.
type Store interface {
	Append(Event) error
}

// Manager is the shared decision core: limit validation, trade throttling,
// portfolio monitoring and the pause state machine, all behind one mutex.
// It computes decisions only; executing them is the caller's job.
type Manager struct {
	mu       sync.Mutex
	limits   Limits
	throttle throttle
	log      eventLog

	paused      bool
	pauseReason string
	resumeAt    time.Time

	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

type Option func(*Manager)

// WithStore attaches a persistent event store.
func WithStore(s Store) Option {
	return func(m *Manager) { m.store = s }
}

// WithLogger sets the structured logger. Without it the manager is silent.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithLogCapacity overrides the bounded in-memory event window.
func WithLogCapacity(n int) Option {
	return func(m *Manager) { m.log = newEventLog(n) }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(limits Limits, opts ...Option) *Manager {
	m := &Manager{
		limits: limits,
		log:    newEventLog(defaultLogCapacity),
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ValidateNewPosition runs the proposed position through the ordered check
// cascade and returns the verdict, never an error. A rejection or a resize
// is committed to the event log. It consumes no trade quota; call
// RecordTrade once the order actually executes.
func (m *Manager) ValidateNewPosition(req Request, pm PortfolioMetrics, open []market.Position) Decision {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.applyResume(now)

	ctx := &checkCtx{
		req:     req,
		size:    req.Size,
		limits:  m.limits,
		metrics: pm,
		open:    open,
		freqCheck: func() (bool, string) {
			return m.throttle.check(now, m.limits)
		},
	}
	if m.paused {
		ctx.pauseReason = m.pauseReason
	}

	d := runChecks(ctx)
	switch {
	case !d.Allowed:
		metrics.RecordValidation("rejected")
		m.appendEvent(Event{
			Time:     now,
			Type:     EventLimitBreach,
			Level:    LevelPosition,
			Severity: SeverityMedium,
			Message:  "position rejected: " + strings.Join(d.Reasons, "; "),
			Current:  req.Size,
			Action:   "rejected",
		})
		m.logger.Info().Str("symbol", req.Symbol).
			Strs("reasons", d.Reasons).Msg("position rejected")
	case d.AdjustedSize != req.Size:
		metrics.RecordValidation("adjusted")
		m.appendEvent(Event{
			Time:     now,
			Type:     EventWarning,
			Level:    LevelPosition,
			Severity: SeverityLow,
			Message:  "position resized: " + strings.Join(d.Reasons, "; "),
			Current:  req.Size,
			Limit:    d.AdjustedSize,
			Action:   "resized",
		})
		m.logger.Info().Str("symbol", req.Symbol).
			Float64("size", req.Size).Float64("adjusted", d.AdjustedSize).
			Msg("position resized")
	default:
		metrics.RecordValidation("allowed")
		m.logger.Debug().Str("symbol", req.Symbol).
			Float64("size", req.Size).Msg("position validated")
	}
	return d
}

// RecordTrade consumes throttle quota for one executed trade.
func (m *Manager) RecordTrade() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.throttle.record(now)
	metrics.RecordTrade()
	m.logger.Debug().Int("daily", m.throttle.dailyCount).
		Int("hourly", m.throttle.hourlyCount).Msg("trade recorded")
}

// MonitorPortfolioRisk runs every portfolio check against the snapshot,
// commits the resulting events, and reports the alerts and recommended
// actions. A circuit-breaker finding pauses the system until next midnight.
func (m *Manager) MonitorPortfolioRisk(pm PortfolioMetrics, open []market.Position) MonitorReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.applyResume(now)

	var report MonitorReport
	seen := map[Action]bool{}
	for _, f := range runMonitorChecks(pm, open, m.limits, now) {
		e := m.appendEvent(f.event)
		report.Alerts = append(report.Alerts, e)
		if !seen[f.action] {
			seen[f.action] = true
			report.Actions = append(report.Actions, f.action)
		}
		// No new pause transition while already paused; the existing
		// scheduled resume stands.
		if f.pause && !m.paused {
			m.pause(e.Message, nextMidnight(now))
		}
	}
	return report
}

// Pause suspends new position validation until next midnight, or until
// Resume is called.
func (m *Manager) Pause(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.paused {
		return
	}
	m.appendEvent(Event{
		Time:     now,
		Type:     EventWarning,
		Level:    LevelSystem,
		Severity: SeverityHigh,
		Message:  "manual pause: " + reason,
		Action:   string(ActionPauseSystem),
	})
	m.pause(reason, nextMidnight(now))
}

// Resume lifts a pause before its scheduled expiry.
func (m *Manager) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.paused {
		return
	}
	m.unpause(m.now(), "manual resume")
}

// UpdateLimits merges the partial override onto the current snapshot and
// swaps it in atomically. An invalid result leaves the current limits
// untouched.
func (m *Manager) UpdateLimits(u LimitsUpdate) (Limits, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	merged := m.limits.Apply(u)
	if err := merged.Validate(); err != nil {
		return m.limits, err
	}
	m.limits = merged
	m.appendEvent(Event{
		Time:     m.now(),
		Type:     EventWarning,
		Level:    LevelSystem,
		Severity: SeverityLow,
		Message:  "risk limits updated",
	})
	m.logger.Info().Msg("risk limits updated")
	return merged, nil
}

// Limits returns the current snapshot.
func (m *Manager) Limits() Limits {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.limits
}

// RecentEvents returns events from the in-memory window newer than
// now-window, oldest first.
func (m *Manager) RecentEvents(window time.Duration) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.log.recent(window, m.now())
}

// Status reports the pause state and throttle counters as of now. Reading
// status is enough to trigger a scheduled resume.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.applyResume(now)
	m.throttle.roll(now)

	return Status{
		Paused:             m.paused,
		PauseReason:        m.pauseReason,
		ResumeAt:           m.resumeAt,
		DailyTrades:        m.throttle.dailyCount,
		HourlyTrades:       m.throttle.hourlyCount,
		LastTradeTime:      m.throttle.lastTrade,
		HighSeverityAlerts: m.log.highSeverityCount(24*time.Hour, now),
	}
}

// applyResume lifts the pause once its scheduled time has passed. There is
// no timer; expiry is checked lazily on the next read or validation.
// Callers hold the mutex.
func (m *Manager) applyResume(now time.Time) {
	if !m.paused || m.resumeAt.IsZero() || now.Before(m.resumeAt) {
		return
	}
	m.unpause(now, "scheduled resume")
}

func (m *Manager) pause(reason string, resumeAt time.Time) {
	m.paused = true
	m.pauseReason = reason
	m.resumeAt = resumeAt
	metrics.SetSystemPaused(true)
	m.logger.Error().Str("reason", reason).
		Time("resume_at", resumeAt).Msg("system paused")
}

func (m *Manager) unpause(now time.Time, how string) {
	m.paused = false
	m.pauseReason = ""
	m.resumeAt = time.Time{}
	metrics.SetSystemPaused(false)
	m.appendEvent(Event{
		Time:     now,
		Type:     EventWarning,
		Level:    LevelSystem,
		Severity: SeverityLow,
		Message:  "system resumed: " + how,
	})
	m.logger.Info().Str("how", how).Msg("system resumed")
}

// appendEvent stamps an id, commits the event to the in-memory window and
// the store, and counts it. Callers hold the mutex.
func (m *Manager) appendEvent(e Event) Event {
	e.ID = id.New()
	m.log.append(e)
	if m.store != nil {
		if err := m.store.Append(e); err != nil {
			m.logger.Warn().Err(err).Str("event_id", e.ID).Msg("event store append failed")
		}
	}
	metrics.RecordRiskEvent(string(e.Type), string(e.Severity))
	return e
}

// nextMidnight is the upcoming clock-day boundary in now's location.
func nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}
