package risk

import "time"

type EventType string

const (
	EventWarning        EventType = "warning"
	EventLimitBreach    EventType = "limit_breach"
	EventCircuitBreaker EventType = "circuit_breaker"
	EventBlackSwan      EventType = "black_swan"
)

type EventLevel string

const (
	LevelPosition  EventLevel = "position"
	LevelPortfolio EventLevel = "portfolio"
	LevelSystem    EventLevel = "system"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Event is one immutable record in the append-only risk history.
type Event struct {
	ID        string
	Time      time.Time
	Type      EventType
	Level     EventLevel
	Severity  Severity
	Message   string
	Current   float64 // observed value that triggered the event
	Limit     float64 // the limit it was compared against
	Action    string  // action taken or recommended
	Positions []string
}

// defaultLogCapacity bounds the in-memory event window. History beyond it
// lives in the journal store, if one is attached.
const defaultLogCapacity = 500

// eventLog is a bounded append-only window over recent events, oldest
// evicted first. Not safe for concurrent use; the manager's mutex guards it.
type eventLog struct {
	capacity int
	events   []Event
}

func newEventLog(capacity int) eventLog {
	if capacity <= 0 {
		capacity = defaultLogCapacity
	}
	return eventLog{capacity: capacity}
}

func (l *eventLog) append(e Event) {
	l.events = append(l.events, e)
	if n := len(l.events) - l.capacity; n > 0 {
		l.events = append(l.events[:0], l.events[n:]...)
	}
}

// recent returns events newer than now-window, oldest first.
func (l *eventLog) recent(window time.Duration, now time.Time) []Event {
	cutoff := now.Add(-window)
	var out []Event
	for _, e := range l.events {
		if e.Time.After(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

func (l *eventLog) highSeverityCount(window time.Duration, now time.Time) int {
	n := 0
	for _, e := range l.recent(window, now) {
		if e.Severity == SeverityHigh || e.Severity == SeverityCritical {
			n++
		}
	}
	return n
}
