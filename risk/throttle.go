package risk

import (
	"fmt"
	"time"
)

// throttle tracks trade frequency. Rollover resets run before any limit
// comparison, so a trade in a fresh hour is never blocked by the previous
// hour's count. The manager's mutex guards all access.
type throttle struct {
	dailyCount  int
	hourlyCount int
	lastTrade   time.Time
	hour        time.Time // start of the tracked hour
	day         time.Time // start of the tracked day
}

// roll resets the counters when the wall clock has crossed an hour or day
// boundary since the last call.
func (t *throttle) roll(now time.Time) {
	hour := now.Truncate(time.Hour)
	if !hour.Equal(t.hour) {
		t.hourlyCount = 0
		t.hour = hour
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !day.Equal(t.day) {
		t.dailyCount = 0
		t.day = day
	}
}

// check reports whether another trade is permitted right now. It never
// consumes quota; recording happens separately once an order executes.
func (t *throttle) check(now time.Time, l Limits) (bool, string) {
	t.roll(now)

	if t.dailyCount >= l.MaxTradesPerDay {
		return false, fmt.Sprintf("daily trade limit reached (%d/%d)", t.dailyCount, l.MaxTradesPerDay)
	}
	if t.hourlyCount >= l.MaxTradesPerHour {
		return false, fmt.Sprintf("hourly trade limit reached (%d/%d)", t.hourlyCount, l.MaxTradesPerHour)
	}
	if !t.lastTrade.IsZero() {
		if elapsed := now.Sub(t.lastTrade); elapsed < l.MinTradeSpacing {
			return false, fmt.Sprintf("min spacing between trades not met (%s < %s)",
				elapsed.Round(time.Second), l.MinTradeSpacing)
		}
	}
	return true, ""
}

// record consumes quota for one executed trade. Callers invoke it only after
// an order actually fills, never on a mere validation pass.
func (t *throttle) record(now time.Time) {
	t.roll(now)
	t.dailyCount++
	t.hourlyCount++
	t.lastTrade = now
}
