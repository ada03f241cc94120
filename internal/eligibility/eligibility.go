package eligibility

import "time"

// Pattern detection unlocks after the "777" threshold: 7 entries written
// across at least 7 calendar days.
const (
	EntriesTarget = 7
	DaysTarget    = 7
)

// UnlockProgress reports how far a user is toward the pattern unlock.
// Done counters are clamped to their targets for display.
type UnlockProgress struct {
	EntriesDone   int `json:"entries_done"`
	EntriesTarget int `json:"entries_target"`
	DaysDone      int `json:"days_done"`
	DaysTarget    int `json:"days_target"`
}

// DaysSinceFirstEntry returns whole calendar days elapsed since the
// first entry, counting the first day as day 1. Day boundaries are UTC
// midnights, so an entry late on day 1 and one early on day 2 are a day
// apart regardless of time-of-day.
func DaysSinceFirstEntry(first time.Time) int {
	return DaysSinceFirstEntryAt(first, time.Now())
}

// DaysSinceFirstEntryAt is DaysSinceFirstEntry against an explicit clock.
func DaysSinceFirstEntryAt(first, now time.Time) int {
	firstDay := startOfDayUTC(first)
	today := startOfDayUTC(now)
	return int(today.Sub(firstDay)/(24*time.Hour)) + 1
}

// HasUnlockedPatterns reports whether the 777 threshold is met. A nil
// firstEntry means the user has never journaled.
func HasUnlockedPatterns(totalEntries int, firstEntry *time.Time) bool {
	return HasUnlockedPatternsAt(totalEntries, firstEntry, time.Now())
}

func HasUnlockedPatternsAt(totalEntries int, firstEntry *time.Time, now time.Time) bool {
	if firstEntry == nil {
		return false
	}
	return totalEntries >= EntriesTarget &&
		DaysSinceFirstEntryAt(*firstEntry, now) >= DaysTarget
}

// Progress returns unlock progress with counters clamped to [0, target].
func Progress(totalEntries int, firstEntry *time.Time) UnlockProgress {
	return ProgressAt(totalEntries, firstEntry, time.Now())
}

func ProgressAt(totalEntries int, firstEntry *time.Time, now time.Time) UnlockProgress {
	days := 0
	if firstEntry != nil {
		days = DaysSinceFirstEntryAt(*firstEntry, now)
	}
	return UnlockProgress{
		EntriesDone:   clamp(totalEntries, 0, EntriesTarget),
		EntriesTarget: EntriesTarget,
		DaysDone:      clamp(days, 0, DaysTarget),
		DaysTarget:    DaysTarget,
	}
}

func startOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
