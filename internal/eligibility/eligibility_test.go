package eligibility

import (
	"testing"
	"time"
)

func TestDaysSinceFirstEntry_TodayIsDayOne(t *testing.T) {
	now := time.Date(2026, 3, 14, 23, 45, 0, 0, time.UTC)
	hours := []int{0, 6, 12, 23}
	for _, h := range hours {
		first := time.Date(2026, 3, 14, h, 0, 0, 0, time.UTC)
		if got := DaysSinceFirstEntryAt(first, now); got != 1 {
			t.Fatalf("first entry today at %02d:00: got day %d, want 1", h, got)
		}
	}
}

func TestDaysSinceFirstEntry_NDaysAgo(t *testing.T) {
	now := time.Date(2026, 3, 14, 1, 0, 0, 0, time.UTC)
	for n := 0; n <= 30; n++ {
		first := now.AddDate(0, 0, -n)
		if got := DaysSinceFirstEntryAt(first, now); got != n+1 {
			t.Fatalf("first entry %d days ago: got %d, want %d", n, got, n+1)
		}
	}
}

func TestDaysSinceFirstEntry_HourInsensitive(t *testing.T) {
	// Late on day 1 vs early on day 2 must still be one day apart.
	first := time.Date(2026, 3, 13, 23, 59, 0, 0, time.UTC)
	now := time.Date(2026, 3, 14, 0, 1, 0, 0, time.UTC)
	if got := DaysSinceFirstEntryAt(first, now); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
}

func TestHasUnlockedPatterns_NoFirstEntry(t *testing.T) {
	now := time.Now()
	for _, total := range []int{0, 6, 7, 100} {
		if HasUnlockedPatternsAt(total, nil, now) {
			t.Fatalf("expected locked with nil first entry and %d entries", total)
		}
	}
}

func TestHasUnlockedPatterns_Thresholds(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		total   int
		daysAgo int
		want    bool
	}{
		{"7 entries, 7 days ago", 7, 6, true}, // day 1 counts, so 6 days back = day 7
		{"6 entries, 10 days ago", 6, 10, false},
		{"10 entries, today", 10, 0, false},
		{"7 entries, 10 days ago", 7, 10, true},
	}
	for _, tt := range tests {
		first := now.AddDate(0, 0, -tt.daysAgo)
		if got := HasUnlockedPatternsAt(tt.total, &first, now); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestProgress_ClampedToTargets(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -100)
	future := now.AddDate(0, 0, 10)

	for _, tt := range []struct {
		total int
		first *time.Time
	}{
		{0, nil},
		{3, &past},
		{100, &past},
		{5, &future},
	} {
		p := ProgressAt(tt.total, tt.first, now)
		if p.EntriesDone < 0 || p.EntriesDone > p.EntriesTarget {
			t.Fatalf("entries done %d out of range [0,%d]", p.EntriesDone, p.EntriesTarget)
		}
		if p.DaysDone < 0 || p.DaysDone > p.DaysTarget {
			t.Fatalf("days done %d out of range [0,%d]", p.DaysDone, p.DaysTarget)
		}
		if p.EntriesTarget != EntriesTarget || p.DaysTarget != DaysTarget {
			t.Fatalf("targets changed: %+v", p)
		}
	}
}

func TestAngelNumberFor(t *testing.T) {
	if a := AngelNumberFor(777); a == nil || a.Meaning != "Spiritual Awakening" {
		t.Fatalf("777 lookup: got %+v", a)
	}
	if a := AngelNumberFor(778); a != nil {
		t.Fatalf("778 should not be an angel number, got %+v", a)
	}
}
