package entries

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCreateEntry_EmptyTextRejectedBeforeStore(t *testing.T) {
	// Validation must trip before any store call: a nil DB would panic
	// if the service reached it.
	svc := NewService(nil)

	for _, text := range []string{"", "   ", "\n\t  "} {
		_, err := svc.CreateEntry(uuid.New(), CreateEntryRequest{EntryText: text})
		if !errors.Is(err, ErrEmptyEntryText) {
			t.Fatalf("text %q: got %v, want ErrEmptyEntryText", text, err)
		}
	}
}

func TestNextStreak(t *testing.T) {
	now := time.Date(2026, 5, 20, 14, 30, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	threeDaysAgo := now.AddDate(0, 0, -3)
	earlierToday := time.Date(2026, 5, 20, 0, 5, 0, 0, time.UTC)

	cases := []struct {
		name    string
		current int
		last    *time.Time
		want    int
	}{
		{"first entry ever", 0, nil, 1},
		{"second entry same day", 4, &earlierToday, 4},
		{"consecutive day extends", 4, &yesterday, 5},
		{"gap resets", 9, &threeDaysAgo, 1},
	}
	for _, tc := range cases {
		if got := nextStreak(tc.current, tc.last, now); got != tc.want {
			t.Errorf("%s: nextStreak = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestStreakFromDates(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 5, d, 10, 0, 0, 0, time.UTC)
	}

	cases := []struct {
		name  string
		times []time.Time
		want  int
	}{
		{"no entries", nil, 0},
		{"single entry", []time.Time{day(20)}, 1},
		{"three consecutive days", []time.Time{day(20), day(19), day(18)}, 3},
		{"run stops at gap", []time.Time{day(20), day(19), day(16), day(15)}, 2},
		{"same-day entries collapse", []time.Time{day(20), day(20), day(19)}, 2},
	}
	for _, tc := range cases {
		if got := streakFromDates(tc.times); got != tc.want {
			t.Errorf("%s: streakFromDates = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestStreakFromDatesAfterDeletingTodaysEntry(t *testing.T) {
	// Deleting today's only entry must not keep counting today: the
	// recomputed run ends at the newest remaining entry.
	times := []time.Time{
		time.Date(2026, 5, 19, 21, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 18, 7, 0, 0, 0, time.UTC),
	}
	if got := streakFromDates(times); got != 2 {
		t.Errorf("streakFromDates = %d, want 2", got)
	}
}

func TestNextStreakCrossesMidnight(t *testing.T) {
	// 23:59 yesterday followed by 00:01 today is consecutive even
	// though only two minutes passed.
	last := time.Date(2026, 5, 19, 23, 59, 0, 0, time.UTC)
	now := time.Date(2026, 5, 20, 0, 1, 0, 0, time.UTC)
	if got := nextStreak(2, &last, now); got != 3 {
		t.Errorf("nextStreak = %d, want 3", got)
	}
}
