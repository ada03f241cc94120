package eligibility

import "fmt"

// AngelNumber is cosmetic milestone copy tied to entry counts. Not
// load-bearing for any unlock decision.
type AngelNumber struct {
	Meaning     string `json:"meaning"`
	Description string `json:"description"`
}

var angelNumbers = map[int]AngelNumber{
	111: {"New Beginnings", "You're manifesting a fresh start"},
	222: {"Balance & Harmony", "Your patterns are aligning"},
	333: {"Creative Growth", "The universe is supporting your journey"},
	444: {"Foundation & Stability", "You're building something lasting"},
	555: {"Transformation", "Change is unfolding beautifully"},
	666: {"Reflection & Realignment", "Time to check in with yourself"},
	777: {"Spiritual Awakening", "You're seeing the patterns now"},
	888: {"Abundance & Flow", "You're in alignment with your path"},
	999: {"Completion & Wisdom", "A cycle is coming full circle"},
}

// AngelNumberFor returns the milestone for n, or nil when n is not an
// angel number.
func AngelNumberFor(n int) *AngelNumber {
	if a, ok := angelNumbers[n]; ok {
		return &a
	}
	return nil
}

// StreakMilestone returns celebratory copy for notable streak lengths,
// or "" when the streak is not a milestone.
func StreakMilestone(streak int) string {
	switch streak {
	case 7:
		return "One week strong! The patterns are forming..."
	case 21:
		return "Three weeks! You're building a lasting practice"
	case 33:
		return fmt.Sprintf("%d days - master number energy!", streak)
	case 77:
		return fmt.Sprintf("%d days - divine alignment achieved!", streak)
	case 111:
		return fmt.Sprintf("%d days - new beginnings mastered!", streak)
	}
	return ""
}
