package progression

import (
	"fmt"
	"time"
)

// ISOWeek formats t as an ISO year-week token like "2026-W07". The ISO
// year can differ from the calendar year around January 1st.
func ISOWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// IsConsecutiveWeek reports whether curr is exactly the week after prev.
// The Dec→Jan boundary continues the streak: week 52 or 53 of year Y
// followed by week 1 of year Y+1 counts as consecutive.
func IsConsecutiveWeek(prev, curr string) bool {
	prevYear, prevWeek, okPrev := parseWeek(prev)
	currYear, currWeek, okCurr := parseWeek(curr)
	if !okPrev || !okCurr {
		return false
	}

	if currYear == prevYear {
		return currWeek == prevWeek+1
	}
	if currYear == prevYear+1 && currWeek == 1 {
		return prevWeek >= 52
	}
	return false
}

func parseWeek(token string) (year, week int, ok bool) {
	n, err := fmt.Sscanf(token, "%d-W%d", &year, &week)
	return year, week, err == nil && n == 2
}

// WeekStart returns Monday 00:00:00 of t's week, in t's location.
func WeekStart(t time.Time) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -daysSinceMonday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}

// MonthStart returns the first of t's month at 00:00:00, in t's location.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// StreakBonus is the nominal bonus for extending a streak to the given
// length, capped independently of the daily cap.
func StreakBonus(streak int) int {
	bonus := streak * SourceAmounts[SourceStreakBonus]
	if bonus > StreakBonusCap {
		bonus = StreakBonusCap
	}
	return bonus
}
