package progression_test

import (
	"testing"
	"time"

	"github.com/matchpulse/progression-engine/internal/progression"
	"github.com/stretchr/testify/assert"
)

func TestISOWeek(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2026-02-09", "2026-W07"},
		{"2026-01-01", "2026-W01"},
		// Dec 29 2025 falls in ISO week 1 of 2026.
		{"2025-12-29", "2026-W01"},
		// 2026 is a 53-week ISO year.
		{"2026-12-28", "2026-W53"},
		{"2027-01-04", "2027-W01"},
	}

	for _, tt := range tests {
		d, err := time.Parse("2006-01-02", tt.date)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, progression.ISOWeek(d), "date %s", tt.date)
	}
}

func TestIsConsecutiveWeek(t *testing.T) {
	tests := []struct {
		prev, curr string
		want       bool
	}{
		{"2026-W06", "2026-W07", true},
		{"2026-W06", "2026-W08", false},
		{"2026-W07", "2026-W06", false},
		{"2026-W07", "2026-W07", false},
		// Year boundary: weeks 52 and 53 both roll into week 1.
		{"2025-W52", "2026-W01", true},
		{"2026-W53", "2027-W01", true},
		{"2026-W51", "2027-W01", false},
		{"2025-W52", "2027-W01", false},
		{"garbage", "2026-W01", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, progression.IsConsecutiveWeek(tt.prev, tt.curr), "%s -> %s", tt.prev, tt.curr)
	}
}

func TestWeekStart(t *testing.T) {
	// Thursday Feb 12 2026 -> Monday Feb 9.
	d := time.Date(2026, 2, 12, 15, 30, 0, 0, time.UTC)
	monday := progression.WeekStart(d)
	assert.Equal(t, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), monday)

	// Sunday belongs to the week started the previous Monday.
	sunday := time.Date(2026, 2, 15, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), progression.WeekStart(sunday))

	// A Monday is its own week start.
	assert.Equal(t, monday, progression.WeekStart(monday))
}

func TestMonthStart(t *testing.T) {
	d := time.Date(2026, 2, 12, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), progression.MonthStart(d))
}

func TestStreakBonus(t *testing.T) {
	assert.Equal(t, 20, progression.StreakBonus(2))
	assert.Equal(t, 100, progression.StreakBonus(10))
	// Capped independently of the daily cap.
	assert.Equal(t, 100, progression.StreakBonus(26))
}
