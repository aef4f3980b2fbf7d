package leaderboard

import (
	"database/sql"

	"github.com/matchpulse/progression-engine/internal/badges"
)

// Period selects the aggregation window.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAllTime Period = "all_time"
)

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	switch p {
	case PeriodWeekly, PeriodMonthly, PeriodAllTime:
		return true
	}
	return false
}

// Entry is one ranked leaderboard row. Ranks are a dense 1..N sequence
// over the filtered result set.
type Entry struct {
	Rank       int    `json:"rank"`
	UserID     string `json:"user_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	City       string `json:"city,omitempty"`
	XP         int    `json:"xp"`
	Level      int    `json:"level"`
	LevelName  string `json:"level_name"`
	BadgeCount int    `json:"badge_count"`
}

// PlayerRank is a player's position within the full ranked list.
type PlayerRank struct {
	Rank  int `json:"rank"`
	Total int `json:"total"`
}

// aggregator computes ranked views on demand; it never mutates the store.
type aggregator struct {
	db         *sql.DB
	badgeStore badges.BadgeStore
}
