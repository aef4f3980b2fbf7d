package leaderboard

import "time"

// Aggregator defines the read-only leaderboard queries.
type Aggregator interface {
	// GetLeaderboard returns up to limit ranked entries for the period,
	// optionally filtered to one city. now anchors the weekly/monthly
	// window start.
	GetLeaderboard(period Period, city string, limit int, now time.Time) ([]Entry, error)
	// GetPlayerRank returns the player's rank and the filtered list
	// size, or nil if the player is not ranked.
	GetPlayerRank(userID string, period Period, city string, now time.Time) (*PlayerRank, error)
}
