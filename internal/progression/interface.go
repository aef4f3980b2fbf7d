package progression

import "time"

// Awarder is the narrow write interface handed to collaborators that may
// grant XP but must never trigger another badge evaluation pass. The
// badge engine depends on this instead of the full store, which makes
// the no-cascade rule structural rather than conventional.
type Awarder interface {
	Award(userID string, source XPSource, amount int, matchID string, metadata map[string]any, at time.Time) (int, error)
}

// Store defines the interface for the progression ledger and aggregate state.
type Store interface {
	Awarder

	GetProgression(userID string) (*PlayerProgression, error)
	GetTransactions(userID string, limit int) ([]XPTransaction, error)
	CountSourceSince(userID string, source XPSource, since time.Time) (int, error)
	LedgerSum(userID string) (int, error)

	UpdateStreak(userID string, matchWeek string) (StreakUpdate, error)
	AddCity(userID string, city string) (bool, error)

	UpsertPlayers(players []PlayerProfile) error
	GetPlayer(userID string) (*PlayerProfile, error)

	Clear() error
}
