package badges

import (
	"database/sql"
	"time"
)

// Category groups related badges.
type Category string

const (
	CategoryVolume      Category = "volume"
	CategoryExploration Category = "exploration"
	CategorySocial      Category = "social"
	CategoryReliability Category = "reliability"
	CategorySpecial     Category = "special"
)

// Tier is the badge rank within its family.
type Tier string

const (
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

// Definition is one entry of the static badge catalog: tagged data plus
// a pure evaluator, no dispatch. The evaluator maps a context snapshot
// to the current numeric value compared against Target.
type Definition struct {
	ID       string
	Category Category
	Tier     Tier
	Icon     string
	Target   int
	Value    func(Context) int
}

// Context is the read-only snapshot a badge evaluation runs against.
type Context struct {
	TotalMatches       int
	TotalGoals         int
	TotalAssists       int
	TotalMVP           int
	AttendanceRate     float64
	CurrentStreak      int
	BestStreak         int
	CitiesPlayed       int
	MatchesInOneDay    int
	DistinctOrganizers int
}

// Progress is the persisted per-badge progress row, clamped to target.
type Progress struct {
	BadgeID string `json:"badge_id"`
	Current int    `json:"current"`
	Target  int    `json:"target"`
}

// UserBadge is one unlocked badge. Rows are append-only and never
// re-evaluated once present.
type UserBadge struct {
	BadgeID    string    `json:"badge_id"`
	Category   Category  `json:"category"`
	Tier       Tier      `json:"tier"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// store handles badge-related database operations.
type store struct {
	db *sql.DB
}
