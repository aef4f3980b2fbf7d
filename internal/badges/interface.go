package badges

import "time"

// BadgeStore defines the interface for badge persistence.
type BadgeStore interface {
	GetUnlockedIDs(userID string) (map[string]struct{}, error)
	UpsertProgress(userID string, badgeID string, current, target int) error
	// InsertUnlock inserts the user-badge row exactly once. It reports
	// whether this call created the row; a concurrent or repeated unlock
	// attempt returns false.
	InsertUnlock(userID string, def Definition, at time.Time) (bool, error)

	GetUserBadges(userID string) ([]UserBadge, error)
	GetProgress(userID string) ([]Progress, error)
	CountBadges(userIDs []string) (map[string]int, error)
}

// ContextBuilder assembles the read-only snapshot a badge evaluation
// pass runs against.
type ContextBuilder interface {
	Build(userID string) (Context, error)
}
