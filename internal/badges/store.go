package badges

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// NewStore creates a new badge store.
func NewStore(db *sql.DB) BadgeStore {
	return &store{db: db}
}

func (s *store) GetUnlockedIDs(userID string) (map[string]struct{}, error) {
	rows, err := s.db.Query("SELECT badge_id FROM user_badges WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query unlocked badges: %w", err)
	}
	defer rows.Close()

	unlocked := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		unlocked[id] = struct{}{}
	}
	return unlocked, nil
}

func (s *store) UpsertProgress(userID string, badgeID string, current, target int) error {
	_, err := s.db.Exec(`
		INSERT INTO badge_progress (user_id, badge_id, current, target, updated_at)
		VALUES (?, ?, ?, ?, strftime('%s', 'now'))
		ON CONFLICT(user_id, badge_id) DO UPDATE SET
			current = excluded.current,
			target = excluded.target,
			updated_at = excluded.updated_at;
	`, userID, badgeID, current, target)
	if err != nil {
		return fmt.Errorf("failed to upsert badge progress for %s/%s: %w", userID, badgeID, err)
	}
	return nil
}

func (s *store) InsertUnlock(userID string, def Definition, at time.Time) (bool, error) {
	// The primary key makes the unlock once-only even under concurrent
	// evaluation passes.
	res, err := s.db.Exec(`
		INSERT OR IGNORE INTO user_badges (user_id, badge_id, category, tier, unlocked_at)
		VALUES (?, ?, ?, ?, ?)
	`, userID, def.ID, string(def.Category), string(def.Tier), at.Unix())
	if err != nil {
		return false, fmt.Errorf("failed to insert badge unlock for %s/%s: %w", userID, def.ID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read unlock insert result: %w", err)
	}
	if rows > 0 {
		log.Info("Badge unlocked", "userID", userID, "badgeID", def.ID, "tier", def.Tier)
	}
	return rows > 0, nil
}

func (s *store) GetUserBadges(userID string) ([]UserBadge, error) {
	rows, err := s.db.Query(`
		SELECT badge_id, category, tier, unlocked_at FROM user_badges
		WHERE user_id = ? ORDER BY unlocked_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user badges: %w", err)
	}
	defer rows.Close()

	var badges []UserBadge
	for rows.Next() {
		var b UserBadge
		var category, tier string
		var unlockedAt int64
		if err := rows.Scan(&b.BadgeID, &category, &tier, &unlockedAt); err != nil {
			log.Error("Failed to scan user badge row", "error", err)
			continue
		}
		b.Category = Category(category)
		b.Tier = Tier(tier)
		b.UnlockedAt = time.Unix(unlockedAt, 0)
		badges = append(badges, b)
	}
	return badges, nil
}

func (s *store) GetProgress(userID string) ([]Progress, error) {
	rows, err := s.db.Query(`
		SELECT badge_id, current, target FROM badge_progress
		WHERE user_id = ? ORDER BY badge_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query badge progress: %w", err)
	}
	defer rows.Close()

	var progress []Progress
	for rows.Next() {
		var p Progress
		if err := rows.Scan(&p.BadgeID, &p.Current, &p.Target); err != nil {
			log.Error("Failed to scan badge progress row", "error", err)
			continue
		}
		progress = append(progress, p)
	}
	return progress, nil
}

// CountBadges returns the unlocked badge count per user for a batch of
// user ids, for leaderboard entries.
func (s *store) CountBadges(userIDs []string) (map[string]int, error) {
	counts := make(map[string]int)
	if len(userIDs) == 0 {
		return counts, nil
	}

	placeholders := strings.Repeat("?,", len(userIDs)-1) + "?"
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}

	rows, err := s.db.Query(`
		SELECT user_id, COUNT(*) FROM user_badges
		WHERE user_id IN (`+placeholders+`)
		GROUP BY user_id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count badges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}
	return counts, nil
}
