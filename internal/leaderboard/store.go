package leaderboard

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matchpulse/progression-engine/internal/badges"
	"github.com/matchpulse/progression-engine/internal/progression"
)

const rankScanLimit = 1000

// New creates a new leaderboard Aggregator.
func New(db *sql.DB, badgeStore badges.BadgeStore) Aggregator {
	return &aggregator{db: db, badgeStore: badgeStore}
}

func (a *aggregator) GetLeaderboard(period Period, city string, limit int, now time.Time) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	if period == PeriodAllTime {
		return a.allTime(city, limit)
	}
	return a.windowed(period, city, limit, now)
}

func (a *aggregator) GetPlayerRank(userID string, period Period, city string, now time.Time) (*PlayerRank, error) {
	// A batch recomputation bounded to a large limit; no O(1) rank index
	// is kept at this scale.
	entries, err := a.GetLeaderboard(period, city, rankScanLimit, now)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.UserID == userID {
			return &PlayerRank{Rank: e.Rank, Total: len(entries)}, nil
		}
	}
	return nil, nil
}

// allTime ranks directly from the aggregate rows.
func (a *aggregator) allTime(city string, limit int) ([]Entry, error) {
	query := `
		SELECT pg.user_id, pg.total_xp, pg.level, pg.level_name,
		       p.first_name, p.last_name, p.avatar_url, p.city
		FROM player_progression pg
		JOIN players p ON p.id = pg.user_id
		WHERE p.role = 'player' AND pg.total_xp > 0`
	args := []any{}
	if city != "" {
		query += " AND p.city = ?"
		args = append(args, city)
	}
	query += " ORDER BY pg.total_xp DESC, pg.user_id ASC LIMIT ?"
	args = append(args, limit)

	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query all-time leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var avatarURL, entryCity sql.NullString
		if err := rows.Scan(&e.UserID, &e.XP, &e.Level, &e.LevelName, &e.FirstName, &e.LastName, &avatarURL, &entryCity); err != nil {
			log.Error("Failed to scan leaderboard row", "error", err)
			continue
		}
		e.AvatarURL = avatarURL.String
		e.City = entryCity.String
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}

	if err := a.attachBadgeCounts(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// windowed aggregates the ledger since the period start in memory, then
// resolves display profiles. Entries whose profile cannot be resolved
// are dropped and ranks renumbered, so the result is always dense 1..N.
func (a *aggregator) windowed(period Period, city string, limit int, now time.Time) ([]Entry, error) {
	var periodStart time.Time
	switch period {
	case PeriodWeekly:
		periodStart = progression.WeekStart(now)
	case PeriodMonthly:
		periodStart = progression.MonthStart(now)
	default:
		return nil, fmt.Errorf("unknown leaderboard period %q", period)
	}

	rows, err := a.db.Query(
		"SELECT user_id, xp_amount FROM xp_transactions WHERE created_at >= ?",
		periodStart.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger for %s leaderboard: %w", period, err)
	}
	defer rows.Close()

	xpByUser := make(map[string]int)
	for rows.Next() {
		var userID string
		var amount int
		if err := rows.Scan(&userID, &amount); err != nil {
			return nil, err
		}
		xpByUser[userID] += amount
	}
	if len(xpByUser) == 0 {
		return nil, nil
	}

	type userXP struct {
		userID string
		xp     int
	}
	sorted := make([]userXP, 0, len(xpByUser))
	for id, xp := range xpByUser {
		sorted = append(sorted, userXP{id, xp})
	}
	// XP descending, user id ascending on ties: deterministic regardless
	// of map iteration order.
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].xp != sorted[j].xp {
			return sorted[i].xp > sorted[j].xp
		}
		return sorted[i].userID < sorted[j].userID
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	userIDs := make([]string, len(sorted))
	for i, u := range sorted {
		userIDs[i] = u.userID
	}

	profiles, err := a.resolveProfiles(userIDs)
	if err != nil {
		return nil, err
	}
	levels, err := a.resolveLevels(userIDs)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	rank := 0
	for _, u := range sorted {
		profile, ok := profiles[u.userID]
		if !ok {
			continue // non-player or missing profile
		}
		if city != "" && profile.City != city {
			continue
		}

		rank++
		e := Entry{
			Rank:      rank,
			UserID:    u.userID,
			FirstName: profile.FirstName,
			LastName:  profile.LastName,
			AvatarURL: profile.AvatarURL,
			City:      profile.City,
			XP:        u.xp,
			Level:     1,
			LevelName: "Rookie",
		}
		if lvl, ok := levels[u.userID]; ok {
			e.Level = lvl.level
			e.LevelName = lvl.name
		}
		entries = append(entries, e)
	}

	if err := a.attachBadgeCounts(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

type profileRow struct {
	FirstName string
	LastName  string
	AvatarURL string
	City      string
}

func (a *aggregator) resolveProfiles(userIDs []string) (map[string]profileRow, error) {
	profiles := make(map[string]profileRow)
	if len(userIDs) == 0 {
		return profiles, nil
	}

	query := `
		SELECT id, first_name, last_name, avatar_url, city FROM players
		WHERE role = 'player' AND id IN (` + placeholders(len(userIDs)) + `)`
	rows, err := a.db.Query(query, toAnySlice(userIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve leaderboard profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var p profileRow
		var avatarURL, city sql.NullString
		if err := rows.Scan(&id, &p.FirstName, &p.LastName, &avatarURL, &city); err != nil {
			return nil, err
		}
		p.AvatarURL = avatarURL.String
		p.City = city.String
		profiles[id] = p
	}
	return profiles, nil
}

type levelRow struct {
	level int
	name  string
}

func (a *aggregator) resolveLevels(userIDs []string) (map[string]levelRow, error) {
	levels := make(map[string]levelRow)
	if len(userIDs) == 0 {
		return levels, nil
	}

	query := `
		SELECT user_id, level, level_name FROM player_progression
		WHERE user_id IN (` + placeholders(len(userIDs)) + `)`
	rows, err := a.db.Query(query, toAnySlice(userIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve leaderboard levels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var l levelRow
		if err := rows.Scan(&id, &l.level, &l.name); err != nil {
			return nil, err
		}
		levels[id] = l
	}
	return levels, nil
}

func (a *aggregator) attachBadgeCounts(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	userIDs := make([]string, len(entries))
	for i, e := range entries {
		userIDs[i] = e.UserID
	}
	counts, err := a.badgeStore.CountBadges(userIDs)
	if err != nil {
		return err
	}
	for i := range entries {
		entries[i].BadgeCount = counts[entries[i].UserID]
	}
	return nil
}

func placeholders(n int) string {
	return strings.Repeat("?,", n-1) + "?"
}

func toAnySlice(s []string) []any {
	a := make([]any, len(s))
	for i, v := range s {
		a[i] = v
	}
	return a
}
