package progression

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/matchpulse/progression-engine/internal/leveling"
)

// New creates a new progression Store.
func New(db *sql.DB) Store {
	return &store{
		db:    db,
		locks: newUserLocks(),
	}
}

// Award is the single gateway for granting XP. It clips the nominal
// amount against the remaining daily budget, appends a ledger entry for
// the granted amount and recomputes the aggregate row, all in one SQL
// transaction under the user's lock. A fully clipped award writes
// nothing and returns 0.
func (s *store) Award(userID string, source XPSource, amount int, matchID string, metadata map[string]any, at time.Time) (int, error) {
	if amount <= 0 {
		return 0, nil
	}

	mu := s.locks.lock(userID)
	defer mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin award transaction: %w", err)
	}

	var totalXP, xpToday int
	var xpTodayDate string
	err = tx.QueryRow(
		"SELECT total_xp, xp_today, xp_today_date FROM player_progression WHERE user_id = ?",
		userID,
	).Scan(&totalXP, &xpToday, &xpTodayDate)
	if err != nil && err != sql.ErrNoRows {
		tx.Rollback()
		return 0, fmt.Errorf("failed to load progression for %s: %w", userID, err)
	}

	// A stored date from a previous day means the rolling counter is
	// logically zero; no reset job exists.
	today := at.Format("2006-01-02")
	if xpTodayDate != today {
		xpToday = 0
	}

	remaining := DailyXPCap - xpToday
	if remaining < 0 {
		remaining = 0
	}
	granted := amount
	if granted > remaining {
		granted = remaining
	}
	if granted <= 0 {
		tx.Rollback()
		log.Debug("Daily XP cap reached, award clipped to zero", "userID", userID, "source", source)
		return 0, nil
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to marshal award metadata: %w", err)
	}

	var matchRef any
	if matchID != "" {
		matchRef = matchID
	}
	_, err = tx.Exec(`
		INSERT INTO xp_transactions (id, user_id, source, xp_amount, match_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), userID, string(source), granted, matchRef, string(metaJSON), at.Unix())
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to append xp transaction: %w", err)
	}

	newTotal := totalXP + granted
	info := leveling.Compute(newTotal)
	_, err = tx.Exec(`
		INSERT INTO player_progression (user_id, total_xp, level, level_name, xp_today, xp_today_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			total_xp = excluded.total_xp,
			level = excluded.level,
			level_name = excluded.level_name,
			xp_today = excluded.xp_today,
			xp_today_date = excluded.xp_today_date,
			updated_at = excluded.updated_at;
	`, userID, newTotal, info.Level, info.Name, xpToday+granted, today, at.Unix())
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to update aggregate row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit award: %w", err)
	}

	log.Debug("Awarded XP", "userID", userID, "source", source, "nominal", amount, "granted", granted)
	return granted, nil
}

// GetProgression returns the aggregate row for a user. A user with no
// row yet gets a zero-value snapshot; the row itself is only created on
// the first successful award.
func (s *store) GetProgression(userID string) (*PlayerProgression, error) {
	var p PlayerProgression
	var citiesJSON string
	err := s.db.QueryRow(`
		SELECT user_id, total_xp, level, level_name, xp_today, xp_today_date, current_streak, best_streak, last_match_week, cities_played
		FROM player_progression WHERE user_id = ?
	`, userID).Scan(
		&p.UserID, &p.TotalXP, &p.Level, &p.LevelName, &p.XPToday, &p.XPTodayDate,
		&p.CurrentStreak, &p.BestStreak, &p.LastMatchWeek, &citiesJSON,
	)
	if err == sql.ErrNoRows {
		info := leveling.Compute(0)
		return &PlayerProgression{
			UserID:       userID,
			Level:        info.Level,
			LevelName:    info.Name,
			CitiesPlayed: []string{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progression for %s: %w", userID, err)
	}

	if err := json.Unmarshal([]byte(citiesJSON), &p.CitiesPlayed); err != nil {
		log.Error("Failed to unmarshal cities_played", "error", err, "userID", userID)
		p.CitiesPlayed = []string{}
	}
	return &p, nil
}

// GetTransactions returns the most recent ledger entries for a user.
func (s *store) GetTransactions(userID string, limit int) ([]XPTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, user_id, source, xp_amount, match_id, metadata, created_at
		FROM xp_transactions WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []XPTransaction
	for rows.Next() {
		var t XPTransaction
		var source, metaJSON string
		var matchID sql.NullString
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.UserID, &source, &t.Amount, &matchID, &metaJSON, &createdAt); err != nil {
			log.Error("Failed to scan transaction row", "error", err)
			continue
		}
		t.Source = XPSource(source)
		t.MatchID = matchID.String
		t.CreatedAt = time.Unix(createdAt, 0)
		if err := json.Unmarshal([]byte(metaJSON), &t.Metadata); err != nil {
			log.Error("Failed to unmarshal transaction metadata", "error", err, "transactionID", t.ID)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// CountSourceSince counts ledger entries of one source at or after the
// given instant. The weekly 1st/2nd-match bonus is decided from this.
func (s *store) CountSourceSince(userID string, source XPSource, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM xp_transactions
		WHERE user_id = ? AND source = ? AND created_at >= ?
	`, userID, string(source), since.Unix()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s transactions: %w", source, err)
	}
	return count, nil
}

// LedgerSum returns the sum of all granted amounts for a user. It must
// equal the aggregate row's total_xp at all times.
func (s *store) LedgerSum(userID string) (int, error) {
	var sum int
	err := s.db.QueryRow(
		"SELECT COALESCE(SUM(xp_amount), 0) FROM xp_transactions WHERE user_id = ?",
		userID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum ledger for %s: %w", userID, err)
	}
	return sum, nil
}

// UpdateStreak runs the weekly attendance state machine for one match
// week and persists the result. Multiple matches in the same week leave
// the streak untouched; a consecutive week extends it; anything else
// restarts it at 1. best_streak never decreases.
func (s *store) UpdateStreak(userID string, matchWeek string) (StreakUpdate, error) {
	mu := s.locks.lock(userID)
	defer mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return StreakUpdate{}, fmt.Errorf("failed to begin streak transaction: %w", err)
	}

	var current, best int
	var lastWeek string
	err = tx.QueryRow(
		"SELECT current_streak, best_streak, last_match_week FROM player_progression WHERE user_id = ?",
		userID,
	).Scan(&current, &best, &lastWeek)
	if err != nil && err != sql.ErrNoRows {
		tx.Rollback()
		return StreakUpdate{}, fmt.Errorf("failed to load streak state for %s: %w", userID, err)
	}

	switch {
	case lastWeek == "":
		current = 1
	case lastWeek == matchWeek:
		// Same week, streak unchanged.
	case IsConsecutiveWeek(lastWeek, matchWeek):
		current++
	default:
		current = 1
	}
	if current > best {
		best = current
	}

	info := leveling.Compute(0)
	_, err = tx.Exec(`
		INSERT INTO player_progression (user_id, level, level_name, current_streak, best_streak, last_match_week, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, strftime('%s', 'now'))
		ON CONFLICT(user_id) DO UPDATE SET
			current_streak = excluded.current_streak,
			best_streak = excluded.best_streak,
			last_match_week = excluded.last_match_week,
			updated_at = excluded.updated_at;
	`, userID, info.Level, info.Name, current, best, matchWeek)
	if err != nil {
		tx.Rollback()
		return StreakUpdate{}, fmt.Errorf("failed to persist streak for %s: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return StreakUpdate{}, fmt.Errorf("failed to commit streak update: %w", err)
	}

	update := StreakUpdate{Current: current, Best: best, WeekChanged: lastWeek != matchWeek}
	log.Debug("Updated streak", "userID", userID, "week", matchWeek, "streak", current, "best", best)
	return update, nil
}

// AddCity appends a city to the player's visited set. It reports whether
// the city was new; the caller awards new-city XP only in that case.
func (s *store) AddCity(userID string, city string) (bool, error) {
	mu := s.locks.lock(userID)
	defer mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin city transaction: %w", err)
	}

	var citiesJSON string
	cities := []string{}
	err = tx.QueryRow(
		"SELECT cities_played FROM player_progression WHERE user_id = ?",
		userID,
	).Scan(&citiesJSON)
	if err != nil && err != sql.ErrNoRows {
		tx.Rollback()
		return false, fmt.Errorf("failed to load cities for %s: %w", userID, err)
	}
	if err == nil {
		if uerr := json.Unmarshal([]byte(citiesJSON), &cities); uerr != nil {
			log.Error("Failed to unmarshal cities_played", "error", uerr, "userID", userID)
			cities = []string{}
		}
	}

	for _, c := range cities {
		if c == city {
			tx.Rollback()
			return false, nil
		}
	}

	cities = append(cities, city)
	updatedJSON, err := json.Marshal(cities)
	if err != nil {
		tx.Rollback()
		return false, fmt.Errorf("failed to marshal cities: %w", err)
	}

	info := leveling.Compute(0)
	_, err = tx.Exec(`
		INSERT INTO player_progression (user_id, level, level_name, cities_played, updated_at)
		VALUES (?, ?, ?, ?, strftime('%s', 'now'))
		ON CONFLICT(user_id) DO UPDATE SET
			cities_played = excluded.cities_played,
			updated_at = excluded.updated_at;
	`, userID, info.Level, info.Name, string(updatedJSON))
	if err != nil {
		tx.Rollback()
		return false, fmt.Errorf("failed to persist cities for %s: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit city update: %w", err)
	}
	return true, nil
}

// UpsertPlayers inserts or updates player profile rows.
func (s *store) UpsertPlayers(players []PlayerProfile) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin player upsert: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO players (id, first_name, last_name, avatar_url, city, role)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			avatar_url = excluded.avatar_url,
			city = excluded.city,
			role = excluded.role;
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare player upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range players {
		role := p.Role
		if role == "" {
			role = "player"
		}
		if _, err := stmt.Exec(p.ID, p.FirstName, p.LastName, p.AvatarURL, p.City, role); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// GetPlayer returns a player profile, or nil if the id is unknown.
func (s *store) GetPlayer(userID string) (*PlayerProfile, error) {
	var p PlayerProfile
	var avatarURL, city sql.NullString
	err := s.db.QueryRow(
		"SELECT id, first_name, last_name, avatar_url, city, role FROM players WHERE id = ?",
		userID,
	).Scan(&p.ID, &p.FirstName, &p.LastName, &avatarURL, &city, &p.Role)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player %s: %w", userID, err)
	}
	p.AvatarURL = avatarURL.String
	p.City = city.String
	return &p, nil
}

// Clear wipes all progression state. Intended for local development.
func (s *store) Clear() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin clear: %w", err)
	}

	for _, table := range []string{
		"xp_transactions", "player_progression", "badge_progress",
		"user_badges", "player_career_stats", "match_attendance", "players",
	} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}
