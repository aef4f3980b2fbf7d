package career

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
)

// New creates a new career Store.
func New(db *sql.DB) Store {
	return &store{db: db}
}

func (s *store) RecordAttendance(a Attendance) (bool, error) {
	mvp := 0
	if a.MVP {
		mvp = 1
	}
	res, err := s.db.Exec(`
		INSERT OR IGNORE INTO match_attendance (match_id, user_id, organizer_id, city, match_date, mvp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.MatchID, a.UserID, a.OrganizerID, a.City, a.Date.Unix(), mvp)
	if err != nil {
		return false, fmt.Errorf("failed to record attendance: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read attendance insert result: %w", err)
	}
	return rows > 0, nil
}

func (s *store) ApplyResult(userID string, result MatchResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin career update: %w", err)
	}

	attended, mvp := 0, 0
	goals, assists := 0, 0
	if result.Attended {
		attended = 1
		goals = result.Goals
		assists = result.Assists
		if result.MVP {
			mvp = 1
		}
	}

	_, err = tx.Exec(`
		INSERT INTO player_career_stats (user_id, total_matches, total_goals, total_assists, total_mvp, matches_registered, matches_attended)
		VALUES (?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			total_matches = total_matches + excluded.total_matches,
			total_goals = total_goals + excluded.total_goals,
			total_assists = total_assists + excluded.total_assists,
			total_mvp = total_mvp + excluded.total_mvp,
			matches_registered = matches_registered + 1,
			matches_attended = matches_attended + excluded.matches_attended;
	`, userID, attended, goals, assists, mvp, attended)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to upsert career stats for %s: %w", userID, err)
	}

	_, err = tx.Exec(`
		UPDATE player_career_stats
		SET attendance_rate = CAST(matches_attended AS REAL) / matches_registered
		WHERE user_id = ?
	`, userID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to recompute attendance rate for %s: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit career update: %w", err)
	}
	log.Debug("Applied match result to career stats", "userID", userID, "attended", result.Attended, "mvp", result.MVP)
	return nil
}

// GetStats returns the career aggregate, or a zero-value row for an
// unknown user.
func (s *store) GetStats(userID string) (*Stats, error) {
	var st Stats
	err := s.db.QueryRow(`
		SELECT user_id, total_matches, total_goals, total_assists, total_mvp, matches_registered, matches_attended, attendance_rate
		FROM player_career_stats WHERE user_id = ?
	`, userID).Scan(
		&st.UserID, &st.TotalMatches, &st.TotalGoals, &st.TotalAssists, &st.TotalMVP,
		&st.MatchesRegistered, &st.MatchesAttended, &st.AttendanceRate,
	)
	if err == sql.ErrNoRows {
		return &Stats{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load career stats for %s: %w", userID, err)
	}
	return &st, nil
}

func (s *store) MaxMatchesInOneDay(userID string) (int, error) {
	var max sql.NullInt64
	err := s.db.QueryRow(`
		SELECT MAX(c) FROM (
			SELECT COUNT(*) AS c FROM match_attendance
			WHERE user_id = ?
			GROUP BY date(match_date, 'unixepoch')
		)
	`, userID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to compute max matches in one day: %w", err)
	}
	return int(max.Int64), nil
}

func (s *store) DistinctOrganizers(userID string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(DISTINCT organizer_id) FROM match_attendance
		WHERE user_id = ? AND organizer_id != ''
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count distinct organizers: %w", err)
	}
	return count, nil
}
