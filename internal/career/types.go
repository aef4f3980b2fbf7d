package career

import (
	"database/sql"
	"time"
)

// Stats is the career aggregate for one player, maintained from
// finalized match results.
type Stats struct {
	UserID            string  `json:"user_id"`
	TotalMatches      int     `json:"total_matches"`
	TotalGoals        int     `json:"total_goals"`
	TotalAssists      int     `json:"total_assists"`
	TotalMVP          int     `json:"total_mvp"`
	MatchesRegistered int     `json:"matches_registered"`
	MatchesAttended   int     `json:"matches_attended"`
	AttendanceRate    float64 `json:"attendance_rate"`
}

// MatchResult is one player's line from a finalized match.
type MatchResult struct {
	Attended bool
	MVP      bool
	Goals    int
	Assists  int
}

// Attendance is one row of the per-match attendance log, the source for
// derived badge counters (max matches in one day, distinct organizers).
type Attendance struct {
	MatchID     string
	UserID      string
	OrganizerID string
	City        string
	Date        time.Time
	MVP         bool
}

// store handles career-related database operations.
type store struct {
	db *sql.DB
}
