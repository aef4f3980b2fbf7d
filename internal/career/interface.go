package career

// Store defines the interface for career stats and the attendance log.
type Store interface {
	// RecordAttendance appends one attendance row. It reports whether the
	// row was new; a replayed (match, user) pair is ignored so derived
	// counters stay stable.
	RecordAttendance(a Attendance) (bool, error)
	// ApplyResult folds one finalized match line into the career aggregate.
	ApplyResult(userID string, result MatchResult) error

	GetStats(userID string) (*Stats, error)
	MaxMatchesInOneDay(userID string) (int, error)
	DistinctOrganizers(userID string) (int, error)
}
