package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncMatchesProcessed()
	IncPlayersProcessed()
	AddXPAwarded(amount float64)
	IncBadgesUnlocked()
	IncLevelUps()
	ObserveProcessingDuration(duration float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}

// MetricsStore persists cumulative counters across restarts. Prometheus
// counters reset with the process; these survive it.
type MetricsStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
