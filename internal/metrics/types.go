package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	MatchesProcessed   prometheus.Counter
	PlayersProcessed   prometheus.Counter
	XPAwarded          prometheus.Counter
	BadgesUnlocked     prometheus.Counter
	LevelUps           prometheus.Counter
	ProcessingDuration prometheus.Histogram
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
