package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		MatchesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progression_matches_processed_total",
			Help: "The total number of completed matches processed.",
		}),
		PlayersProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progression_players_processed_total",
			Help: "The total number of per-player progression passes completed.",
		}),
		XPAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progression_xp_awarded_total",
			Help: "The total XP granted through the ledger, after cap clipping.",
		}),
		BadgesUnlocked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progression_badges_unlocked_total",
			Help: "The total number of badge unlocks recorded.",
		}),
		LevelUps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progression_level_ups_total",
			Help: "The total number of level-up transitions detected.",
		}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "progression_match_processing_duration_seconds",
			Help:    "The duration of individual match completion processing.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progression_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progression_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "progression_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.MatchesProcessed,
		s.PlayersProcessed,
		s.XPAwarded,
		s.BadgesUnlocked,
		s.LevelUps,
		s.ProcessingDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncMatchesProcessed() {
	s.MatchesProcessed.Inc()
}

func (s *Service) IncPlayersProcessed() {
	s.PlayersProcessed.Inc()
}

func (s *Service) AddXPAwarded(amount float64) {
	s.XPAwarded.Add(amount)
}

func (s *Service) IncBadgesUnlocked() {
	s.BadgesUnlocked.Inc()
}

func (s *Service) IncLevelUps() {
	s.LevelUps.Inc()
}

func (s *Service) ObserveProcessingDuration(duration float64) {
	s.ProcessingDuration.Observe(duration)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
