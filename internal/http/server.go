package http

import (
	"net/http"

	"github.com/matchpulse/progression-engine/internal/badges"
	"github.com/matchpulse/progression-engine/internal/career"
	"github.com/matchpulse/progression-engine/internal/config"
	"github.com/matchpulse/progression-engine/internal/leaderboard"
	"github.com/matchpulse/progression-engine/internal/metrics"
	"github.com/matchpulse/progression-engine/internal/notifier"
	"github.com/matchpulse/progression-engine/internal/processor"
	"github.com/matchpulse/progression-engine/internal/progression"
	"github.com/matchpulse/progression-engine/internal/pubsub"
)

func NewServer(
	prog progression.Store,
	careerStore career.Store,
	badgeStore badges.BadgeStore,
	agg leaderboard.Aggregator,
	metricsSvc metrics.Metrics,
	metricsHandler http.Handler,
	counters metrics.MetricsStore,
	cfg config.Config,
	notif notifier.Notifier,
	proc *processor.Processor,
	pubsub pubsub.PubSubClient,
) *Server {
	server := &Server{
		Progression:    prog,
		Career:         careerStore,
		Badges:         badgeStore,
		Leaderboard:    agg,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Counters:       counters,
		Cfg:            cfg,
		Notifier:       notif,
		Processor:      proc,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/match-completed", Chain(s.MatchCompletedHandler(), paramsMiddleware))
	s.Router.Handle("/pubsub/match-completed", Chain(s.PubSubMatchCompletedHandler(), paramsMiddleware))
	s.Router.Handle("/award", Chain(s.AwardXPHandler(), paramsMiddleware))
	s.Router.Handle("/players", Chain(s.UpsertPlayersHandler(), paramsMiddleware))
	s.Router.Handle("/progression", Chain(s.GetProgressionHandler(), paramsMiddleware))
	s.Router.Handle("/badges", Chain(s.GetBadgesHandler(), paramsMiddleware))
	s.Router.Handle("/transactions", Chain(s.GetTransactionsHandler(), paramsMiddleware))
	s.Router.Handle("/career", Chain(s.GetCareerStatsHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.GetLeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/rank", Chain(s.GetPlayerRankHandler(), paramsMiddleware))
	s.Router.Handle("/counters", Chain(s.CountersHandler(), paramsMiddleware))
	s.Router.Handle("/notify/leaderboard", Chain(s.NotifyLeaderboardHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
