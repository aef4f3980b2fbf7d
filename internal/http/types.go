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

type Server struct {
	Progression    progression.Store
	Career         career.Store
	Badges         badges.BadgeStore
	Leaderboard    leaderboard.Aggregator
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Counters       metrics.MetricsStore
	Cfg            config.Config
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
