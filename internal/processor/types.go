package processor

import (
	"time"

	"github.com/matchpulse/progression-engine/internal/badges"
	"github.com/matchpulse/progression-engine/internal/career"
	"github.com/matchpulse/progression-engine/internal/metrics"
	"github.com/matchpulse/progression-engine/internal/progression"
	"github.com/matchpulse/progression-engine/internal/pubsub"
)

// MatchContext carries the match-level facts needed for per-player
// progression.
type MatchContext struct {
	City        string    `json:"city"`
	Date        time.Time `json:"date"`
	OrganizerID string    `json:"organizer_id"`
}

// Attendee is one player's line from a finalized match.
type Attendee struct {
	UserID   string `json:"user_id"`
	Attended bool   `json:"attended"`
	MVP      bool   `json:"mvp"`
	Goals    int    `json:"goals"`
	Assists  int    `json:"assists"`
}

// Processor handles the business logic of turning a finalized match
// into progression state.
type Processor struct {
	prog     progression.Store
	career   career.Store
	badges   *badges.Engine
	notifier Notifier
	metrics  metrics.Metrics
	counters metrics.MetricsStore
	pubsub   pubsub.PubSubClient
}
