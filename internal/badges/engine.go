package badges

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/matchpulse/progression-engine/internal/progression"
)

// Engine evaluates the badge catalog for one player. It holds a
// progression.Awarder, not the full store: the unlock bonus goes
// straight to the ledger and cannot start another evaluation pass, so a
// badge-unlock bonus can never cascade into further unlocks within the
// same cycle.
type Engine struct {
	store   BadgeStore
	builder ContextBuilder
	ledger  progression.Awarder
}

// NewEngine creates a new badge Engine.
func NewEngine(store BadgeStore, builder ContextBuilder, ledger progression.Awarder) *Engine {
	return &Engine{store: store, builder: builder, ledger: ledger}
}

// Evaluate runs one full catalog pass for the user and returns the
// newly unlocked definitions. Already-unlocked badges are skipped
// entirely, which makes re-evaluation with an unchanged snapshot a
// no-op.
func (e *Engine) Evaluate(userID string, matchID string, at time.Time) ([]Definition, error) {
	ctx, err := e.builder.Build(userID)
	if err != nil {
		return nil, err
	}

	unlocked, err := e.store.GetUnlockedIDs(userID)
	if err != nil {
		return nil, err
	}

	var newlyUnlocked []Definition
	for _, def := range Catalog {
		if _, done := unlocked[def.ID]; done {
			continue
		}

		current := def.Value(ctx)
		clamped := current
		if clamped > def.Target {
			clamped = def.Target
		}
		if clamped < 0 {
			clamped = 0
		}
		if err := e.store.UpsertProgress(userID, def.ID, clamped, def.Target); err != nil {
			return newlyUnlocked, err
		}

		if current >= def.Target {
			inserted, err := e.store.InsertUnlock(userID, def, at)
			if err != nil {
				return newlyUnlocked, err
			}
			if inserted {
				newlyUnlocked = append(newlyUnlocked, def)
			}
		}
	}

	// Bonuses are granted after the full catalog pass, through the bare
	// ledger. The daily cap still applies.
	for _, def := range newlyUnlocked {
		granted, err := e.ledger.Award(
			userID,
			progression.SourceBadgeUnlock,
			progression.SourceAmounts[progression.SourceBadgeUnlock],
			matchID,
			map[string]any{"badge_id": def.ID},
			at,
		)
		if err != nil {
			log.Error("Failed to award badge unlock bonus", "error", err, "userID", userID, "badgeID", def.ID)
			continue
		}
		log.Debug("Granted badge unlock bonus", "userID", userID, "badgeID", def.ID, "granted", granted)
	}

	return newlyUnlocked, nil
}
