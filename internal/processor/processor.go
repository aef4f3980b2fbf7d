package processor

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matchpulse/progression-engine/internal/badges"
	"github.com/matchpulse/progression-engine/internal/career"
	"github.com/matchpulse/progression-engine/internal/metrics"
	"github.com/matchpulse/progression-engine/internal/notifier"
	"github.com/matchpulse/progression-engine/internal/progression"
	"github.com/matchpulse/progression-engine/internal/pubsub"
)

// New creates a new Processor.
func New(
	prog progression.Store,
	careerStore career.Store,
	badgeEngine *badges.Engine,
	notif Notifier,
	metrics metrics.Metrics,
	counters metrics.MetricsStore,
	pubsub pubsub.PubSubClient,
) *Processor {
	return &Processor{
		prog:     prog,
		career:   careerStore,
		badges:   badgeEngine,
		notifier: notif,
		metrics:  metrics,
		counters: counters,
		pubsub:   pubsub,
	}
}

// ProcessMatchCompletion runs the full progression pipeline for one
// finalized match. Players are independent: a failure for one player is
// collected and the rest keep processing. The engine performs no retry
// and no whole-match idempotence; the caller must finalize a match
// exactly once.
func (p *Processor) ProcessMatchCompletion(matchID string, matchCtx MatchContext, attendees []Attendee, dryRun bool) error {
	log.Info("Processing match completion", "matchID", matchID, "city", matchCtx.City, "attendees", len(attendees))
	startTime := time.Now()

	var errs []error
	for _, attendee := range attendees {
		if err := p.processPlayer(matchID, matchCtx, attendee, dryRun); err != nil {
			log.Error("Failed to process player", "error", err, "matchID", matchID, "userID", attendee.UserID)
			errs = append(errs, fmt.Errorf("player %s: %w", attendee.UserID, err))
		}
	}

	p.metrics.IncMatchesProcessed()
	p.counters.Increment("matches_processed")
	p.metrics.ObserveProcessingDuration(time.Since(startTime).Seconds())
	log.Info("Finished processing match completion", "matchID", matchID, "failures", len(errs))
	return errors.Join(errs...)
}

// processPlayer runs the strictly ordered per-player sequence. The
// weekly bonus count in step 2 depends on step 1's ledger row already
// being written, and the badge context depends on everything before it.
func (p *Processor) processPlayer(matchID string, matchCtx MatchContext, attendee Attendee, dryRun bool) error {
	if !attendee.Attended {
		// Registered but absent: only the career aggregate moves.
		return p.career.ApplyResult(attendee.UserID, career.MatchResult{Attended: false})
	}

	userID := attendee.UserID
	at := matchCtx.Date

	before, err := p.prog.GetProgression(userID)
	if err != nil {
		return fmt.Errorf("failed to read progression: %w", err)
	}

	added, err := p.career.RecordAttendance(career.Attendance{
		MatchID:     matchID,
		UserID:      userID,
		OrganizerID: matchCtx.OrganizerID,
		City:        matchCtx.City,
		Date:        at,
		MVP:         attendee.MVP,
	})
	if err != nil {
		return fmt.Errorf("failed to record attendance: %w", err)
	}
	if !added {
		log.Warn("Attendance already recorded for this match, continuing", "matchID", matchID, "userID", userID)
	}

	if err := p.career.ApplyResult(userID, career.MatchResult{
		Attended: true,
		MVP:      attendee.MVP,
		Goals:    attendee.Goals,
		Assists:  attendee.Assists,
	}); err != nil {
		return fmt.Errorf("failed to apply match result: %w", err)
	}

	// Step 1: base match XP.
	granted, err := p.prog.Award(userID, progression.SourceMatchPlayed, progression.SourceAmounts[progression.SourceMatchPlayed], matchID, nil, at)
	if err != nil {
		return fmt.Errorf("failed to award match XP: %w", err)
	}
	p.metrics.AddXPAwarded(float64(granted))

	// Step 2: 1st/2nd match-of-week bonus, counted from ledger rows since
	// Monday including the one just written.
	weekCount, err := p.prog.CountSourceSince(userID, progression.SourceMatchPlayed, progression.WeekStart(at))
	if err != nil {
		return fmt.Errorf("failed to count weekly matches: %w", err)
	}
	var weeklySource progression.XPSource
	switch weekCount {
	case 1:
		weeklySource = progression.SourceFirstMatchWeek
	case 2:
		weeklySource = progression.SourceSecondMatchWeek
	}
	if weeklySource != "" {
		granted, err := p.prog.Award(userID, weeklySource, progression.SourceAmounts[weeklySource], matchID, nil, at)
		if err != nil {
			return fmt.Errorf("failed to award weekly bonus: %w", err)
		}
		p.metrics.AddXPAwarded(float64(granted))
	}

	// Step 3: new city.
	if matchCtx.City != "" {
		cityAdded, err := p.prog.AddCity(userID, matchCtx.City)
		if err != nil {
			return fmt.Errorf("failed to add city: %w", err)
		}
		if cityAdded {
			granted, err := p.prog.Award(userID, progression.SourceNewCity, progression.SourceAmounts[progression.SourceNewCity], matchID, map[string]any{"city": matchCtx.City}, at)
			if err != nil {
				return fmt.Errorf("failed to award new city XP: %w", err)
			}
			p.metrics.AddXPAwarded(float64(granted))
		}
	}

	// Step 4: streak transition and bonus.
	streak, err := p.prog.UpdateStreak(userID, progression.ISOWeek(at))
	if err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}
	if streak.WeekChanged && streak.Current > 1 {
		bonus := progression.StreakBonus(streak.Current)
		granted, err := p.prog.Award(userID, progression.SourceStreakBonus, bonus, matchID, map[string]any{"streak": streak.Current}, at)
		if err != nil {
			return fmt.Errorf("failed to award streak bonus: %w", err)
		}
		p.metrics.AddXPAwarded(float64(granted))
	}

	// Step 5: level-up detection against the pre-award snapshot.
	after, err := p.prog.GetProgression(userID)
	if err != nil {
		return fmt.Errorf("failed to re-read progression: %w", err)
	}
	if after.Level > before.Level {
		p.metrics.IncLevelUps()
		p.counters.Increment("level_ups")
		event := notifier.LevelUpEvent{
			UserID:     userID,
			PlayerName: p.playerName(userID),
			Level:      after.Level,
			LevelName:  after.LevelName,
			TotalXP:    after.TotalXP,
		}
		if err := p.notifier.SendLevelUp(event, dryRun); err != nil {
			log.Error("Failed to send level-up notification", "error", err, "userID", userID)
		}
		if !dryRun {
			if err := p.pubsub.SendMessage(pubsub.EventLevelUp, event); err != nil {
				log.Error("Failed to publish level-up event", "error", err, "userID", userID)
			}
		}
	}

	// Step 6: badge evaluation. Unlock bonuses go straight to the ledger
	// inside the engine and cannot trigger a second pass.
	newly, err := p.badges.Evaluate(userID, matchID, at)
	if err != nil {
		return fmt.Errorf("failed to evaluate badges: %w", err)
	}
	for _, def := range newly {
		p.metrics.IncBadgesUnlocked()
		p.counters.Increment("badges_unlocked")
		event := notifier.BadgeUnlockEvent{
			UserID:     userID,
			PlayerName: p.playerName(userID),
			Badge:      def,
		}
		if err := p.notifier.SendBadgeUnlock(event, dryRun); err != nil {
			log.Error("Failed to send badge unlock notification", "error", err, "userID", userID, "badgeID", def.ID)
		}
		if !dryRun {
			if err := p.pubsub.SendMessage(pubsub.EventBadgeUnlocked, event); err != nil {
				log.Error("Failed to publish badge unlock event", "error", err, "userID", userID, "badgeID", def.ID)
			}
		}
	}

	p.metrics.IncPlayersProcessed()
	log.Debug("Finished processing player", "matchID", matchID, "userID", userID, "totalXP", after.TotalXP, "level", after.Level, "unlocks", len(newly))
	return nil
}

// playerName resolves a display name for notifications, falling back to
// the raw user id.
func (p *Processor) playerName(userID string) string {
	player, err := p.prog.GetPlayer(userID)
	if err != nil || player == nil {
		return userID
	}
	if player.FirstName == "" && player.LastName == "" {
		return userID
	}
	if player.LastName == "" {
		return player.FirstName
	}
	return player.FirstName + " " + player.LastName
}
