package notifier

import (
	"github.com/matchpulse/progression-engine/internal/badges"
	"github.com/matchpulse/progression-engine/internal/leaderboard"
)

// LevelUpEvent describes a player crossing a level threshold.
type LevelUpEvent struct {
	UserID     string
	PlayerName string
	Level      int
	LevelName  string
	TotalXP    int
}

// BadgeUnlockEvent describes a freshly unlocked badge.
type BadgeUnlockEvent struct {
	UserID     string
	PlayerName string
	Badge      badges.Definition
}

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For celebrating progression milestones
	SendLevelUp(event LevelUpEvent, dryRun bool) error
	SendBadgeUnlock(event BadgeUnlockEvent, dryRun bool) error
	// For the periodic leaderboard post
	SendLeaderboardDigest(period leaderboard.Period, entries []leaderboard.Entry, dryRun bool) error
}
