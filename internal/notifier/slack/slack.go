package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matchpulse/progression-engine/internal/leaderboard"
	"github.com/matchpulse/progression-engine/internal/metrics"
	"github.com/matchpulse/progression-engine/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// SendLevelUp announces a player's new level in the configured channel.
func (s *Notifier) SendLevelUp(event notifier.LevelUpEvent, dryRun bool) error {
	msg := s.formatLevelUp(event)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// SendBadgeUnlock announces a freshly unlocked badge.
func (s *Notifier) SendBadgeUnlock(event notifier.BadgeUnlockEvent, dryRun bool) error {
	msg := s.formatBadgeUnlock(event)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// SendLeaderboardDigest posts the current standings for a period.
func (s *Notifier) SendLeaderboardDigest(period leaderboard.Period, entries []leaderboard.Entry, dryRun bool) error {
	msg := s.formatLeaderboardDigest(period, entries)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// formatLevelUp creates the Slack message for a level-up using Block Kit.
func (s *Notifier) formatLevelUp(event notifier.LevelUpEvent) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "⚡ Level up! ⚡", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	bodyText := fmt.Sprintf("%s reached *Level %d: %s*", event.PlayerName, event.Level, event.LevelName)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", bodyText, false, false), nil, nil))

	contextText := fmt.Sprintf("Total XP: %d", event.TotalXP)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatBadgeUnlock creates the Slack message for a badge unlock using Block Kit.
func (s *Notifier) formatBadgeUnlock(event notifier.BadgeUnlockEvent) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏅 Badge unlocked! 🏅", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	bodyText := fmt.Sprintf("%s earned %s *%s* (%s %s)",
		event.PlayerName,
		event.Badge.Icon,
		event.Badge.ID,
		event.Badge.Tier,
		event.Badge.Category,
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", bodyText, false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboardDigest creates a Slack message to display the leaderboard standings.
func (s *Notifier) formatLeaderboardDigest(period leaderboard.Period, entries []leaderboard.Entry) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏆 Leaderboard (%s) 🏆", period), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(entries) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No XP earned yet. Go play some matches!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for _, entry := range entries {
		var medal string
		switch entry.Rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		entryText := fmt.Sprintf("%d. %s %s %s\n> XP: %d | Level %d (%s) | Badges: %d",
			entry.Rank,
			medal,
			entry.FirstName,
			entry.LastName,
			entry.XP,
			entry.Level,
			entry.LevelName,
			entry.BadgeCount,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", entryText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}
