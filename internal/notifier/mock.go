package notifier

import (
	"sync"

	"github.com/matchpulse/progression-engine/internal/leaderboard"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendLevelUpCalls           []LevelUpEvent
	SendBadgeUnlockCalls       []BadgeUnlockEvent
	SendLeaderboardDigestCalls []leaderboard.Period

	// Spies
	SendLevelUpFunc           func(event LevelUpEvent, dryRun bool) error
	SendBadgeUnlockFunc       func(event BadgeUnlockEvent, dryRun bool) error
	SendLeaderboardDigestFunc func(period leaderboard.Period, entries []leaderboard.Entry, dryRun bool) error
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLevelUpCalls = nil
	m.SendBadgeUnlockCalls = nil
	m.SendLeaderboardDigestCalls = nil
}

func (m *Mock) SendLevelUp(event LevelUpEvent, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLevelUpCalls = append(m.SendLevelUpCalls, event)
	if m.SendLevelUpFunc != nil {
		return m.SendLevelUpFunc(event, dryRun)
	}
	return nil
}

func (m *Mock) SendBadgeUnlock(event BadgeUnlockEvent, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendBadgeUnlockCalls = append(m.SendBadgeUnlockCalls, event)
	if m.SendBadgeUnlockFunc != nil {
		return m.SendBadgeUnlockFunc(event, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboardDigest(period leaderboard.Period, entries []leaderboard.Entry, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardDigestCalls = append(m.SendLeaderboardDigestCalls, period)
	if m.SendLeaderboardDigestFunc != nil {
		return m.SendLeaderboardDigestFunc(period, entries, dryRun)
	}
	return nil
}
