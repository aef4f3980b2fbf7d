package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	matchesProcessed    int
	playersProcessed    int
	xpAwarded           float64
	badgesUnlocked      int
	levelUps            int
	processingDurations []float64
	slackNotifSent      int
	slackNotifFailed    int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		processingDurations: make([]float64, 0),
	}
}

func (m *Mock) IncMatchesProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesProcessed++
}

func (m *Mock) IncPlayersProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playersProcessed++
}

func (m *Mock) AddXPAwarded(amount float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.xpAwarded += amount
}

func (m *Mock) IncBadgesUnlocked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.badgesUnlocked++
}

func (m *Mock) IncLevelUps() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levelUps++
}

func (m *Mock) ObserveProcessingDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processingDurations = append(m.processingDurations, duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// MatchesProcessed returns the number of times IncMatchesProcessed was called.
func (m *Mock) MatchesProcessed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesProcessed
}

// PlayersProcessed returns the number of times IncPlayersProcessed was called.
func (m *Mock) PlayersProcessed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playersProcessed
}

// XPAwarded returns the running total passed to AddXPAwarded.
func (m *Mock) XPAwarded() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.xpAwarded
}

// BadgesUnlocked returns the number of times IncBadgesUnlocked was called.
func (m *Mock) BadgesUnlocked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.badgesUnlocked
}

// LevelUps returns the number of times IncLevelUps was called.
func (m *Mock) LevelUps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.levelUps
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
