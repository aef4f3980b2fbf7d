package progression

import (
	"sync"
	"time"
)

// Mock is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	AwardFunc            func(userID string, source XPSource, amount int, matchID string, metadata map[string]any, at time.Time) (int, error)
	GetProgressionFunc   func(userID string) (*PlayerProgression, error)
	GetTransactionsFunc  func(userID string, limit int) ([]XPTransaction, error)
	CountSourceSinceFunc func(userID string, source XPSource, since time.Time) (int, error)
	LedgerSumFunc        func(userID string) (int, error)
	UpdateStreakFunc     func(userID string, matchWeek string) (StreakUpdate, error)
	AddCityFunc          func(userID string, city string) (bool, error)
	UpsertPlayersFunc    func(players []PlayerProfile) error
	GetPlayerFunc        func(userID string) (*PlayerProfile, error)

	// Call records
	AwardCalls []AwardCall
}

// AwardCall holds the arguments for a call to Award.
type AwardCall struct {
	UserID  string
	Source  XPSource
	Amount  int
	MatchID string
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AwardCalls = nil
}

func (m *Mock) Award(userID string, source XPSource, amount int, matchID string, metadata map[string]any, at time.Time) (int, error) {
	m.mu.Lock()
	m.AwardCalls = append(m.AwardCalls, AwardCall{UserID: userID, Source: source, Amount: amount, MatchID: matchID})
	m.mu.Unlock()
	if m.AwardFunc != nil {
		return m.AwardFunc(userID, source, amount, matchID, metadata, at)
	}
	return amount, nil
}

func (m *Mock) GetProgression(userID string) (*PlayerProgression, error) {
	if m.GetProgressionFunc != nil {
		return m.GetProgressionFunc(userID)
	}
	return &PlayerProgression{UserID: userID, Level: 1, LevelName: "Rookie", CitiesPlayed: []string{}}, nil
}

func (m *Mock) GetTransactions(userID string, limit int) ([]XPTransaction, error) {
	if m.GetTransactionsFunc != nil {
		return m.GetTransactionsFunc(userID, limit)
	}
	return nil, nil
}

func (m *Mock) CountSourceSince(userID string, source XPSource, since time.Time) (int, error) {
	if m.CountSourceSinceFunc != nil {
		return m.CountSourceSinceFunc(userID, source, since)
	}
	return 0, nil
}

func (m *Mock) LedgerSum(userID string) (int, error) {
	if m.LedgerSumFunc != nil {
		return m.LedgerSumFunc(userID)
	}
	return 0, nil
}

func (m *Mock) UpdateStreak(userID string, matchWeek string) (StreakUpdate, error) {
	if m.UpdateStreakFunc != nil {
		return m.UpdateStreakFunc(userID, matchWeek)
	}
	return StreakUpdate{Current: 1, Best: 1, WeekChanged: true}, nil
}

func (m *Mock) AddCity(userID string, city string) (bool, error) {
	if m.AddCityFunc != nil {
		return m.AddCityFunc(userID, city)
	}
	return false, nil
}

func (m *Mock) UpsertPlayers(players []PlayerProfile) error {
	if m.UpsertPlayersFunc != nil {
		return m.UpsertPlayersFunc(players)
	}
	return nil
}

func (m *Mock) GetPlayer(userID string) (*PlayerProfile, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(userID)
	}
	return nil, nil
}

func (m *Mock) Clear() error {
	return nil
}
