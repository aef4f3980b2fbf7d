package progression

import (
	"database/sql"
	"sync"
	"time"
)

// XPSource is the enumerated reason code attached to every ledger entry.
type XPSource string

const (
	SourceMatchPlayed     XPSource = "match_played"
	SourceConfirmH24      XPSource = "confirm_h24"
	SourceFirstMatchWeek  XPSource = "first_match_week"
	SourceSecondMatchWeek XPSource = "second_match_week"
	SourceStreakBonus     XPSource = "streak_bonus"
	SourceNewCity         XPSource = "new_city"
	SourceReferral        XPSource = "referral"
	SourceBadgeUnlock     XPSource = "badge_unlock"
)

// SourceAmounts holds the nominal XP value per source. The ledger clips
// against the daily cap, so the granted amount may be lower.
var SourceAmounts = map[XPSource]int{
	SourceMatchPlayed:     100,
	SourceConfirmH24:      15,
	SourceFirstMatchWeek:  25,
	SourceSecondMatchWeek: 50,
	SourceStreakBonus:     10, // per consecutive week, capped by StreakBonusCap
	SourceNewCity:         50,
	SourceReferral:        75,
	SourceBadgeUnlock:     50,
}

const (
	// DailyXPCap is the maximum XP grantable to one user per calendar day.
	DailyXPCap = 500
	// StreakBonusCap bounds a single streak bonus award, independent of the daily cap.
	StreakBonusCap = 100
)

// PlayerProgression is the aggregate gamification row for one user.
// total_xp equals the sum of that user's ledger entries at all times.
type PlayerProgression struct {
	UserID        string   `json:"user_id"`
	TotalXP       int      `json:"total_xp"`
	Level         int      `json:"level"`
	LevelName     string   `json:"level_name"`
	XPToday       int      `json:"xp_today"`
	XPTodayDate   string   `json:"xp_today_date"`
	CurrentStreak int      `json:"current_streak"`
	BestStreak    int      `json:"best_streak"`
	LastMatchWeek string   `json:"last_match_week"`
	CitiesPlayed  []string `json:"cities_played"`
}

// XPTransaction is one immutable ledger entry. Amount is the granted
// amount after cap clipping, never the nominal rule amount.
type XPTransaction struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Source    XPSource       `json:"source"`
	Amount    int            `json:"xp_amount"`
	MatchID   string         `json:"match_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// StreakUpdate is the outcome of one streak transition.
type StreakUpdate struct {
	Current     int
	Best        int
	WeekChanged bool
}

// PlayerProfile is the display row joined onto leaderboards.
type PlayerProfile struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	City      string `json:"city,omitempty"`
	Role      string `json:"role"`
}

// store handles all progression database operations. Aggregate reads and
// writes for one user are serialized through a per-user lock so the
// read-modify-write award path cannot race with itself.
type store struct {
	db    *sql.DB
	locks *userLocks
}

// userLocks hands out one mutex per user id.
type userLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{m: make(map[string]*sync.Mutex)}
}

func (l *userLocks) lock(userID string) *sync.Mutex {
	l.mu.Lock()
	mu, ok := l.m[userID]
	if !ok {
		mu = &sync.Mutex{}
		l.m[userID] = mu
	}
	l.mu.Unlock()
	mu.Lock()
	return mu
}
