package progression_test

import (
	"sync"
	"testing"
	"time"

	"github.com/matchpulse/progression-engine/internal/database"
	"github.com/matchpulse/progression-engine/internal/progression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary in-memory SQLite database for testing.
func setupTestStore(t *testing.T) (progression.Store, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	return progression.New(db), teardown
}

var day1 = time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC) // Monday

func TestAward_LazyCreatesAggregateRow(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	granted, err := store.Award("u1", progression.SourceMatchPlayed, 100, "m1", nil, day1)
	require.NoError(t, err)
	assert.Equal(t, 100, granted)

	p, err := store.GetProgression("u1")
	require.NoError(t, err)
	assert.Equal(t, 100, p.TotalXP)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, "Rookie", p.LevelName)
	assert.Equal(t, 100, p.XPToday)
	assert.Equal(t, "2026-02-09", p.XPTodayDate)
}

func TestAward_LedgerSumMatchesTotalXP(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	amounts := []int{100, 25, 50, 10, 75}
	for _, a := range amounts {
		_, err := store.Award("u1", progression.SourceMatchPlayed, a, "", nil, day1)
		require.NoError(t, err)
	}

	p, err := store.GetProgression("u1")
	require.NoError(t, err)
	sum, err := store.LedgerSum("u1")
	require.NoError(t, err)
	assert.Equal(t, p.TotalXP, sum, "sum of ledger entries must equal total_xp")
	assert.Equal(t, 260, sum)
}

func TestAward_DailyCapClipsGrant(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	_, err := store.Award("u1", progression.SourceMatchPlayed, 400, "", nil, day1)
	require.NoError(t, err)
	_, err = store.Award("u1", progression.SourceStreakBonus, 80, "", nil, day1)
	require.NoError(t, err)

	// xp_today is 480 of the 500 cap: a nominal 100 grants exactly 20.
	granted, err := store.Award("u1", progression.SourceMatchPlayed, 100, "", nil, day1)
	require.NoError(t, err)
	assert.Equal(t, 20, granted)

	// Any further same-day award grants 0 and writes no ledger entry.
	granted, err = store.Award("u1", progression.SourceNewCity, 50, "", nil, day1)
	require.NoError(t, err)
	assert.Equal(t, 0, granted)

	txns, err := store.GetTransactions("u1", 10)
	require.NoError(t, err)
	assert.Len(t, txns, 3)

	sum, err := store.LedgerSum("u1")
	require.NoError(t, err)
	assert.Equal(t, progression.DailyXPCap, sum)

	p, err := store.GetProgression("u1")
	require.NoError(t, err)
	assert.Equal(t, progression.DailyXPCap, p.TotalXP)
}

func TestAward_DailyCounterResetsOnNewDay(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	granted, err := store.Award("u1", progression.SourceMatchPlayed, 500, "", nil, day1)
	require.NoError(t, err)
	assert.Equal(t, 500, granted)

	granted, err = store.Award("u1", progression.SourceMatchPlayed, 100, "", nil, day1)
	require.NoError(t, err)
	assert.Equal(t, 0, granted, "cap is exhausted for the day")

	day2 := day1.AddDate(0, 0, 1)
	granted, err = store.Award("u1", progression.SourceMatchPlayed, 100, "", nil, day2)
	require.NoError(t, err)
	assert.Equal(t, 100, granted, "counter logically resets on date change")

	p, err := store.GetProgression("u1")
	require.NoError(t, err)
	assert.Equal(t, 600, p.TotalXP)
	assert.Equal(t, 100, p.XPToday)
}

func TestAward_LevelRecomputedInline(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	// 750 XP across two days resolves to level 2.
	_, err := store.Award("u1", progression.SourceMatchPlayed, 500, "", nil, day1)
	require.NoError(t, err)
	_, err = store.Award("u1", progression.SourceMatchPlayed, 250, "", nil, day1.AddDate(0, 0, 1))
	require.NoError(t, err)

	p, err := store.GetProgression("u1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, "Sunday Player", p.LevelName)

	// Crossing 800 must be reflected by the very next read.
	_, err = store.Award("u1", progression.SourceMatchPlayed, 100, "", nil, day1.AddDate(0, 0, 2))
	require.NoError(t, err)

	p, err = store.GetProgression("u1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Level)
	assert.Equal(t, "Regular", p.LevelName)
}

func TestAward_ZeroOrNegativeAmountIsNoOp(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	granted, err := store.Award("u1", progression.SourceMatchPlayed, 0, "", nil, day1)
	require.NoError(t, err)
	assert.Equal(t, 0, granted)

	granted, err = store.Award("u1", progression.SourceMatchPlayed, -5, "", nil, day1)
	require.NoError(t, err)
	assert.Equal(t, 0, granted)

	txns, err := store.GetTransactions("u1", 10)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestAward_ConcurrentAwardsKeepInvariant(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Award("u1", progression.SourceStreakBonus, 10, "", nil, day1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, err := store.GetProgression("u1")
	require.NoError(t, err)
	sum, err := store.LedgerSum("u1")
	require.NoError(t, err)
	assert.Equal(t, 200, p.TotalXP)
	assert.Equal(t, p.TotalXP, sum)
}

func TestUpdateStreak_StateMachine(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	// First match ever starts the streak at 1.
	up, err := store.UpdateStreak("u1", "2026-W05")
	require.NoError(t, err)
	assert.Equal(t, 1, up.Current)
	assert.Equal(t, 1, up.Best)
	assert.True(t, up.WeekChanged)

	// A second match in the same week does not inflate the streak.
	up, err = store.UpdateStreak("u1", "2026-W05")
	require.NoError(t, err)
	assert.Equal(t, 1, up.Current)
	assert.False(t, up.WeekChanged)

	// Consecutive weeks extend it.
	up, err = store.UpdateStreak("u1", "2026-W06")
	require.NoError(t, err)
	assert.Equal(t, 2, up.Current)
	assert.True(t, up.WeekChanged)

	up, err = store.UpdateStreak("u1", "2026-W07")
	require.NoError(t, err)
	assert.Equal(t, 3, up.Current)
	assert.Equal(t, 3, up.Best)

	// A gap of two weeks breaks it.
	up, err = store.UpdateStreak("u1", "2026-W09")
	require.NoError(t, err)
	assert.Equal(t, 1, up.Current)
	assert.Equal(t, 3, up.Best, "best streak is retained after a break")
}

func TestUpdateStreak_YearBoundary(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	_, err := store.UpdateStreak("u1", "2026-W52")
	require.NoError(t, err)
	up, err := store.UpdateStreak("u1", "2026-W53")
	require.NoError(t, err)
	assert.Equal(t, 2, up.Current)

	// Week 53 of a 53-week year continues into week 1.
	up, err = store.UpdateStreak("u1", "2027-W01")
	require.NoError(t, err)
	assert.Equal(t, 3, up.Current)

	// But an early-December week does not reach across.
	_, err = store.UpdateStreak("u2", "2026-W51")
	require.NoError(t, err)
	up, err = store.UpdateStreak("u2", "2027-W01")
	require.NoError(t, err)
	assert.Equal(t, 1, up.Current)
}

func TestUpdateStreak_SimulatedSeason(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	weeks := []string{"2026-W01", "2026-W02", "2026-W02", "2026-W03", "2026-W06", "2026-W07", "2026-W08", "2026-W09"}
	wantCurrent := []int{1, 2, 2, 3, 1, 2, 3, 4}
	wantBest := []int{1, 2, 2, 3, 3, 3, 3, 4}

	for i, w := range weeks {
		up, err := store.UpdateStreak("u1", w)
		require.NoError(t, err)
		assert.Equal(t, wantCurrent[i], up.Current, "current after %s", w)
		assert.Equal(t, wantBest[i], up.Best, "best after %s", w)
	}
}

func TestAddCity(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	added, err := store.AddCity("u1", "Lyon")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = store.AddCity("u1", "Lyon")
	require.NoError(t, err)
	assert.False(t, added, "a known city is not appended twice")

	added, err = store.AddCity("u1", "Paris")
	require.NoError(t, err)
	assert.True(t, added)

	p, err := store.GetProgression("u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lyon", "Paris"}, p.CitiesPlayed)
}

func TestCountSourceSince(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	lastWeek := day1.AddDate(0, 0, -7)
	_, err := store.Award("u1", progression.SourceMatchPlayed, 100, "m0", nil, lastWeek)
	require.NoError(t, err)
	_, err = store.Award("u1", progression.SourceMatchPlayed, 100, "m1", nil, day1)
	require.NoError(t, err)
	_, err = store.Award("u1", progression.SourceNewCity, 50, "m1", nil, day1)
	require.NoError(t, err)

	count, err := store.CountSourceSince("u1", progression.SourceMatchPlayed, progression.WeekStart(day1))
	require.NoError(t, err)
	assert.Equal(t, 1, count, "only this week's match_played rows count")
}

func TestGetProgression_UnknownUserIsZeroValue(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	p, err := store.GetProgression("nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, p.TotalXP)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, "Rookie", p.LevelName)
	assert.Empty(t, p.CitiesPlayed)
}

func TestUpsertAndGetPlayer(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	err := store.UpsertPlayers([]progression.PlayerProfile{
		{ID: "u1", FirstName: "Nina", LastName: "Moreau", City: "Lyon"},
		{ID: "org1", FirstName: "Marc", LastName: "Petit", Role: "organizer"},
	})
	require.NoError(t, err)

	p, err := store.GetPlayer("u1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Nina", p.FirstName)
	assert.Equal(t, "player", p.Role, "role defaults to player")

	org, err := store.GetPlayer("org1")
	require.NoError(t, err)
	require.NotNil(t, org)
	assert.Equal(t, "organizer", org.Role)

	missing, err := store.GetPlayer("ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
