package badges_test

import (
	"testing"
	"time"

	"github.com/matchpulse/progression-engine/internal/badges"
	"github.com/matchpulse/progression-engine/internal/career"
	"github.com/matchpulse/progression-engine/internal/database"
	"github.com/matchpulse/progression-engine/internal/progression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	engine     *badges.Engine
	badgeStore badges.BadgeStore
	progStore  progression.Store
	career     career.Store
	teardown   func()
}

func setupEngine(t *testing.T) fixture {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	progStore := progression.New(db)
	careerStore := career.New(db)
	badgeStore := badges.NewStore(db)
	builder := badges.NewContextBuilder(careerStore, progStore)
	engine := badges.NewEngine(badgeStore, builder, progStore)

	return fixture{engine: engine, badgeStore: badgeStore, progStore: progStore, career: careerStore, teardown: teardown}
}

var evalTime = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func unlockIDs(defs []badges.Definition) []string {
	ids := make([]string, len(defs))
	for i, d := range defs {
		ids[i] = d.ID
	}
	return ids
}

func TestEvaluate_FirstMatchUnlock(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()

	require.NoError(t, f.career.ApplyResult("u1", career.MatchResult{Attended: true}))

	newly, err := f.engine.Evaluate("u1", "m1", evalTime)
	require.NoError(t, err)
	ids := unlockIDs(newly)
	assert.Contains(t, ids, "special_first_match")
	// One attended match out of one registered also satisfies the
	// reliability thresholds.
	assert.Contains(t, ids, "reliable_gold")
	assert.NotContains(t, ids, "player_bronze")
}

func TestEvaluate_GrantsUnlockBonusThroughLedger(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()

	require.NoError(t, f.career.ApplyResult("u1", career.MatchResult{Attended: true, MVP: true}))

	newly, err := f.engine.Evaluate("u1", "m1", evalTime)
	require.NoError(t, err)
	require.NotEmpty(t, newly)

	txns, err := f.progStore.GetTransactions("u1", 50)
	require.NoError(t, err)

	bonusCount := 0
	for _, tx := range txns {
		if tx.Source == progression.SourceBadgeUnlock {
			bonusCount++
			assert.Equal(t, "m1", tx.MatchID)
			assert.NotEmpty(t, tx.Metadata["badge_id"])
		}
	}
	assert.Equal(t, len(newly), bonusCount, "one bonus per unlocked badge")

	// Ledger-sum invariant holds after the bonuses.
	p, err := f.progStore.GetProgression("u1")
	require.NoError(t, err)
	sum, err := f.progStore.LedgerSum("u1")
	require.NoError(t, err)
	assert.Equal(t, p.TotalXP, sum)
}

func TestEvaluate_IsIdempotent(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()

	require.NoError(t, f.career.ApplyResult("u1", career.MatchResult{Attended: true}))

	first, err := f.engine.Evaluate("u1", "m1", evalTime)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	progressBefore, err := f.badgeStore.GetProgress("u1")
	require.NoError(t, err)

	second, err := f.engine.Evaluate("u1", "m1", evalTime)
	require.NoError(t, err)
	assert.Empty(t, second, "re-evaluating an unchanged snapshot unlocks nothing")

	progressAfter, err := f.badgeStore.GetProgress("u1")
	require.NoError(t, err)
	assert.Equal(t, progressBefore, progressAfter)
}

func TestEvaluate_UnlockBonusDoesNotCascade(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()

	require.NoError(t, f.career.ApplyResult("u1", career.MatchResult{Attended: true, MVP: true}))

	newly, err := f.engine.Evaluate("u1", "m1", evalTime)
	require.NoError(t, err)
	require.NotEmpty(t, newly)

	// The unlock bonuses landed in the ledger, but no second catalog
	// pass ran: the unlocked set is exactly the first pass's result and
	// the ledger holds exactly one bonus per unlock.
	unlocked, err := f.badgeStore.GetUserBadges("u1")
	require.NoError(t, err)
	assert.Len(t, unlocked, len(newly))

	count, err := f.progStore.CountSourceSince("u1", progression.SourceBadgeUnlock, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, len(newly), count)
}

func TestEvaluate_ProgressClampedToTarget(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()

	// 7 attended matches: beyond special_first_match's target of 1.
	for i := 0; i < 7; i++ {
		require.NoError(t, f.career.ApplyResult("u1", career.MatchResult{Attended: true}))
	}

	_, err := f.engine.Evaluate("u1", "", evalTime)
	require.NoError(t, err)

	progress, err := f.badgeStore.GetProgress("u1")
	require.NoError(t, err)

	for _, p := range progress {
		assert.LessOrEqual(t, p.Current, p.Target, "progress for %s must be clamped", p.BadgeID)
		if p.BadgeID == "player_bronze" {
			assert.Equal(t, 7, p.Current)
		}
	}
}

func TestEvaluate_UnlockIsPermanent(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()

	require.NoError(t, f.career.ApplyResult("u1", career.MatchResult{Attended: true}))
	_, err := f.engine.Evaluate("u1", "", evalTime)
	require.NoError(t, err)

	// A later attendance miss drops the rate below the reliability
	// targets, but the unlocked badges stay.
	require.NoError(t, f.career.ApplyResult("u1", career.MatchResult{Attended: false}))
	_, err = f.engine.Evaluate("u1", "", evalTime)
	require.NoError(t, err)

	unlocked, err := f.badgeStore.GetUnlockedIDs("u1")
	require.NoError(t, err)
	assert.Contains(t, unlocked, "reliable_gold")
}

func TestCountBadges(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()

	require.NoError(t, f.career.ApplyResult("u1", career.MatchResult{Attended: true}))
	_, err := f.engine.Evaluate("u1", "", evalTime)
	require.NoError(t, err)

	counts, err := f.badgeStore.CountBadges([]string{"u1", "u2"})
	require.NoError(t, err)
	assert.Greater(t, counts["u1"], 0)
	assert.Zero(t, counts["u2"])

	empty, err := f.badgeStore.CountBadges(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
