package badges_test

import (
	"testing"

	"github.com/matchpulse/progression-engine/internal/badges"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_IDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for _, def := range badges.Catalog {
		_, dup := seen[def.ID]
		assert.False(t, dup, "duplicate badge id %s", def.ID)
		seen[def.ID] = struct{}{}
	}
}

func TestCatalog_DefinitionsAreWellFormed(t *testing.T) {
	validCategories := map[badges.Category]struct{}{
		badges.CategoryVolume: {}, badges.CategoryExploration: {},
		badges.CategorySocial: {}, badges.CategoryReliability: {}, badges.CategorySpecial: {},
	}
	validTiers := map[badges.Tier]struct{}{
		badges.TierBronze: {}, badges.TierSilver: {}, badges.TierGold: {},
	}

	for _, def := range badges.Catalog {
		assert.NotEmpty(t, def.ID)
		assert.Contains(t, validCategories, def.Category, "badge %s", def.ID)
		assert.Contains(t, validTiers, def.Tier, "badge %s", def.ID)
		assert.Positive(t, def.Target, "badge %s", def.ID)
		require.NotNil(t, def.Value, "badge %s needs an evaluator", def.ID)
	}
}

func TestCatalog_EvaluatorsArePure(t *testing.T) {
	ctx := badges.Context{
		TotalMatches:       12,
		TotalGoals:         30,
		TotalMVP:           2,
		AttendanceRate:     0.92,
		BestStreak:         5,
		CitiesPlayed:       3,
		MatchesInOneDay:    2,
		DistinctOrganizers: 11,
	}

	for _, def := range badges.Catalog {
		first := def.Value(ctx)
		second := def.Value(ctx)
		assert.Equal(t, first, second, "evaluator for %s must be deterministic", def.ID)
	}

	// Attendance is evaluated in whole percentage points.
	reliable := badges.Lookup("reliable_silver")
	require.NotNil(t, reliable)
	assert.Equal(t, 92, reliable.Value(ctx))
}

func TestLookup(t *testing.T) {
	def := badges.Lookup("explorer_bronze")
	require.NotNil(t, def)
	assert.Equal(t, badges.CategoryExploration, def.Category)

	assert.Nil(t, badges.Lookup("does_not_exist"))
}
