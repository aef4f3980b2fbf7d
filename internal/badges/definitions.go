package badges

import "math"

// Catalog is the full badge catalog, ordered by family. Targets are
// compared against the evaluator's value; reliability badges work on
// whole attendance percentage points.
var Catalog = []Definition{
	// Volume
	{ID: "player_bronze", Category: CategoryVolume, Tier: TierBronze, Icon: "⚽", Target: 10, Value: func(c Context) int { return c.TotalMatches }},
	{ID: "player_silver", Category: CategoryVolume, Tier: TierSilver, Icon: "⚽", Target: 50, Value: func(c Context) int { return c.TotalMatches }},
	{ID: "player_gold", Category: CategoryVolume, Tier: TierGold, Icon: "⚽", Target: 100, Value: func(c Context) int { return c.TotalMatches }},
	{ID: "marathoner_bronze", Category: CategoryVolume, Tier: TierBronze, Icon: "🏃", Target: 2, Value: func(c Context) int { return c.MatchesInOneDay }},
	{ID: "marathoner_silver", Category: CategoryVolume, Tier: TierSilver, Icon: "🏃", Target: 3, Value: func(c Context) int { return c.MatchesInOneDay }},
	{ID: "marathoner_gold", Category: CategoryVolume, Tier: TierGold, Icon: "🏃", Target: 4, Value: func(c Context) int { return c.MatchesInOneDay }},
	{ID: "habitual_bronze", Category: CategoryVolume, Tier: TierBronze, Icon: "📅", Target: 4, Value: func(c Context) int { return c.BestStreak }},
	{ID: "habitual_silver", Category: CategoryVolume, Tier: TierSilver, Icon: "📅", Target: 12, Value: func(c Context) int { return c.BestStreak }},
	{ID: "habitual_gold", Category: CategoryVolume, Tier: TierGold, Icon: "📅", Target: 26, Value: func(c Context) int { return c.BestStreak }},

	// Exploration
	{ID: "explorer_bronze", Category: CategoryExploration, Tier: TierBronze, Icon: "🌍", Target: 2, Value: func(c Context) int { return c.CitiesPlayed }},
	{ID: "explorer_silver", Category: CategoryExploration, Tier: TierSilver, Icon: "🌍", Target: 5, Value: func(c Context) int { return c.CitiesPlayed }},
	{ID: "explorer_gold", Category: CategoryExploration, Tier: TierGold, Icon: "🌍", Target: 10, Value: func(c Context) int { return c.CitiesPlayed }},

	// Social
	{ID: "organizer_fan_bronze", Category: CategorySocial, Tier: TierBronze, Icon: "🤝", Target: 10, Value: func(c Context) int { return c.DistinctOrganizers }},
	{ID: "organizer_fan_silver", Category: CategorySocial, Tier: TierSilver, Icon: "🤝", Target: 25, Value: func(c Context) int { return c.DistinctOrganizers }},

	// Reliability
	{ID: "reliable_bronze", Category: CategoryReliability, Tier: TierBronze, Icon: "✅", Target: 85, Value: attendancePct},
	{ID: "reliable_silver", Category: CategoryReliability, Tier: TierSilver, Icon: "✅", Target: 90, Value: attendancePct},
	{ID: "reliable_gold", Category: CategoryReliability, Tier: TierGold, Icon: "✅", Target: 95, Value: attendancePct},

	// Special
	{ID: "special_first_match", Category: CategorySpecial, Tier: TierGold, Icon: "🎉", Target: 1, Value: func(c Context) int { return c.TotalMatches }},
	{ID: "special_mvp_bronze", Category: CategorySpecial, Tier: TierBronze, Icon: "⭐", Target: 1, Value: func(c Context) int { return c.TotalMVP }},
	{ID: "special_mvp_silver", Category: CategorySpecial, Tier: TierSilver, Icon: "⭐", Target: 5, Value: func(c Context) int { return c.TotalMVP }},
	{ID: "special_mvp_gold", Category: CategorySpecial, Tier: TierGold, Icon: "⭐", Target: 10, Value: func(c Context) int { return c.TotalMVP }},
	{ID: "special_scorer_bronze", Category: CategorySpecial, Tier: TierBronze, Icon: "🎯", Target: 10, Value: func(c Context) int { return c.TotalGoals }},
	{ID: "special_scorer_silver", Category: CategorySpecial, Tier: TierSilver, Icon: "🎯", Target: 25, Value: func(c Context) int { return c.TotalGoals }},
	{ID: "special_scorer_gold", Category: CategorySpecial, Tier: TierGold, Icon: "🎯", Target: 50, Value: func(c Context) int { return c.TotalGoals }},
}

func attendancePct(c Context) int {
	return int(math.Round(c.AttendanceRate * 100))
}

// Lookup returns the catalog entry for an id, or nil.
func Lookup(id string) *Definition {
	for i := range Catalog {
		if Catalog[i].ID == id {
			return &Catalog[i]
		}
	}
	return nil
}
