package badges

import (
	"fmt"

	"github.com/matchpulse/progression-engine/internal/career"
	"github.com/matchpulse/progression-engine/internal/progression"
)

// contextBuilder assembles evaluation snapshots from the career and
// progression collaborators.
type contextBuilder struct {
	careerStore career.Store
	progStore   progression.Store
}

// NewContextBuilder creates a ContextBuilder over the given collaborators.
func NewContextBuilder(careerStore career.Store, progStore progression.Store) ContextBuilder {
	return &contextBuilder{careerStore: careerStore, progStore: progStore}
}

func (b *contextBuilder) Build(userID string) (Context, error) {
	stats, err := b.careerStore.GetStats(userID)
	if err != nil {
		return Context{}, fmt.Errorf("failed to build badge context: %w", err)
	}
	prog, err := b.progStore.GetProgression(userID)
	if err != nil {
		return Context{}, fmt.Errorf("failed to build badge context: %w", err)
	}
	maxDay, err := b.careerStore.MaxMatchesInOneDay(userID)
	if err != nil {
		return Context{}, fmt.Errorf("failed to build badge context: %w", err)
	}
	organizers, err := b.careerStore.DistinctOrganizers(userID)
	if err != nil {
		return Context{}, fmt.Errorf("failed to build badge context: %w", err)
	}

	return Context{
		TotalMatches:       stats.TotalMatches,
		TotalGoals:         stats.TotalGoals,
		TotalAssists:       stats.TotalAssists,
		TotalMVP:           stats.TotalMVP,
		AttendanceRate:     stats.AttendanceRate,
		CurrentStreak:      prog.CurrentStreak,
		BestStreak:         prog.BestStreak,
		CitiesPlayed:       len(prog.CitiesPlayed),
		MatchesInOneDay:    maxDay,
		DistinctOrganizers: organizers,
	}, nil
}
