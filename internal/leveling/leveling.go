// Package leveling maps cumulative XP to player levels.
//
// The table below is the single source of truth for the level and
// level_name fields stored on the aggregate progression row: every code
// path that mutates total_xp recomputes both through Compute. Nothing
// else is allowed to assign them.
package leveling

// Level is one row of the fixed ascending level table.
type Level struct {
	Level        int
	Name         string
	CumulativeXP int
}

// Levels is ordered by CumulativeXP ascending, with the first threshold
// at zero so every non-negative XP total resolves to a level.
var Levels = []Level{
	{Level: 1, Name: "Rookie", CumulativeXP: 0},
	{Level: 2, Name: "Sunday Player", CumulativeXP: 300},
	{Level: 3, Name: "Regular", CumulativeXP: 800},
	{Level: 4, Name: "Mainstay", CumulativeXP: 1_600},
	{Level: 5, Name: "Warrior", CumulativeXP: 2_800},
	{Level: 6, Name: "Veteran", CumulativeXP: 4_600},
	{Level: 7, Name: "Titan", CumulativeXP: 7_100},
	{Level: 8, Name: "Legend", CumulativeXP: 10_600},
	{Level: 9, Name: "GOAT", CumulativeXP: 15_600},
}

// Info is the result of resolving a cumulative XP total against the table.
type Info struct {
	Level          int     `json:"level"`
	Name           string  `json:"level_name"`
	CurrentLevelXP int     `json:"current_level_xp"`
	NextLevelXP    *int    `json:"next_level_xp"`
	Progress       float64 `json:"progress"`
}

// Compute resolves totalXP to the highest level whose threshold is not
// above it. Progress is the fraction of the way to the next threshold,
// clamped to [0,1], or 1 at the top level.
func Compute(totalXP int) Info {
	if totalXP < 0 {
		totalXP = 0
	}

	current := Levels[0]
	var next *Level
	for i, lvl := range Levels {
		if totalXP >= lvl.CumulativeXP {
			current = lvl
			if i+1 < len(Levels) {
				next = &Levels[i+1]
			} else {
				next = nil
			}
		} else {
			break
		}
	}

	info := Info{
		Level:          current.Level,
		Name:           current.Name,
		CurrentLevelXP: current.CumulativeXP,
		Progress:       1,
	}
	if next != nil {
		info.NextLevelXP = &next.CumulativeXP
		span := next.CumulativeXP - current.CumulativeXP
		progress := float64(totalXP-current.CumulativeXP) / float64(span)
		if progress > 1 {
			progress = 1
		}
		info.Progress = progress
	}
	return info
}
