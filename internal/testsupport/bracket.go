// Package testsupport builds synthetic forecast tables for tests.
package testsupport

import (
	"fmt"

	"github.com/okian/bracketev/internal/domain/bracket"
	"github.com/okian/bracketev/internal/domain/model"
)

// RegionSeeds is the standard seed order of one 16-team region, by slot.
var RegionSeeds = [16]int{1, 16, 8, 9, 5, 12, 4, 13, 6, 11, 3, 14, 7, 10, 2, 15}

// TeamName returns the synthetic name for slot.
func TeamName(slot int) string {
	return fmt.Sprintf("Team %02d", slot)
}

// Teams returns a full 64-team field. Ratings fall with seed and vary a
// little by region; reach probabilities shrink geometrically with seed.
func Teams() []model.Team {
	teams := make([]model.Team, bracket.NumSlots)
	for s := range teams {
		seed := RegionSeeds[s%16]
		region := s / 16
		survive := 0.95 - 0.05*float64(seed)
		probs := make([]float64, bracket.NumRounds)
		probs[0] = 1
		for k := 1; k < bracket.NumRounds; k++ {
			probs[k] = probs[k-1] * survive
		}
		teams[s] = model.Team{
			Name:             TeamName(s),
			Slot:             s,
			Seed:             seed,
			Rating:           95 - 1.5*float64(seed) + 0.75*float64(region),
			ReachProbability: probs,
		}
	}
	return teams
}

// Table returns the 64-team table built from Teams.
func Table() *model.Table {
	t, err := model.NewTable(Teams())
	if err != nil {
		panic(err)
	}
	return t
}

// ChalkAssignment picks the better seed to win every game, breaking seed
// ties by rating.
func ChalkAssignment(t *model.Table) model.Assignment {
	return Assign(t, func(a, b model.Team) bool {
		if a.Seed != b.Seed {
			return a.Seed < b.Seed
		}
		return a.Rating > b.Rating
	})
}

// UpsetAssignment picks the worse seed to win every game.
func UpsetAssignment(t *model.Table) model.Assignment {
	return Assign(t, func(a, b model.Team) bool {
		if a.Seed != b.Seed {
			return a.Seed > b.Seed
		}
		return a.Rating < b.Rating
	})
}

// Assign fills a legal bracket where wins(a, b) decides every game.
func Assign(t *model.Table, wins func(a, b model.Team) bool) model.Assignment {
	teams := t.Teams()
	a := make(model.Assignment, len(teams))
	var play func(lo, hi, round int) int
	play = func(lo, hi, round int) int {
		if hi-lo == 1 {
			a[teams[lo].Name] = 0
			return lo
		}
		mid := (lo + hi) / 2
		left := play(lo, mid, round-1)
		right := play(mid, hi, round-1)
		winner := left
		if wins(teams[right], teams[left]) {
			winner = right
		}
		a[teams[winner].Name] = round
		return winner
	}
	play(0, len(teams), t.Rounds())
	return a
}

// Legal reports whether every sub-bracket of size 2^r sends exactly one
// team past round r.
func Legal(t *model.Table, a model.Assignment) error {
	names := t.Names()
	for r := 1; r <= t.Rounds(); r++ {
		size := 1 << r
		for start := 0; start < len(names); start += size {
			survivors := 0
			for _, name := range names[start : start+size] {
				if a[name] >= r {
					survivors++
				}
			}
			if survivors != 1 {
				return fmt.Errorf("slots [%d,%d) send %d teams past round %d", start, start+size, survivors, r)
			}
		}
	}
	return nil
}
