// Package model contains the bracket domain models passed between layers.
package model

import (
	"fmt"
	"sort"

	"github.com/okian/bracketev/internal/domain/bracket"
)

// Team is one row of the forecast table.
type Team struct {
	Name   string  // unique team name
	Slot   int     // folded bracket slot
	Seed   int     // regional seed, 1 is best
	Rating float64 // power rating
	// ReachProbability[k] is the chance the team is still alive in round k+1.
	ReachProbability []float64
}

// Table is the immutable, slot-indexed forecast table.
type Table struct {
	teams  []Team
	bySlot map[int]int
	byName map[string]int
	rounds int
}

// NewTable validates teams and builds a Table. Teams may be passed in any
// order; they are sorted by slot. The table must hold a power-of-two number
// of teams occupying slots 0..n-1 with unique names.
func NewTable(teams []Team) (*Table, error) {
	rounds, err := bracket.RoundsFor(len(teams))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataConsistency, err)
	}

	sorted := make([]Team, len(teams))
	copy(sorted, teams)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Slot < sorted[j].Slot })

	t := &Table{
		teams:  sorted,
		bySlot: make(map[int]int, len(sorted)),
		byName: make(map[string]int, len(sorted)),
		rounds: rounds,
	}
	for i := range sorted {
		tm := &sorted[i]
		if tm.Name == "" {
			return nil, fmt.Errorf("%w: slot %d has no team name", ErrDataConsistency, tm.Slot)
		}
		if tm.Slot != i {
			return nil, fmt.Errorf("%w: expected slot %d, found %d (%s)", ErrDataConsistency, i, tm.Slot, tm.Name)
		}
		if _, dup := t.byName[tm.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate team %q", ErrDataConsistency, tm.Name)
		}
		if len(tm.ReachProbability) < rounds {
			return nil, fmt.Errorf("%w: team %q has %d round probabilities, need %d",
				ErrDataConsistency, tm.Name, len(tm.ReachProbability), rounds)
		}
		probs := make([]float64, len(tm.ReachProbability))
		copy(probs, tm.ReachProbability)
		tm.ReachProbability = probs

		t.bySlot[tm.Slot] = i
		t.byName[tm.Name] = i
	}
	return t, nil
}

// Len returns the number of teams.
func (t *Table) Len() int { return len(t.teams) }

// Rounds returns the number of rounds needed to crown a champion.
func (t *Table) Rounds() int { return t.rounds }

// Team returns the team occupying slot.
func (t *Table) Team(slot int) (Team, error) {
	i, ok := t.bySlot[slot]
	if !ok {
		return Team{}, fmt.Errorf("%w: no team in slot %d", ErrDataConsistency, slot)
	}
	return t.teams[i], nil
}

// Lookup returns the team with the given name.
func (t *Table) Lookup(name string) (Team, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Team{}, false
	}
	return t.teams[i], true
}

// Teams returns a copy of all teams in slot order.
func (t *Table) Teams() []Team {
	out := make([]Team, len(t.teams))
	copy(out, t.teams)
	return out
}

// Names returns the team names in slot order.
func (t *Table) Names() []string {
	out := make([]string, len(t.teams))
	for i, tm := range t.teams {
		out[i] = tm.Name
	}
	return out
}
