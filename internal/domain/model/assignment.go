package model

import (
	"fmt"
	"sort"
)

// ScoreVector holds cumulative expected points for a team, indexed by the
// number of rounds it is picked to survive. Index 0 is always zero.
type ScoreVector []float64

// At returns the expected points for a pick of rounds survived.
func (v ScoreVector) At(rounds int) (float64, error) {
	if rounds < 0 || rounds >= len(v) {
		return 0, fmt.Errorf("%w: round %d outside score vector of length %d", ErrDataConsistency, rounds, len(v))
	}
	return v[rounds], nil
}

// ScoreVectors maps team name to its score vector.
type ScoreVectors map[string]ScoreVector

// Covers reports whether every team of the table has a vector of the
// expected length.
func (s ScoreVectors) Covers(t *Table) bool {
	for _, name := range t.Names() {
		v, ok := s[name]
		if !ok || len(v) != t.Rounds()+1 {
			return false
		}
	}
	return true
}

// Assignment maps team name to the number of rounds the entrant picks it to
// survive. It is mutated in place by the optimizer.
type Assignment map[string]int

// Clone returns an independent copy.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Names returns the assigned team names in ascending order.
func (a Assignment) Names() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
