// Package bracket models the topology of a single-elimination bracket.
//
// Slots are the leaves of a complete binary tree. Two slots meet in the
// round at which their lowest common ancestor sits, so every question about
// who can play whom reduces to comparing slot bit prefixes: the block of
// slots sharing a prefix with s after clearing its lowest r bits is exactly
// the sub-bracket s must come out of to reach round r+1.
package bracket

import (
	"errors"
	"fmt"
	"math/bits"
)

const (
	// NumRounds is the number of rounds in a full bracket.
	NumRounds = 6
	// NumSlots is the number of teams in a full bracket.
	NumSlots = 1 << NumRounds
)

// ErrBracketSize reports a team count that is not a power of two in [2, NumSlots].
var ErrBracketSize = errors.New("bracket size must be a power of two between 2 and 64")

// Range is a half-open span of slots [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of slots in the range.
func (r Range) Len() int { return r.End - r.Start }

// Contains reports whether slot lies in the range.
func (r Range) Contains(slot int) bool { return slot >= r.Start && slot < r.End }

// ValidSlot reports whether slot is a position in a full bracket.
func ValidSlot(slot int) bool { return slot >= 0 && slot < NumSlots }

// ChallengerRanges returns, for each round, the span of slots that slot's
// opponents may come from by that round. Range i covers 2^(i+1) slots and
// always contains slot itself.
func ChallengerRanges(slot int) [NumRounds]Range {
	var out [NumRounds]Range
	for i := 0; i < NumRounds; i++ {
		size := 2 << i
		start := slot &^ (size - 1)
		out[i] = Range{Start: start, End: start + size}
	}
	return out
}

// NewChallengers returns the slots that could first face slot in round
// (1-based): the lower sub-range first, then the upper one, each ascending.
func NewChallengers(slot, round int) []int {
	if round < 1 || round > NumRounds {
		return nil
	}
	ranges := ChallengerRanges(slot)
	prev := Range{Start: slot, End: slot + 1}
	if round > 1 {
		prev = ranges[round-2]
	}
	cur := ranges[round-1]

	out := make([]int, 0, cur.Len()-prev.Len())
	for s := cur.Start; s < prev.Start; s++ {
		out = append(out, s)
	}
	for s := prev.End; s < cur.End; s++ {
		out = append(out, s)
	}
	return out
}

// FirstMeetRound returns the 1-based round in which slots a and b would
// meet, or 0 when a == b.
func FirstMeetRound(a, b int) int {
	return bits.Len(uint(a ^ b))
}

// RoundsFor returns the number of rounds for a bracket of n teams.
func RoundsFor(n int) (int, error) {
	if n < 2 || n > NumSlots || n&(n-1) != 0 {
		return 0, fmt.Errorf("%w: got %d", ErrBracketSize, n)
	}
	return bits.TrailingZeros(uint(n)), nil
}
