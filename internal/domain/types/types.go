// Package types contains report-facing types shared across layers.
package types

// Pick is one line of the final assignment listing.
type Pick struct {
	Slot     int     `json:"slot"`
	Team     string  `json:"team"`
	Seed     int     `json:"seed"`
	Rounds   int     `json:"rounds"`
	Expected float64 `json:"expected"`
}

// RoundCount is one bucket of the pick histogram.
type RoundCount struct {
	Rounds int `json:"rounds"`
	Teams  int `json:"teams"`
}

// Summary describes one stage of a run.
type Summary struct {
	Stage     string       `json:"stage"`
	Total     float64      `json:"total"`
	Histogram []RoundCount `json:"histogram"`
}

// NewHistogram lists counts for every pick value 0..maxRounds in order,
// including empty buckets.
func NewHistogram(counts map[int]int, maxRounds int) []RoundCount {
	out := make([]RoundCount, 0, maxRounds+1)
	for r := 0; r <= maxRounds; r++ {
		out = append(out, RoundCount{Rounds: r, Teams: counts[r]})
	}
	return out
}
