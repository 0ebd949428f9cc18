// Package optimizer scores bracket pick assignments and improves them by
// greedy pairwise swaps.
package optimizer

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/okian/bracketev/internal/domain/model"
)

// TotalScore sums each assigned team's expected points for its pick. Teams
// are visited in name order so the floating-point result only depends on
// the assignment's contents.
func TotalScore(vectors model.ScoreVectors, a model.Assignment) (float64, error) {
	names := a.Names()
	points := make([]float64, 0, len(names))
	for _, name := range names {
		vec, ok := vectors[name]
		if !ok {
			return 0, fmt.Errorf("%w: no score vector for %q", model.ErrDataConsistency, name)
		}
		p, err := vec.At(a[name])
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		points = append(points, p)
	}
	return lo.Sum(points), nil
}

// Histogram counts how many teams are picked to survive each number of rounds.
func Histogram(a model.Assignment) map[int]int {
	return lo.CountValues(lo.Values(map[string]int(a)))
}
