// Package scoring computes expected bracket-pool points per team.
package scoring

import "math"

// ratingScale converts a power-rating gap into a base-10 logit.
const ratingScale = 30.464 / 400

// WinProbability returns the chance that a team rated ratingA beats a team
// rated ratingB on a neutral court.
func WinProbability(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, -(ratingA-ratingB)*ratingScale))
}

// SeedBonus returns the upset bonus earned when a team seeded self beats a
// team seeded opponent. Favourites earn nothing.
func SeedBonus(self, opponent int) int {
	return max(0, self-opponent)
}
