package scoring

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/bracketev/internal/domain/bracket"
	"github.com/okian/bracketev/internal/domain/model"
	"github.com/okian/bracketev/pkg/logger"
	"github.com/okian/bracketev/pkg/metrics"
)

// ScoreVector computes the cumulative expected points for the team in slot.
//
// For round r the team can only score against opponents that first become
// reachable in that round. Each such opponent contributes the round's win
// value plus the upset bonus, weighted by the chance of beating it and the
// chance that it is still alive. The round total is then weighted by the
// team's own chance of being alive in round r.
func ScoreVector(table *model.Table, slot int) (model.ScoreVector, error) {
	self, err := table.Team(slot)
	if err != nil {
		return nil, err
	}

	rounds := table.Rounds()
	vec := make(model.ScoreVector, 1, rounds+1)
	total := 0.0
	for r := 1; r <= rounds; r++ {
		winValue := float64(int(1) << (r - 1))
		roundScore := 0.0
		for _, o := range bracket.NewChallengers(slot, r) {
			opp, err := table.Team(o)
			if err != nil {
				return nil, fmt.Errorf("scoring %s: %w", self.Name, err)
			}
			bonus := float64(SeedBonus(self.Seed, opp.Seed))
			roundScore += (winValue + bonus) * WinProbability(self.Rating, opp.Rating) * opp.ReachProbability[r-1]
		}
		total += self.ReachProbability[r-1] * roundScore
		vec = append(vec, total)
	}
	return vec, nil
}

// Calculator computes score vectors for a whole table.
type Calculator struct {
	workers int
	logger  logger.Logger
}

// NewCalculator creates a calculator with configuration options.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		workers: runtime.NumCPU(),
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ScoreVectors computes every team's score vector. Vectors are independent
// of each other, so they are computed concurrently; each goroutine owns one
// output index and the result does not depend on the worker count.
func (c *Calculator) ScoreVectors(ctx context.Context, table *model.Table) (model.ScoreVectors, error) {
	vectors := make([]model.ScoreVector, table.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for slot := 0; slot < table.Len(); slot++ {
		slot := slot
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			vec, err := ScoreVector(table, slot)
			if err != nil {
				metrics.RecordError("scoring", "data_consistency")
				return err
			}
			metrics.RecordScoreVector(float64(time.Since(start).Microseconds()) / 1000)
			vectors[slot] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(model.ScoreVectors, table.Len())
	for slot, name := range table.Names() {
		out[name] = vectors[slot]
	}
	c.logger.Debug(ctx, "score vectors computed",
		logger.Int("teams", table.Len()),
		logger.Int("workers", c.workers),
	)
	return out, nil
}
