package optimizer

import (
	"context"
	"fmt"

	"github.com/okian/bracketev/internal/domain/bracket"
	"github.com/okian/bracketev/internal/domain/model"
	"github.com/okian/bracketev/pkg/logger"
	"github.com/okian/bracketev/pkg/metrics"
)

// Swap describes an accepted exchange of picks. Winner was picked to
// survive Rounds rounds and beat Challenger in round Round+1; after the swap
// Challenger carries Rounds and Winner goes out in round Round+1.
type Swap struct {
	Winner     string
	Challenger string
	Round      int
	Rounds     int
	Before     float64
	After      float64
}

// pickSwap is an apply/undo pair over two assignment entries.
type pickSwap struct {
	a          model.Assignment
	winner     string
	challenger string
	round      int
	rounds     int
}

func (s pickSwap) apply() {
	s.a[s.challenger] = s.rounds
	s.a[s.winner] = s.round
}

func (s pickSwap) undo() {
	s.a[s.winner] = s.rounds
	s.a[s.challenger] = s.round
}

// Optimizer improves an assignment by first-improvement hill climbing over
// swaps between a team and an opponent it is picked to beat.
type Optimizer struct {
	table   *model.Table
	vectors model.ScoreVectors
	logger  logger.Logger
	onSwap  func(Swap)
}

// New creates an optimizer over a table and its score vectors.
func New(table *model.Table, vectors model.ScoreVectors, opts ...Option) *Optimizer {
	o := &Optimizer{
		table:   table,
		vectors: vectors,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// FindOneSwap scans slots in ascending order and, for each team, the rounds
// it is picked to win in ascending order. The first swap with an opponent
// picked to lose exactly in that round that strictly raises the total score
// is kept and reported. a is left untouched when no such swap exists.
func (o *Optimizer) FindOneSwap(ctx context.Context, a model.Assignment) (bool, error) {
	metrics.RecordOptimizerPass()

	before, err := TotalScore(o.vectors, a)
	if err != nil {
		metrics.RecordError("optimizer", "data_consistency")
		return false, err
	}

	for slot := 0; slot < o.table.Len(); slot++ {
		team, err := o.table.Team(slot)
		if err != nil {
			return false, err
		}
		rounds, ok := a[team.Name]
		if !ok {
			metrics.RecordError("optimizer", "data_consistency")
			return false, fmt.Errorf("%w: %q has no pick", model.ErrDataConsistency, team.Name)
		}

		for i := 0; i < rounds; i++ {
			for _, cs := range bracket.NewChallengers(slot, i+1) {
				challenger, err := o.table.Team(cs)
				if err != nil {
					return false, err
				}
				pick, ok := a[challenger.Name]
				if !ok {
					metrics.RecordError("optimizer", "data_consistency")
					return false, fmt.Errorf("%w: %q has no pick", model.ErrDataConsistency, challenger.Name)
				}
				if pick != i {
					continue
				}

				s := pickSwap{a: a, winner: team.Name, challenger: challenger.Name, round: i, rounds: rounds}
				s.apply()
				metrics.RecordSwapAttempt()
				after, err := TotalScore(o.vectors, a)
				if err != nil {
					s.undo()
					return false, err
				}
				if after > before {
					o.accepted(ctx, Swap{
						Winner:     team.Name,
						Challenger: challenger.Name,
						Round:      i,
						Rounds:     rounds,
						Before:     before,
						After:      after,
					})
					return true, nil
				}
				s.undo()
			}
		}
	}
	return false, nil
}

func (o *Optimizer) accepted(ctx context.Context, s Swap) {
	metrics.RecordSwapAccepted()
	o.logger.Debug(ctx, "swap accepted",
		logger.String("winner", s.Winner),
		logger.String("challenger", s.Challenger),
		logger.Int("round", s.Round+1),
		logger.Int("rounds", s.Rounds),
		logger.Float64("gain", s.After-s.Before),
	)
	if o.onSwap != nil {
		o.onSwap(s)
	}
}

// Optimize applies improving swaps until none is left and returns how many
// were applied. Every accepted swap strictly raises the total, so the loop
// terminates.
func (o *Optimizer) Optimize(ctx context.Context, a model.Assignment) (int, error) {
	swaps := 0
	for {
		if err := ctx.Err(); err != nil {
			return swaps, fmt.Errorf("optimization interrupted after %d swaps: %w", swaps, err)
		}
		found, err := o.FindOneSwap(ctx, a)
		if err != nil {
			return swaps, err
		}
		if !found {
			return swaps, nil
		}
		swaps++
	}
}

// FindOneSwap is a convenience wrapper around Optimizer.FindOneSwap.
func FindOneSwap(table *model.Table, vectors model.ScoreVectors, a model.Assignment) (bool, error) {
	return New(table, vectors).FindOneSwap(context.Background(), a)
}

// Optimize is a convenience wrapper around Optimizer.Optimize.
func Optimize(table *model.Table, vectors model.ScoreVectors, a model.Assignment) (int, error) {
	return New(table, vectors).Optimize(context.Background(), a)
}
