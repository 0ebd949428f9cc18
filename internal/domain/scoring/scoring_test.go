package scoring_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/bracketev/internal/domain/model"
	"github.com/okian/bracketev/internal/domain/scoring"
	"github.com/okian/bracketev/internal/testsupport"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWinProbability(t *testing.T) {
	Convey("Given the rating-based win model", t, func() {
		Convey("When both teams share a rating", func() {
			Convey("Then the game is a coin flip", func() {
				for _, r := range []float64{-20, 0, 71.3, 100} {
					So(scoring.WinProbability(r, r), ShouldEqual, 0.5)
				}
			})
		})

		Convey("When the ratings differ", func() {
			Convey("Then the two win probabilities sum to one", func() {
				pairs := [][2]float64{{90, 70}, {70, 90}, {85.2, 84.9}, {-5, 12}}
				for _, p := range pairs {
					sum := scoring.WinProbability(p[0], p[1]) + scoring.WinProbability(p[1], p[0])
					So(sum, ShouldAlmostEqual, 1.0, 1e-12)
				}
			})

			Convey("And the stronger team is the favourite", func() {
				So(scoring.WinProbability(90, 80), ShouldBeGreaterThan, 0.5)
				So(scoring.WinProbability(80, 90), ShouldBeLessThan, 0.5)
			})

			Convey("And a ten point edge matches the logistic curve", func() {
				want := 1 / (1 + math.Pow(10, -10*30.464/400))
				So(scoring.WinProbability(90, 80), ShouldAlmostEqual, want, 1e-15)
			})
		})
	})
}

func TestSeedBonus(t *testing.T) {
	Convey("Given seed pairs", t, func() {
		So(scoring.SeedBonus(5, 5), ShouldEqual, 0)
		So(scoring.SeedBonus(1, 16), ShouldEqual, 0)
		So(scoring.SeedBonus(16, 1), ShouldEqual, 15)
		So(scoring.SeedBonus(12, 5), ShouldEqual, 7)
	})
}

func twoTeamTable(seedA, seedB int, ratingA, ratingB float64) *model.Table {
	table, err := model.NewTable([]model.Team{
		{Name: "A", Slot: 0, Seed: seedA, Rating: ratingA, ReachProbability: []float64{1}},
		{Name: "B", Slot: 1, Seed: seedB, Rating: ratingB, ReachProbability: []float64{1}},
	})
	if err != nil {
		panic(err)
	}
	return table
}

func TestScoreVector(t *testing.T) {
	Convey("Given a two-team bracket of equal teams", t, func() {
		table := twoTeamTable(8, 8, 80, 80)

		Convey("Then each team expects half a point", func() {
			for slot := 0; slot < 2; slot++ {
				vec, err := scoring.ScoreVector(table, slot)
				So(err, ShouldBeNil)
				So(vec, ShouldResemble, model.ScoreVector{0, 0.5})
			}
		})
	})

	Convey("Given a four-team bracket of equal ratings", t, func() {
		table, err := model.NewTable([]model.Team{
			{Name: "One", Slot: 0, Seed: 1, Rating: 80, ReachProbability: []float64{1, 0.5}},
			{Name: "Four", Slot: 1, Seed: 4, Rating: 80, ReachProbability: []float64{1, 0.5}},
			{Name: "Two", Slot: 2, Seed: 2, Rating: 80, ReachProbability: []float64{1, 0.5}},
			{Name: "Three", Slot: 3, Seed: 3, Rating: 80, ReachProbability: []float64{1, 0.5}},
		})
		So(err, ShouldBeNil)

		Convey("Then the favourite earns only base points", func() {
			vec, err := scoring.ScoreVector(table, 0)
			So(err, ShouldBeNil)
			So(vec, ShouldResemble, model.ScoreVector{0, 0.5, 1.0})
		})

		Convey("Then the underdog earns upset bonuses", func() {
			// r1: (1+3)*0.5*1 = 2; r2: ((2+2)+(2+1))*0.5*0.5 = 1.75, times 0.5
			vec, err := scoring.ScoreVector(table, 1)
			So(err, ShouldBeNil)
			So(vec, ShouldResemble, model.ScoreVector{0, 2, 2.875})
		})

		Convey("Then a slot outside the table is a data consistency error", func() {
			_, err := scoring.ScoreVector(table, 4)
			So(errors.Is(err, model.ErrDataConsistency), ShouldBeTrue)
		})
	})

	Convey("Given the full synthetic field", t, func() {
		table := testsupport.Table()

		Convey("Then every vector has seven non-decreasing entries starting at zero", func() {
			for slot := 0; slot < table.Len(); slot++ {
				vec, err := scoring.ScoreVector(table, slot)
				So(err, ShouldBeNil)
				So(len(vec), ShouldEqual, 7)
				So(vec[0], ShouldEqual, 0)
				for r := 1; r < len(vec); r++ {
					So(vec[r], ShouldBeGreaterThanOrEqualTo, vec[r-1])
				}
			}
		})

		Convey("Then recomputation is bit-identical", func() {
			first, err := scoring.ScoreVector(table, 17)
			So(err, ShouldBeNil)
			second, err := scoring.ScoreVector(table, 17)
			So(err, ShouldBeNil)
			So(second, ShouldResemble, first)
		})
	})
}

func TestCalculator_ScoreVectors(t *testing.T) {
	Convey("Given the full synthetic field", t, func() {
		table := testsupport.Table()
		ctx := context.Background()

		Convey("When computing with one worker and with many", func() {
			serial, err := scoring.NewCalculator(scoring.WithWorkers(1)).ScoreVectors(ctx, table)
			So(err, ShouldBeNil)
			parallel, err := scoring.NewCalculator(scoring.WithWorkers(16)).ScoreVectors(ctx, table)
			So(err, ShouldBeNil)

			Convey("Then both runs agree exactly and cover every team", func() {
				So(parallel, ShouldResemble, serial)
				So(serial.Covers(table), ShouldBeTrue)
			})

			Convey("And each entry matches the single-slot computation", func() {
				for slot, name := range table.Names() {
					vec, err := scoring.ScoreVector(table, slot)
					So(err, ShouldBeNil)
					So(serial[name], ShouldResemble, vec)
				}
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := scoring.NewCalculator().ScoreVectors(cctx, table)

			Convey("Then the computation stops with the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}
