package picks_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/bracketev/internal/adapters/picks"
	"github.com/okian/bracketev/internal/domain/model"
	"github.com/okian/bracketev/internal/testsupport"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given a YAML pick file", t, func() {
		body := []byte(`
Gonzaga: 6
Georgia State: 0
"Notre Dame/Rutgers": 0
"Saint Mary's (CA)": 1
`)
		a, err := picks.Parse(body)

		Convey("Then every team maps to its pick", func() {
			So(err, ShouldBeNil)
			So(a, ShouldResemble, model.Assignment{
				"Gonzaga":            6,
				"Georgia State":      0,
				"Notre Dame/Rutgers": 0,
				"Saint Mary's (CA)":  1,
			})
		})
	})

	Convey("Given malformed pick files", t, func() {
		Convey("Then fractional picks are rejected", func() {
			_, err := picks.Parse([]byte("Duke: 1.5\n"))
			So(errors.Is(err, picks.ErrInvalidPick), ShouldBeTrue)
			So(errors.Is(err, model.ErrDataConsistency), ShouldBeTrue)
		})

		Convey("Then negative picks are rejected", func() {
			_, err := picks.Parse([]byte("Duke: -1\n"))
			So(errors.Is(err, picks.ErrInvalidPick), ShouldBeTrue)
		})

		Convey("Then text picks are rejected", func() {
			_, err := picks.Parse([]byte("Duke: champion\n"))
			So(errors.Is(err, picks.ErrInvalidPick), ShouldBeTrue)
		})

		Convey("Then a list instead of a mapping is rejected", func() {
			_, err := picks.Parse([]byte("- Duke\n- Kansas\n"))
			So(errors.Is(err, picks.ErrInvalidPick), ShouldBeTrue)
		})
	})
}

func TestWriteAndLoadFile(t *testing.T) {
	Convey("Given the chalk assignment of the synthetic field", t, func() {
		ctx := context.Background()
		a := testsupport.ChalkAssignment(testsupport.Table())
		path := filepath.Join(t.TempDir(), "picks.yaml")

		Convey("When writing and reading it back", func() {
			So(picks.WriteFile(ctx, path, a), ShouldBeNil)
			back, err := picks.LoadFile(ctx, path)

			Convey("Then the assignment is unchanged", func() {
				So(err, ShouldBeNil)
				So(back, ShouldResemble, a)
			})
		})

		Convey("When loading a missing file", func() {
			_, err := picks.LoadFile(ctx, path)

			Convey("Then the error reports the missing file", func() {
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given the synthetic table", t, func() {
		table := testsupport.Table()

		Convey("Then a complete assignment passes", func() {
			So(picks.Validate(table, testsupport.ChalkAssignment(table)), ShouldBeNil)
		})

		Convey("Then an unknown team fails", func() {
			a := testsupport.ChalkAssignment(table)
			a["Nowhere State"] = 0
			So(errors.Is(picks.Validate(table, a), model.ErrDataConsistency), ShouldBeTrue)
		})

		Convey("Then a missing team fails", func() {
			a := testsupport.ChalkAssignment(table)
			delete(a, testsupport.TeamName(3))
			So(errors.Is(picks.Validate(table, a), model.ErrDataConsistency), ShouldBeTrue)
		})

		Convey("Then a pick beyond the final fails", func() {
			a := testsupport.ChalkAssignment(table)
			a[testsupport.TeamName(0)] = 7
			So(errors.Is(picks.Validate(table, a), model.ErrDataConsistency), ShouldBeTrue)
		})
	})
}

func TestBundledEntry(t *testing.T) {
	Convey("Given the bundled 2022 entry", t, func() {
		a, err := picks.LoadFile(context.Background(), filepath.Join("..", "..", "..", "configs", "picks-2022.yaml"))

		Convey("Then it holds a complete legal-shaped bracket", func() {
			So(err, ShouldBeNil)
			So(len(a), ShouldEqual, 64)
			So(a["Gonzaga"], ShouldEqual, 6)
			So(a["Texas A&M/Texas Southern"], ShouldEqual, 0)
			counts := map[int]int{}
			for _, r := range a {
				counts[r]++
			}
			So(counts, ShouldResemble, map[int]int{0: 32, 1: 16, 2: 8, 3: 4, 4: 2, 5: 1, 6: 1})
		})
	})
}
