package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/bracketev/internal/adapters/picks"
	"github.com/okian/bracketev/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

const forecastCSV = `team_slot,team_name,team_seed,team_rating,rd1_win,rd2_win
0,Alpha,1,90,1,0.8
2,Bravo,4,70,1,0.2
4,Charlie,2,80,1,0.6
6,Delta,3,75,1,0.4
`

// Bravo is picked to beat Alpha and then win it all.
const inputPicks = `Alpha: 0
Bravo: 2
Charlie: 1
Delta: 0
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeConfig(t *testing.T, dir string, extra string) string {
	t.Helper()
	body := "forecast_path: " + writeFile(t, dir, "forecast.csv", forecastCSV) + "\n" +
		"picks_path: " + writeFile(t, dir, "picks.yaml", inputPicks) + "\n" +
		"cache_dir: " + filepath.Join(dir, "cache") + "\n" +
		"worker_count: 2\n" + extra
	return writeFile(t, dir, "config.yaml", body)
}

func TestRun(t *testing.T) {
	convey.Convey("Given a forecast, picks and a config file", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		output := filepath.Join(dir, "optimized.yaml")
		textfile := filepath.Join(dir, "metrics.prom")
		cfgPath := writeConfig(t, dir, "output_path: "+output+"\nmetrics_textfile: "+textfile+"\n")

		convey.Convey("When running with optimization", func() {
			var stdout, stderr bytes.Buffer
			code := run(ctx, []string{"-config", cfgPath}, &stdout, &stderr)

			convey.Convey("Then both stages and the pick listing are reported", func() {
				convey.So(code, convey.ShouldEqual, exitOK)
				convey.So(stdout.String(), convey.ShouldContainSubstring, "== initial ==")
				convey.So(stdout.String(), convey.ShouldContainSubstring, "== optimized ==")
				convey.So(stdout.String(), convey.ShouldContainSubstring, "Swaps applied:")
				convey.So(stdout.String(), convey.ShouldContainSubstring, "Alpha")
			})

			convey.Convey("Then the optimized picks are written as a complete assignment", func() {
				a, err := picks.LoadFile(ctx, output)
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(a), convey.ShouldEqual, 4)
				convey.So(a["Alpha"], convey.ShouldBeGreaterThan, 0)
			})

			convey.Convey("Then the score vectors are cached and metrics exported", func() {
				_, err := os.Stat(filepath.Join(dir, "cache", "scores.json"))
				convey.So(err, convey.ShouldBeNil)
				body, err := os.ReadFile(textfile)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(body), convey.ShouldContainSubstring, "bracketev_assignment_expected_score")
			})

			convey.Convey("And a second run reuses the cache", func() {
				var again bytes.Buffer
				convey.So(run(ctx, []string{"-config", cfgPath}, &again, &stderr), convey.ShouldEqual, exitOK)
				convey.So(stderr.String(), convey.ShouldContainSubstring, "loaded from cache")
				convey.So(again.String(), convey.ShouldEqual, stdout.String())
			})
		})

		convey.Convey("When running with -no-optimize", func() {
			var stdout, stderr bytes.Buffer
			code := run(ctx, []string{"-config", cfgPath, "-no-optimize"}, &stdout, &stderr)

			convey.Convey("Then only the input picks are scored and written back unchanged", func() {
				convey.So(code, convey.ShouldEqual, exitOK)
				convey.So(stdout.String(), convey.ShouldContainSubstring, "== initial ==")
				convey.So(stdout.String(), convey.ShouldNotContainSubstring, "== optimized ==")
				a, err := picks.LoadFile(ctx, output)
				convey.So(err, convey.ShouldBeNil)
				convey.So(a, convey.ShouldResemble, model.Assignment{"Alpha": 0, "Bravo": 2, "Charlie": 1, "Delta": 0})
			})
		})
	})

	convey.Convey("Given bad invocations", t, func() {
		ctx := context.Background()
		var stdout, stderr bytes.Buffer

		convey.Convey("Then an unknown flag is a usage error", func() {
			convey.So(run(ctx, []string{"-bogus"}, &stdout, &stderr), convey.ShouldEqual, exitUsage)
		})

		convey.Convey("Then a missing config file fails", func() {
			code := run(ctx, []string{"-config", "/non/existent/config.yaml"}, &stdout, &stderr)
			convey.So(code, convey.ShouldEqual, exitError)
			convey.So(stderr.String(), convey.ShouldContainSubstring, "failed to load config")
		})

		convey.Convey("Then picks naming an unknown team fail", func() {
			dir := t.TempDir()
			cfgPath := writeConfig(t, dir, "cache_enabled: false\n")
			writeFile(t, dir, "picks.yaml", strings.Replace(inputPicks, "Delta", "Echo", 1))
			code := run(ctx, []string{"-config", cfgPath}, &stdout, &stderr)
			convey.So(code, convey.ShouldEqual, exitError)
			convey.So(stderr.String(), convey.ShouldContainSubstring, "run failed")
		})
	})
}
