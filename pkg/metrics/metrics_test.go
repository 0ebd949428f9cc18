package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "bracketev")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("pool"),
				WithSubsystem("ncaa"),
				WithMetricPrefix("men"),
				WithHistogramBuckets([]float64{0.1, 1}),
				WithCustomLabels(map[string]string{"season": "2022"}),
				WithPrometheusRegistry(registry),
			)
			manager.vectorsComputed.Inc()

			Convey("Then the collectors use the configured names", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "pool_ncaa_men_score_vectors_computed_total")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording cache lookups", func() {
			before := testutil.ToFloat64(globalManager.cacheLookups.WithLabelValues(CacheHit))
			RecordCacheLookup(CacheHit)
			RecordCacheLookup(CacheHit)

			Convey("Then the hit counter advances", func() {
				So(testutil.ToFloat64(globalManager.cacheLookups.WithLabelValues(CacheHit)), ShouldEqual, before+2)
			})
		})

		Convey("When recording optimizer activity", func() {
			attempted := testutil.ToFloat64(globalManager.swapsAttempted)
			accepted := testutil.ToFloat64(globalManager.swapsAccepted)
			RecordSwapAttempt()
			RecordSwapAttempt()
			RecordSwapAccepted()
			RecordOptimizerPass()

			Convey("Then attempts and acceptances are tracked separately", func() {
				So(testutil.ToFloat64(globalManager.swapsAttempted), ShouldEqual, attempted+2)
				So(testutil.ToFloat64(globalManager.swapsAccepted), ShouldEqual, accepted+1)
			})
		})

		Convey("When publishing scores and histograms", func() {
			UpdateAssignmentScore(StageOptimized, 123.5)
			UpdatePicksPerRound(StageInitial, map[int]int{0: 32, 1: 16})

			Convey("Then the gauges hold the latest values", func() {
				So(testutil.ToFloat64(globalManager.assignmentScore.WithLabelValues(StageOptimized)), ShouldEqual, 123.5)
				So(testutil.ToFloat64(globalManager.picksPerRound.WithLabelValues(StageInitial, "0")), ShouldEqual, 32.0)
			})
		})

		Convey("When recording the rest of the helpers", func() {
			So(func() {
				RecordScoreVector(0.2)
				UpdateTeamsLoaded(64)
				RecordCacheWrite()
				RecordError("optimizer", "data_consistency")
			}, ShouldNotPanic)
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given recorded metrics", t, func() {
		RecordScoreVector(0.5)
		path := filepath.Join(t.TempDir(), "bracketev.prom")

		Convey("When exporting to a textfile", func() {
			err := WriteTextfile(path)

			Convey("Then the file holds the exposition format", func() {
				So(err, ShouldBeNil)
				body, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(string(body), ShouldContainSubstring, "bracketev_score_vectors_computed_total")
			})
		})

		Convey("When the target directory does not exist", func() {
			err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))

			Convey("Then an export error is returned", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
