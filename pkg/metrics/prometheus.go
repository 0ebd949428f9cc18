// Package metrics provides Prometheus metrics for the bracketev batch job.
//
// The job is short-lived, so metrics are exported once at the end of a run
// through WriteTextfile (node_exporter textfile collector format) instead of
// being scraped over HTTP.
package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup results.
const (
	CacheHit     = "hit"
	CacheMiss    = "miss"
	CacheCorrupt = "corrupt"
	CacheStale   = "stale"
)

// Assignment score stages.
const (
	StageInitial   = "initial"
	StageOptimized = "optimized"
)

// Manager owns every Prometheus collector used by bracketev.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Score-vector computation
	vectorsComputed prometheus.Counter
	vectorLatency   prometheus.Histogram
	teamsLoaded     prometheus.Gauge

	// Cache
	cacheLookups *prometheus.CounterVec
	cacheWrites  prometheus.Counter

	// Optimizer
	swapsAttempted  prometheus.Counter
	swapsAccepted   prometheus.Counter
	optimizerPasses prometheus.Counter
	assignmentScore *prometheus.GaugeVec
	picksPerRound   *prometheus.GaugeVec

	// Errors
	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry exported by WriteTextfile

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "bracketev",
		subsystem:        "",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.vectorsComputed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("score_vectors_computed_total"),
		Help:        "Total number of per-team score vectors computed from the forecast table",
		ConstLabels: labels,
	})

	m.vectorLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("score_vector_duration_milliseconds"),
		Help:        "Time spent computing one team's score vector",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.teamsLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("teams_loaded"),
		Help:        "Number of teams in the loaded forecast table",
		ConstLabels: labels,
	})

	m.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cache_lookups_total"),
		Help:        "Score-vector cache lookups by result",
		ConstLabels: labels,
	}, []string{"result"})

	m.cacheWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cache_writes_total"),
		Help:        "Score-vector cache writes",
		ConstLabels: labels,
	})

	m.swapsAttempted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("swaps_attempted_total"),
		Help:        "Candidate pick swaps evaluated by the optimizer",
		ConstLabels: labels,
	})

	m.swapsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("swaps_accepted_total"),
		Help:        "Pick swaps kept because they raised the total expected score",
		ConstLabels: labels,
	})

	m.optimizerPasses = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("optimizer_passes_total"),
		Help:        "Bracket scans performed by the optimizer",
		ConstLabels: labels,
	})

	m.assignmentScore = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("assignment_expected_score"),
		Help:        "Total expected score of the assignment by stage",
		ConstLabels: labels,
	}, []string{"stage"})

	m.picksPerRound = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("picks_per_round"),
		Help:        "Number of teams picked to survive exactly this many rounds",
		ConstLabels: labels,
	}, []string{"stage", "rounds"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_total"),
		Help:        "Errors by component and kind",
		ConstLabels: labels,
	}, []string{"component", "kind"})
}

// RecordScoreVector counts one computed score vector and its latency.
func RecordScoreVector(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.vectorsComputed.Inc()
	globalManager.vectorLatency.Observe(latencyMs)
}

// UpdateTeamsLoaded sets the number of teams in the forecast table.
func UpdateTeamsLoaded(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.teamsLoaded.Set(float64(count))
}

// RecordCacheLookup counts a cache lookup with the given result.
func RecordCacheLookup(result string) {
	if !globalManager.enabled {
		return
	}
	globalManager.cacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheWrite counts a cache write.
func RecordCacheWrite() {
	if !globalManager.enabled {
		return
	}
	globalManager.cacheWrites.Inc()
}

// RecordSwapAttempt counts an evaluated swap.
func RecordSwapAttempt() {
	if !globalManager.enabled {
		return
	}
	globalManager.swapsAttempted.Inc()
}

// RecordSwapAccepted counts a kept swap.
func RecordSwapAccepted() {
	if !globalManager.enabled {
		return
	}
	globalManager.swapsAccepted.Inc()
}

// RecordOptimizerPass counts one full or partial bracket scan.
func RecordOptimizerPass() {
	if !globalManager.enabled {
		return
	}
	globalManager.optimizerPasses.Inc()
}

// UpdateAssignmentScore sets the total expected score for a stage.
func UpdateAssignmentScore(stage string, score float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.assignmentScore.WithLabelValues(stage).Set(score)
}

// UpdatePicksPerRound publishes the pick histogram for a stage.
func UpdatePicksPerRound(stage string, histogram map[int]int) {
	if !globalManager.enabled {
		return
	}
	for rounds, count := range histogram {
		globalManager.picksPerRound.WithLabelValues(stage, strconv.Itoa(rounds)).Set(float64(count))
	}
}

// RecordError counts an error raised by a component.
func RecordError(component, kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes the current state of the registry to path in the
// Prometheus text exposition format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}
