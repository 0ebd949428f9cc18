// Package service wires the forecast table, the score-vector cache, the
// expected-score calculator and the optimizer into one run.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/google/uuid"

	"github.com/okian/bracketev/internal/adapters/picks"
	"github.com/okian/bracketev/internal/adapters/repository"
	"github.com/okian/bracketev/internal/domain/model"
	"github.com/okian/bracketev/internal/domain/optimizer"
	"github.com/okian/bracketev/internal/domain/scoring"
	"github.com/okian/bracketev/internal/domain/types"
	"github.com/okian/bracketev/pkg/logger"
	"github.com/okian/bracketev/pkg/metrics"
)

// Stage labels used in results, logs and metrics.
const (
	StageInitial   = metrics.StageInitial
	StageOptimized = metrics.StageOptimized
)

// Result describes a completed run. Picks holds the final assignment, which
// equals the input when optimization is disabled.
type Result struct {
	RunID     string
	Initial   types.Summary
	Optimized *types.Summary
	Swaps     int
	Picks     model.Assignment
	Vectors   model.ScoreVectors
}

// Final returns the summary of the last stage that ran.
func (r *Result) Final() types.Summary {
	if r.Optimized != nil {
		return *r.Optimized
	}
	return r.Initial
}

// Service runs the scoring pipeline.
type Service struct {
	store        repository.Store
	cacheKey     string
	cacheEnabled bool
	workerCount  int
	optimize     bool
	logger       logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the score-vector cache backend.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithCacheKey names the cache entry to read and write.
func WithCacheKey(key string) Option {
	return func(s *Service) {
		if key != "" {
			s.cacheKey = key
		}
	}
}

// WithCacheEnabled toggles the score-vector cache.
func WithCacheEnabled(enabled bool) Option {
	return func(s *Service) {
		s.cacheEnabled = enabled
	}
}

// WithWorkerCount sets the number of concurrent score-vector workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithOptimize toggles the swap optimizer.
func WithOptimize(enabled bool) Option {
	return func(s *Service) {
		s.optimize = enabled
	}
}

// New constructs a Service with an in-memory cache.
func New(opts ...Option) *Service {
	s := &Service{
		store:        repository.NewMemoryStore(),
		cacheKey:     "scores",
		cacheEnabled: true,
		workerCount:  runtime.NumCPU(),
		optimize:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// ScoreVectors returns the score vectors for every team in the table, from
// the cache when it holds a complete entry. Missing, corrupt and stale
// entries are recomputed and overwritten.
func (s *Service) ScoreVectors(ctx context.Context, table *model.Table) (model.ScoreVectors, error) {
	metrics.UpdateTeamsLoaded(table.Len())

	if s.cacheEnabled {
		vectors, err := s.store.Get(ctx, s.cacheKey)
		switch {
		case err == nil && vectors.Covers(table):
			metrics.RecordCacheLookup(metrics.CacheHit)
			s.logger.Info(ctx, "score vectors loaded from cache", logger.String("key", s.cacheKey))
			return vectors, nil
		case err == nil:
			metrics.RecordCacheLookup(metrics.CacheStale)
			s.logger.Warn(ctx, "cached score vectors do not match the forecast, recomputing",
				logger.String("key", s.cacheKey))
		case errors.Is(err, repository.ErrNotFound):
			metrics.RecordCacheLookup(metrics.CacheMiss)
			s.logger.Debug(ctx, "score vector cache miss", logger.String("key", s.cacheKey))
		case errors.Is(err, repository.ErrCacheCorrupt):
			metrics.RecordCacheLookup(metrics.CacheCorrupt)
			s.logger.Warn(ctx, "score vector cache is corrupt, recomputing",
				logger.String("key", s.cacheKey), logger.Error(err))
		default:
			metrics.RecordError("service", "cache_read")
			return nil, fmt.Errorf("read score vector cache: %w", err)
		}
	}

	calc := scoring.NewCalculator(
		scoring.WithWorkers(s.workerCount),
		scoring.WithLogger(s.logger.Named("scoring")),
	)
	vectors, err := calc.ScoreVectors(ctx, table)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled {
		if err := s.store.Put(ctx, s.cacheKey, vectors); err != nil {
			metrics.RecordError("service", "cache_write")
			return nil, fmt.Errorf("write score vector cache: %w", err)
		}
		metrics.RecordCacheWrite()
	}
	return vectors, nil
}

// Run scores the assignment and, when enabled, optimizes a copy of it.
// The input assignment is never modified.
func (s *Service) Run(ctx context.Context, table *model.Table, a model.Assignment) (*Result, error) {
	runID := uuid.NewString()
	log := s.logger.With(logger.String("run_id", runID))

	if err := picks.Validate(table, a); err != nil {
		metrics.RecordError("service", "invalid_picks")
		return nil, err
	}

	vectors, err := s.ScoreVectors(ctx, table)
	if err != nil {
		return nil, err
	}

	res := &Result{RunID: runID, Picks: a.Clone(), Vectors: vectors}
	if res.Initial, err = s.summarize(StageInitial, table, vectors, res.Picks); err != nil {
		return nil, err
	}
	log.Info(ctx, "scored input picks", logger.Float64("expected", res.Initial.Total))

	if !s.optimize {
		return res, nil
	}

	opt := optimizer.New(table, vectors, optimizer.WithLogger(log.Named("optimizer")))
	if res.Swaps, err = opt.Optimize(ctx, res.Picks); err != nil {
		return nil, err
	}
	final, err := s.summarize(StageOptimized, table, vectors, res.Picks)
	if err != nil {
		return nil, err
	}
	res.Optimized = &final
	log.Info(ctx, "optimized picks",
		logger.Int("swaps", res.Swaps),
		logger.Float64("expected", final.Total),
		logger.Float64("gain", final.Total-res.Initial.Total),
	)
	return res, nil
}

func (s *Service) summarize(stage string, table *model.Table, vectors model.ScoreVectors, a model.Assignment) (types.Summary, error) {
	total, err := optimizer.TotalScore(vectors, a)
	if err != nil {
		return types.Summary{}, err
	}
	counts := optimizer.Histogram(a)
	metrics.UpdateAssignmentScore(stage, total)
	metrics.UpdatePicksPerRound(stage, counts)
	return types.Summary{
		Stage:     stage,
		Total:     total,
		Histogram: types.NewHistogram(counts, table.Rounds()),
	}, nil
}
