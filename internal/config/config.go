// Package config defines run configuration and its loading.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// ForecastPath points at the forecast CSV.
	ForecastPath string `koanf:"forecast_path"`

	// PicksPath points at the YAML assignment to evaluate.
	PicksPath string `koanf:"picks_path"`

	// OutputPath receives the optimized assignment when set.
	OutputPath string `koanf:"output_path"`

	// CacheDir holds persisted score vectors.
	CacheDir string `koanf:"cache_dir"`

	// CacheKey names the cache entry within CacheDir.
	CacheKey string `koanf:"cache_key"`

	// CacheEnabled toggles the score-vector cache.
	CacheEnabled bool `koanf:"cache_enabled"`

	// WorkerCount bounds concurrent score-vector computation.
	WorkerCount int `koanf:"worker_count"`

	// Optimize runs the swap optimizer after scoring the input picks.
	Optimize bool `koanf:"optimize"`

	// MetricsTextfile receives a Prometheus text export at exit when set.
	MetricsTextfile string `koanf:"metrics_textfile"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		ForecastPath: "ncaa_forecast.csv",
		PicksPath:    "picks.yaml",
		CacheDir:     ".bracketev",
		CacheKey:     "scores",
		CacheEnabled: true,
		WorkerCount:  runtime.NumCPU(),
		Optimize:     true,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.ForecastPath == "" {
		return fmt.Errorf("%w: forecast_path must not be empty", ErrInvalidConfig)
	}
	if c.PicksPath == "" {
		return fmt.Errorf("%w: picks_path must not be empty", ErrInvalidConfig)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	}
	if c.CacheEnabled && (c.CacheDir == "" || c.CacheKey == "") {
		return fmt.Errorf("%w: cache_dir and cache_key are required when the cache is enabled", ErrInvalidConfig)
	}
	return nil
}
