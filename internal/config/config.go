// Package config loads the CLI's layered configuration: defaults, then an
// optional YAML file, then environment variables (ROUTER_ prefixed),
// mirroring the teacher's config-precedence convention. Positional CLI
// arguments (spec.md §6) always take precedence over all three and are
// applied by cmd/router after Load returns.
package config

import (
	"fmt"
	"time"

	"roadrouter/internal/apperror"
)

// Config is the full set of options the router CLI and its optional
// collaborators (result store, result cache, report writer) accept.
type Config struct {
	App     AppConfig     `koanf:"app"`
	Graph   GraphConfig   `koanf:"graph"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Tracing TracingConfig `koanf:"tracing"`
	Store   StoreConfig   `koanf:"store"`
	Cache   CacheConfig   `koanf:"cache"`
	Report  ReportConfig  `koanf:"report"`
}

// AppConfig holds general process metadata.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

// GraphConfig holds the capacity graph's runtime parameters. cmd/router
// always overwrites NumBuckets, NumMetrics, UpdateFrequency and
// IntervalCount with its positional arguments, or with its own defaults
// when those are omitted, so the values loaded here for those four fields
// are not used by the CLI.
type GraphConfig struct {
	NumBuckets       int     `koanf:"num_buckets"`
	NumMetrics       int     `koanf:"num_metrics"`
	UpdateFrequency  int     `koanf:"update_frequency"`
	IntervalCount    int     `koanf:"interval_count"`
	UpperBoundSlack  float64 `koanf:"upper_bound_slack"`
}

// LogConfig mirrors internal/logger.Config in koanf-tagged form.
type LogConfig struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	Output     string `koanf:"output"`
	FilePath   string `koanf:"file_path"`
	MaxSize    int    `koanf:"max_size"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"`
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
}

// TracingConfig controls OpenTelemetry span export.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// StoreConfig controls the optional Postgres result-record sink.
type StoreConfig struct {
	Enabled bool   `koanf:"enabled"`
	DSN     string `koanf:"dsn"`
}

// CacheConfig controls the optional query-result cache.
type CacheConfig struct {
	Driver     string        `koanf:"driver"` // memory, redis
	Addr       string        `koanf:"addr"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
}

// ReportConfig controls the result-record writer.
type ReportConfig struct {
	Format string `koanf:"format"` // csv, json, xlsx
	Path   string `koanf:"path"`
}

// Validate checks internal consistency of the loaded configuration, beyond
// what the capacity graph's own constructor already enforces.
func (c *Config) Validate() error {
	if c.Graph.NumBuckets <= 0 {
		return apperror.New(apperror.CodeConfigInvalid, "graph.num_buckets must be positive").WithField("graph.num_buckets")
	}
	if c.Graph.NumMetrics < 0 {
		return apperror.New(apperror.CodeConfigInvalid, "graph.num_metrics must not be negative").WithField("graph.num_metrics")
	}
	if c.Graph.IntervalCount < 0 {
		return apperror.New(apperror.CodeConfigInvalid, "graph.interval_count must not be negative").WithField("graph.interval_count")
	}
	if c.Cache.Driver != "" && c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return apperror.New(apperror.CodeConfigInvalid, fmt.Sprintf("unknown cache driver %q", c.Cache.Driver)).WithField("cache.driver")
	}
	switch c.Report.Format {
	case "", "csv", "json", "xlsx":
	default:
		return apperror.New(apperror.CodeConfigInvalid, fmt.Sprintf("unknown report format %q", c.Report.Format)).WithField("report.format")
	}
	return nil
}
