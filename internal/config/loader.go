package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"roadrouter/internal/apperror"
)

const envPrefix = "ROUTER_"

// Loader assembles a Config from defaults, an optional YAML file, and
// ROUTER_-prefixed environment variables, in that order of precedence.
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithConfigPaths overrides the list of candidate config file paths.
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) { l.configPaths = paths }
}

// NewLoader constructs a Loader with the default search paths.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k:           koanf.New("."),
		configPaths: []string{"config.yaml", "config/config.yaml", "/etc/roadrouter/config.yaml"},
		envPrefix:   envPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load builds a Config and validates it.
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDefaults(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeConfigInvalid, "loading defaults")
	}
	if err := l.loadConfigFile(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	if err := l.loadEnv(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeConfigInvalid, "loading environment variables")
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeConfigInvalid, "unmarshalling config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (l *Loader) loadDefaults() error {
	defaults := map[string]any{
		"app.name":        "roadrouter",
		"app.version":     "0.1.0",
		"app.environment": "development",

		"graph.num_buckets":      24,
		"graph.num_metrics":      8,
		"graph.update_frequency": 100,
		"graph.interval_count":   24,
		"graph.upper_bound_slack": 2.0,

		"log.level":       "info",
		"log.format":      "json",
		"log.output":      "stdout",
		"log.max_size":    100,
		"log.max_backups": 3,
		"log.max_age":     7,
		"log.compress":    true,

		"metrics.enabled":   true,
		"metrics.port":      9090,
		"metrics.path":      "/metrics",
		"metrics.namespace": "roadrouter",

		"tracing.enabled":      false,
		"tracing.service_name": "roadrouter",
		"tracing.sample_rate":  0.1,

		"store.enabled": false,

		"cache.driver":      "memory",
		"cache.default_ttl": 5 * time.Minute,

		"report.format": "csv",
	}
	return l.k.Load(confmap.Provider(defaults, "."), nil)
}

func (l *Loader) loadConfigFile() error {
	for _, path := range l.configPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return l.k.Load(file.Provider(path), yaml.Parser())
	}
	return fmt.Errorf("no config file found in %v, using defaults", l.configPaths)
}

func (l *Loader) loadEnv() error {
	return l.k.Load(env.Provider(l.envPrefix, ".", envKeyTransform(l.envPrefix)), nil)
}

func envKeyTransform(prefix string) func(string) string {
	return func(s string) string {
		s = strings.TrimPrefix(s, prefix)
		return strings.ReplaceAll(strings.ToLower(s), "_", ".")
	}
}
