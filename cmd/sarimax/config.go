package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is a resolved forecasting job.
type Config struct {
	DataPath   string
	DateColumn string
	DateFormat string

	// Targets maps each forecastable column to the columns used as its
	// regressors.
	Targets map[string][]string
	Target  string

	Steps             int
	Holdout           int
	Period            int
	FillTrendEdges    bool
	MaxIterations     int
	GradientTolerance float64

	Output    string
	Locale    string
	LogLevel  string
	LogFormat string
}

type configFile struct {
	Data struct {
		Path       string `yaml:"path"`
		DateColumn string `yaml:"date_column"`
		DateFormat string `yaml:"date_format"`
	} `yaml:"data"`
	Targets       map[string][]string `yaml:"targets"`
	DefaultTarget string              `yaml:"default_target"`
	Forecast      struct {
		Steps   int `yaml:"steps"`
		Holdout int `yaml:"holdout"`
	} `yaml:"forecast"`
	Decompose struct {
		Period         int   `yaml:"period"`
		FillTrendEdges *bool `yaml:"fill_trend_edges"`
	} `yaml:"decompose"`
	Optimizer struct {
		MaxIterations     int     `yaml:"max_iterations"`
		GradientTolerance float64 `yaml:"gradient_tolerance"`
	} `yaml:"optimizer"`
	Output struct {
		Format string `yaml:"format"`
		Locale string `yaml:"locale"`
	} `yaml:"output"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func defaultConfig() Config {
	return Config{
		DateFormat:        "2006-01-02",
		Targets:           map[string][]string{},
		Steps:             6,
		Holdout:           1,
		Period:            12,
		FillTrendEdges:    true,
		MaxIterations:     500,
		GradientTolerance: 1e-5,
		Output:            "text",
		Locale:            "pt-BR",
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// LoadConfig resolves a job from defaults, the optional YAML file at path
// and SARIMAX_* environment variables, in that order. A relative data path
// in the file is taken relative to the file's directory.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		var file configFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
		cfg.merge(file, filepath.Dir(path))
	}

	var err error
	cfg.DataPath = envOrDefault("SARIMAX_DATA", cfg.DataPath)
	cfg.Target = envOrDefault("SARIMAX_TARGET", cfg.Target)
	if cfg.Steps, err = envInt("SARIMAX_STEPS", cfg.Steps); err != nil {
		return Config{}, err
	}
	if cfg.MaxIterations, err = envInt("SARIMAX_MAX_ITERATIONS", cfg.MaxIterations); err != nil {
		return Config{}, err
	}
	cfg.LogLevel = envOrDefault("SARIMAX_LOG_LEVEL", cfg.LogLevel)
	cfg.Locale = envOrDefault("SARIMAX_LOCALE", cfg.Locale)

	return cfg, nil
}

func (c *Config) merge(file configFile, dir string) {
	if file.Data.Path != "" {
		c.DataPath = file.Data.Path
		if !filepath.IsAbs(c.DataPath) {
			c.DataPath = filepath.Join(dir, c.DataPath)
		}
	}
	if file.Data.DateColumn != "" {
		c.DateColumn = file.Data.DateColumn
	}
	if file.Data.DateFormat != "" {
		c.DateFormat = file.Data.DateFormat
	}
	for target, exog := range file.Targets {
		c.Targets[target] = exog
	}
	if file.DefaultTarget != "" {
		c.Target = file.DefaultTarget
	}
	if file.Forecast.Steps != 0 {
		c.Steps = file.Forecast.Steps
	}
	if file.Forecast.Holdout != 0 {
		c.Holdout = file.Forecast.Holdout
	}
	if file.Decompose.Period != 0 {
		c.Period = file.Decompose.Period
	}
	if file.Decompose.FillTrendEdges != nil {
		c.FillTrendEdges = *file.Decompose.FillTrendEdges
	}
	if file.Optimizer.MaxIterations != 0 {
		c.MaxIterations = file.Optimizer.MaxIterations
	}
	if file.Optimizer.GradientTolerance != 0 {
		c.GradientTolerance = file.Optimizer.GradientTolerance
	}
	if file.Output.Format != "" {
		c.Output = file.Output.Format
	}
	if file.Output.Locale != "" {
		c.Locale = file.Output.Locale
	}
	if file.Log.Level != "" {
		c.LogLevel = file.Log.Level
	}
	if file.Log.Format != "" {
		c.LogFormat = file.Log.Format
	}
}

// Validate checks the settings every command depends on.
func (c Config) Validate() error {
	if c.DataPath == "" {
		return fmt.Errorf("missing data path (set data.path or SARIMAX_DATA)")
	}
	if c.Target == "" {
		return fmt.Errorf("missing target (set default_target, SARIMAX_TARGET or --target)")
	}
	if c.Steps < 1 {
		return fmt.Errorf("steps must be at least 1, got %d", c.Steps)
	}
	if c.Holdout < 1 {
		return fmt.Errorf("holdout must be at least 1, got %d", c.Holdout)
	}
	switch c.Output {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q", c.Output)
	}
	return nil
}

// Exog returns the regressor columns configured for target. Targets that
// are not listed are fitted without regressors.
func (c Config) Exog(target string) []string {
	return c.Targets[target]
}

// TargetNames returns the configured targets in a stable order.
func (c Config) TargetNames() []string {
	names := make([]string, 0, len(c.Targets))
	for name := range c.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

// envInt parses an integer env var, keeping the fallback when it is unset.
func envInt(name string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return v, nil
}
