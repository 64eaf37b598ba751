// Package config loads the sentinel workspace configuration and
// validates it against a bundled JSON Schema before any exploration or
// execution starts, the INVALID_CONFIG pre-flight of spec §7.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/mateoblack/sentinel/internal/coverage"
	"github.com/mateoblack/sentinel/internal/cycle"
	"github.com/mateoblack/sentinel/internal/execution"
	"github.com/mateoblack/sentinel/internal/readiness"
	"github.com/mateoblack/sentinel/internal/scope"
)

// FolderName is the per-project workspace directory, mirroring the
// teacher's ".falcon" convention.
const FolderName = ".sentinel"

// ExplorationConfig is the YAML-facing shape of an exploration run.
type ExplorationConfig struct {
	StartURL           string             `yaml:"startUrl" json:"startUrl"`
	MaxPages           int                `yaml:"maxPages" json:"maxPages"`
	TimeoutMs          int                `yaml:"timeoutMs" json:"timeoutMs"`
	Strategy           string             `yaml:"strategy" json:"strategy"`
	Scope              scope.Config       `yaml:"scope" json:"scope"`
	CycleLimits        cycle.Limits       `yaml:"cycleLimits" json:"cycleLimits"`
	ReadinessConfig    readiness.Config   `yaml:"readiness" json:"readiness"`
	CoverageThresholds *coverage.Thresholds `yaml:"coverageThresholds,omitempty" json:"coverageThresholds,omitempty"`
}

// Timeout converts TimeoutMs to a time.Duration.
func (c ExplorationConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// ExecutionConfig is the YAML-facing shape of a test run.
type ExecutionConfig struct {
	Workers      int                   `yaml:"workers" json:"workers"`
	Retries      int                   `yaml:"retries" json:"retries"`
	WorkerBinary string                `yaml:"workerBinary" json:"workerBinary"`
	Runner       execution.RunnerConfig `yaml:"runner" json:"runner"`
}

// Config is the full sentinel workspace configuration.
type Config struct {
	Exploration ExplorationConfig `yaml:"exploration" json:"exploration"`
	Execution   ExecutionConfig   `yaml:"execution" json:"execution"`
}

// Load reads configuration from cfgFile (or the default
// .sentinel/config.yaml search path when empty) using viper, layering
// environment variables over file values exactly as the teacher's CLI
// does in initConfig.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(FolderName)
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("config: reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshaling config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
