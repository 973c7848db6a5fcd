// Package config holds the settings of an olstar run and loads them from
// YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ha1tch/olstar/pkg/olstar"
	"github.com/ha1tch/olstar/pkg/oracle"
)

// Equivalence oracle methods.
const (
	MethodWMethod = "wmethod"
	MethodRandom  = "random"
	MethodPerfect = "perfect"
)

// Config contains all settings of a learning run.
type Config struct {
	Learner     LearnerConfig     `yaml:"learner"`
	Cache       CacheConfig       `yaml:"cache"`
	Equivalence EquivalenceConfig `yaml:"equivalence"`
	MaxRounds   int               `yaml:"max_rounds"`
	Log         LogConfig         `yaml:"log"`
}

// LearnerConfig configures the OL* learner.
type LearnerConfig struct {
	CheckConsistency   bool `yaml:"check_consistency"`
	FirstInconsistency bool `yaml:"first_inconsistency"`
	MaxDefectRetries   int  `yaml:"max_defect_retries"`
}

// CacheConfig configures the membership query cache. A size of 0 disables it.
type CacheConfig struct {
	Size int `yaml:"size"`
}

// EquivalenceConfig selects and tunes the equivalence oracle.
type EquivalenceConfig struct {
	Method     string `yaml:"method"`
	Depth      int    `yaml:"depth"`
	Words      int    `yaml:"words"`
	MinLength  int    `yaml:"min_length"`
	MaxLength  int    `yaml:"max_length"`
	Seed       int64  `yaml:"seed"`
	EarlyBreak bool   `yaml:"early_break"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Learner: LearnerConfig{
			CheckConsistency:   true,
			FirstInconsistency: true,
			MaxDefectRetries:   olstar.DefaultMaxDefectRetries,
		},
		Cache: CacheConfig{Size: oracle.DefaultCacheSize},
		Equivalence: EquivalenceConfig{
			Method:     MethodWMethod,
			Depth:      3,
			Words:      10000,
			MinLength:  1,
			MaxLength:  20,
			Seed:       1,
			EarlyBreak: true,
		},
		MaxRounds: 0,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML file on top of the defaults. Keys the configuration does
// not know are rejected. OLSTAR_LOG_LEVEL overrides the file's log level.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if level := os.Getenv("OLSTAR_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Learner.MaxDefectRetries < 1 {
		errs = append(errs, fmt.Errorf("learner.max_defect_retries must be positive, got %d", c.Learner.MaxDefectRetries))
	}
	if c.Cache.Size < 0 {
		errs = append(errs, fmt.Errorf("cache.size must not be negative, got %d", c.Cache.Size))
	}
	if c.MaxRounds < 0 {
		errs = append(errs, fmt.Errorf("max_rounds must not be negative, got %d", c.MaxRounds))
	}

	eq := c.Equivalence
	switch eq.Method {
	case MethodWMethod:
		if eq.Depth < 0 {
			errs = append(errs, fmt.Errorf("equivalence.depth must not be negative, got %d", eq.Depth))
		}
	case MethodRandom:
		if eq.Words < 1 {
			errs = append(errs, fmt.Errorf("equivalence.words must be positive, got %d", eq.Words))
		}
		if eq.MinLength < 1 || eq.MaxLength < eq.MinLength {
			errs = append(errs, fmt.Errorf("equivalence word lengths must satisfy 1 <= min_length <= max_length, got %d..%d", eq.MinLength, eq.MaxLength))
		}
	case MethodPerfect:
	default:
		errs = append(errs, fmt.Errorf("equivalence.method must be one of %s, got %q",
			strings.Join([]string{MethodWMethod, MethodRandom, MethodPerfect}, ", "), eq.Method))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
