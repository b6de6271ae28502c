// Package config provides configuration loading and validation for the CLI and the HTTP server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jonathan/listing-optimizer/internal/schemas"
	"github.com/jonathan/listing-optimizer/internal/store"
	"github.com/jonathan/listing-optimizer/internal/titles"
	"github.com/jonathan/listing-optimizer/internal/types"
	schemadocs "github.com/jonathan/listing-optimizer/schemas"
)

// Environment variables that override file values.
const (
	EnvDatabaseURL = "LISTING_DATABASE_URL"
	EnvStoreDriver = "LISTING_STORE_DRIVER"
	EnvPort        = "LISTING_PORT"
	EnvLogLevel    = "LISTING_LOG_LEVEL"
	EnvRulesPath   = "LISTING_RULES_PATH"
)

// DefaultPort is the HTTP port used when none is configured.
const DefaultPort = 8080

// DefaultDiversityFactor is the probability threshold for admitting tag-duplicate recommendations.
const DefaultDiversityFactor = 0.5

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values are filled by MergeWithDefaults.
type Config struct {
	Weights *types.AlgorithmWeights `json:"weights,omitempty"`
	Titles  *titles.Config          `json:"titles,omitempty"`

	RulesPath string       `json:"rules_path,omitempty"` // Category rule file (.yaml, .yml or .json); empty uses the built-in rules
	Store     store.Config `json:"store,omitzero"`

	Port      int    `json:"port,omitempty" validate:"gte=0,lte=65535"`
	LogLevel  string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `json:"log_format,omitempty" validate:"omitempty,oneof=text json"`

	DiversityFactor *float64 `json:"diversity_factor,omitempty" validate:"omitempty,gte=0,lte=1"`
	RandomSeed      *uint64  `json:"random_seed,omitempty"` // Fixed seed for reproducible recommendations
}

// Default returns a fully populated configuration.
func Default() Config {
	weights := types.DefaultAlgorithmWeights()
	titleCfg := titles.DefaultConfig()
	df := DefaultDiversityFactor
	return Config{
		Weights:         &weights,
		Titles:          &titleCfg,
		Store:           store.Config{Driver: store.DriverMemory},
		Port:            DefaultPort,
		LogLevel:        "info",
		LogFormat:       "text",
		DiversityFactor: &df,
	}
}

// LoadConfig loads configuration from a JSON file.
// The document is checked against the config schema before decoding.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := schemas.ValidateDocument(schemadocs.Config, raw); err != nil {
		return nil, fmt.Errorf("config file %s does not match schema: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := overlayBlocks(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// overlayBlocks decodes the weights and titles blocks onto their defaults, so fields a
// block leaves out keep their default values instead of zero.
func overlayBlocks(data []byte, cfg *Config) error {
	var blocks struct {
		Weights json.RawMessage `json:"weights"`
		Titles  json.RawMessage `json:"titles"`
	}
	if err := json.Unmarshal(data, &blocks); err != nil {
		return fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if present(blocks.Weights) {
		weights := types.DefaultAlgorithmWeights()
		if err := json.Unmarshal(blocks.Weights, &weights); err != nil {
			return fmt.Errorf("failed to parse weights: %w", err)
		}
		cfg.Weights = &weights
	}
	if present(blocks.Titles) {
		titleCfg := titles.DefaultConfig()
		if err := json.Unmarshal(blocks.Titles, &titleCfg); err != nil {
			return fmt.Errorf("failed to parse titles: %w", err)
		}
		cfg.Titles = &titleCfg
	}
	return nil
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// Load resolves the effective configuration: file values (when path is set) over defaults,
// then environment overrides, then validation.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	merged := cfg.MergeWithDefaults(Default())
	if err := merged.ApplyEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}

// ApplyEnv overrides fields from environment variables that are set and non-empty.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv(EnvDatabaseURL); v != "" {
		c.Store.DSN = v
		if getenv(EnvStoreDriver) == "" && c.Store.Driver == store.DriverMemory {
			c.Store.Driver = store.DriverPostgres
		}
	}
	if v := getenv(EnvStoreDriver); v != "" {
		c.Store.Driver = store.Driver(v)
	}
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: %s must be an integer, got %q", EnvPort, v)
		}
		c.Port = port
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvRulesPath); v != "" {
		c.RulesPath = v
	}
	return nil
}

// Validate checks that the configuration has valid values and reports every violation.
func (c *Config) Validate() error {
	verr := &types.ValidationError{Subject: "config"}
	if err := types.ValidateStruct("config", c); err != nil {
		ve, ok := types.AsValidationError(err)
		if !ok {
			return err
		}
		verr.Merge("", ve)
	}

	if c.RulesPath != "" {
		if _, err := os.Stat(c.RulesPath); os.IsNotExist(err) {
			verr.Add("rules_path", fmt.Sprintf("file not found: %s", c.RulesPath))
		}
	}

	return verr.Err()
}

// MergeWithDefaults returns a new Config with unset fields filled from defaults.
// Weights and titles are filled as whole blocks; LoadConfig already completes partial blocks.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Weights == nil && defaults.Weights != nil {
		w := *defaults.Weights
		result.Weights = &w
	}
	if result.Titles == nil && defaults.Titles != nil {
		t := *defaults.Titles
		t.Stopwords = append([]string{}, defaults.Titles.Stopwords...)
		result.Titles = &t
	}
	if result.RulesPath == "" {
		result.RulesPath = defaults.RulesPath
	}
	if result.Store.Driver == "" {
		result.Store.Driver = defaults.Store.Driver
	}
	if result.Store.DSN == "" {
		result.Store.DSN = defaults.Store.DSN
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.DiversityFactor == nil && defaults.DiversityFactor != nil {
		df := *defaults.DiversityFactor
		result.DiversityFactor = &df
	}
	if result.RandomSeed == nil && defaults.RandomSeed != nil {
		seed := *defaults.RandomSeed
		result.RandomSeed = &seed
	}

	return result
}
