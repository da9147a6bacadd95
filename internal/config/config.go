package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"bayesview/internal/errors"

	"github.com/BurntSushi/toml"
)

// FileEnv names the variable holding an optional TOML config path
const FileEnv = "BAYESVIEW_CONFIG"

// Config represents the complete application configuration
type Config struct {
	Samples   SamplesConfig   `toml:"samples"`
	Database  DatabaseConfig  `toml:"database"`
	Layout    LayoutConfig    `toml:"layout"`
	Estimator EstimatorConfig `toml:"estimator"`
	Display   DisplayConfig   `toml:"display"`
	LogLevel  string          `toml:"log_level"`
}

// SamplesConfig holds sample parsing and preprocessing settings
type SamplesConfig struct {
	Delimiter string         `toml:"delimiter"` // "tab", "comma" or a single character
	MaxRows   int            `toml:"max_rows"`
	Recode    map[string]int `toml:"recode"`
	Sheet     string         `toml:"sheet"`
	Query     string         `toml:"query"`
}

// DatabaseConfig holds the SQL sample source connection
type DatabaseConfig struct {
	URL string `toml:"url"`
}

// LayoutConfig holds force-directed layout settings
type LayoutConfig struct {
	Updates  int   `toml:"updates"`
	Attempts int   `toml:"attempts"`
	Seed     int64 `toml:"seed"`
}

// EstimatorConfig holds estimation settings
type EstimatorConfig struct {
	Workers int `toml:"workers"` // 0 uses GOMAXPROCS
}

// DisplayConfig holds table presentation settings
type DisplayConfig struct {
	Precision  int     `toml:"precision"`
	PickRadius float64 `toml:"pick_radius"` // layout units; 0 accepts any distance
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Layout:   LayoutConfig{Updates: 150, Attempts: 6, Seed: 1},
		Display:  DisplayConfig{Precision: 4},
		LogLevel: "INFO",
	}
}

// Load reads the optional TOML file named by BAYESVIEW_CONFIG, applies
// environment overrides and validates the result
func Load() (*Config, error) {
	config := Default()

	if path := os.Getenv(FileEnv); path != "" {
		if err := config.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, errors.Wrap(err, "failed to read environment configuration")
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func (c *Config) loadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("failed to read %s: %w", path, err))
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.ConfigInvalid(fmt.Sprintf("unknown keys in %s: %v", path, undecoded))
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Samples.Delimiter = getEnvOrDefault("SAMPLES_DELIMITER", c.Samples.Delimiter)
	c.Samples.Sheet = getEnvOrDefault("SAMPLES_SHEET", c.Samples.Sheet)
	c.Samples.Query = getEnvOrDefault("SAMPLES_QUERY", c.Samples.Query)
	c.Database.URL = getEnvOrDefault("DATABASE_URL", c.Database.URL)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)

	if value := os.Getenv("SAMPLES_RECODE"); value != "" {
		recode, err := ParseRecode(value)
		if err != nil {
			return err
		}
		c.Samples.Recode = recode
	}

	for _, v := range []struct {
		key string
		dst *int
	}{
		{"SAMPLES_MAX_ROWS", &c.Samples.MaxRows},
		{"LAYOUT_UPDATES", &c.Layout.Updates},
		{"LAYOUT_ATTEMPTS", &c.Layout.Attempts},
		{"ESTIMATOR_WORKERS", &c.Estimator.Workers},
		{"TABLE_PRECISION", &c.Display.Precision},
	} {
		if err := getEnvInt(v.key, v.dst); err != nil {
			return err
		}
	}

	if value := os.Getenv("PICK_RADIUS"); value != "" {
		radius, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("PICK_RADIUS: %q is not a number", value))
		}
		c.Display.PickRadius = radius
	}

	if value := os.Getenv("LAYOUT_SEED"); value != "" {
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("LAYOUT_SEED: %q is not an integer", value))
		}
		c.Layout.Seed = seed
	}
	return nil
}

// DelimiterRune resolves the configured delimiter; 0 means the file
// extension decides
func (c SamplesConfig) DelimiterRune() (rune, error) {
	switch strings.ToLower(c.Delimiter) {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	}
	r := []rune(c.Delimiter)
	if len(r) != 1 {
		return 0, errors.ConfigInvalid(fmt.Sprintf("delimiter %q must be a single character", c.Delimiter))
	}
	return r[0], nil
}

func validateConfig(config *Config) error {
	if _, err := config.Samples.DelimiterRune(); err != nil {
		return err
	}
	if config.Samples.MaxRows < 0 {
		return errors.ConfigInvalid("samples max rows cannot be negative")
	}
	if config.Layout.Updates <= 0 || config.Layout.Attempts <= 0 {
		return errors.ConfigInvalid("layout updates and attempts must be positive")
	}
	if config.Estimator.Workers < 0 {
		return errors.ConfigInvalid("estimator workers cannot be negative")
	}
	if config.Display.Precision < -1 || config.Display.Precision > 17 {
		return errors.ConfigInvalid("table precision must be between -1 and 17")
	}
	if config.Display.PickRadius < 0 || math.IsNaN(config.Display.PickRadius) {
		return errors.ConfigInvalid("pick radius cannot be negative")
	}
	if config.Samples.Query != "" && config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required when SAMPLES_QUERY is set")
	}
	switch strings.ToUpper(config.LogLevel) {
	case "ERROR", "WARN", "INFO", "DEBUG", "TRACE":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown log level %q", config.LogLevel))
	}
	return nil
}

// ParseRecode reads "ex:1,su:1" into per-column code offsets
func ParseRecode(value string) (map[string]int, error) {
	recode := make(map[string]int)
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		name, offset, ok := strings.Cut(part, ":")
		n, err := strconv.Atoi(strings.TrimSpace(offset))
		if !ok || err != nil || strings.TrimSpace(name) == "" {
			return nil, errors.ConfigInvalid(fmt.Sprintf("recode entry %q is not name:offset", part))
		}
		recode[strings.TrimSpace(name)] = n
	}
	return recode, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, dst *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("%s: %q is not an integer", key, value))
	}
	*dst = n
	return nil
}
