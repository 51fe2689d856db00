package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/example/contact-registry/internal/logging"
)

// Prefix is prepended to every environment variable name.
const Prefix = "CONTACTMGR"

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverYAML   = "yaml"
)

// ErrInvalid is returned when one or more variables hold unusable values.
var ErrInvalid = errors.New("config: invalid environment")

// Config captures environment driven configuration for the contact manager.
type Config struct {
	StoreDriver string `envconfig:"STORE_DRIVER" default:"sqlite"`
	SQLiteDSN   string `envconfig:"SQLITE_DSN" default:"file:contacts.db"`
	YAMLPath    string `envconfig:"YAML_PATH" default:"contacts.yaml"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads CONTACTMGR_* variables from the process environment after
// merging dotenv files into it. Variables already set in the environment win
// over dotenv values. Without arguments an optional ".env" in the working
// directory is read; explicitly named files must exist.
func Load(dotenvFiles ...string) (Config, error) {
	if len(dotenvFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: read .env: %w", err)
		}
	} else if err := godotenv.Load(dotenvFiles...); err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", strings.Join(dotenvFiles, ", "), err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: process environment: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.SQLiteDSN = strings.TrimSpace(c.SQLiteDSN)
	c.YAMLPath = strings.TrimSpace(c.YAMLPath)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
}

// Validate reports every variable holding an unusable value.
func (c Config) Validate() error {
	invalid := make([]string, 0, 3)

	switch c.StoreDriver {
	case DriverSQLite:
		if c.SQLiteDSN == "" {
			invalid = append(invalid, Prefix+"_SQLITE_DSN")
		}
	case DriverYAML:
		if c.YAMLPath == "" {
			invalid = append(invalid, Prefix+"_YAML_PATH")
		}
	default:
		invalid = append(invalid, Prefix+"_STORE_DRIVER")
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		invalid = append(invalid, Prefix+"_LOG_LEVEL")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		invalid = append(invalid, Prefix+"_LOG_FORMAT")
	}

	if len(invalid) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(invalid, ", "))
	}
	return nil
}
