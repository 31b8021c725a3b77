// Package config handles loading and parsing application configuration.
// It supports two sources for the file location (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Every value in the file can be overridden by the environment variable
// named in its env tag.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config is the root configuration structure.
type Config struct {
	// Env controls log format and verbosity: "dev", "staging" or "prod".
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	HTTPServer `yaml:"http_server"`
	Storage    Storage  `yaml:"storage"`
	Photo      Photo    `yaml:"photo"`
	Feedback   Feedback `yaml:"feedback"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true"`
}

// Storage selects the roster backend. Both backends are in-memory; Name
// only distinguishes SQLite memory databases within one process.
type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
	Name   string `yaml:"name"   env:"STORAGE_NAME"   env-default:"roster"`
}

// Photo limits uploads.
type Photo struct {
	MaxBytes int64 `yaml:"max_bytes" env:"PHOTO_MAX_BYTES" env-default:"5242880"`
}

// Feedback sets how long each kind of status message stays visible.
type Feedback struct {
	Success time.Duration `yaml:"success" env:"FEEDBACK_SUCCESS" env-default:"2s"`
	Info    time.Duration `yaml:"info"    env:"FEEDBACK_INFO"    env-default:"4s"`
	Error   time.Duration `yaml:"error"   env:"FEEDBACK_ERROR"   env-default:"3s"`
}

// Validate checks values that cleanenv cannot express as tags.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Photo.MaxBytes <= 0 {
		return fmt.Errorf("photo.max_bytes must be positive, got %d", c.Photo.MaxBytes)
	}
	return nil
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MustLoad resolves the config path from CONFIG_PATH or --config and loads
// it. "Must" means it never returns on failure: the process exits.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err.Error())
	}

	return cfg
}
