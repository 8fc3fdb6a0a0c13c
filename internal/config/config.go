package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joelkehle/billguard/internal/billaudit"
)

// DefaultPath is where the console looks for its config when no explicit
// path is given.
const DefaultPath = "billguard.yaml"

// Config holds runtime configuration for the console server. The CLI binds
// a subset of the same fields from flags.
type Config struct {
	Listen                string    `yaml:"listen"`
	WebDir                string    `yaml:"web_dir"`
	Model                 string    `yaml:"model"`
	MaxCachedResults      int       `yaml:"max_cached_results"`
	ChromePath            string    `yaml:"chrome_path"`
	RequestTimeoutSeconds int       `yaml:"request_timeout_seconds"`
	Log                   LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // zerolog level name, e.g. "debug", "info"
	Format string `yaml:"format"` // "text" or "json"
}

func Default() Config {
	return Config{
		Listen:                ":8787",
		WebDir:                "web",
		Model:                 billaudit.DefaultModel,
		MaxCachedResults:      200,
		RequestTimeoutSeconds: 120,
		Log:                   LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a YAML config file. An empty path, or a missing file at
// DefaultPath, yields Default(); a missing file at any other path is an
// error because the caller asked for it explicitly.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultPath {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyDefaults fills fields the file left unset. Negative values are kept
// so Validate can reject them.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.WebDir == "" {
		c.WebDir = d.WebDir
	}
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.MaxCachedResults == 0 {
		c.MaxCachedResults = d.MaxCachedResults
	}
	if c.RequestTimeoutSeconds == 0 {
		c.RequestTimeoutSeconds = d.RequestTimeoutSeconds
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.MaxCachedResults <= 0 {
		return fmt.Errorf("max_cached_results must be positive, got %d", c.MaxCachedResults)
	}
	if c.RequestTimeoutSeconds <= 0 || c.RequestTimeoutSeconds > 600 {
		return fmt.Errorf("request_timeout_seconds must be between 1 and 600, got %d", c.RequestTimeoutSeconds)
	}
	return nil
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
