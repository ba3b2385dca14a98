// Package config loads the optional YAML configuration file that seeds the
// CLI's scan defaults. Flags always override file values; a missing file
// yields the built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mcuadros/go-defaults"
	"gopkg.in/yaml.v3"

	"github.com/srg/blescout/scanner"
)

// DefaultFileName is looked up in the user's home directory when no
// explicit --config path is given.
const DefaultFileName = ".blescout.yaml"

// Config mirrors the YAML file layout. Durations are plain integers
// (seconds for the budget, milliseconds for the poll cadence) so the file
// stays free of Go duration syntax.
type Config struct {
	Scan struct {
		DurationSeconds int      `yaml:"duration_seconds" default:"10"`
		PollIntervalMS  int      `yaml:"poll_interval_ms" default:"1000"`
		AllowDuplicates bool     `yaml:"allow_duplicates" default:"true"`
		Services        []string `yaml:"services"`
		AllowList       []string `yaml:"allow_list"`
		BlockList       []string `yaml:"block_list"`
		EventBuffer     int      `yaml:"event_buffer" default:"100"`
		Format          string   `yaml:"format" default:"table"`
	} `yaml:"scan"`
	Log struct {
		Level string `yaml:"level" default:"warning"`
	} `yaml:"log"`
}

// New returns a Config holding the built-in defaults.
func New() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads the file at path over the defaults. An empty path resolves to
// DefaultFileName in the home directory; a missing file at that resolved
// default is not an error, while a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := New()

	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, DefaultFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Scan.DurationSeconds <= 0 {
		return fmt.Errorf("scan.duration_seconds must be positive, got %d", c.Scan.DurationSeconds)
	}
	if c.Scan.PollIntervalMS <= 0 {
		return fmt.Errorf("scan.poll_interval_ms must be positive, got %d", c.Scan.PollIntervalMS)
	}
	return nil
}

// ScanOptions converts the file values into scan session options.
func (c *Config) ScanOptions() *scanner.Options {
	return &scanner.Options{
		Duration:        time.Duration(c.Scan.DurationSeconds) * time.Second,
		PollInterval:    time.Duration(c.Scan.PollIntervalMS) * time.Millisecond,
		ServiceUUIDs:    c.Scan.Services,
		AllowDuplicates: c.Scan.AllowDuplicates,
		AllowList:       c.Scan.AllowList,
		BlockList:       c.Scan.BlockList,
		EventBuffer:     c.Scan.EventBuffer,
	}
}
