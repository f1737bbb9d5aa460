// Package config loads the passmed2anki YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/passmed2anki/anki"
	"github.com/hazyhaar/passmed2anki/engine"
)

// DefaultPageURL is the Passmedicine quiz entry point.
const DefaultPageURL = "https://www.passmedicine.com/question/question.php"

// Config is the top-level configuration.
type Config struct {
	Browser    BrowserConfig     `yaml:"browser"`
	Page       PageConfig        `yaml:"page"`
	Debounce   DebounceConfig    `yaml:"debounce"`
	Heuristics engine.Heuristics `yaml:"heuristics"`
	Relay      RelayConfig       `yaml:"relay"`
	Store      StoreConfig       `yaml:"store"`
	Control    ControlConfig     `yaml:"control"`
	Debug      bool              `yaml:"debug"`
}

// BrowserConfig controls Chrome.
type BrowserConfig struct {
	Remote           string   `yaml:"remote"`
	Headless         bool     `yaml:"headless"`
	Stealth          bool     `yaml:"stealth"`
	ResourceBlocking []string `yaml:"resource_blocking"`
}

// PageConfig selects the page to watch.
type PageConfig struct {
	URL string `yaml:"url"`
}

// DebounceConfig controls evaluation scheduling.
type DebounceConfig struct {
	Window time.Duration `yaml:"window"`
}

// RelayConfig points at AnkiConnect. A zero Timeout keeps the transport
// default.
type RelayConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
	Sanitize bool          `yaml:"sanitize"`
}

// StoreConfig locates the preference database.
type StoreConfig struct {
	Path          string        `yaml:"path"`
	WatchInterval time.Duration `yaml:"watch_interval"`
}

// ControlConfig configures the local control API. Empty Addr disables it.
type ControlConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used without a file.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Page.URL == "" {
		c.Page.URL = DefaultPageURL
	}
	if c.Debounce.Window <= 0 {
		c.Debounce.Window = 250 * time.Millisecond
	}
	if c.Relay.Endpoint == "" {
		c.Relay.Endpoint = anki.DefaultEndpoint
	}
	if c.Store.Path == "" {
		c.Store.Path = defaultStorePath()
	}
	if c.Store.WatchInterval <= 0 {
		c.Store.WatchInterval = time.Second
	}
	c.Heuristics = c.Heuristics.WithDefaults()
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "passmed2anki.db"
	}
	return filepath.Join(dir, "passmed2anki", "prefs.db")
}
