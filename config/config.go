// Package config loads tool configuration from ~/.ematools/config.yaml
// with environment variable and default fallbacks.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"ematools/register"
)

// Config is the tool configuration. Zero values fall back to defaults.
type Config struct {
	// BaseURL of the community register site.
	BaseURL string `yaml:"base_url"`
	// CacheDir holds cached response bodies.
	CacheDir string `yaml:"cache_dir"`
	// DatabasePath is the SQLite store for parsed records.
	DatabasePath string `yaml:"database_path"`
	// RequestLogPath is the SQLite request log. Empty disables logging.
	RequestLogPath string `yaml:"request_log_path"`
	// Concurrency is the number of product pages fetched in parallel.
	Concurrency int `yaml:"concurrency"`
	// FetchTimeout is a Go duration string, e.g. "60s".
	FetchTimeout string `yaml:"fetch_timeout"`
	// NewsFeedURL is the EMA news RSS feed.
	NewsFeedURL string `yaml:"news_feed_url"`
	// Withdrawn overrides the withdrawn register descriptor, whose site
	// layout is not as settled as the active register's.
	Withdrawn *register.Register `yaml:"withdrawn,omitempty"`
}

// Default returns the default configuration. Paths live under ~/.ematools;
// when the home directory cannot be determined they fall back to the
// working directory.
func Default() *Config {
	root := ".ematools"
	if home, err := os.UserHomeDir(); err == nil {
		root = filepath.Join(home, ".ematools")
	}

	return &Config{
		BaseURL:        register.DefaultBaseURL,
		CacheDir:       filepath.Join(root, "cache"),
		DatabasePath:   filepath.Join(root, "register.db"),
		RequestLogPath: filepath.Join(root, "requests.db"),
		Concurrency:    5,
		FetchTimeout:   "60s",
		NewsFeedURL:    "https://www.ema.europa.eu/en/rss.xml",
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".ematools", "config.yaml"), nil
}

// Load reads a config file and overlays it on the defaults. A missing file
// is not an error: the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads the config file from its default location.
func LoadDefault() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if _, err := time.ParseDuration(c.FetchTimeout); err != nil {
		return fmt.Errorf("invalid fetch_timeout %q: %w", c.FetchTimeout, err)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	return nil
}

// FetchTimeoutDuration returns the parsed fetch timeout.
func (c *Config) FetchTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// WithdrawnRegister returns the withdrawn register descriptor, honoring any
// configured override.
func (c *Config) WithdrawnRegister() register.Register {
	if c.Withdrawn != nil {
		reg := *c.Withdrawn
		if reg.Key == "" {
			reg.Key = register.WithdrawnHuman.Key
		}
		return reg
	}
	return register.WithdrawnHuman
}
