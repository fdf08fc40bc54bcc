package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// CacheTTLs controls how long each cached entity class is served without a
// refetch.
type CacheTTLs struct {
	Feed   string `yaml:"feed"`
	Likes  string `yaml:"likes"`
	Topics string `yaml:"topics"`
	Stats  string `yaml:"stats"`
}

type Config struct {
	BaseURL        string    `yaml:"base_url"`
	RequestTimeout string    `yaml:"request_timeout,omitempty"`
	PageSize       int       `yaml:"page_size,omitempty"`
	TTL            CacheTTLs `yaml:"ttl,omitempty"`
}

func durationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// RequestTimeoutDuration returns the transport timeout, defaulting to 30s.
func (c *Config) RequestTimeoutDuration() time.Duration {
	return durationOr(c.RequestTimeout, 30*time.Second)
}

// FeedTTL returns the feed staleness window, defaulting to 5m.
func (c *Config) FeedTTL() time.Duration {
	return durationOr(c.TTL.Feed, 5*time.Minute)
}

// LikesTTL returns the like-set staleness window, defaulting to 5m.
func (c *Config) LikesTTL() time.Duration {
	return durationOr(c.TTL.Likes, 5*time.Minute)
}

// TopicsTTL returns the topic catalog staleness window, defaulting to 10m.
func (c *Config) TopicsTTL() time.Duration {
	return durationOr(c.TTL.Topics, 10*time.Minute)
}

// StatsTTL returns the like-count staleness window, defaulting to 5m.
func (c *Config) StatsTTL() time.Duration {
	return durationOr(c.TTL.Stats, 5*time.Minute)
}

// GetPageSize returns the feed page size, defaulting to 20.
func (c *Config) GetPageSize() int {
	if c.PageSize <= 0 {
		return 20
	}
	return c.PageSize
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "scinews", "config.yaml")
}

func SessionPath() string {
	return filepath.Join(xdg.DataHome, "scinews", "session.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				return defaults, nil
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url scheme must be http or https, got %q", u.Scheme)
	}
	return nil
}
