package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no --config flag is given
const DefaultPath = "campaign-console.yaml"

// Config represents the console configuration
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// APIConfig contains the backend connection settings
type APIConfig struct {
	BaseURL   string `yaml:"base_url" env:"CONSOLE_API_URL"`
	UserAgent string `yaml:"user_agent"`
}

// SessionConfig contains where the login session is kept
type SessionConfig struct {
	Path string `yaml:"path" env:"CONSOLE_SESSION_PATH"`
}

// StoreConfig contains collection settings
type StoreConfig struct {
	PageSize int `yaml:"page_size" env:"CONSOLE_PAGE_SIZE"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level" env:"CONSOLE_LOG_LEVEL"`
	Format string `yaml:"format" env:"CONSOLE_LOG_FORMAT"`
}

// MetricsConfig contains Prometheus settings. The console is short lived,
// so metrics are written to a textfile on exit instead of being served.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Textfile string `yaml:"textfile"`
}

// Load reads configuration from a YAML file, then applies a .env file in
// the working directory and CONSOLE_* environment variables. A missing
// file is accepted when CONSOLE_API_URL is set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && os.Getenv("CONSOLE_API_URL") != "":
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) setDefaults() error {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.UserAgent == "" {
		c.API.UserAgent = "campaign-console"
	}

	if c.Session.Path == "" {
		c.Session.Path = "~/.campaign-console/session.db"
	}
	path, err := expandHome(c.Session.Path)
	if err != nil {
		return err
	}
	c.Session.Path = path

	if c.Store.PageSize == 0 {
		c.Store.PageSize = 10
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an http or https URL: %q", c.API.BaseURL)
	}

	if c.Store.PageSize < 1 || c.Store.PageSize > 100 {
		return fmt.Errorf("store.page_size must be between 1 and 100")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error")
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text")
	}

	if c.Metrics.Textfile != "" && !c.Metrics.Enabled {
		return fmt.Errorf("metrics.textfile requires metrics.enabled")
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
