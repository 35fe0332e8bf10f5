// Package common provides shared utilities for stockview
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Valuation strategies for the portfolio view-model.
const (
	StrategyClient  = "client"  // positions derived locally from per-ticker last closes
	StrategySummary = "summary" // positions adopted from the backend /summary endpoint
)

// Config holds all configuration for stockview
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Backend     BackendConfig   `toml:"backend"`
	Portfolio   PortfolioConfig `toml:"portfolio"`
	Chart       ChartConfig     `toml:"chart"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// BackendConfig holds the stock backend API configuration
type BackendConfig struct {
	BaseURL          string `toml:"base_url"`
	Timeout          string `toml:"timeout"`
	RateLimit        int    `toml:"rate_limit"`        // requests per second
	PriceConcurrency int    `toml:"price_concurrency"` // parallel last-close lookups
}

// GetTimeout parses and returns the timeout duration
func (c *BackendConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 20 * time.Second
	}
	return d
}

// PortfolioConfig holds view-model defaults
type PortfolioConfig struct {
	DefaultName string `toml:"default_name"`
	DefaultID   int64  `toml:"default_id"` // 0 = use the remembered id, else create
	Strategy    string `toml:"strategy"`
}

// ChartConfig holds chart rendering defaults
type ChartConfig struct {
	Width           int    `toml:"width"`
	Height          int    `toml:"height"`
	RSIHeight       int    `toml:"rsi_height"`
	DefaultTicker   string `toml:"default_ticker"`
	DefaultRange    string `toml:"default_range"`
	DefaultInterval string `toml:"default_interval"`
}

// StorageConfig holds local storage configuration.
// Only the last-used portfolio id is persisted.
type StorageConfig struct {
	PrefsPath string `toml:"prefs_path"` // empty = in-memory
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Backend: BackendConfig{
			BaseURL:          "http://localhost:8000/api",
			Timeout:          "20s",
			RateLimit:        10,
			PriceConcurrency: 4,
		},
		Portfolio: PortfolioConfig{
			DefaultName: "My Portfolio",
			Strategy:    StrategyClient,
		},
		Chart: ChartConfig{
			Width:           1000,
			Height:          420,
			RSIHeight:       160,
			DefaultTicker:   "AAPL",
			DefaultRange:    "1y",
			DefaultInterval: "1d",
		},
		Storage: StorageConfig{
			PrefsPath: "data/prefs",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	validateStrategy(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("STOCKVIEW_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("STOCKVIEW_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("STOCKVIEW_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("STOCKVIEW_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	// VITE_API_BASE is honoured so an existing front-end .env keeps working
	if base := os.Getenv("STOCKVIEW_API_BASE"); base != "" {
		config.Backend.BaseURL = base
	} else if base := os.Getenv("VITE_API_BASE"); base != "" {
		config.Backend.BaseURL = base
	}

	if v := os.Getenv("STOCKVIEW_API_TIMEOUT"); v != "" {
		config.Backend.Timeout = v
	}

	if v := os.Getenv("STOCKVIEW_PORTFOLIO_STRATEGY"); v != "" {
		config.Portfolio.Strategy = v
	}

	if v := os.Getenv("STOCKVIEW_PORTFOLIO_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Portfolio.DefaultID = id
		}
	}

	if path := os.Getenv("STOCKVIEW_DATA_PATH"); path != "" {
		config.Storage.PrefsPath = filepath.Join(path, "prefs")
	}
}

// validateStrategy ensures Portfolio.Strategy is one of the known strategies,
// defaulting to the client-side derivation.
func validateStrategy(config *Config) {
	s := strings.ToLower(strings.TrimSpace(config.Portfolio.Strategy))
	if s != StrategyClient && s != StrategySummary {
		s = StrategyClient
	}
	config.Portfolio.Strategy = s
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ServiceURL returns the local URL the web viewer listens on.
func (c *Config) ServiceURL() string {
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}
