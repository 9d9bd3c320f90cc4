package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Fundwatch
type Config struct {
	Environment string        `toml:"environment"`
	Funds       []string      `toml:"funds"` // fund codes tracked by default
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds storage paths.
type StorageConfig struct {
	Path string `toml:"path"` // BadgerHold data directory
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	FundAPI FundAPIConfig `toml:"fundapi"`
	Gemini  GeminiConfig  `toml:"gemini"`
}

// FundAPIConfig holds the market-data API configuration.
type FundAPIConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"` // requests per second
	Timeout   string `toml:"timeout"`
	Benchmark string `toml:"benchmark"` // default benchmark index code
}

// GetTimeout parses and returns the timeout duration
func (c *FundAPIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/fundwatch",
		},
		Clients: ClientsConfig{
			FundAPI: FundAPIConfig{
				BaseURL:   "http://localhost:8090/api/market-data",
				RateLimit: 4,
				Timeout:   "30s",
				Benchmark: "sh000300",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

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

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FUNDWATCH_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FUNDWATCH_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FUNDWATCH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FUNDWATCH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FUNDWATCH_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if url := os.Getenv("FUNDWATCH_FUNDAPI_URL"); url != "" {
		config.Clients.FundAPI.BaseURL = url
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Clients.Gemini.APIKey = key
	}

	if codes := os.Getenv("FUNDWATCH_FUNDS"); codes != "" {
		var funds []string
		for _, c := range strings.Split(codes, ",") {
			if c = strings.TrimSpace(c); c != "" {
				funds = append(funds, c)
			}
		}
		if len(funds) > 0 {
			config.Funds = funds
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
