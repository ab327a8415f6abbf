package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Travis   TravisConfig   `yaml:"travis"`
	API      APIConfig      `yaml:"api"`
}

// ServerConfig represents the server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"` // Empty slice means allow all origins
	MaxBodySize    int64    `yaml:"max_body_size"`   // Maximum request body size in bytes (default: 1MB)
}

// DatabaseConfig represents the database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// TravisConfig represents the Travis CI connection settings.
// URL and Token are optional: when both are set they seed the default node.
type TravisConfig struct {
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	DefaultNode string `yaml:"default_node"`
	Timeout     int    `yaml:"timeout"` // Request timeout in seconds (default: 30)
}

// RequestTimeout returns the configured timeout as a duration
func (c TravisConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Seeded reports whether the configuration declares a default node
func (c TravisConfig) Seeded() bool {
	return c.URL != "" && c.Token != ""
}

// APIConfig represents the API configuration
type APIConfig struct {
	Keys []string `yaml:"keys"`
}

// Load loads the configuration from the given file path
func Load(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // Trusted file path input
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}

	applyEnvVars(config)
	setDefaults(config)

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvVars applies environment variables to the configuration
func applyEnvVars(config *Config) {
	if port := os.Getenv("TRAVISCONNECT_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("TRAVISCONNECT_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if path := os.Getenv("TRAVISCONNECT_DATABASE_PATH"); path != "" {
		config.Database.Path = path
	}

	if u := os.Getenv("TRAVISCONNECT_TRAVIS_URL"); u != "" {
		config.Travis.URL = u
	}
	if token := os.Getenv("TRAVISCONNECT_TRAVIS_TOKEN"); token != "" {
		config.Travis.Token = token
	}
	if timeout := os.Getenv("TRAVISCONNECT_TRAVIS_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil && t > 0 {
			config.Travis.Timeout = t
		}
	}
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.MaxBodySize == 0 {
		config.Server.MaxBodySize = 1 << 20 // 1MB default
	}

	if config.Database.Path == "" {
		config.Database.Path = "./travisconnect.db"
	}

	if config.Travis.Timeout == 0 {
		config.Travis.Timeout = 30
	}
	if config.Travis.DefaultNode == "" {
		config.Travis.DefaultNode = "default"
	}
}

// GetLogLevel returns the log level from the environment
func GetLogLevel() string {
	levelStr := os.Getenv("TRAVISCONNECT_LOG_LEVEL")
	switch levelStr {
	case "debug", "info", "warn", "error":
		return levelStr
	default:
		return "info"
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d (must be between 1 and 65535)", cfg.Server.Port)
	}

	if cfg.Server.MaxBodySize < 0 {
		return fmt.Errorf("invalid server.max_body_size: %d (must be non-negative)", cfg.Server.MaxBodySize)
	}
	if cfg.Server.MaxBodySize > 100<<20 {
		return fmt.Errorf("invalid server.max_body_size: %d (must be less than 100MB)", cfg.Server.MaxBodySize)
	}

	if cfg.Travis.Timeout < 0 {
		return fmt.Errorf("invalid travis.timeout: %d (must be positive)", cfg.Travis.Timeout)
	}
	if cfg.Travis.URL != "" {
		u, err := url.Parse(cfg.Travis.URL)
		if err != nil {
			return fmt.Errorf("invalid travis.url: %v", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid travis.url: scheme must be http or https")
		}
		if cfg.Travis.Token == "" {
			return fmt.Errorf("travis.token is required when travis.url is set")
		}
	}

	if len(cfg.API.Keys) == 0 {
		return fmt.Errorf("at least one api.key is required")
	}
	for i, key := range cfg.API.Keys {
		if key == "" {
			return fmt.Errorf("api.keys[%d] cannot be empty", i)
		}
	}

	return nil
}
