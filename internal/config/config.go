package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the talkingdb CLI configuration.
type Config struct {
	Client    ClientConfig    `yaml:"client"`
	Retry     RetryConfig     `yaml:"retry"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Match     MatchConfig     `yaml:"match"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ClientConfig holds the service address and per-attempt timeout.
type ClientConfig struct {
	Endpoint   string `yaml:"endpoint"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// RetryConfig holds the backoff schedule.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BaseDelayMs int `yaml:"base_delay_ms"`
	MaxDelayMs  int `yaml:"max_delay_ms"`
	JitterMs    int `yaml:"jitter_ms"`
}

// RateLimitConfig throttles requests; zero disables it.
type RateLimitConfig struct {
	RequestsPerSec float64 `yaml:"requests_per_sec"`
	Burst          int     `yaml:"burst"`
}

// MatchConfig holds defaults for the match command.
type MatchConfig struct {
	Workers int `yaml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Timeout returns the per-attempt timeout.
func (c ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// BaseDelay returns the first backoff wait.
func (r RetryConfig) BaseDelay() time.Duration {
	return time.Duration(r.BaseDelayMs) * time.Millisecond
}

// MaxDelay returns the backoff cap.
func (r RetryConfig) MaxDelay() time.Duration {
	return time.Duration(r.MaxDelayMs) * time.Millisecond
}

// Jitter returns the maximum random wait added to each backoff.
func (r RetryConfig) Jitter() time.Duration {
	return time.Duration(r.JitterMs) * time.Millisecond
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from the YAML file at path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML, substitutes ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration with every default applied and no endpoint.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	c.Client.Endpoint = strings.TrimRight(c.Client.Endpoint, "/")
	if c.Client.TimeoutSec <= 0 {
		c.Client.TimeoutSec = 30
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 5
	}
	if c.Retry.BaseDelayMs <= 0 {
		c.Retry.BaseDelayMs = 1000
	}
	if c.Retry.MaxDelayMs <= 0 {
		c.Retry.MaxDelayMs = 10000
	}
	if c.Retry.JitterMs < 0 {
		c.Retry.JitterMs = 0
	}
	if c.Match.Workers <= 0 {
		c.Match.Workers = 1
	}
}

// Validate checks the configuration for correctness.
// The endpoint may be empty here; the CLI also accepts it as a flag.
func (c *Config) Validate() error {
	if c.Retry.MaxDelayMs < c.Retry.BaseDelayMs {
		return fmt.Errorf("retry.max_delay_ms (%d) must be >= retry.base_delay_ms (%d)",
			c.Retry.MaxDelayMs, c.Retry.BaseDelayMs)
	}
	if c.RateLimit.RequestsPerSec < 0 {
		return fmt.Errorf("rate_limit.requests_per_sec must not be negative, got %v", c.RateLimit.RequestsPerSec)
	}
	if c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit.burst must not be negative, got %d", c.RateLimit.Burst)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
		// ok
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}

// findConfigPath returns config/<env>.yaml relative to the working directory.
func findConfigPath(env string) string {
	return filepath.Join("config", fmt.Sprintf("%s.yaml", env))
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
