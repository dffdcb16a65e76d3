// Package config provides configuration management for the Claude Code API server.
// It handles loading and parsing an optional YAML configuration file, applies
// environment variable overrides, and provides structured access to application
// settings including the server port, the client API key, and the Claude Code
// CLI invocation knobs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application's configuration. It is built once at
// process start and never mutated afterwards; every component receives it
// explicitly instead of reading ambient state.
type Config struct {
	// Port is the network port on which the API server will listen.
	Port int `yaml:"port"`

	// APIKey is the secret clients must present as a bearer token.
	// The server refuses to start without one.
	APIKey string `yaml:"api-key"`

	// ClaudePath is an explicit path to the Claude Code CLI binary.
	// When empty the binary is located via PATH lookup.
	ClaudePath string `yaml:"claude-code-path"`

	// LogLevel is the logrus level name (trace, debug, info, warn, error).
	LogLevel string `yaml:"log-level"`

	// LogToFile switches log output to a rotating file under logs/.
	LogToFile bool `yaml:"log-to-file"`

	// RequestLog enables detailed request/response body logging.
	RequestLog bool `yaml:"request-log"`

	// DefaultModel is used when a request names a model the alias table
	// does not know. When empty such requests fail with 400.
	DefaultModel string `yaml:"default-model"`

	// AllowedTools is the tool allowlist passed to the CLI per invocation.
	AllowedTools []string `yaml:"allowed-tools"`

	// PermissionMode is the CLI permission mode. The server runs the CLI
	// non-interactively, so this defaults to bypassPermissions.
	PermissionMode string `yaml:"permission-mode"`

	// MaxThinkingTokens bounds the CLI's internal thinking budget.
	MaxThinkingTokens int `yaml:"max-thinking-tokens"`

	// RequestTimeout bounds a single CLI invocation. The subprocess is
	// killed when the timeout elapses or the client disconnects.
	RequestTimeout time.Duration `yaml:"request-timeout"`
}

// Environment variable names recognized by Load. Environment values always
// win over values from the YAML file, so a file-less deployment configured
// purely through the environment works.
const (
	EnvAPIKey            = "API_KEY"
	EnvPort              = "PORT"
	EnvClaudePath        = "CLAUDE_CODE_PATH"
	EnvLogLevel          = "LOG_LEVEL"
	EnvLogToFile         = "LOG_TO_FILE"
	EnvRequestLog        = "REQUEST_LOG"
	EnvDefaultModel      = "DEFAULT_MODEL"
	EnvAllowedTools      = "ALLOWED_TOOLS"
	EnvPermissionMode    = "PERMISSION_MODE"
	EnvMaxThinkingTokens = "MAX_THINKING_TOKENS"
	EnvRequestTimeout    = "REQUEST_TIMEOUT"
)

// Default configuration values applied before the file and environment
// are consulted.
const (
	DefaultPort              = 8000
	DefaultLogLevel          = "info"
	DefaultPermissionMode    = "bypassPermissions"
	DefaultMaxThinkingTokens = 8000
	DefaultRequestTimeout    = 5 * time.Minute
)

// DefaultAllowedTools is the read-only tool set handed to the CLI when no
// allowlist is configured.
var DefaultAllowedTools = []string{"Read", "Grep", "Glob", "LS"}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variable overrides, in that order. An empty configFile skips
// the file step entirely. The result is validated before being returned.
func Load(configFile string) (*Config, error) {
	cfg := &Config{
		Port:              DefaultPort,
		LogLevel:          DefaultLogLevel,
		PermissionMode:    DefaultPermissionMode,
		MaxThinkingTokens: DefaultMaxThinkingTokens,
		RequestTimeout:    DefaultRequestTimeout,
		AllowedTools:      append([]string(nil), DefaultAllowedTools...),
	}

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides config fields from the process environment.
func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvPort, v, err)
		}
		c.Port = port
	}
	if v := os.Getenv(EnvClaudePath); v != "" {
		c.ClaudePath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvLogToFile); v != "" {
		c.LogToFile = parseBool(v)
	}
	if v := os.Getenv(EnvRequestLog); v != "" {
		c.RequestLog = parseBool(v)
	}
	if v := os.Getenv(EnvDefaultModel); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv(EnvAllowedTools); v != "" {
		tools := make([]string, 0)
		for _, tool := range strings.Split(v, ",") {
			if tool = strings.TrimSpace(tool); tool != "" {
				tools = append(tools, tool)
			}
		}
		c.AllowedTools = tools
	}
	if v := os.Getenv(EnvPermissionMode); v != "" {
		c.PermissionMode = v
	}
	if v := os.Getenv(EnvMaxThinkingTokens); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvMaxThinkingTokens, v, err)
		}
		c.MaxThinkingTokens = n
	}
	if v := os.Getenv(EnvRequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvRequestTimeout, v, err)
		}
		c.RequestTimeout = d
	}
	return nil
}

// validate rejects configurations the server cannot serve with.
func (c *Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("no API key configured: set %s or api-key in the config file", EnvAPIKey)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Port)
	}
	if c.MaxThinkingTokens < 0 {
		return fmt.Errorf("invalid max-thinking-tokens %d: must not be negative", c.MaxThinkingTokens)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request-timeout %s: must be positive", c.RequestTimeout)
	}
	return nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
