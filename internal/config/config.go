// Package config provides server configuration loaded from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const logPrefix = "config:LoadConfig"

// Config holds slashbot configuration.
type Config struct {
	// Slack shared-secret tokens, comma-separated. Any one of them authenticates a request.
	SlackTokens []string `envconfig:"SLACK_TOKEN"`

	// HTTP webhook transport
	HTTPAddr           string        `envconfig:"HTTP_ADDR"`
	HTTPPort           int           `envconfig:"HTTP_PORT" default:"8080"`
	SlashCommandPath   string        `envconfig:"SLASH_COMMAND_PATH" default:"/slack/command"`
	HealthCheckTimeout time.Duration `envconfig:"HEALTH_CHECK_TIMEOUT" default:"5s"`

	// Per-invocation deadline; Slack gives a slash command three seconds.
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"3s"`

	// Webhook rate limit; 0 disables it.
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"0"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"10"`

	// COMMS: empty COMMSURL disables the NATS transport and event publishing.
	COMMSURL       string `envconfig:"COMMS_URL"`
	COMMSName      string `envconfig:"SERVICE_NAME" default:"slashbot"`
	CommandSubject string `envconfig:"COMMAND_SUBJECT" default:"slashbot.command"`
	EventSubject   string `envconfig:"EVENT_SUBJECT" default:"slashbot.invoked"`

	// Database: empty DatabaseURL disables the audit log.
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	RunMigrations bool   `envconfig:"RUN_MIGRATIONS" default:"false"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"migrations"`

	// Declarative commands
	CommandsFile string `envconfig:"COMMANDS_FILE"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads .env files (when present) and then configuration from environment variables.
// Variables already set in the environment win over .env values.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("%s - failed to load %s: %w", logPrefix, f, err)
		}
		slog.Debug(fmt.Sprintf("%s - Loaded env file %s", logPrefix, f))
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	c.SlackTokens = cleanTokens(c.SlackTokens)
	return &c, nil
}

// ValidateForServe checks required config when running the bot server.
func (c *Config) ValidateForServe() error {
	if len(c.SlackTokens) == 0 {
		return fmt.Errorf("%s - SLACK_TOKEN is required for serve", logPrefix)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s - REQUEST_TIMEOUT must be positive", logPrefix)
	}
	if c.HealthCheckTimeout <= 0 {
		return fmt.Errorf("%s - HEALTH_CHECK_TIMEOUT must be positive", logPrefix)
	}
	if !strings.HasPrefix(c.SlashCommandPath, "/") {
		return fmt.Errorf("%s - SLASH_COMMAND_PATH must start with /", logPrefix)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("%s - RATE_LIMIT_RPS must not be negative", logPrefix)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("%s - RATE_LIMIT_BURST must be at least 1 when rate limiting", logPrefix)
	}
	return nil
}

// ValidateForDB checks required config when running DB-dependent commands (migrate).
func (c *Config) ValidateForDB() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%s - DATABASE_URL is required", logPrefix)
	}
	return nil
}

// Addr returns the HTTP listen address, preferring HTTP_ADDR over HTTP_PORT.
func (c *Config) Addr() string {
	if c.HTTPAddr != "" {
		return c.HTTPAddr
	}
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// SlogLevel maps LOG_LEVEL onto a slog.Level. Unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func cleanTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
