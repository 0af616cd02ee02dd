package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var allEnvVars = []string{
	"SLACK_TOKEN", "HTTP_ADDR", "HTTP_PORT", "SLASH_COMMAND_PATH", "HEALTH_CHECK_TIMEOUT",
	"REQUEST_TIMEOUT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"COMMS_URL", "SERVICE_NAME", "COMMAND_SUBJECT", "EVENT_SUBJECT",
	"DATABASE_URL", "RUN_MIGRATIONS", "MIGRATION_PATH",
	"COMMANDS_FILE", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range allEnvVars {
		if v, ok := os.LookupEnv(env); ok {
			t.Cleanup(func() { os.Setenv(env, v) })
			os.Unsetenv(env)
		}
	}
	t.Cleanup(func() {
		for _, env := range allEnvVars {
			os.Unsetenv(env)
		}
	})
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(noEnvFile(t))
	if err != nil {
		t.Fatalf("config:config_test - unexpected error: %v", err)
	}

	if len(cfg.SlackTokens) != 0 {
		t.Errorf("config:config_test - SlackTokens = %v, want empty", cfg.SlackTokens)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("config:config_test - HTTPPort = %d, want 8080", cfg.HTTPPort)
	}
	if cfg.SlashCommandPath != "/slack/command" {
		t.Errorf("config:config_test - SlashCommandPath = %q", cfg.SlashCommandPath)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("config:config_test - RequestTimeout = %v, want 3s", cfg.RequestTimeout)
	}
	if cfg.RateLimitRPS != 0 || cfg.RateLimitBurst != 10 {
		t.Errorf("config:config_test - rate limit = %v/%d, want 0/10", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.COMMSURL != "" {
		t.Errorf("config:config_test - COMMSURL = %q, want empty", cfg.COMMSURL)
	}
	if cfg.COMMSName != "slashbot" {
		t.Errorf("config:config_test - COMMSName = %q, want %q", cfg.COMMSName, "slashbot")
	}
	if cfg.CommandSubject != "slashbot.command" || cfg.EventSubject != "slashbot.invoked" {
		t.Errorf("config:config_test - subjects = %q/%q", cfg.CommandSubject, cfg.EventSubject)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("config:config_test - DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.RunMigrations {
		t.Error("config:config_test - expected RunMigrations=false by default")
	}
	if cfg.MigrationPath != "migrations" {
		t.Errorf("config:config_test - MigrationPath = %q, want %q", cfg.MigrationPath, "migrations")
	}
	if cfg.CommandsFile != "" {
		t.Errorf("config:config_test - CommandsFile = %q, want empty", cfg.CommandsFile)
	}
	if cfg.HealthCheckTimeout != 5*time.Second {
		t.Errorf("config:config_test - HealthCheckTimeout = %v, want 5s", cfg.HealthCheckTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("config:config_test - LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("config:config_test - Addr() = %q, want :8080", cfg.Addr())
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	overrides := map[string]string{
		"SLACK_TOKEN":        "tok-a, tok-b,,",
		"HTTP_ADDR":          "127.0.0.1:9999",
		"SLASH_COMMAND_PATH": "/hooks/slash",
		"REQUEST_TIMEOUT":    "2s",
		"RATE_LIMIT_RPS":     "5.5",
		"RATE_LIMIT_BURST":   "3",
		"COMMS_URL":          "nats://custom:4222",
		"SERVICE_NAME":       "test-bot",
		"COMMAND_SUBJECT":    "custom.command",
		"EVENT_SUBJECT":      "custom.invoked",
		"DATABASE_URL":       "postgres://test@localhost/test",
		"RUN_MIGRATIONS":     "true",
		"COMMANDS_FILE":      "/tmp/commands.json",
		"LOG_LEVEL":          "debug",
	}
	for key, val := range overrides {
		os.Setenv(key, val)
	}

	cfg, err := LoadConfig(noEnvFile(t))
	if err != nil {
		t.Fatalf("config:config_test - unexpected error: %v", err)
	}

	if len(cfg.SlackTokens) != 2 || cfg.SlackTokens[0] != "tok-a" || cfg.SlackTokens[1] != "tok-b" {
		t.Errorf("config:config_test - SlackTokens = %q, want [tok-a tok-b]", cfg.SlackTokens)
	}
	if cfg.Addr() != "127.0.0.1:9999" {
		t.Errorf("config:config_test - Addr() = %q", cfg.Addr())
	}
	if cfg.SlashCommandPath != "/hooks/slash" {
		t.Errorf("config:config_test - SlashCommandPath = %q", cfg.SlashCommandPath)
	}
	if cfg.RequestTimeout != 2*time.Second {
		t.Errorf("config:config_test - RequestTimeout = %v, want 2s", cfg.RequestTimeout)
	}
	if cfg.RateLimitRPS != 5.5 || cfg.RateLimitBurst != 3 {
		t.Errorf("config:config_test - rate limit = %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.COMMSURL != "nats://custom:4222" || cfg.COMMSName != "test-bot" {
		t.Errorf("config:config_test - comms = %q/%q", cfg.COMMSURL, cfg.COMMSName)
	}
	if cfg.CommandSubject != "custom.command" || cfg.EventSubject != "custom.invoked" {
		t.Errorf("config:config_test - subjects = %q/%q", cfg.CommandSubject, cfg.EventSubject)
	}
	if cfg.DatabaseURL != "postgres://test@localhost/test" || !cfg.RunMigrations {
		t.Errorf("config:config_test - database settings not applied")
	}
	if cfg.CommandsFile != "/tmp/commands.json" {
		t.Errorf("config:config_test - CommandsFile = %q", cfg.CommandsFile)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("config:config_test - SlogLevel() = %v, want debug", cfg.SlogLevel())
	}
}

func TestLoadConfig_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "SLACK_TOKEN=from-file\nSERVICE_NAME=file-bot\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("config:config_test - write env file: %v", err)
	}
	os.Setenv("SERVICE_NAME", "from-env")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("config:config_test - unexpected error: %v", err)
	}
	if len(cfg.SlackTokens) != 1 || cfg.SlackTokens[0] != "from-file" {
		t.Errorf("config:config_test - SlackTokens = %q, want [from-file]", cfg.SlackTokens)
	}
	if cfg.COMMSName != "from-env" {
		t.Errorf("config:config_test - environment should win over .env, got %q", cfg.COMMSName)
	}
}

func TestLoadConfig_LogLevels(t *testing.T) {
	clearEnv(t)
	levels := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for level, want := range levels {
		os.Setenv("LOG_LEVEL", level)
		cfg, err := LoadConfig(noEnvFile(t))
		if err != nil {
			t.Fatalf("config:config_test - unexpected error for level %q: %v", level, err)
		}
		if cfg.LogLevel != level {
			t.Errorf("config:config_test - LogLevel = %q, want %q", cfg.LogLevel, level)
		}
		if cfg.SlogLevel() != want {
			t.Errorf("config:config_test - SlogLevel(%q) = %v, want %v", level, cfg.SlogLevel(), want)
		}
	}
}

func TestValidateForServe(t *testing.T) {
	valid := func() *Config {
		return &Config{
			SlackTokens:        []string{"tok"},
			SlashCommandPath:   "/slack/command",
			RequestTimeout:     3 * time.Second,
			HealthCheckTimeout: 5 * time.Second,
			RateLimitBurst:     10,
		}
	}

	if err := valid().ValidateForServe(); err != nil {
		t.Fatalf("config:config_test - valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no tokens", func(c *Config) { c.SlackTokens = nil }},
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"zero health timeout", func(c *Config) { c.HealthCheckTimeout = 0 }},
		{"relative path", func(c *Config) { c.SlashCommandPath = "slack" }},
		{"negative rps", func(c *Config) { c.RateLimitRPS = -1 }},
		{"zero burst with limit", func(c *Config) { c.RateLimitRPS = 1; c.RateLimitBurst = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if err := c.ValidateForServe(); err == nil {
				t.Errorf("config:config_test - expected error for %s", tt.name)
			}
		})
	}
}

func TestValidateForDB(t *testing.T) {
	if err := (&Config{}).ValidateForDB(); err == nil {
		t.Error("config:config_test - expected error without DATABASE_URL")
	}
	if err := (&Config{DatabaseURL: "postgres://x"}).ValidateForDB(); err != nil {
		t.Errorf("config:config_test - unexpected error: %v", err)
	}
}
