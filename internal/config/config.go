// Package config loads tracker configuration: defaults, overridden by an
// optional YAML file, overridden by environment variables.
package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v6"
	"github.com/ghodss/yaml"
)

// GeminiConfig configures the external parser. The API key is deliberately
// environment-only and never read from the config file.
type GeminiConfig struct {
	Model  string `json:"model" env:"BANKNOTE_GEMINI_MODEL"`
	APIKey string `json:"-" env:"GEMINI_API_KEY"`
}

// Config is the full tracker configuration.
type Config struct {
	// DataDir holds the persistent store's slot files.
	DataDir string `json:"dataDir" env:"BANKNOTE_DATA_DIR"`

	// ListenAddr is the HTTP API bind address.
	ListenAddr string `json:"listenAddr" env:"BANKNOTE_LISTEN_ADDR"`

	// ReminderSchedule is the cron expression for the debt reminder sweep.
	ReminderSchedule string `json:"reminderSchedule" env:"BANKNOTE_REMINDER_SCHEDULE"`

	Gemini GeminiConfig `json:"gemini"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:          ".banknote",
		ListenAddr:       ":8080",
		ReminderSchedule: "@daily",
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
	}
}

// Read assembles the configuration. An empty path skips the file layer; a
// named file that cannot be read or parsed is an error rather than a silent
// fallback.
func Read(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("read config from environment: %w", err)
	}

	// Fill whatever the file and environment left empty.
	if err := mergo.Merge(&cfg, Default()); err != nil {
		return nil, fmt.Errorf("merge config defaults: %w", err)
	}

	return &cfg, nil
}
