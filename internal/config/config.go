// Package config loads process configuration from FIGHTLOG_* environment
// variables. Command-line flags override what is loaded here.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration.
type Config struct {
	LogLevel    string `env:"FIGHTLOG_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"FIGHTLOG_LOG_FORMAT" envDefault:"text"`
	LogFile     string `env:"FIGHTLOG_LOG_FILE"`
	MetricsFile string `env:"FIGHTLOG_METRICS_FILE"`
	// Format is the command output format, text or json.
	Format  string `env:"FIGHTLOG_FORMAT" envDefault:"text"`
	Profile string `env:"FIGHTLOG_PROFILE"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
