// Package config loads storefront settings from the environment (prefix
// FASTORDER_) and an optional fastorder.yaml in the working directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// APIBaseURL is the FastOrder backend root, e.g. http://localhost:8081.
	APIBaseURL string
	// StatePath is the local state file (token, user, cart).
	StatePath string

	HTTPTimeout   time.Duration
	RetryAttempts int
	RetryDelay    time.Duration

	// ScanTimeout bounds a single QR scan session.
	ScanTimeout time.Duration
	// TicketDir is where downloaded ticket QR images are written.
	TicketDir string
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FASTORDER")
	v.AutomaticEnv()

	v.SetDefault("api_base_url", "http://localhost:8081")
	v.SetDefault("state_path", defaultStatePath())
	v.SetDefault("http_timeout", "15s")
	v.SetDefault("retry_attempts", 3)
	v.SetDefault("retry_delay", "5s")
	v.SetDefault("scan_timeout", "60s")
	v.SetDefault("ticket_dir", ".")

	v.SetConfigName("fastorder")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		APIBaseURL:    v.GetString("api_base_url"),
		StatePath:     v.GetString("state_path"),
		HTTPTimeout:   v.GetDuration("http_timeout"),
		RetryAttempts: v.GetInt("retry_attempts"),
		RetryDelay:    v.GetDuration("retry_delay"),
		ScanTimeout:   v.GetDuration("scan_timeout"),
		TicketDir:     v.GetString("ticket_dir"),
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("api_base_url must not be empty")
	}
	return cfg, nil
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fastorder-state.json"
	}
	return filepath.Join(home, ".fastorder", "state.json")
}
