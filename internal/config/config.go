// Package config loads leadgrid configuration from a JSON file under the
// XDG config path, a .env file, and LEADGRID_* environment variables, in
// that order (later wins). The backend base URL is injected here and never
// hardcoded at call sites.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API       APIConfig
	Poll      PollConfig
	Storage   StorageConfig
	Dashboard DashboardConfig
	Log       LogConfig
}

type APIConfig struct {
	BaseURL        string
	RequestTimeout string
	UploadTimeout  string
}

type PollConfig struct {
	Interval string
}

type StorageConfig struct {
	DataDir string
}

type DashboardConfig struct {
	// RetainBackgroundTabs keeps a background tab's in-flight job polling
	// when the user switches away. Set false to cancel it on switch.
	RetainBackgroundTabs bool
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL:        "http://localhost:5000",
			RequestTimeout: "30s",
			UploadTimeout:  "5m",
		},
		Poll: PollConfig{
			Interval: "2s",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Dashboard: DashboardConfig{
			RetainBackgroundTabs: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file backend, a .env file in the
// working directory if present, and environment variables. Environment
// variables (LEADGRID_*) override file values.
func Load() (Config, error) {
	_ = godotenv.Load()
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)

	if cfg.API.BaseURL == "" {
		return Config{}, fmt.Errorf("missing required config: api.base_url (env LEADGRID_API_BASE_URL)")
	}
	for _, d := range []struct{ key, val string }{
		{"api.request_timeout", cfg.API.RequestTimeout},
		{"api.upload_timeout", cfg.API.UploadTimeout},
		{"poll.interval", cfg.Poll.Interval},
	} {
		if _, err := time.ParseDuration(d.val); err != nil {
			return Config{}, fmt.Errorf("invalid duration for %s: %w", d.key, err)
		}
	}
	return cfg, nil
}

// RequestTimeout returns the parsed per-request timeout.
func (c Config) RequestTimeout() time.Duration { return mustDuration(c.API.RequestTimeout, 30*time.Second) }

// UploadTimeout returns the parsed timeout for large multipart uploads.
func (c Config) UploadTimeout() time.Duration { return mustDuration(c.API.UploadTimeout, 5*time.Minute) }

// PollInterval returns the parsed progress polling interval.
func (c Config) PollInterval() time.Duration { return mustDuration(c.Poll.Interval, 2*time.Second) }

func mustDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "leadgrid-data"
		}
	}
	return filepath.Join(dir, "leadgrid")
}

func configFilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "leadgrid", "config.json")
}
