package config

import (
	"path/filepath"
	"testing"
	"time"
)

// emptyBackend reports no stored keys.
type emptyBackend struct{}

func (emptyBackend) GetString(string) (string, bool, error) { return "", false, nil }
func (emptyBackend) GetInt(string) (int, bool, error)       { return 0, false, nil }
func (emptyBackend) GetBool(string) (bool, bool, error)     { return false, false, nil }
func (emptyBackend) SetString(string, string) error         { return nil }
func (emptyBackend) SetInt(string, int) error               { return nil }
func (emptyBackend) SetBool(string, bool) error             { return nil }

func TestDefaults(t *testing.T) {
	cfg, err := loadWith(emptyBackend{})
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:5000" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if got := cfg.RequestTimeout(); got != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", got)
	}
	if got := cfg.UploadTimeout(); got != 5*time.Minute {
		t.Errorf("UploadTimeout = %v, want 5m", got)
	}
	if got := cfg.PollInterval(); got != 2*time.Second {
		t.Errorf("PollInterval = %v, want 2s", got)
	}
	if !cfg.Dashboard.RetainBackgroundTabs {
		t.Error("RetainBackgroundTabs default = false, want true")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LEADGRID_API_BASE_URL", "http://10.0.0.1:5000")
	t.Setenv("LEADGRID_POLL_INTERVAL", "500ms")
	t.Setenv("LEADGRID_DASHBOARD_RETAIN_BACKGROUND_TABS", "false")

	cfg, err := loadWith(emptyBackend{})
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	if cfg.API.BaseURL != "http://10.0.0.1:5000" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if got := cfg.PollInterval(); got != 500*time.Millisecond {
		t.Errorf("PollInterval = %v, want 500ms", got)
	}
	if cfg.Dashboard.RetainBackgroundTabs {
		t.Error("RetainBackgroundTabs = true, want false")
	}
}

func TestInvalidDurationRejected(t *testing.T) {
	t.Setenv("LEADGRID_API_REQUEST_TIMEOUT", "not-a-duration")

	if _, err := loadWith(emptyBackend{}); err == nil {
		t.Error("loadWith accepted an invalid duration")
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	b := newFileBackend(path)
	if err := b.SetString("api.base_url", "http://example.com"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	if err := b.SetBool("dashboard.retain_background_tabs", false); err != nil {
		t.Fatalf("SetBool: %v", err)
	}

	b2 := newFileBackend(path)
	s, ok, err := b2.GetString("api.base_url")
	if err != nil || !ok || s != "http://example.com" {
		t.Errorf("GetString = (%q, %v, %v)", s, ok, err)
	}
	v, ok, err := b2.GetBool("dashboard.retain_background_tabs")
	if err != nil || !ok || v != false {
		t.Errorf("GetBool = (%v, %v, %v)", v, ok, err)
	}
}

func TestConfigFromFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	b := newFileBackend(path)
	b.SetString("poll.interval", "10s")

	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if got := cfg.PollInterval(); got != 10*time.Second {
		t.Errorf("PollInterval = %v, want 10s", got)
	}
}

func TestShowAllCoversEveryKey(t *testing.T) {
	cfg, err := loadWith(emptyBackend{})
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	infos := ShowAll(cfg)
	if len(infos) != len(ValidKeys()) {
		t.Fatalf("ShowAll returned %d entries, want %d", len(infos), len(ValidKeys()))
	}
	for _, info := range infos {
		if info.Key == "" || info.EnvVar == "" {
			t.Errorf("incomplete key info: %+v", info)
		}
	}
}
