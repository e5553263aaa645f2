package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "api.base_url", typ: kString, env: "LEADGRID_API_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.API.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.API.BaseURL },
	},
	{
		key: "api.request_timeout", typ: kString, env: "LEADGRID_API_REQUEST_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.API.RequestTimeout = v.(string) },
		extract: func(cfg Config) any { return cfg.API.RequestTimeout },
	},
	{
		key: "api.upload_timeout", typ: kString, env: "LEADGRID_API_UPLOAD_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.API.UploadTimeout = v.(string) },
		extract: func(cfg Config) any { return cfg.API.UploadTimeout },
	},
	{
		key: "poll.interval", typ: kString, env: "LEADGRID_POLL_INTERVAL",
		apply:   func(cfg *Config, v any) { cfg.Poll.Interval = v.(string) },
		extract: func(cfg Config) any { return cfg.Poll.Interval },
	},
	{
		key: "storage.data_dir", typ: kString, env: "LEADGRID_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "dashboard.retain_background_tabs", typ: kBool, env: "LEADGRID_DASHBOARD_RETAIN_BACKGROUND_TABS",
		apply:   func(cfg *Config, v any) { cfg.Dashboard.RetainBackgroundTabs = v.(bool) },
		extract: func(cfg Config) any { return cfg.Dashboard.RetainBackgroundTabs },
	},
	{
		key: "log.level", typ: kString, env: "LEADGRID_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b Backend) error {
	for _, s := range specs {
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kBool:
			v, ok, err := b.GetBool(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		raw, ok := os.LookupEnv(s.env)
		if !ok || raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			}
		case kBool:
			if b, err := strconv.ParseBool(raw); err == nil {
				s.apply(cfg, b)
			}
		}
	}
}
