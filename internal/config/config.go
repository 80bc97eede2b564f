package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

type HTTP struct {
	TimeoutSec int `json:"timeout_sec"`
}

type EastMoney struct {
	Enabled     bool   `json:"enabled"`
	Endpoint    string `json:"endpoint"`
	Priority    int    `json:"priority"`
	MaxAttempts int    `json:"max_attempts"`
}

type Tencent struct {
	Enabled     bool   `json:"enabled"`
	Endpoint    string `json:"endpoint"`
	Priority    int    `json:"priority"`
	MaxAttempts int    `json:"max_attempts"`
}

type Yahoo struct {
	Enabled     bool `json:"enabled"`
	Priority    int  `json:"priority"`
	MaxAttempts int  `json:"max_attempts"`
}

type Search struct {
	Enabled    bool   `json:"enabled"`
	Endpoint   string `json:"endpoint"`
	APIKey     string `json:"api_key"`
	MaxResults int    `json:"max_results"`
}

type Report struct {
	Generator string `json:"generator"` // "template" or "openai"
	Model     string `json:"model"`
	APIKey    string `json:"api_key"`
	BaseURL   string `json:"base_url"`
}

type Config struct {
	HTTP      HTTP      `json:"http"`
	EastMoney EastMoney `json:"eastmoney"`
	Tencent   Tencent   `json:"tencent"`
	Yahoo     Yahoo     `json:"yahoo"`
	Search    Search    `json:"search"`
	Report    Report    `json:"report"`
}

func Default() Config {
	return Config{
		HTTP: HTTP{TimeoutSec: 15},
		EastMoney: EastMoney{
			Enabled:     true,
			Priority:    1,
			MaxAttempts: 3,
		},
		Tencent: Tencent{
			Enabled:     true,
			Priority:    2,
			MaxAttempts: 3,
		},
		Yahoo: Yahoo{
			Enabled:     true,
			Priority:    3,
			MaxAttempts: 3,
		},
		Search: Search{
			Enabled:    false,
			MaxResults: 10,
		},
		Report: Report{
			Generator: "template",
			Model:     "gpt-4o-mini",
		},
	}
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields for secrecy.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HTTP_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.HTTP.TimeoutSec = x
		}
	}
	if v := os.Getenv("EASTMONEY_ENABLED"); v != "" {
		cfg.EastMoney.Enabled = parseBool(v, cfg.EastMoney.Enabled)
	}
	if v := os.Getenv("EASTMONEY_ENDPOINT"); v != "" {
		cfg.EastMoney.Endpoint = v
	}
	if v := os.Getenv("TENCENT_ENABLED"); v != "" {
		cfg.Tencent.Enabled = parseBool(v, cfg.Tencent.Enabled)
	}
	if v := os.Getenv("TENCENT_ENDPOINT"); v != "" {
		cfg.Tencent.Endpoint = v
	}
	if v := os.Getenv("YAHOO_ENABLED"); v != "" {
		cfg.Yahoo.Enabled = parseBool(v, cfg.Yahoo.Enabled)
	}
	if v := os.Getenv("SEARCH_ENABLED"); v != "" {
		cfg.Search.Enabled = parseBool(v, cfg.Search.Enabled)
	}
	if v := os.Getenv("SEARCH_ENDPOINT"); v != "" {
		cfg.Search.Endpoint = v
	}
	if v := os.Getenv("TAVILY_API_KEY"); v != "" {
		cfg.Search.APIKey = v
		cfg.Search.Enabled = true
	}
	if v := os.Getenv("SEARCH_MAX_RESULTS"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Search.MaxResults = x
		}
	}
	if v := os.Getenv("REPORT_GENERATOR"); v != "" {
		cfg.Report.Generator = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.Report.Model = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Report.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Report.BaseURL = v
	}
}

func parseBool(v string, def bool) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	}
	return def
}
