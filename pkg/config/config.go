package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Widget  WidgetConfig  `json:"widget"`
	Backend BackendConfig `json:"backend"`
	Retry   RetryConfig   `json:"retry"`
	History HistoryConfig `json:"history"`
}

type WidgetConfig struct {
	Host  string `json:"host" env:"CHATWIDGET_WIDGET_HOST"`
	Port  int    `json:"port" env:"CHATWIDGET_WIDGET_PORT"`
	Title string `json:"title" env:"CHATWIDGET_WIDGET_TITLE"`
}

type BackendConfig struct {
	Endpoint  string `json:"endpoint" env:"CHATWIDGET_BACKEND_ENDPOINT"`
	TimeoutMS int    `json:"timeout_ms" env:"CHATWIDGET_BACKEND_TIMEOUT_MS"`
}

type RetryConfig struct {
	MaxRetries int `json:"max_retries" env:"CHATWIDGET_RETRY_MAX_RETRIES"`
	DelayMS    int `json:"delay_ms" env:"CHATWIDGET_RETRY_DELAY_MS"`
	NoticeMS   int `json:"notice_ms" env:"CHATWIDGET_RETRY_NOTICE_MS"`
}

type HistoryConfig struct {
	Driver      string `json:"driver" env:"CHATWIDGET_HISTORY_DRIVER"` // "file" or "sqlite"
	Path        string `json:"path" env:"CHATWIDGET_HISTORY_PATH"`
	MaxMessages int    `json:"max_messages" env:"CHATWIDGET_HISTORY_MAX_MESSAGES"`
}

func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutMS) * time.Millisecond
}

func (r RetryConfig) Delay() time.Duration {
	return time.Duration(r.DelayMS) * time.Millisecond
}

func (r RetryConfig) NoticeDuration() time.Duration {
	return time.Duration(r.NoticeMS) * time.Millisecond
}

func DefaultConfig() *Config {
	return &Config{
		Widget: WidgetConfig{
			Host:  "0.0.0.0",
			Port:  18820,
			Title: "Agustín",
		},
		Backend: BackendConfig{
			Endpoint:  "http://localhost:5000/api/webhook/website",
			TimeoutMS: 30000,
		},
		Retry: RetryConfig{
			MaxRetries: 3,
			DelayMS:    2000,
			NoticeMS:   5000,
		},
		History: HistoryConfig{
			Driver:      "file",
			Path:        "~/.chatwidget/state.json",
			MaxMessages: 30,
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Support full config from env var (for containers / serverless)
	if cfgJSON := os.Getenv("CHATWIDGET_CONFIG_JSON"); cfgJSON != "" {
		if err := json.Unmarshal([]byte(cfgJSON), cfg); err != nil {
			return nil, fmt.Errorf("parsing CHATWIDGET_CONFIG_JSON: %w", err)
		}
		if err := env.Parse(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := env.Parse(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// HistoryPath returns the history store path with "~" expanded.
func (c *Config) HistoryPath() string {
	return expandHome(c.History.Path)
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
