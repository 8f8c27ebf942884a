package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the auditledger.yaml configuration shared by the server,
// the CLI and the TUI.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	CycleID       string              `yaml:"cycle_id"`
	TrialBalance  string              `yaml:"trial_balance_id"`
	Notifications NotificationsConfig `yaml:"notifications"`
	HTTP          HTTPConfig          `yaml:"http"`
}

type ServerConfig struct {
	URL  string `yaml:"url"`
	Addr string `yaml:"addr"`
	DB   string `yaml:"db"`
}

// NotificationsConfig tunes the notification stream consumer.
type NotificationsConfig struct {
	Reconnect   time.Duration `yaml:"reconnect"`
	DedupWindow time.Duration `yaml:"dedup_window"`
}

type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultPath is the config file location used when --config is not given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "auditledger.yaml"
	}
	return filepath.Join(home, ".config", "auditledger", "auditledger.yaml")
}

// Load reads a config file from disk. Fields left empty take their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default().
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file, creating its directory.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:  "http://localhost:8888",
			Addr: ":8888",
			DB:   "auditledger.db",
		},
		Notifications: NotificationsConfig{
			Reconnect:   5 * time.Second,
			DedupWindow: 60 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.Server.URL == "" {
		c.Server.URL = def.Server.URL
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.DB == "" {
		c.Server.DB = def.Server.DB
	}
	if c.Notifications.Reconnect <= 0 {
		c.Notifications.Reconnect = def.Notifications.Reconnect
	}
	if c.Notifications.DedupWindow <= 0 {
		c.Notifications.DedupWindow = def.Notifications.DedupWindow
	}
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = def.HTTP.Timeout
	}
}
