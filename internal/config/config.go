package config

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// TelegramConfig holds the bot transport settings.
type TelegramConfig struct {
	Token string `yaml:"token"`
	// LongPollTimeoutSeconds is the Telegram getUpdates timeout. Default 60.
	LongPollTimeoutSeconds int `yaml:"long_poll_timeout_seconds"`
}

// SweeperConfig controls the stale-conversation sweeper. The dialogue core
// never expires state on its own; the sweeper is the collaborator that does.
type SweeperConfig struct {
	// Schedule is a 5-field cron expression. Default "*/5 * * * *".
	Schedule string `yaml:"schedule"`
	// StateTTLMinutes is how long an abandoned dialogue may sit idle before
	// it is cleared. 0 disables the sweeper.
	StateTTLMinutes int `yaml:"state_ttl_minutes"`
}

// OTelConfig mirrors the otel package settings.
type OTelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Exporter    string  `yaml:"exporter"`
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"service_name"`
	SampleRate  float64 `yaml:"sample_rate"`
}

type Config struct {
	HomeDir string `yaml:"-"`

	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`

	Telegram TelegramConfig `yaml:"telegram"`
	Sweeper  SweeperConfig  `yaml:"sweeper"`
	OTel     OTelConfig     `yaml:"otel"`
}

func defaultConfig() Config {
	return Config{
		LogLevel: "info",
		Telegram: TelegramConfig{
			LongPollTimeoutSeconds: 60,
		},
		Sweeper: SweeperConfig{
			Schedule:        "*/5 * * * *",
			StateTTLMinutes: 60,
		},
		OTel: OTelConfig{
			Exporter:    "stdout",
			ServiceName: "tasktrack",
			SampleRate:  1.0,
		},
	}
}

// HomeDir resolves the data directory, honoring TASKTRACK_HOME.
func HomeDir() string {
	if override := os.Getenv("TASKTRACK_HOME"); override != "" {
		return override
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".tasktrack")
}

// ConfigPath returns the config.yaml path under homeDir.
func ConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "config.yaml")
}

// Load reads config.yaml under HomeDir, applies env overrides and defaults.
// A missing file is not an error; env vars alone can configure the bot.
func Load() (Config, error) {
	return LoadFrom(HomeDir())
}

// LoadFrom is Load with an explicit home directory (tests use this).
func LoadFrom(homeDir string) (Config, error) {
	cfg := defaultConfig()
	cfg.HomeDir = homeDir

	if err := os.MkdirAll(cfg.HomeDir, 0o755); err != nil {
		return cfg, fmt.Errorf("create tasktrack home: %w", err)
	}

	data, err := os.ReadFile(ConfigPath(cfg.HomeDir))
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config.yaml: %w", err)
		}
	} else if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config.yaml: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	normalize(&cfg)

	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return cfg, fmt.Errorf("telegram token not set: add telegram.token to %s or set BOT_TOKEN", ConfigPath(cfg.HomeDir))
	}
	return cfg, nil
}

func normalize(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.HomeDir, "tasktrack.db")
	}
	if cfg.Telegram.LongPollTimeoutSeconds <= 0 {
		cfg.Telegram.LongPollTimeoutSeconds = 60
	}
	if strings.TrimSpace(cfg.Sweeper.Schedule) == "" {
		cfg.Sweeper.Schedule = "*/5 * * * *"
	}
	if cfg.Sweeper.StateTTLMinutes < 0 {
		cfg.Sweeper.StateTTLMinutes = 0
	}
	if cfg.OTel.ServiceName == "" {
		cfg.OTel.ServiceName = "tasktrack"
	}
	if cfg.OTel.SampleRate <= 0 {
		cfg.OTel.SampleRate = 1.0
	}
}

func applyEnvOverrides(cfg *Config) {
	if raw := os.Getenv("BOT_TOKEN"); raw != "" {
		cfg.Telegram.Token = raw
	}
	if raw := os.Getenv("TASKTRACK_DB_PATH"); raw != "" {
		cfg.DBPath = raw
	}
	if raw := os.Getenv("TASKTRACK_LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}
	if raw := os.Getenv("TASKTRACK_STATE_TTL_MINUTES"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			cfg.Sweeper.StateTTLMinutes = v
		}
	}
	if raw := os.Getenv("TASKTRACK_OTEL_ENABLED"); raw != "" {
		cfg.OTel.Enabled = raw == "1" || strings.EqualFold(raw, "true")
	}
}

// Fingerprint returns a stable hash of the operationally relevant settings,
// logged at startup so config drift shows up across restarts.
func (c Config) Fingerprint() string {
	h := fnv.New64a()
	fmt.Fprintf(h, "db=%s|log=%s|poll=%d|sweep=%s|ttl=%d|otel=%t",
		c.DBPath, c.LogLevel, c.Telegram.LongPollTimeoutSeconds,
		c.Sweeper.Schedule, c.Sweeper.StateTTLMinutes, c.OTel.Enabled)
	return fmt.Sprintf("cfg-%x", h.Sum64())
}
