package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/basket/tasktrack/internal/config"
)

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "test-token")
	home := t.TempDir()

	cfg, err := config.LoadFrom(home)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected default log level, got %q", cfg.LogLevel)
	}
	if cfg.DBPath != filepath.Join(home, "tasktrack.db") {
		t.Fatalf("unexpected db path: %q", cfg.DBPath)
	}
	if cfg.Telegram.LongPollTimeoutSeconds != 60 {
		t.Fatalf("expected default poll timeout, got %d", cfg.Telegram.LongPollTimeoutSeconds)
	}
	if cfg.Sweeper.Schedule != "*/5 * * * *" || cfg.Sweeper.StateTTLMinutes != 60 {
		t.Fatalf("unexpected sweeper defaults: %+v", cfg.Sweeper)
	}
	if cfg.OTel.Enabled {
		t.Fatal("otel must default to disabled")
	}
}

func TestLoadFrom_ReadsYAML(t *testing.T) {
	home := t.TempDir()
	yaml := `
log_level: debug
telegram:
  token: from-yaml
  long_poll_timeout_seconds: 30
sweeper:
  schedule: "*/10 * * * *"
  state_ttl_minutes: 15
otel:
  enabled: true
  exporter: stdout
`
	if err := os.WriteFile(config.ConfigPath(home), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.LoadFrom(home)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Telegram.Token != "from-yaml" {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
	if cfg.Telegram.LongPollTimeoutSeconds != 30 {
		t.Fatalf("poll timeout not applied: %d", cfg.Telegram.LongPollTimeoutSeconds)
	}
	if cfg.Sweeper.Schedule != "*/10 * * * *" || cfg.Sweeper.StateTTLMinutes != 15 {
		t.Fatalf("sweeper not applied: %+v", cfg.Sweeper)
	}
	if !cfg.OTel.Enabled || cfg.OTel.Exporter != "stdout" {
		t.Fatalf("otel not applied: %+v", cfg.OTel)
	}
}

func TestLoadFrom_MissingTokenIsAnError(t *testing.T) {
	home := t.TempDir()

	if _, err := config.LoadFrom(home); err == nil {
		t.Fatal("expected error without a telegram token")
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	home := t.TempDir()
	yaml := `
log_level: info
telegram:
  token: from-yaml
`
	if err := os.WriteFile(config.ConfigPath(home), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("BOT_TOKEN", "from-env")
	t.Setenv("TASKTRACK_LOG_LEVEL", "debug")
	t.Setenv("TASKTRACK_DB_PATH", "/tmp/custom.db")
	t.Setenv("TASKTRACK_STATE_TTL_MINUTES", "0")

	cfg, err := config.LoadFrom(home)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("env token override lost: %q", cfg.Telegram.Token)
	}
	if cfg.LogLevel != "debug" || cfg.DBPath != "/tmp/custom.db" {
		t.Fatalf("env overrides lost: %+v", cfg)
	}
	if cfg.Sweeper.StateTTLMinutes != 0 {
		t.Fatalf("state TTL override lost: %d", cfg.Sweeper.StateTTLMinutes)
	}
}

func TestFingerprint_StableAndSensitive(t *testing.T) {
	t.Setenv("BOT_TOKEN", "test-token")
	home := t.TempDir()

	a, err := config.LoadFrom(home)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b, err := config.LoadFrom(home)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("identical configs must fingerprint identically")
	}

	b.LogLevel = "debug"
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatal("fingerprint must change with the config")
	}
}
