package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/basket/tasktrack/internal/channels"
	"github.com/basket/tasktrack/internal/config"
	"github.com/basket/tasktrack/internal/cron"
	"github.com/basket/tasktrack/internal/dialog"
	otelPkg "github.com/basket/tasktrack/internal/otel"
	"github.com/basket/tasktrack/internal/store"
	"github.com/basket/tasktrack/internal/telemetry"
)

// Version is set via ldflags at build time: -ldflags "-X main.Version=..."
var Version = "v0.1-dev"

func main() {
	loadDotEnv(".env")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fatalStartup(nil, "E_CONFIG_LOAD", err)
	}

	logger, closer, err := telemetry.NewLogger(cfg.HomeDir, cfg.LogLevel)
	if err != nil {
		fatalStartup(nil, "E_LOGGER_INIT", err)
	}
	defer closer.Close()
	slog.SetDefault(logger)
	logger.Info("startup phase", "phase", "config_loaded", "version", Version, "config_fingerprint", cfg.Fingerprint())

	// Initialize OpenTelemetry (no-op when disabled, zero overhead).
	otelProvider, err := otelPkg.Init(ctx, otelPkg.Config{
		Enabled:     cfg.OTel.Enabled,
		Exporter:    cfg.OTel.Exporter,
		Endpoint:    cfg.OTel.Endpoint,
		ServiceName: cfg.OTel.ServiceName,
		SampleRate:  cfg.OTel.SampleRate,
	})
	if err != nil {
		fatalStartup(logger, "E_OTEL_INIT", err)
	}
	defer otelProvider.Shutdown(context.Background())

	metrics, err := otelPkg.NewMetrics(otelProvider.Meter)
	if err != nil {
		fatalStartup(logger, "E_OTEL_INIT", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		fatalStartup(logger, "E_STORE_OPEN", err)
	}
	defer st.Close()
	logger.Info("startup phase", "phase", "schema_migrated", "db_path", cfg.DBPath)

	states := dialog.NewStateStore()

	tg := channels.NewTelegramChannel(cfg.Telegram.Token, cfg.Telegram.LongPollTimeoutSeconds, logger)
	engine := dialog.NewEngine(st, states, tg, logger, otelProvider.Tracer, metrics)
	tg.SetEngine(engine)

	sweeper, err := cron.NewSweeper(cron.Config{
		States:   states,
		Logger:   logger,
		Schedule: cfg.Sweeper.Schedule,
		TTL:      time.Duration(cfg.Sweeper.StateTTLMinutes) * time.Minute,
	})
	if err != nil {
		fatalStartup(logger, "E_SWEEPER_INIT", err)
	}
	sweeper.Start(ctx)
	defer sweeper.Stop()

	confWatcher := config.NewWatcher(cfg.HomeDir, logger)
	if err := confWatcher.Start(ctx); err != nil {
		// Hot reload is best-effort; a missing inotify backend should not
		// keep the bot from serving.
		logger.Warn("config watcher unavailable", "error", err)
	} else {
		go func() {
			for ev := range confWatcher.Events() {
				logger.Info("config hot-reload event", "path", ev.Path, "op", ev.Op.String())
				newCfg, err := config.Load()
				if err != nil {
					logger.Error("config.yaml reload failed", "error", err)
					continue
				}
				if newCfg.LogLevel != cfg.LogLevel {
					telemetry.Level.Set(telemetry.ParseLevel(newCfg.LogLevel))
					logger.Info("log level hot-reloaded", "level", newCfg.LogLevel)
				}
				cfg.LogLevel = newCfg.LogLevel
			}
		}()
	}

	channelErr := make(chan error, 1)
	go func() {
		if err := tg.Start(ctx); err != nil {
			channelErr <- err
		}
	}()
	logger.Info("startup phase", "phase", "channel_started", "channel", tg.Name())

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-channelErr:
		logger.Error("telegram channel failed", "error", err)
	}

	// Sweeper stop and store close are handled by the defers above.
	logger.Info("shutdown complete")
}

func fatalStartup(logger *slog.Logger, reasonCode string, err error) {
	message := ""
	if err != nil {
		message = err.Error()
	}
	if logger != nil {
		logger.Error("startup failure", "reason_code", reasonCode, "error", message)
	} else {
		fmt.Fprintf(
			os.Stderr,
			`{"timestamp":"%s","level":"ERROR","component":"runtime","trace_id":"-","msg":"startup failure","reason_code":%q,"error":%q}`+"\n",
			time.Now().UTC().Format(time.RFC3339Nano),
			reasonCode,
			message,
		)
	}
	os.Exit(1)
}

func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		if key == "" || os.Getenv(key) != "" {
			continue
		}
		_ = os.Setenv(key, val)
	}
}
