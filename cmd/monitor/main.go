package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"usos_monitor/internal/config"
	"usos_monitor/internal/notify"
	"usos_monitor/internal/scheduler"
	"usos_monitor/internal/storage"
	"usos_monitor/internal/usos"
)

func main() {
	watch := flag.Bool("watch", false, "keep running and re-check on the configured interval")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	notifier, err := notify.New(cfg.TelegramBotToken, cfg.TelegramChatID, log)
	if err != nil {
		log.Error("create notifier", "error", err)
		os.Exit(1)
	}

	client, err := usos.NewDefault(log)
	if err != nil {
		log.Error("create usos client", "error", err)
		os.Exit(1)
	}

	sched := scheduler.New(cfg, client, store, notifier, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *watch {
		log.Info("starting monitor", "interval_minutes", cfg.CheckIntervalMinutes)
		sched.Run(ctx)
		log.Info("monitor stopped")
		return
	}

	if err := sched.RunOnce(ctx); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
