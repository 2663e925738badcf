package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/use-agent/zillow/config"
	"github.com/use-agent/zillow/models"
)

func main() {
	// ── 1. Load configuration (.env is optional) ────────────────────
	_ = godotenv.Load()
	cfg := config.Load()

	// ── 2. Cancel the run on SIGINT/SIGTERM ─────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 3. Parse arguments and run ──────────────────────────────────
	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		slog.Error("zillow failed", "error", err)
		stop()
		if models.IsUsage(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
