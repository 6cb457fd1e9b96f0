package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ReviewIntake/internal/app"
	"ReviewIntake/internal/config"
	"ReviewIntake/internal/logging"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		logging.New("error", "text").Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build application", "error", err)
		os.Exit(1)
	}

	shutdown := func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(context.Background(), 10*time.Second)
	}
	if err := application.Run(ctx, shutdown); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
