package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"beetle-pipeline/config"
	"beetle-pipeline/internal/api/cli"
	"beetle-pipeline/internal/container"
	"beetle-pipeline/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Debug)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Собираем сервисы приложения
	appContainer := container.New(cfg, log)

	if err := cli.RootCommand(appContainer).ExecuteContext(ctx); err != nil {
		log.Error("command failed", zap.Error(err))
		stop()
		log.Sync()
		os.Exit(1)
	}
}
