package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/kirillkom/weekly-issue/internal/adapters/mcp"
	"github.com/kirillkom/weekly-issue/internal/bootstrap"
	"github.com/kirillkom/weekly-issue/internal/config"
	"github.com/kirillkom/weekly-issue/internal/observability/logging"
)

const service = "mcp"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLoggerTo(os.Stderr, service, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, service, logger, nil)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	logger.Info("mcp_serving_stdio")
	if err := mcpadapter.NewServer(app.Pipeline, app.QueryUC).ServeStdio(); err != nil {
		logger.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}
