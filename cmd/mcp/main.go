package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/kirillkom/scadenze/internal/adapters/mcp"
	"github.com/kirillkom/scadenze/internal/bootstrap"
	"github.com/kirillkom/scadenze/internal/config"
	"github.com/kirillkom/scadenze/internal/observability/logging"
)

const service = "mcp"

// stdout carries the MCP protocol, so every log line goes to stderr.
func main() {
	slog.SetDefault(logging.NewJSONLoggerTo(os.Stderr, service, "info"))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.NewJSONLoggerTo(os.Stderr, service, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{WithoutQueue: true})
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := mcpadapter.NewServer(app.Vault, app.Insights).Serve(ctx, os.Stdin, os.Stdout); err != nil {
		slog.Error("mcp_server_failed", "error", err)
	}
}
