package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/scadenze/internal/adapters/http"
	"github.com/kirillkom/scadenze/internal/bootstrap"
	"github.com/kirillkom/scadenze/internal/config"
	"github.com/kirillkom/scadenze/internal/observability/logging"
	"github.com/kirillkom/scadenze/internal/observability/metrics"
)

const service = "api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.NewJSONLogger(service, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics(service)
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Observer: metrics.NewResilienceMetrics(service, httpMetrics.Registerer()),
	})
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerDone := make(chan struct{})
	if cfg.QueueBackend == config.QueueInline {
		go func() {
			defer close(workerDone)
			if err := app.ServeAnalysis(ctx, service, nil); err != nil {
				slog.Error("inline_analysis_stopped", "error", err)
			}
		}()
	} else {
		close(workerDone)
	}

	router := httpadapter.NewRouter(cfg, app.Vault, app.Ingest, app.Insights).
		WithMetrics(httpMetrics).
		Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening",
			"port", cfg.APIPort,
			"store_backend", cfg.StoreBackend,
			"queue_backend", cfg.QueueBackend,
			"timezone", cfg.Timezone,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}

	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		slog.Warn("inline_analysis_drain_timeout")
	}
}
