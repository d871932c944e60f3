package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mlindqvist/school-pipeline/internal/bootstrap"
	"github.com/mlindqvist/school-pipeline/internal/config"
	"github.com/mlindqvist/school-pipeline/internal/core/domain"
	"github.com/mlindqvist/school-pipeline/internal/observability/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logging.Setup("enhance", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewEnhance(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", app.Metrics.Handler())
		if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Warn("metrics_listener_stopped", "error", err)
		}
	}()

	stats, err := app.Batch.Run(ctx)
	slog.Info("batch_stats",
		"discovered", stats.Discovered,
		"skipped_already_done", stats.SkippedAlreadyDone,
		"attempted", stats.Attempted,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
	)
	if err != nil {
		if domain.IsKind(err, domain.ErrAllCallsFailed) {
			slog.Error("all_calls_failed", "hint", "check endpoint, key and deployment configuration")
		} else {
			slog.Error("batch_error", "error", err)
		}
		os.Exit(1)
	}
}
