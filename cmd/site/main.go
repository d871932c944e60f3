package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mlindqvist/school-pipeline/internal/bootstrap"
	"github.com/mlindqvist/school-pipeline/internal/config"
	"github.com/mlindqvist/school-pipeline/internal/observability/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logging.Setup("site", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewSite(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	if err := app.Site.Run(ctx); err != nil {
		log.Fatalf("site error: %v", err)
	}
}
