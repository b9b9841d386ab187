package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/tourbooking/config"
	"github.com/Domenick1991/tourbooking/internal/bootstrap"
	"github.com/Domenick1991/tourbooking/internal/logging"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build app")
	}
	defer app.Close()

	logger.Info().
		Str("address", cfg.HTTP.Address).
		Str("datasource", cfg.DataSource.Kind).
		Str("sessions", cfg.Session.Backend).
		Msg("starting storefront")

	if err := bootstrap.Run(ctx, cfg.HTTP, app.Router, logger); err != nil {
		logger.Error().Err(err).Msg("server error")
	}
}
