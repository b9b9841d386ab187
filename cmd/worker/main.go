package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/tourbooking/config"
	"github.com/Domenick1991/tourbooking/internal/format"
	"github.com/Domenick1991/tourbooking/internal/kafka"
	"github.com/Domenick1991/tourbooking/internal/logging"
	"github.com/Domenick1991/tourbooking/internal/notify"
	"github.com/Domenick1991/tourbooking/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
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
	logger := logging.Component(logging.New(cfg.Log, os.Stderr), "worker")

	if !cfg.Database.Enabled() || !cfg.Kafka.Enabled() {
		logger.Fatal().Msg("worker needs database and kafka configured")
	}

	// runs after every other deferred close
	exitCode := 0
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	repo := repository.NewNotificationRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ensure notification schema")
	}

	sender := notify.NewSender(repo, format.New(cfg.Format.Locale, cfg.Format.Currency), logger)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingEventsTopic, logger)
	defer consumer.Close()

	consumerDone := make(chan error, 1)
	go func() {
		consumerDone <- consumer.ConsumeBookings(ctx, sender.Send)
	}()

	purgeTicker := time.NewTicker(cfg.Worker.SweepInterval())
	defer purgeTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-purgeTicker.C:
			purged, err := notify.Purge(ctx, repo, cfg.Worker.Retention(), time.Now())
			if err != nil {
				logger.Error().Err(err).Msg("purge notifications")
				continue
			}
			if purged > 0 {
				logger.Info().Int64("purged", purged).Msg("purged read notifications")
			}
		case err := <-consumerDone:
			logger.Error().Err(err).Msg("consumer stopped, shutting down")
			exitCode = 1
			return
		case s := <-sig:
			logger.Info().Str("signal", s.String()).Msg("shutting down")
			return
		}
	}
}
