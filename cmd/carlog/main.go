package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"carlog/internal/amqp"
	"carlog/internal/cli"
	apphttp "carlog/internal/http"
	"carlog/internal/log"
	"carlog/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentApp)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	seeded, err := repo.SeedServiceIntervals(context.Background(), services.Catalog())
	if err != nil {
		logger.Error("Failed to seed service intervals", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Service interval catalog ready", "inserted", seeded)

	// A nil publisher disables record events; keep the interface nil rather
	// than wrapping a nil *amqp.Client.
	var publisher services.EventPublisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("Record events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Record events disabled - no AMQP_URL provided")
	}

	journal := services.NewJournalService(repo, publisher)
	srv := apphttp.NewServer(":"+cfg.Port, journal, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		StatsMonths:        cfg.StatsMonths,
		Ready:              repo.Ping,
		Logger:             logger,
	})
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := cli.SignalContext()
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting carlog server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
