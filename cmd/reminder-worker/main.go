package main

import (
	"context"
	"os"
	"time"

	"carlog/internal/amqp"
	"carlog/internal/backend"
	"carlog/internal/cli"
	"carlog/internal/config"
	"carlog/internal/log"
	"carlog/internal/services"
	"carlog/internal/sheets"
	"carlog/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentWorker)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	reminders := services.NewReminderProcessor(repo, services.ReminderProcessorConfig{
		Interval:    cfg.ReminderInterval,
		Concurrency: cfg.ReminderConcurrency,
	})
	if err := reminders.Start(ctx); err != nil {
		logger.Error("Failed to start reminder processor", log.FieldError, err)
		os.Exit(1)
	}

	if cfg.AMQPEnabled() {
		sink := newSink(ctx, cfg, logger)
		exporter := services.NewExportProcessor(repo, sink, services.DefaultExportProcessorConfig())
		rw := worker.NewRecordWorker(logger,
			worker.Handler{Name: log.ComponentReminder, Handle: reminders.HandleRecordEvent},
			worker.Handler{Name: log.ComponentExport, Handle: exporter.HandleRecordEvent},
		)

		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()

		go func() {
			if err := rw.Run(ctx, client); err != nil {
				logger.Error("Record event consumption failed", log.FieldError, err)
				stop()
			}
		}()
	} else {
		logger.Info("Record events disabled - running periodic reminder sweep only")
	}

	<-ctx.Done()
	logger.Info("Shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := reminders.Stop(shutdownCtx); err != nil {
		logger.Warn("Reminder processor did not stop cleanly", log.FieldError, err)
	}
	logger.Info("Worker shutdown complete")
}

// newSink exports to Google Sheets when a spreadsheet is configured and to
// an in-process sheet otherwise.
func newSink(ctx context.Context, cfg *config.Config, logger *log.Logger) sheets.RecordSink {
	sinkCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid export configuration", log.FieldError, err)
		os.Exit(1)
	}
	sink, err := backend.NewFactory(logger).CreateSink(ctx, sinkCfg)
	if err != nil {
		logger.Error("Failed to initialize export sink", log.FieldError, err)
		os.Exit(1)
	}
	return sink
}
