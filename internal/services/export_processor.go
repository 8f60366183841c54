package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"carlog/internal/amqp"
	"carlog/internal/core"
	"carlog/internal/sheets"
)

// ExportSource is what the export processor reads to build a sheet row.
type ExportSource interface {
	GetCar(ctx context.Context, id string) (core.CarProfile, error)
	GetRecord(ctx context.Context, id string) (core.MaintenanceRecord, error)
	ListCars(ctx context.Context) ([]core.CarProfile, error)
	ListRecordsByCar(ctx context.Context, carID string) ([]core.MaintenanceRecord, error)
}

type ExportProcessorConfig struct {
	// MaxRetries is how many times a failed export is retried (default: 3)
	MaxRetries int

	// RetryDelay is the base delay, doubled on every retry (default: 500ms)
	RetryDelay time.Duration
}

func DefaultExportProcessorConfig() ExportProcessorConfig {
	return ExportProcessorConfig{
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
	}
}

// ExportProcessor mirrors journal changes into a spreadsheet.
type ExportProcessor struct {
	store  ExportSource
	sink   sheets.RecordSink
	config ExportProcessorConfig
}

func NewExportProcessor(store ExportSource, sink sheets.RecordSink, config ExportProcessorConfig) *ExportProcessor {
	def := DefaultExportProcessorConfig()
	if config.MaxRetries < 0 {
		config.MaxRetries = def.MaxRetries
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = def.RetryDelay
	}
	return &ExportProcessor{store: store, sink: sink, config: config}
}

// HandleRecordEvent exports or removes the record named in the event.
// Records deleted before the event arrives are removed from the sheet.
func (p *ExportProcessor) HandleRecordEvent(ctx context.Context, event *amqp.RecordEvent) error {
	if event.Action == amqp.RecordDeleted {
		return p.withRetry(ctx, "remove", event.RecordID, func() error {
			return p.sink.RemoveRecord(ctx, event.RecordID)
		})
	}

	rec, err := p.store.GetRecord(ctx, event.RecordID)
	if errors.Is(err, core.ErrNotFound) {
		slog.InfoContext(ctx, "Record gone before export, removing row", "record_id", event.RecordID)
		return p.withRetry(ctx, "remove", event.RecordID, func() error {
			return p.sink.RemoveRecord(ctx, event.RecordID)
		})
	}
	if err != nil {
		return fmt.Errorf("load record %s: %w", event.RecordID, err)
	}

	car, err := p.store.GetCar(ctx, rec.CarID)
	if err != nil {
		return fmt.Errorf("load car %s: %w", rec.CarID, err)
	}

	return p.withRetry(ctx, "export", rec.ID, func() error {
		ref, err := p.sink.ExportRecord(ctx, car, rec)
		if err == nil {
			slog.DebugContext(ctx, "Record exported", "record_id", rec.ID, "ref", ref)
		}
		return err
	})
}

// ExportAll re-exports every record of every car. It is used to rebuild a
// sheet after events were lost. The first failure stops the run.
func (p *ExportProcessor) ExportAll(ctx context.Context) (int, error) {
	cars, err := p.store.ListCars(ctx)
	if err != nil {
		return 0, fmt.Errorf("list cars: %w", err)
	}
	exported := 0
	for _, car := range cars {
		records, err := p.store.ListRecordsByCar(ctx, car.ID)
		if err != nil {
			return exported, fmt.Errorf("list records for car %s: %w", car.ID, err)
		}
		for _, rec := range records {
			err := p.withRetry(ctx, "export", rec.ID, func() error {
				_, err := p.sink.ExportRecord(ctx, car, rec)
				return err
			})
			if err != nil {
				return exported, err
			}
			exported++
		}
	}
	slog.InfoContext(ctx, "Full export completed", "cars", len(cars), "records", exported)
	return exported, nil
}

func (p *ExportProcessor) withRetry(ctx context.Context, op, recordID string, fn func() error) error {
	delay := p.config.RetryDelay
	var err error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == p.config.MaxRetries {
			break
		}
		slog.WarnContext(ctx, "Sheet operation failed, retrying",
			"op", op,
			"record_id", recordID,
			"attempt", attempt+1,
			"error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("%s record %s after %d attempts: %w", op, recordID, p.config.MaxRetries+1, err)
}
