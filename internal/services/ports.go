package services

import (
	"context"

	"carlog/internal/amqp"
	"carlog/internal/core"
)

// Ports the services depend on. storage.SQLiteRepository implements the
// stores and amqp.Client implements EventPublisher.
type (
	CarStore interface {
		CreateCar(ctx context.Context, c core.CarProfile) (core.CarProfile, error)
		GetCar(ctx context.Context, id string) (core.CarProfile, error)
		ListCars(ctx context.Context) ([]core.CarProfile, error)
		UpdateCar(ctx context.Context, c core.CarProfile) (core.CarProfile, error)
		DeleteCar(ctx context.Context, id string) error
	}

	RecordStore interface {
		CreateRecord(ctx context.Context, r core.MaintenanceRecord) (core.MaintenanceRecord, error)
		GetRecord(ctx context.Context, id string) (core.MaintenanceRecord, error)
		ListRecordsByCar(ctx context.Context, carID string) ([]core.MaintenanceRecord, error)
		UpdateRecord(ctx context.Context, r core.MaintenanceRecord) (core.MaintenanceRecord, error)
		DeleteRecord(ctx context.Context, id string) error
	}

	IntervalStore interface {
		ListServiceIntervals(ctx context.Context) ([]core.CatalogEntry, error)
		GetServiceIntervalByMake(ctx context.Context, carMake string) (core.CatalogEntry, error)
	}

	ReminderStore interface {
		UpsertReminder(ctx context.Context, rem core.ServiceReminder) error
		GetReminder(ctx context.Context, carID string) (core.ServiceReminder, error)
		DeleteReminder(ctx context.Context, carID string) error
		ListOverdueReminders(ctx context.Context) ([]core.ServiceReminder, error)
	}

	JournalStore interface {
		CarStore
		RecordStore
		IntervalStore
	}

	EventPublisher interface {
		PublishRecordEvent(ctx context.Context, event *amqp.RecordEvent) error
	}
)
