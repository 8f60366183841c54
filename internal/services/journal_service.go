package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"carlog/internal/amqp"
	"carlog/internal/core"
)

// JournalService orchestrates journal writes across storage and AMQP and
// feeds stored data into the analytics engine.
type JournalService struct {
	store     JournalStore
	publisher EventPublisher
}

// NewJournalService builds the service. publisher may be nil, in which case
// record events are skipped.
func NewJournalService(store JournalStore, publisher EventPublisher) *JournalService {
	return &JournalService{
		store:     store,
		publisher: publisher,
	}
}

func (s *JournalService) CreateCar(ctx context.Context, c core.CarProfile) (core.CarProfile, error) {
	c.Make = strings.TrimSpace(c.Make)
	if err := c.Validate(); err != nil {
		return core.CarProfile{}, fmt.Errorf("validate car: %w", err)
	}
	return s.store.CreateCar(ctx, c)
}

func (s *JournalService) GetCar(ctx context.Context, id string) (core.CarProfile, error) {
	return s.store.GetCar(ctx, id)
}

func (s *JournalService) ListCars(ctx context.Context) ([]core.CarProfile, error) {
	return s.store.ListCars(ctx)
}

func (s *JournalService) UpdateCar(ctx context.Context, c core.CarProfile) (core.CarProfile, error) {
	c.Make = strings.TrimSpace(c.Make)
	if err := c.Validate(); err != nil {
		return core.CarProfile{}, fmt.Errorf("validate car: %w", err)
	}
	return s.store.UpdateCar(ctx, c)
}

func (s *JournalService) DeleteCar(ctx context.Context, id string) error {
	return s.store.DeleteCar(ctx, id)
}

// normalizeRecord fills the total from the items when the caller sent items
// but no total, which is how the journal computes totals at save time.
func normalizeRecord(r core.MaintenanceRecord) core.MaintenanceRecord {
	r.Title = strings.TrimSpace(r.Title)
	if r.TotalCost.Cents == 0 && len(r.Items) > 0 {
		r.TotalCost = r.ItemsTotal()
	}
	return r
}

// CreateRecord saves a record locally and publishes a change event.
func (s *JournalService) CreateRecord(ctx context.Context, r core.MaintenanceRecord) (core.MaintenanceRecord, error) {
	r = normalizeRecord(r)
	if err := r.Validate(); err != nil {
		return core.MaintenanceRecord{}, fmt.Errorf("validate record: %w", err)
	}

	saved, err := s.store.CreateRecord(ctx, r)
	if err != nil {
		return core.MaintenanceRecord{}, fmt.Errorf("save record: %w", err)
	}

	s.publish(ctx, amqp.RecordCreated, saved.ID, saved.CarID)
	return saved, nil
}

func (s *JournalService) GetRecord(ctx context.Context, id string) (core.MaintenanceRecord, error) {
	return s.store.GetRecord(ctx, id)
}

// ListRecords returns a car's records, failing when the car does not exist.
func (s *JournalService) ListRecords(ctx context.Context, carID string) ([]core.MaintenanceRecord, error) {
	if _, err := s.store.GetCar(ctx, carID); err != nil {
		return nil, err
	}
	return s.store.ListRecordsByCar(ctx, carID)
}

// UpdateRecord replaces a record. The owning car cannot change.
func (s *JournalService) UpdateRecord(ctx context.Context, r core.MaintenanceRecord) (core.MaintenanceRecord, error) {
	existing, err := s.store.GetRecord(ctx, r.ID)
	if err != nil {
		return core.MaintenanceRecord{}, err
	}
	r.CarID = existing.CarID

	r = normalizeRecord(r)
	if err := r.Validate(); err != nil {
		return core.MaintenanceRecord{}, fmt.Errorf("validate record: %w", err)
	}

	updated, err := s.store.UpdateRecord(ctx, r)
	if err != nil {
		return core.MaintenanceRecord{}, fmt.Errorf("update record: %w", err)
	}

	s.publish(ctx, amqp.RecordUpdated, updated.ID, updated.CarID)
	return updated, nil
}

// DeleteRecord removes a record and returns the car it belonged to.
func (s *JournalService) DeleteRecord(ctx context.Context, id string) (string, error) {
	existing, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.store.DeleteRecord(ctx, id); err != nil {
		return "", fmt.Errorf("delete record: %w", err)
	}

	s.publish(ctx, amqp.RecordDeleted, id, existing.CarID)
	return existing.CarID, nil
}

// publish sends a record event. Failures are logged only: the record is
// already saved locally.
func (s *JournalService) publish(ctx context.Context, action amqp.RecordAction, recordID, carID string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping record event",
			"record_id", recordID)
		return
	}
	if err := s.publisher.PublishRecordEvent(ctx, amqp.NewRecordEvent(action, recordID, carID)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record event",
			"action", action,
			"record_id", recordID,
			"car_id", carID,
			"error", err)
	}
}

// NextService loads a car's journal and projects its next planned service.
// The bool is false when the car has no planned record yet.
func (s *JournalService) NextService(ctx context.Context, carID string, now time.Time) (core.NextServiceInfo, bool, error) {
	car, records, err := s.loadCar(ctx, carID)
	if err != nil {
		return core.NextServiceInfo{}, false, err
	}
	info, ok := CalcNextService(records, car, now)
	return info, ok, nil
}

// Stats computes the spending summary for a car over a trailing window of
// months. Future records are excluded.
func (s *JournalService) Stats(ctx context.Context, carID string, months int, now time.Time) (core.SpendingSummary, error) {
	if months <= 0 {
		months = DefaultStatsMonths
	}
	_, records, err := s.loadCar(ctx, carID)
	if err != nil {
		return core.SpendingSummary{}, err
	}
	return Summarize(records, months, now), nil
}

// ResolvedInterval returns the effective service interval for a car.
func (s *JournalService) ResolvedInterval(ctx context.Context, carID string) (core.ServiceInterval, error) {
	car, err := s.store.GetCar(ctx, carID)
	if err != nil {
		return core.ServiceInterval{}, err
	}
	return ResolveInterval(car), nil
}

func (s *JournalService) loadCar(ctx context.Context, carID string) (core.CarProfile, []core.MaintenanceRecord, error) {
	car, err := s.store.GetCar(ctx, carID)
	if err != nil {
		return core.CarProfile{}, nil, err
	}
	records, err := s.store.ListRecordsByCar(ctx, carID)
	if err != nil {
		return core.CarProfile{}, nil, fmt.Errorf("load records: %w", err)
	}
	return car, records, nil
}

// ServiceIntervals returns the stored catalog, or the built-in table when
// storage has not been seeded.
func (s *JournalService) ServiceIntervals(ctx context.Context) ([]core.CatalogEntry, error) {
	entries, err := s.store.ListServiceIntervals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list service intervals: %w", err)
	}
	if len(entries) == 0 {
		return Catalog(), nil
	}
	return entries, nil
}

// ServiceIntervalForMake looks a make up in storage, then in the built-in
// table.
func (s *JournalService) ServiceIntervalForMake(ctx context.Context, carMake string) (core.CatalogEntry, error) {
	if e, err := s.store.GetServiceIntervalByMake(ctx, carMake); err == nil {
		return e, nil
	}
	if e, ok := IntervalForMake(carMake); ok {
		return e, nil
	}
	return core.CatalogEntry{}, fmt.Errorf("service interval for %q: %w", carMake, core.ErrNotFound)
}
